package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kaojob/jobboard-service/internal/httputil"
	"github.com/kaojob/jobboard-service/internal/service"
)

const identityKey = "identity"

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*service.Claims, error)
}

// Identity is the verified caller of a gated request.
type Identity struct {
	UserID   int64
	UserType string
}

// Auth rejects requests without a valid bearer token and stores the caller's
// Identity in the context. The token is the second space-separated part of
// the Authorization header.
func Auth(validator TokenValidator, responder *httputil.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			responder.Error(c, service.ErrUnauthorized)
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) < 2 || parts[1] == "" {
			responder.Error(c, fmt.Errorf("%w: missing bearer token", service.ErrInvalidToken))
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			if !errors.Is(err, service.ErrInvalidToken) {
				err = fmt.Errorf("%w: %v", service.ErrInvalidToken, err)
			}
			responder.Error(c, err)
			return
		}

		c.Set(identityKey, Identity{UserID: claims.UserID, UserType: claims.UserType})
		c.Next()
	}
}

// GetIdentity returns the caller stored by Auth.
func GetIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
