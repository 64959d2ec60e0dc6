// Package service implements the business logic of the job board service.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kaojob/jobboard-service/internal/config"
)

// Claims represents JWT token claims.
type Claims struct {
	UserID   int64  `json:"id"`
	UserType string `json:"type"`
	jwt.RegisteredClaims
}

// JWTService defines JWT token operations.
type JWTService interface {
	GenerateToken(userID int64, userType string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
	GetExpiry() time.Duration
}

type jwtService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewJWTService creates a new JWTService instance.
func NewJWTService(secret string, expiry time.Duration) (JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if len(secret) < config.MinJWTSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", config.MinJWTSecretLength)
	}
	if expiry <= 0 {
		return nil, errors.New("jwt expiry must be positive")
	}
	return &jwtService{secret: []byte(secret), expiry: expiry, now: time.Now}, nil
}

func (s *jwtService) GenerateToken(userID int64, userType string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   userID,
		UserType: userType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, algorithm and expiry. Every failure wraps
// ErrInvalidToken; the rest of the message says what was wrong.
func (s *jwtService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *jwtService) GetExpiry() time.Duration {
	return s.expiry
}
