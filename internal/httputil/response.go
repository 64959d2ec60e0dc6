// Package httputil writes the service's JSON error responses.
package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaojob/jobboard-service/internal/service"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// Error codes returned in the "error" field.
const (
	CodeMissingFields      = "missing_fields"
	CodeEmailExists        = "email_exists"
	CodeInvalidCredentials = "invalid_credentials"
	CodeUnauthorized       = "unauthorized"
	CodeInvalidToken       = "invalid_token"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeServerError        = "server_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

var errorTable = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrMissingFields, http.StatusBadRequest, CodeMissingFields},
	{service.ErrEmailExists, http.StatusConflict, CodeEmailExists},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
	{service.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized, CodeInvalidToken},
	{service.ErrForbidden, http.StatusForbidden, CodeForbidden},
	{service.ErrNotFound, http.StatusNotFound, CodeNotFound},
}

// Classify maps an error onto its HTTP status and error code. Unknown errors
// are server errors.
func Classify(err error) (int, string) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, CodeServerError
}

// Responder writes error responses and logs each one: client errors at WARN,
// server errors at ERROR. Details carry err's text only when exposeDetails.
type Responder struct {
	logger        *slog.Logger
	exposeDetails bool
}

// NewResponder creates a new Responder.
func NewResponder(logger *slog.Logger, exposeDetails bool) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{logger: logger, exposeDetails: exposeDetails}
}

// Error aborts the request with the response err maps to.
func (r *Responder) Error(c *gin.Context, err error) {
	status, code := Classify(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	r.logger.Log(c.Request.Context(), level, "request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"code", code,
		"request_id", c.GetString(RequestIDKey),
		"error", err,
	)

	body := ErrorResponse{Error: code}
	if r.exposeDetails && err != nil {
		body.Details = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}
