// Package handlers contains HTTP request handlers for the job board service.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaojob/jobboard-service/internal/httputil"
	"github.com/kaojob/jobboard-service/internal/middleware"
	"github.com/kaojob/jobboard-service/internal/service"
)

// AuthHandler handles account HTTP requests.
type AuthHandler struct {
	authService service.AuthService
	responder   *httputil.Responder
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService service.AuthService, responder *httputil.Responder) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		responder:   responder,
	}
}

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	Type     string `json:"type" binding:"required"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProfileResponse wraps the caller's profile.
type ProfileResponse struct {
	User *service.Profile `json:"user"`
}

// Register godoc
// @Summary Register an account
// @Description Create a user and return it with a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "New account"
// @Success 200 {object} service.AuthResponse
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 409 {object} httputil.ErrorResponse
// @Failure 500 {object} httputil.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Error(c, bindError(err))
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Type:     req.Type,
	})
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Login godoc
// @Summary User login
// @Description Authenticate with email and password and return a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} service.AuthResponse
// @Failure 400 {object} httputil.ErrorResponse
// @Failure 401 {object} httputil.ErrorResponse
// @Failure 500 {object} httputil.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.Error(c, bindError(err))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary Current user
// @Description Return the profile of the token's owner
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} httputil.ErrorResponse
// @Failure 404 {object} httputil.ErrorResponse
// @Failure 500 {object} httputil.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		h.responder.Error(c, service.ErrUnauthorized)
		return
	}

	profile, err := h.authService.GetProfile(c.Request.Context(), identity.UserID)
	if err != nil {
		h.responder.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{User: profile})
}

// bindError reports any binding failure, including malformed JSON, as
// missing fields.
func bindError(err error) error {
	return fmt.Errorf("%w: %v", service.ErrMissingFields, err)
}
