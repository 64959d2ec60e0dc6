package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kaojob/jobboard-service/internal/metrics"
	"github.com/kaojob/jobboard-service/internal/models"
	"github.com/kaojob/jobboard-service/internal/repository"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 10

// MaxPasswordBytes is how much of a password bcrypt reads. Longer passwords
// are truncated on both register and login.
const MaxPasswordBytes = 72

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Type     string
}

// PublicUser is the subset of a user returned with a token.
type PublicUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"`
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}

// Profile is the caller's own account as returned by GET /api/me.
type Profile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthService handles registration, login and profile lookup.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService JWTService
	metrics    metrics.Recorder
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(userRepo repository.UserRepository, jwtService JWTService, recorder metrics.Recorder) AuthService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		metrics:    recorder,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	if blank(in.Name) || blank(in.Email) || blank(in.Password) || blank(in.Type) {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword(passwordBytes(in.Password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
		Type:         in.Type,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %v", ErrEmailExists, err)
		}
		return nil, err
	}
	s.metrics.UserRegistered()

	return s.issue(user)
}

// Login fails identically for an unknown email and a wrong password. The
// unknown-email path still runs a bcrypt comparison so both take as long.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	if blank(email) || blank(password) {
		return nil, ErrMissingFields
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), passwordBytes(password))
			s.metrics.LoginAttempt(false)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordBytes(password)); err != nil {
		s.metrics.LoginAttempt(false)
		return nil, ErrInvalidCredentials
	}
	s.metrics.LoginAttempt(true)

	return s.issue(user)
}

func (s *authService) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, err
	}

	return &Profile{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Type:      user.Type,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *authService) issue(user *models.User) (*AuthResponse, error) {
	token, err := s.jwtService.GenerateToken(user.ID, user.Type)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		User: PublicUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Type:  user.Type,
		},
		Token: token,
	}, nil
}

var (
	dummyHashOnce  sync.Once
	dummyHashValue []byte
)

func dummyHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHashValue, _ = bcrypt.GenerateFromPassword([]byte("kaojob-timing-equaliser"), BcryptCost)
	})
	return dummyHashValue
}

func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
