package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/feed-system/socialconnect/internal/repository"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/feed-system/socialconnect/pkg/queue"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users    UserStore
	tokens   *TokenManager
	producer EventPublisher
	adminKey string
	logger   *logger.Logger
}

func NewAuthService(users UserStore, tokens *TokenManager, producer EventPublisher, adminKey string, logger *logger.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		producer: producer,
		adminKey: adminKey,
		logger:   logger,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterAdminRequest struct {
	RegisterRequest
	AdminKey string `json:"admin_key" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	return s.register(ctx, req, false)
}

// RegisterAdmin creates an administrator account when the supplied key matches
// the configured registration key. An empty configured key disables it.
func (s *AuthService) RegisterAdmin(ctx context.Context, req *RegisterAdminRequest) (*models.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if s.adminKey == "" || subtle.ConstantTimeCompare([]byte(req.AdminKey), []byte(s.adminKey)) != 1 {
		return nil, newError(ErrForbidden, "invalid admin key")
	}
	return s.register(ctx, &req.RegisterRequest, true)
}

func (s *AuthService) register(ctx context.Context, req *RegisterRequest, admin bool) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, newError(ErrConflict, "username already taken")
	}

	existing, err = s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, newError(ErrConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsAdmin:      admin,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "username or email already taken")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	publishEvent(ctx, s.producer, s.logger, user.ID.String(), queue.EventUserUpdated, queue.UserEventData{
		UserID: user.ID.String(),
	})

	s.logger.WithFields(map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
		"is_admin": admin,
	}).Info("User registered successfully")

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, newError(ErrUnauthorized, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, newError(ErrUnauthorized, "invalid email or password")
	}
	if !user.IsActive {
		return nil, newError(ErrUnauthorized, "account is deactivated")
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": user.ID,
	}).Info("User logged in successfully")

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout revokes the presented token. An unparsable token is already useless,
// so it is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return err
	}
	s.logger.WithField("user_id", claims.UserID).Info("User logged out successfully")
	return nil
}
