package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const revokedTokenPrefix = "auth:revoked:"

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID   uuid.UUID
	Username string
	IsAdmin  bool
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens and keeps a denylist of
// logged out token ids.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	store  TokenStore
}

func NewTokenManager(secret string, ttl time.Duration, store TokenStore) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		store:  store,
	}
}

func (m *TokenManager) Issue(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *TokenManager) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

// Revoke denylists the token id until the token would have expired anyway.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := m.store.Set(ctx, revokedTokenPrefix+claims.ID, "1", ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (m *TokenManager) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := m.store.Exists(ctx, revokedTokenPrefix+tokenID)
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// IdentityResolver maps a bearer token to the caller. The profile is loaded
// on every call so deactivation and admin changes apply immediately.
type IdentityResolver struct {
	tokens *TokenManager
	users  UserStore
	logger *logger.Logger
}

func NewIdentityResolver(tokens *TokenManager, users UserStore, logger *logger.Logger) *IdentityResolver {
	return &IdentityResolver{
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, newError(ErrUnauthorized, "missing bearer token")
	}

	claims, err := r.tokens.Parse(token)
	if err != nil {
		return nil, newError(ErrUnauthorized, "invalid or expired token")
	}

	revoked, err := r.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, newError(ErrUnauthorized, "token has been revoked")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, newError(ErrUnauthorized, "invalid or expired token")
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, newError(ErrUnauthorized, "account not found or deactivated")
	}

	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}, nil
}
