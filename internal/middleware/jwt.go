package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/feed-system/socialconnect/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	identityKey = "identity"
	tokenKey    = "token"
)

// Resolver is implemented by services.IdentityResolver.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*services.Identity, error)
}

// NewJWTAuth requires a valid bearer token and stores the caller identity in
// the gin context.
func NewJWTAuth(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			abortResolve(c, err)
			return
		}

		c.Set(identityKey, identity)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// OptionalAuth resolves the caller when a token is presented and carries on
// anonymously otherwise. A presented but invalid token is still rejected.
func OptionalAuth(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			abortResolve(c, err)
			return
		}

		c.Set(identityKey, identity)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// RequireAdmin must run after NewJWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !identity.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func abortResolve(c *gin.Context, err error) {
	if errors.Is(err, services.ErrUnauthorized) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func GetIdentity(c *gin.Context) *services.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*services.Identity)
	return identity
}

// GetUserID returns the caller id, or uuid.Nil for anonymous requests.
func GetUserID(c *gin.Context) uuid.UUID {
	if identity := GetIdentity(c); identity != nil {
		return identity.UserID
	}
	return uuid.Nil
}

func GetToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func BearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
