package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRegisterLoginResolveLogout(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()

	user, err := h.auth.Register(ctx, &RegisterRequest{Username: "alice_1", Email: "Alice@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "alice@example.com" || !user.IsActive || user.IsAdmin {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PasswordHash == "secret1" {
		t.Fatalf("password stored in clear")
	}

	_, err = h.auth.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "wrong"})
	expectKind(t, err, ErrUnauthorized)

	login, err := h.auth.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	identity, err := h.resolver.Resolve(ctx, login.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if identity.UserID != user.ID || identity.Username != "alice_1" {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	if err := h.auth.Logout(ctx, login.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, err = h.resolver.Resolve(ctx, login.Token)
	expectKind(t, err, ErrUnauthorized)
}

func TestRegisterValidationAndConflicts(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()

	_, err := h.auth.Register(ctx, &RegisterRequest{Username: "ab", Email: "a@b.co", Password: "secret1"})
	expectValidation(t, err, "username")

	_, err = h.auth.Register(ctx, &RegisterRequest{Username: "bad-name", Email: "a@b.co", Password: "secret1"})
	expectValidation(t, err, "username")

	_, err = h.auth.Register(ctx, &RegisterRequest{Username: "good", Email: "nope", Password: "123"})
	expectValidation(t, err, "email")
	expectValidation(t, err, "password")

	if _, err := h.auth.Register(ctx, &RegisterRequest{Username: "taken", Email: "one@b.co", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err = h.auth.Register(ctx, &RegisterRequest{Username: "taken", Email: "two@b.co", Password: "secret1"})
	expectKind(t, err, ErrConflict)
	_, err = h.auth.Register(ctx, &RegisterRequest{Username: "other", Email: "one@b.co", Password: "secret1"})
	expectKind(t, err, ErrConflict)
}

func TestRegisterAdminRequiresKey(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()

	_, err := h.auth.RegisterAdmin(ctx, &RegisterAdminRequest{
		RegisterRequest: RegisterRequest{Username: "root", Email: "root@b.co", Password: "secret1"},
		AdminKey:        "guess",
	})
	expectKind(t, err, ErrForbidden)

	admin, err := h.auth.RegisterAdmin(ctx, &RegisterAdminRequest{
		RegisterRequest: RegisterRequest{Username: "root", Email: "root@b.co", Password: "secret1"},
		AdminKey:        "admin-key",
	})
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if !admin.IsAdmin {
		t.Fatalf("expected admin flag")
	}
}

func TestResolveRejectsDeactivatedAndForgedTokens(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")

	token, _, err := h.tokens.Issue(alice.UserID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := h.resolver.Resolve(ctx, token); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if err := h.store.Users().Update(ctx, alice.UserID, map[string]interface{}{"is_active": false}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err = h.resolver.Resolve(ctx, token)
	expectKind(t, err, ErrUnauthorized)

	forger := NewTokenManager("other-secret", time.Hour, h.cache)
	forged, _, _ := forger.Issue(alice.UserID)
	_, err = h.resolver.Resolve(ctx, forged)
	expectKind(t, err, ErrUnauthorized)

	unknown, _, _ := h.tokens.Issue(uuid.New())
	_, err = h.resolver.Resolve(ctx, unknown)
	expectKind(t, err, ErrUnauthorized)

	_, err = h.resolver.Resolve(ctx, "")
	expectKind(t, err, ErrUnauthorized)
}

func TestRevokedTokenExpiresFromDenylist(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")

	token, _, _ := h.tokens.Issue(alice.UserID)
	claims, err := h.tokens.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := h.tokens.Revoke(ctx, claims); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ttl := h.redis.TTL(revokedTokenPrefix + claims.ID)
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected denylist ttl within token lifetime, got %s", ttl)
	}
}
