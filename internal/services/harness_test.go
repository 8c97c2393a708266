package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/feed-system/socialconnect/internal/config"
	"github.com/feed-system/socialconnect/internal/models"
	"github.com/feed-system/socialconnect/internal/reporting"
	"github.com/feed-system/socialconnect/internal/storetest"
	"github.com/feed-system/socialconnect/pkg/cache"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/google/uuid"
)

type harness struct {
	store  *storetest.Store
	redis  *miniredis.Miniredis
	cache  *cache.RedisClient
	events *storetest.Recorder

	tokens        *TokenManager
	resolver      *IdentityResolver
	auth          *AuthService
	users         *UserService
	graph         *SocialGraphService
	posts         *PostService
	engagement    *EngagementService
	notifications *NotificationService
	feed          *FeedService
	admin         *AdminService
}

type fixedStats struct{ stats *reporting.Stats }

func (f fixedStats) Stats(context.Context) (*reporting.Stats, error) { return f.stats, nil }

func newHarness(t *testing.T, pageSize int) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := cache.NewRedisClient(mr.Addr(), "", 0, 4, 0)
	t.Cleanup(func() { _ = rc.Close() })

	log := logger.Discard()
	st := storetest.New()
	events := &storetest.Recorder{}

	h := &harness{store: st, redis: mr, cache: rc, events: events}
	h.tokens = NewTokenManager("test-secret", time.Hour, rc)
	h.resolver = NewIdentityResolver(h.tokens, st.Users(), log)
	h.auth = NewAuthService(st.Users(), h.tokens, events, "admin-key", log)
	h.users = NewUserService(st.Users(), st.Follows(), st.Posts(), events, log)
	h.notifications = NewNotificationService(st.Notifications(), events, log)
	h.graph = NewSocialGraphService(st.Users(), st.Follows(), h.notifications, events, log)
	h.posts = NewPostService(st.Users(), st.Posts(), st.Likes(), events, log)
	h.engagement = NewEngagementService(st.Users(), st.Posts(), st.Likes(), st.Comments(), h.notifications, events, log)
	h.feed = NewFeedService(st.Posts(), st.Likes(), rc, &config.FeedConfig{PageSize: pageSize, CacheTTL: time.Minute}, log)
	h.admin = NewAdminService(fixedStats{&reporting.Stats{TotalUsers: 1}}, st.Users(), st.Posts(), h.posts, h.users, events, log)
	return h
}

// addUser inserts an active account directly, skipping bcrypt.
func (h *harness) addUser(t *testing.T, name string) *Identity {
	t.Helper()
	u := &models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "unused",
		IsActive:     true,
	}
	if err := h.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return &Identity{UserID: u.ID, Username: u.Username}
}

func (h *harness) addPost(t *testing.T, author *Identity, content string) *models.Post {
	t.Helper()
	post, err := h.posts.Create(context.Background(), author, &CreatePostRequest{Content: content})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func (h *harness) notificationsFor(userID uuid.UUID) []*models.Notification {
	var out []*models.Notification
	for _, n := range h.store.AllNotifications() {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func expectKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

func expectValidation(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields[field]; !ok {
		t.Fatalf("expected field %q in %v", field, verr.Fields)
	}
}
