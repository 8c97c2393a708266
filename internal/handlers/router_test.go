package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/feed-system/socialconnect/internal/config"
	"github.com/feed-system/socialconnect/internal/reporting"
	"github.com/feed-system/socialconnect/internal/services"
	"github.com/feed-system/socialconnect/internal/storetest"
	"github.com/feed-system/socialconnect/internal/workers"
	"github.com/feed-system/socialconnect/pkg/cache"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/gin-gonic/gin"
)

type staticStats struct{}

func (staticStats) Stats(context.Context) (*reporting.Stats, error) {
	return &reporting.Stats{TotalUsers: 2, TotalPosts: 1}, nil
}

type api struct {
	t      *testing.T
	router *gin.Engine
	redis  *miniredis.Miniredis
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rc := cache.NewRedisClient(mr.Addr(), "", 0, 4, 0)
	t.Cleanup(func() { _ = rc.Close() })

	log := logger.Discard()
	st := storetest.New()

	feed := services.NewFeedService(st.Posts(), st.Likes(), rc, &config.FeedConfig{PageSize: 2, CacheTTL: time.Minute}, log)
	worker := workers.NewEventWorker(feed, nil, log)
	events := workers.NewDirectPublisher(worker)

	tokens := services.NewTokenManager("test-secret", time.Hour, rc)
	resolver := services.NewIdentityResolver(tokens, st.Users(), log)
	auth := services.NewAuthService(st.Users(), tokens, events, "admin-key", log)
	users := services.NewUserService(st.Users(), st.Follows(), st.Posts(), events, log)
	notifications := services.NewNotificationService(st.Notifications(), events, log)
	graph := services.NewSocialGraphService(st.Users(), st.Follows(), notifications, events, log)
	posts := services.NewPostService(st.Users(), st.Posts(), st.Likes(), events, log)
	engagement := services.NewEngagementService(st.Users(), st.Posts(), st.Likes(), st.Comments(), notifications, events, log)
	admin := services.NewAdminService(staticStats{}, st.Users(), st.Posts(), posts, users, events, log)

	router := NewRouter(RouterConfig{
		Resolver:      resolver,
		Logger:        log,
		Auth:          NewAuthHandler(auth, log),
		Users:         NewUserHandler(users, graph, log),
		Feed:          NewFeedHandler(feed, posts, engagement, log),
		Notifications: NewNotificationHandler(notifications, log),
		Admin:         NewAdminHandler(admin, log),
	})
	return &api{t: t, router: router, redis: mr}
}

func (a *api) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			a.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, out
}

func (a *api) expect(want int, method, path, token string, body interface{}) map[string]interface{} {
	a.t.Helper()
	code, out := a.do(method, path, token, body)
	if code != want {
		a.t.Fatalf("%s %s: expected %d, got %d: %v", method, path, want, code, out)
	}
	return out
}

func (a *api) cachedPages() []string {
	var pages []string
	for _, key := range a.redis.Keys() {
		if strings.HasPrefix(key, "feed:global:") {
			pages = append(pages, key)
		}
	}
	return pages
}

// signup registers and logs in, returning the token and user id.
func (a *api) signup(name string) (string, string) {
	a.t.Helper()
	a.expect(http.StatusCreated, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": name, "email": name + "@example.com", "password": "secret1",
	})
	out := a.expect(http.StatusOK, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": name + "@example.com", "password": "secret1",
	})
	user := out["user"].(map[string]interface{})
	return out["token"].(string), user["id"].(string)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	out := a.expect(http.StatusOK, http.MethodGet, "/health", "", nil)
	if out["status"] != "healthy" {
		t.Fatalf("unexpected health body %v", out)
	}
}

func TestRegisterValidationDetails(t *testing.T) {
	a := newAPI(t)
	out := a.expect(http.StatusBadRequest, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "a!", "email": "not-an-email", "password": "123",
	})
	details, ok := out["details"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected details, got %v", out)
	}
	for _, field := range []string{"username", "email", "password"} {
		if _, ok := details[field]; !ok {
			t.Fatalf("expected %s in details %v", field, details)
		}
	}
}

func TestDuplicateRegistrationIsBadRequest(t *testing.T) {
	a := newAPI(t)
	a.signup("alice")
	a.expect(http.StatusBadRequest, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "other@example.com", "password": "secret1",
	})
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newAPI(t)
	a.expect(http.StatusUnauthorized, http.MethodPost, "/api/posts", "", gin.H{"content": "hi"})
	a.expect(http.StatusUnauthorized, http.MethodGet, "/api/users/me", "", nil)
	a.expect(http.StatusUnauthorized, http.MethodGet, "/api/notifications", "garbage", nil)
}

func TestPostLifecycle(t *testing.T) {
	a := newAPI(t)
	alice, _ := a.signup("alice")
	bob, _ := a.signup("bob")

	created := a.expect(http.StatusCreated, http.MethodPost, "/api/posts", alice, gin.H{"content": "hello world"})
	postID := created["post"].(map[string]interface{})["id"].(string)

	liked := a.expect(http.StatusOK, http.MethodPost, "/api/posts/"+postID+"/like", bob, nil)
	if liked["like_count"].(float64) != 1 {
		t.Fatalf("expected like_count 1, got %v", liked)
	}
	a.expect(http.StatusBadRequest, http.MethodPost, "/api/posts/"+postID+"/like", bob, nil)

	a.expect(http.StatusCreated, http.MethodPost, "/api/posts/"+postID+"/comments", bob, gin.H{"content": "nice"})
	comments := a.expect(http.StatusOK, http.MethodGet, "/api/posts/"+postID+"/comments", "", nil)
	if n := len(comments["comments"].([]interface{})); n != 1 {
		t.Fatalf("expected 1 comment, got %d", n)
	}

	unread := a.expect(http.StatusOK, http.MethodGet, "/api/notifications/unread-count", alice, nil)
	if unread["unread"].(float64) != 2 {
		t.Fatalf("expected like and comment notifications, got %v", unread)
	}

	a.expect(http.StatusForbidden, http.MethodPatch, "/api/posts/"+postID, bob, gin.H{"content": "hijack"})
	a.expect(http.StatusForbidden, http.MethodDelete, "/api/posts/"+postID, bob, nil)
	a.expect(http.StatusOK, http.MethodDelete, "/api/posts/"+postID, alice, nil)
	a.expect(http.StatusNotFound, http.MethodGet, "/api/posts/"+postID, "", nil)

	unread = a.expect(http.StatusOK, http.MethodGet, "/api/notifications/unread-count", alice, nil)
	if unread["unread"].(float64) != 0 {
		t.Fatalf("expected cascade to remove notifications, got %v", unread)
	}
}

func TestGlobalFeedCacheIsInvalidatedByNewPosts(t *testing.T) {
	a := newAPI(t)
	alice, _ := a.signup("alice")

	a.expect(http.StatusCreated, http.MethodPost, "/api/posts", alice, gin.H{"content": "first"})
	page := a.expect(http.StatusOK, http.MethodGet, "/api/posts", "", nil)
	if len(page["posts"].([]interface{})) != 1 {
		t.Fatalf("expected one post, got %v", page)
	}
	if len(a.cachedPages()) != 1 {
		t.Fatalf("expected page 1 to be cached, got keys %v", a.redis.Keys())
	}

	a.expect(http.StatusCreated, http.MethodPost, "/api/posts", alice, gin.H{"content": "second"})
	page = a.expect(http.StatusOK, http.MethodGet, "/api/posts?page=1", "", nil)
	if len(page["posts"].([]interface{})) != 2 || page["has_more"].(bool) {
		t.Fatalf("expected two posts and no further page, got %v", page)
	}
}

func TestFollowAndPersonalizedFeed(t *testing.T) {
	a := newAPI(t)
	alice, aliceID := a.signup("alice")
	bob, bobID := a.signup("bob")
	carol, _ := a.signup("carol")

	a.expect(http.StatusCreated, http.MethodPost, "/api/posts", bob, gin.H{"content": "from bob"})
	a.expect(http.StatusCreated, http.MethodPost, "/api/posts", carol, gin.H{"content": "from carol"})

	a.expect(http.StatusBadRequest, http.MethodPost, "/api/users/"+aliceID+"/follow", alice, nil)
	a.expect(http.StatusOK, http.MethodPost, "/api/users/"+bobID+"/follow", alice, nil)
	a.expect(http.StatusBadRequest, http.MethodPost, "/api/users/"+bobID+"/follow", alice, nil)

	feed := a.expect(http.StatusOK, http.MethodGet, "/api/feed", alice, nil)
	posts := feed["posts"].([]interface{})
	if len(posts) != 1 || posts[0].(map[string]interface{})["content"] != "from bob" {
		t.Fatalf("unexpected personalized feed %v", posts)
	}

	followers := a.expect(http.StatusOK, http.MethodGet, "/api/users/"+bobID+"/followers", "", nil)
	if len(followers["followers"].([]interface{})) != 1 {
		t.Fatalf("expected one follower, got %v", followers)
	}

	profile := a.expect(http.StatusOK, http.MethodGet, "/api/users/"+bobID, alice, nil)
	user := profile["user"].(map[string]interface{})
	if user["is_following"] != true || user["followers_count"].(float64) != 1 {
		t.Fatalf("unexpected profile %v", user)
	}
	if _, ok := user["email"]; ok {
		t.Fatalf("email must be hidden from other users: %v", user)
	}

	a.expect(http.StatusOK, http.MethodDelete, "/api/users/"+bobID+"/follow", alice, nil)
	a.expect(http.StatusOK, http.MethodDelete, "/api/users/"+bobID+"/follow", alice, nil)
	feed = a.expect(http.StatusOK, http.MethodGet, "/api/feed", alice, nil)
	if len(feed["posts"].([]interface{})) != 0 {
		t.Fatalf("expected empty feed after unfollow, got %v", feed)
	}
}

func TestNotificationsMarkRead(t *testing.T) {
	a := newAPI(t)
	alice, aliceID := a.signup("alice")
	bob, _ := a.signup("bob")

	a.expect(http.StatusOK, http.MethodPost, "/api/users/"+aliceID+"/follow", bob, nil)

	list := a.expect(http.StatusOK, http.MethodGet, "/api/notifications", alice, nil)
	items := list["notifications"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected one notification, got %v", list)
	}
	id := items[0].(map[string]interface{})["id"].(string)

	a.expect(http.StatusNotFound, http.MethodPost, "/api/notifications/"+id+"/read", bob, nil)
	a.expect(http.StatusOK, http.MethodPost, "/api/notifications/"+id+"/read", alice, nil)
	a.expect(http.StatusNotFound, http.MethodPost, "/api/notifications/not-a-uuid/read", alice, nil)

	out := a.expect(http.StatusOK, http.MethodPatch, "/api/notifications", alice, nil)
	if out["updated"].(float64) != 0 {
		t.Fatalf("expected nothing left to mark, got %v", out)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	a := newAPI(t)
	alice, _ := a.signup("alice")

	a.expect(http.StatusOK, http.MethodGet, "/api/users/me", alice, nil)
	a.expect(http.StatusOK, http.MethodPost, "/api/auth/logout", alice, nil)
	a.expect(http.StatusUnauthorized, http.MethodGet, "/api/users/me", alice, nil)
}

func TestAdminRoutes(t *testing.T) {
	a := newAPI(t)
	member, memberID := a.signup("member")

	a.expect(http.StatusForbidden, http.MethodPost, "/api/auth/register-admin", "", gin.H{
		"username": "root", "email": "root@example.com", "password": "secret1", "admin_key": "wrong",
	})
	a.expect(http.StatusCreated, http.MethodPost, "/api/auth/register-admin", "", gin.H{
		"username": "root", "email": "root@example.com", "password": "secret1", "admin_key": "admin-key",
	})
	login := a.expect(http.StatusOK, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "root@example.com", "password": "secret1",
	})
	root := login["token"].(string)
	rootID := login["user"].(map[string]interface{})["id"].(string)

	a.expect(http.StatusForbidden, http.MethodGet, "/api/admin/stats", member, nil)
	stats := a.expect(http.StatusOK, http.MethodGet, "/api/admin/stats", root, nil)
	if stats["total_users"].(float64) != 2 {
		t.Fatalf("unexpected stats %v", stats)
	}

	detail := a.expect(http.StatusOK, http.MethodGet, "/api/admin/users/"+memberID, root, nil)
	if detail["user"].(map[string]interface{})["email"] != "member@example.com" {
		t.Fatalf("admins should see email: %v", detail)
	}

	a.expect(http.StatusBadRequest, http.MethodPost, "/api/admin/users/"+rootID+"/deactivate", root, nil)
	out := a.expect(http.StatusOK, http.MethodPost, "/api/admin/users/"+memberID+"/deactivate", root, nil)
	if out["message"] != "User deactivated successfully" {
		t.Fatalf("unexpected toggle response %v", out)
	}
	a.expect(http.StatusUnauthorized, http.MethodGet, "/api/users/me", member, nil)

	created := a.expect(http.StatusCreated, http.MethodPost, "/api/posts", root, gin.H{"content": "admin post"})
	postID := created["post"].(map[string]interface{})["id"].(string)
	list := a.expect(http.StatusOK, http.MethodGet, "/api/admin/posts", root, nil)
	if len(list["posts"].([]interface{})) != 1 {
		t.Fatalf("expected one post, got %v", list)
	}
	a.expect(http.StatusOK, http.MethodDelete, "/api/admin/posts/"+postID, root, nil)
	a.expect(http.StatusNotFound, http.MethodGet, "/api/posts/"+postID, "", nil)
}

func TestRenameRefreshesCachedAuthor(t *testing.T) {
	a := newAPI(t)
	alice, _ := a.signup("alice")
	a.expect(http.StatusCreated, http.MethodPost, "/api/posts", alice, gin.H{"content": "hello"})

	a.expect(http.StatusOK, http.MethodGet, "/api/posts", "", nil)
	a.expect(http.StatusOK, http.MethodPatch, "/api/users/me", alice, gin.H{"username": "alicia"})

	page := a.expect(http.StatusOK, http.MethodGet, "/api/posts", "", nil)
	author := page["posts"].([]interface{})[0].(map[string]interface{})["user"].(map[string]interface{})
	if author["username"] != "alicia" {
		t.Fatalf("expected renamed author in global feed, got %v", author["username"])
	}
}

func TestLikeStateIsReportedPerViewer(t *testing.T) {
	a := newAPI(t)
	alice, _ := a.signup("alice")
	bob, _ := a.signup("bob")

	created := a.expect(http.StatusCreated, http.MethodPost, "/api/posts", alice, gin.H{"content": "like me"})
	postID := created["post"].(map[string]interface{})["id"].(string)
	a.expect(http.StatusOK, http.MethodPost, "/api/posts/"+postID+"/like", bob, nil)

	isLiked := func(page map[string]interface{}) interface{} {
		return page["posts"].([]interface{})[0].(map[string]interface{})["is_liked"]
	}

	// The global page is shared through the cache; the flag must not leak
	// from one viewer to another.
	if got := isLiked(a.expect(http.StatusOK, http.MethodGet, "/api/posts", bob, nil)); got != true {
		t.Fatalf("expected bob to see is_liked=true, got %v", got)
	}
	if got := isLiked(a.expect(http.StatusOK, http.MethodGet, "/api/posts", alice, nil)); got != false {
		t.Fatalf("expected alice to see is_liked=false, got %v", got)
	}
	if got := isLiked(a.expect(http.StatusOK, http.MethodGet, "/api/posts", "", nil)); got != false {
		t.Fatalf("expected anonymous is_liked=false, got %v", got)
	}

	detail := a.expect(http.StatusOK, http.MethodGet, "/api/posts/"+postID, bob, nil)
	if detail["post"].(map[string]interface{})["is_liked"] != true {
		t.Fatalf("expected is_liked on post detail, got %v", detail)
	}

	a.expect(http.StatusOK, http.MethodDelete, "/api/posts/"+postID+"/like", bob, nil)
	if got := isLiked(a.expect(http.StatusOK, http.MethodGet, "/api/posts", bob, nil)); got != false {
		t.Fatalf("expected is_liked=false after unlike, got %v", got)
	}
}

func TestPersonalizedFeedReportsLikeState(t *testing.T) {
	a := newAPI(t)
	alice, _ := a.signup("alice")

	created := a.expect(http.StatusCreated, http.MethodPost, "/api/posts", alice, gin.H{"content": "own post"})
	postID := created["post"].(map[string]interface{})["id"].(string)
	a.expect(http.StatusOK, http.MethodPost, "/api/posts/"+postID+"/like", alice, nil)

	feed := a.expect(http.StatusOK, http.MethodGet, "/api/feed", alice, nil)
	if feed["posts"].([]interface{})[0].(map[string]interface{})["is_liked"] != true {
		t.Fatalf("expected is_liked in personalized feed, got %v", feed)
	}
}
