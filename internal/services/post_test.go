package services

import (
	"context"
	"strings"
	"testing"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/feed-system/socialconnect/pkg/queue"
)

func TestCreatePostDefaultsAndValidation(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")

	blank := "   "
	post, err := h.posts.Create(ctx, alice, &CreatePostRequest{Content: "hi", ImageURL: &blank})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.Category != models.CategoryGeneral || post.ImageURL != nil {
		t.Fatalf("unexpected defaults: category=%s image=%v", post.Category, post.ImageURL)
	}
	if post.User == nil || post.User.Username != "alice" {
		t.Fatalf("expected author projection")
	}

	_, err = h.posts.Create(ctx, alice, &CreatePostRequest{Content: strings.Repeat("é", 281)})
	expectValidation(t, err, "content")

	bad := "not a url"
	_, err = h.posts.Create(ctx, alice, &CreatePostRequest{Content: "x", ImageURL: &bad})
	expectValidation(t, err, "image_url")

	_, err = h.posts.Create(ctx, alice, &CreatePostRequest{Content: "x", Category: "rant"})
	expectValidation(t, err, "category")

	// exactly 280 characters is accepted
	if _, err := h.posts.Create(ctx, alice, &CreatePostRequest{Content: strings.Repeat("é", 280)}); err != nil {
		t.Fatalf("280 chars: %v", err)
	}
}

func TestUpdatePostOnlyByAuthor(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	bob := h.addUser(t, "bob")
	post := h.addPost(t, alice, "draft")

	content := "edited"
	_, err := h.posts.Update(ctx, bob, post.ID.String(), &UpdatePostRequest{Content: &content})
	expectKind(t, err, ErrForbidden)

	category := models.CategoryQuestion
	updated, err := h.posts.Update(ctx, alice, post.ID.String(), &UpdatePostRequest{Content: &content, Category: &category})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Content != "edited" || updated.Category != models.CategoryQuestion {
		t.Fatalf("unexpected post: %+v", updated)
	}
}

func TestDeletePostCascades(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	bob := h.addUser(t, "bob")
	post := h.addPost(t, alice, "hello")

	if _, err := h.engagement.Like(ctx, bob, post.ID.String()); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := h.engagement.AddComment(ctx, bob, post.ID.String(), &CreateCommentRequest{Content: "nice"}); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if err := h.graph.Follow(ctx, bob, alice.UserID.String()); err != nil {
		t.Fatalf("follow: %v", err)
	}

	expectKind(t, h.posts.Delete(ctx, bob, post.ID.String()), ErrForbidden)

	if err := h.posts.Delete(ctx, alice, post.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := h.posts.Get(ctx, post.ID.String())
	expectKind(t, err, ErrNotFound)
	if h.store.LikeRows() != 0 || h.store.CommentRows() != 0 {
		t.Fatalf("expected likes and comments removed")
	}
	notes := h.notificationsFor(alice.UserID)
	if len(notes) != 1 || notes[0].Type != models.NotificationFollow {
		t.Fatalf("expected only the follow notification to remain, got %+v", notes)
	}

	me, err := h.users.Me(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.PostsCount != 0 {
		t.Fatalf("expected posts_count 0, got %d", me.PostsCount)
	}

	types := h.events.Types()
	if types[len(types)-1] != queue.EventPostDeleted {
		t.Fatalf("expected post_deleted event last, got %v", types)
	}
}

func TestAdminMayDeleteAnyPost(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	mod := h.addUser(t, "mod")
	mod.IsAdmin = true
	post := h.addPost(t, alice, "spam")

	if err := h.admin.DeletePost(ctx, mod, post.ID.String()); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	expectKind(t, h.admin.DeletePost(ctx, mod, post.ID.String()), ErrNotFound)
}
