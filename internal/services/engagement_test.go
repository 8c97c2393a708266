package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/feed-system/socialconnect/internal/models"
)

func TestLikeTwiceConflictsAndKeepsCount(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	bob := h.addUser(t, "bob")
	post := h.addPost(t, alice, "hello")

	liked, err := h.engagement.Like(ctx, bob, post.ID.String())
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if liked.LikeCount != 1 {
		t.Fatalf("expected like_count 1, got %d", liked.LikeCount)
	}

	_, err = h.engagement.Like(ctx, bob, post.ID.String())
	expectKind(t, err, ErrConflict)

	got, _ := h.posts.Get(ctx, post.ID.String())
	if got.LikeCount != 1 {
		t.Fatalf("expected like_count to stay 1, got %d", got.LikeCount)
	}
	if h.store.LikeRows() != 1 {
		t.Fatalf("expected a single like row, got %d", h.store.LikeRows())
	}
}

func TestLikeUnlikeRestoresCountAndKeepsNotification(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	bob := h.addUser(t, "bob")
	post := h.addPost(t, alice, "hello")

	if _, err := h.engagement.Like(ctx, bob, post.ID.String()); err != nil {
		t.Fatalf("like: %v", err)
	}
	notes := h.notificationsFor(alice.UserID)
	if len(notes) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notes))
	}
	n := notes[0]
	if n.Type != models.NotificationLike || n.RelatedUserID != bob.UserID || n.Message != "bob liked your post" {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if n.RelatedPostID == nil || *n.RelatedPostID != post.ID {
		t.Fatalf("expected related post %s", post.ID)
	}

	unliked, err := h.engagement.Unlike(ctx, bob.UserID, post.ID.String())
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if unliked.LikeCount != 0 {
		t.Fatalf("expected like_count 0, got %d", unliked.LikeCount)
	}
	if len(h.notificationsFor(alice.UserID)) != 1 {
		t.Fatalf("expected like notification to survive unlike")
	}

	// unliking again is a no-op
	again, err := h.engagement.Unlike(ctx, bob.UserID, post.ID.String())
	if err != nil || again.LikeCount != 0 {
		t.Fatalf("second unlike: count=%v err=%v", again, err)
	}
}

func TestNoSelfNotification(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	post := h.addPost(t, alice, "mine")

	if _, err := h.engagement.Like(ctx, alice, post.ID.String()); err != nil {
		t.Fatalf("self like: %v", err)
	}
	if _, err := h.engagement.AddComment(ctx, alice, post.ID.String(), &CreateCommentRequest{Content: "me again"}); err != nil {
		t.Fatalf("self comment: %v", err)
	}
	expectKind(t, h.graph.Follow(ctx, alice, alice.UserID.String()), ErrInvalidOperation)

	h.notifications.Notify(ctx, NotifyParams{
		TargetID: alice.UserID,
		ActorID:  alice.UserID,
		Type:     models.NotificationLike,
		Message:  "direct",
	})

	if notes := h.notificationsFor(alice.UserID); len(notes) != 0 {
		t.Fatalf("expected no self notifications, got %d", len(notes))
	}
}

func TestLikeSucceedsWhenNotificationWriteFails(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	bob := h.addUser(t, "bob")
	post := h.addPost(t, alice, "hello")

	h.store.FailNext("notifications.create", errors.New("disk full"))
	liked, err := h.engagement.Like(ctx, bob, post.ID.String())
	if err != nil {
		t.Fatalf("expected like to succeed, got %v", err)
	}
	if liked.LikeCount != 1 {
		t.Fatalf("expected like_count 1, got %d", liked.LikeCount)
	}
	if len(h.notificationsFor(alice.UserID)) != 0 {
		t.Fatalf("expected notification to be dropped")
	}
}

func TestLikeMissingPost(t *testing.T) {
	h := newHarness(t, 20)
	bob := h.addUser(t, "bob")

	_, err := h.engagement.Like(context.Background(), bob, "5b0f5c8e-4a47-4a71-9f3b-7a2e5c0d9e11")
	expectKind(t, err, ErrNotFound)

	_, err = h.engagement.Like(context.Background(), bob, "not-a-uuid")
	expectKind(t, err, ErrNotFound)
}

func TestCommentsNotifyOwnerAndListOldestFirst(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	bob := h.addUser(t, "bob")
	post := h.addPost(t, alice, "hello")

	for _, text := range []string{"first", "second"} {
		if _, err := h.engagement.AddComment(ctx, bob, post.ID.String(), &CreateCommentRequest{Content: text}); err != nil {
			t.Fatalf("comment: %v", err)
		}
	}

	comments, err := h.engagement.ListComments(ctx, post.ID.String())
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 2 || comments[0].Content != "first" || comments[1].Content != "second" {
		t.Fatalf("unexpected order: %+v", comments)
	}
	if comments[0].User == nil || comments[0].User.Username != "bob" {
		t.Fatalf("expected commenter projection, got %+v", comments[0].User)
	}

	got, _ := h.posts.Get(ctx, post.ID.String())
	if got.CommentCount != 2 {
		t.Fatalf("expected comment_count 2, got %d", got.CommentCount)
	}

	notes := h.notificationsFor(alice.UserID)
	if len(notes) != 2 || notes[0].Type != models.NotificationComment {
		t.Fatalf("expected 2 comment notifications, got %+v", notes)
	}
}

func TestCommentValidation(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	post := h.addPost(t, alice, "hello")

	_, err := h.engagement.AddComment(ctx, alice, post.ID.String(), &CreateCommentRequest{Content: strings.Repeat("x", 501)})
	expectValidation(t, err, "content")

	_, err = h.engagement.AddComment(ctx, alice, post.ID.String(), &CreateCommentRequest{Content: "<b></b>"})
	expectValidation(t, err, "content")

	if h.store.CommentRows() != 0 {
		t.Fatalf("expected no comment rows after validation failures")
	}

	c, err := h.engagement.AddComment(ctx, alice, post.ID.String(), &CreateCommentRequest{Content: "<script>x</script>fine &amp; dandy"})
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if c.Content != "fine & dandy" {
		t.Fatalf("expected sanitized content, got %q", c.Content)
	}
}
