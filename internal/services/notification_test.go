package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestNotificationInboxReadState(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	bob := h.addUser(t, "bob")
	carol := h.addUser(t, "carol")
	post := h.addPost(t, alice, "hello")

	if _, err := h.engagement.Like(ctx, bob, post.ID.String()); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := h.graph.Follow(ctx, carol, alice.UserID.String()); err != nil {
		t.Fatalf("follow: %v", err)
	}

	unread, _ := h.notifications.UnreadCount(ctx, alice.UserID)
	if unread != 2 {
		t.Fatalf("expected 2 unread, got %d", unread)
	}

	page, err := h.notifications.List(ctx, alice.UserID, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Notifications) != 2 || page.HasMore {
		t.Fatalf("unexpected page: %+v", page)
	}
	newest := page.Notifications[0]
	if newest.RelatedUser == nil || newest.RelatedUser.Username != "carol" {
		t.Fatalf("expected newest first with actor projection, got %+v", newest)
	}

	// another user cannot mark alice's notification
	expectKind(t, h.notifications.MarkRead(ctx, bob.UserID, newest.ID.String()), ErrNotFound)
	expectKind(t, h.notifications.MarkRead(ctx, alice.UserID, uuid.NewString()), ErrNotFound)

	if err := h.notifications.MarkRead(ctx, alice.UserID, newest.ID.String()); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, _ = h.notifications.UnreadCount(ctx, alice.UserID)
	if unread != 1 {
		t.Fatalf("expected 1 unread, got %d", unread)
	}

	changed, err := h.notifications.MarkAllRead(ctx, alice.UserID)
	if err != nil || changed != 1 {
		t.Fatalf("mark all: changed=%d err=%v", changed, err)
	}
	unread, _ = h.notifications.UnreadCount(ctx, alice.UserID)
	if unread != 0 {
		t.Fatalf("expected 0 unread, got %d", unread)
	}
}
