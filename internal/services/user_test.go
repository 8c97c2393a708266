package services

import (
	"context"
	"strings"
	"testing"
)

func TestProfileHidesEmailFromOthers(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	bob := h.addUser(t, "bob")

	seen, err := h.users.GetProfile(ctx, &bob.UserID, alice.UserID.String())
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if seen.Email != "" {
		t.Fatalf("email leaked to another user")
	}

	own, err := h.users.GetProfile(ctx, &alice.UserID, alice.UserID.String())
	if err != nil {
		t.Fatalf("own profile: %v", err)
	}
	if own.Email != "alice@example.com" {
		t.Fatalf("expected own email, got %q", own.Email)
	}

	_, err = h.users.GetProfile(ctx, nil, "garbage")
	expectKind(t, err, ErrNotFound)
}

func TestUpdateMe(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	h.addUser(t, "bob")

	bio := "<i>hello</i> world"
	site := "https://alice.dev"
	private := true
	user, err := h.users.UpdateMe(ctx, alice.UserID, &UpdateProfileRequest{Bio: &bio, Website: &site, IsPrivate: &private})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if user.Bio != "hello world" || user.Website != site || !user.IsPrivate {
		t.Fatalf("unexpected user: %+v", user)
	}

	taken := "bob"
	_, err = h.users.UpdateMe(ctx, alice.UserID, &UpdateProfileRequest{Username: &taken})
	expectKind(t, err, ErrConflict)

	long := strings.Repeat("b", 161)
	_, err = h.users.UpdateMe(ctx, alice.UserID, &UpdateProfileRequest{Bio: &long})
	expectValidation(t, err, "bio")

	relative := "/me"
	_, err = h.users.UpdateMe(ctx, alice.UserID, &UpdateProfileRequest{Website: &relative})
	expectValidation(t, err, "website")

	empty := " "
	_, err = h.users.UpdateMe(ctx, alice.UserID, &UpdateProfileRequest{Username: &empty})
	expectValidation(t, err, "username")
}

func TestSearchAndDiscover(t *testing.T) {
	h := newHarness(t, 20)
	ctx := context.Background()
	alice := h.addUser(t, "alice")
	bob := h.addUser(t, "bobby")
	h.addUser(t, "bobcat")

	if err := h.graph.Follow(ctx, alice, bob.UserID.String()); err != nil {
		t.Fatalf("follow: %v", err)
	}

	results, err := h.users.Search(ctx, &alice.UserID, "BOB")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 || results[0].Username != "bobby" || !results[0].IsFollowing || results[1].IsFollowing {
		t.Fatalf("unexpected search results: %+v", results)
	}

	empty, err := h.users.Search(ctx, nil, "  ")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty search, got %d err=%v", len(empty), err)
	}

	suggestions, err := h.users.Discover(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Username != "bobcat" {
		t.Fatalf("unexpected suggestions: %+v", suggestions)
	}
}
