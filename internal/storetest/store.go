// Package storetest provides in-memory implementations of the service store
// interfaces. They mirror the repository semantics: unique pairs, counters
// updated together with the owning row, and explicit post delete cascades.
package storetest

import (
	"bytes"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/feed-system/socialconnect/internal/repository"
	"github.com/google/uuid"
)

type likeKey struct{ user, post uuid.UUID }

type followKey struct{ follower, following uuid.UUID }

// Store holds every table. The typed views returned by its accessors share it.
type Store struct {
	mu            sync.Mutex
	clock         time.Time
	users         map[uuid.UUID]*models.User
	posts         map[uuid.UUID]*models.Post
	comments      map[uuid.UUID]*models.Comment
	likes         map[likeKey]*models.Like
	follows       map[followKey]*models.Follow
	notifications map[uuid.UUID]*models.Notification
	failures      map[string]error
}

func New() *Store {
	return &Store{
		clock:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:         map[uuid.UUID]*models.User{},
		posts:         map[uuid.UUID]*models.Post{},
		comments:      map[uuid.UUID]*models.Comment{},
		likes:         map[likeKey]*models.Like{},
		follows:       map[followKey]*models.Follow{},
		notifications: map[uuid.UUID]*models.Notification{},
		failures:      map[string]error{},
	}
}

// FailNext makes the next call of op return err. Ops are named
// "<table>.<method>", e.g. "notifications.create".
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	err, ok := s.failures[op]
	if ok {
		delete(s.failures, op)
	}
	return err
}

func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) Users() *Users                 { return &Users{s} }
func (s *Store) Follows() *Follows             { return &Follows{s} }
func (s *Store) Posts() *Posts                 { return &Posts{s} }
func (s *Store) Likes() *Likes                 { return &Likes{s} }
func (s *Store) Comments() *Comments           { return &Comments{s} }
func (s *Store) Notifications() *Notifications { return &Notifications{s} }

// Counts of raw rows, for assertions.

func (s *Store) LikeRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.likes)
}

func (s *Store) CommentRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comments)
}

func (s *Store) FollowRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.follows)
}

// AllNotifications returns every notification regardless of owner.
func (s *Store) AllNotifications() []*models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		c := *n
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) summary(id uuid.UUID) *models.UserSummary {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return u.Summary()
}

func (s *Store) copyPost(p *models.Post) *models.Post {
	c := *p
	if p.ImageURL != nil {
		img := *p.ImageURL
		c.ImageURL = &img
	}
	c.User = s.summary(p.UserID)
	return &c
}

// earlier orders by timestamp, then by ID bytes, the way postgres orders
// "created_at, id".
func earlier(at, bt time.Time, a, b uuid.UUID) bool {
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return bytes.Compare(a[:], b[:]) < 0
}

func pageOf[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) || limit <= 0 {
		end = len(items)
	}
	return items[offset:end]
}

func decrement(v int64) int64 {
	if v > 0 {
		return v - 1
	}
	return 0
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

var errDuplicate = repository.ErrDuplicate
