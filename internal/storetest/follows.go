package storetest

import (
	"context"
	"sort"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/google/uuid"
)

type Follows struct{ s *Store }

func (r *Follows) Create(_ context.Context, follow *models.Follow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := followKey{follow.FollowerID, follow.FollowingID}
	if _, ok := r.s.follows[key]; ok {
		return errDuplicate
	}
	follow.CreatedAt = r.s.tick()
	c := *follow
	r.s.follows[key] = &c
	if u, ok := r.s.users[follow.FollowingID]; ok {
		u.FollowersCount++
	}
	if u, ok := r.s.users[follow.FollowerID]; ok {
		u.FollowingCount++
	}
	return nil
}

func (r *Follows) Delete(_ context.Context, followerID, followingID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := followKey{followerID, followingID}
	if _, ok := r.s.follows[key]; !ok {
		return false, nil
	}
	delete(r.s.follows, key)
	if u, ok := r.s.users[followingID]; ok {
		u.FollowersCount = decrement(u.FollowersCount)
	}
	if u, ok := r.s.users[followerID]; ok {
		u.FollowingCount = decrement(u.FollowingCount)
	}
	return true, nil
}

func (r *Follows) Exists(_ context.Context, followerID, followingID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.follows[followKey{followerID, followingID}]
	return ok, nil
}

func (r *Follows) ListFollowers(_ context.Context, userID uuid.UUID, offset, limit int) ([]*models.Follow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Follow
	for k, f := range r.s.follows {
		if k.following == userID {
			c := *f
			c.Follower = r.s.summary(k.follower)
			out = append(out, &c)
		}
	}
	sortFollows(out, func(f *models.Follow) uuid.UUID { return f.FollowerID })
	return pageOf(out, offset, limit), nil
}

func (r *Follows) ListFollowing(_ context.Context, userID uuid.UUID, offset, limit int) ([]*models.Follow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Follow
	for k, f := range r.s.follows {
		if k.follower == userID {
			c := *f
			c.Following = r.s.summary(k.following)
			out = append(out, &c)
		}
	}
	sortFollows(out, func(f *models.Follow) uuid.UUID { return f.FollowingID })
	return pageOf(out, offset, limit), nil
}

func (r *Follows) FollowingAmong(_ context.Context, followerID uuid.UUID, candidates []uuid.UUID) (map[uuid.UUID]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uuid.UUID]bool, len(candidates))
	for _, id := range candidates {
		if _, ok := r.s.follows[followKey{followerID, id}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (r *Follows) CountFollowers(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k := range r.s.follows {
		if k.following == userID {
			n++
		}
	}
	return n, nil
}

func (r *Follows) CountFollowing(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k := range r.s.follows {
		if k.follower == userID {
			n++
		}
	}
	return n, nil
}

// sortFollows orders edges newest first, breaking ties on the other end of
// the edge.
func sortFollows(follows []*models.Follow, other func(*models.Follow) uuid.UUID) {
	sort.Slice(follows, func(i, j int) bool {
		a, b := follows[i], follows[j]
		return earlier(b.CreatedAt, a.CreatedAt, other(b), other(a))
	})
}
