package storetest

import (
	"context"
	"sort"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/google/uuid"
)

type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.create"); err != nil {
		return err
	}
	for _, u := range r.s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return errDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.s.tick()
	user.CreatedAt, user.UpdatedAt = now, now
	c := *user
	r.s.users[user.ID] = &c
	return nil
}

func (r *Users) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("users.get"); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *Users) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	if name, ok := updates["username"].(string); ok {
		for _, other := range r.s.users {
			if other.ID != id && other.Username == name {
				return errDuplicate
			}
		}
	}
	for k, v := range updates {
		switch k {
		case "username":
			u.Username = v.(string)
		case "bio":
			u.Bio = v.(string)
		case "website":
			u.Website = v.(string)
		case "location":
			u.Location = v.(string)
		case "avatar_url":
			u.AvatarURL = v.(string)
		case "is_private":
			u.IsPrivate = v.(bool)
		case "is_active":
			u.IsActive = v.(bool)
		case "is_admin":
			u.IsAdmin = v.(bool)
		}
	}
	u.UpdatedAt = r.s.tick()
	return nil
}

func (r *Users) List(_ context.Context, offset, limit int) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		c := *u
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return pageOf(all, offset, limit), nil
}

func (r *Users) Search(_ context.Context, query string, limit int) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.User
	for _, u := range r.s.users {
		if u.IsActive && (containsFold(u.Username, query) || containsFold(u.Bio, query)) {
			c := *u
			out = append(out, &c)
		}
	}
	sortByFollowers(out)
	return pageOf(out, 0, limit), nil
}

func (r *Users) Discover(_ context.Context, userID uuid.UUID, limit int) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.User
	for _, u := range r.s.users {
		if !u.IsActive || u.ID == userID {
			continue
		}
		if _, followed := r.s.follows[followKey{userID, u.ID}]; followed {
			continue
		}
		c := *u
		out = append(out, &c)
	}
	sortByFollowers(out)
	return pageOf(out, 0, limit), nil
}

func sortByFollowers(users []*models.User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].FollowersCount != users[j].FollowersCount {
			return users[i].FollowersCount > users[j].FollowersCount
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
}
