package storetest

import (
	"context"
	"sort"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/google/uuid"
)

type Posts struct{ s *Store }

func (r *Posts) Create(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("posts.create"); err != nil {
		return err
	}
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	now := r.s.tick()
	post.CreatedAt, post.UpdatedAt = now, now
	stored := *post
	stored.User = nil
	r.s.posts[post.ID] = &stored
	if u, ok := r.s.users[post.UserID]; ok {
		u.PostsCount++
	}
	return nil
}

func (r *Posts) GetByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, nil
	}
	return r.s.copyPost(p), nil
}

func (r *Posts) Update(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[post.ID]
	if !ok {
		return nil
	}
	p.Content = post.Content
	p.ImageURL = post.ImageURL
	p.Category = post.Category
	p.UpdatedAt = r.s.tick()
	return nil
}

func (r *Posts) DeleteCascade(_ context.Context, post *models.Post) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("posts.delete"); err != nil {
		return false, err
	}
	for id, c := range r.s.comments {
		if c.PostID == post.ID {
			delete(r.s.comments, id)
		}
	}
	for k := range r.s.likes {
		if k.post == post.ID {
			delete(r.s.likes, k)
		}
	}
	for id, n := range r.s.notifications {
		if n.RelatedPostID != nil && *n.RelatedPostID == post.ID {
			delete(r.s.notifications, id)
		}
	}
	stored, ok := r.s.posts[post.ID]
	if !ok {
		return false, nil
	}
	delete(r.s.posts, post.ID)
	if u, ok := r.s.users[stored.UserID]; ok {
		u.PostsCount = decrement(u.PostsCount)
	}
	return true, nil
}

func (r *Posts) ListGlobal(_ context.Context, offset, limit int) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(*models.Post) bool { return true }, offset, limit), nil
}

func (r *Posts) ListPersonalized(_ context.Context, userID uuid.UUID, offset, limit int) ([]*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(p *models.Post) bool {
		if p.UserID == userID {
			return true
		}
		_, followed := r.s.follows[followKey{userID, p.UserID}]
		return followed
	}, offset, limit), nil
}

func (r *Posts) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.posts {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *Posts) list(keep func(*models.Post) bool, offset, limit int) []*models.Post {
	var out []*models.Post
	for _, p := range r.s.posts {
		if keep(p) {
			out = append(out, r.s.copyPost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return earlier(out[j].CreatedAt, out[i].CreatedAt, out[j].ID, out[i].ID)
	})
	return pageOf(out, offset, limit)
}
