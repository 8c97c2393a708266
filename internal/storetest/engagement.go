package storetest

import (
	"context"
	"sort"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/google/uuid"
)

type Likes struct{ s *Store }

func (r *Likes) Create(_ context.Context, like *models.Like) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := likeKey{like.UserID, like.PostID}
	if _, ok := r.s.likes[key]; ok {
		return errDuplicate
	}
	like.CreatedAt = r.s.tick()
	c := *like
	r.s.likes[key] = &c
	if p, ok := r.s.posts[like.PostID]; ok {
		p.LikeCount++
	}
	return nil
}

func (r *Likes) Delete(_ context.Context, userID, postID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := likeKey{userID, postID}
	if _, ok := r.s.likes[key]; !ok {
		return false, nil
	}
	delete(r.s.likes, key)
	if p, ok := r.s.posts[postID]; ok {
		p.LikeCount = decrement(p.LikeCount)
	}
	return true, nil
}

func (r *Likes) Exists(_ context.Context, userID, postID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.likes[likeKey{userID, postID}]
	return ok, nil
}

func (r *Likes) LikedAmong(_ context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make(map[uuid.UUID]bool, len(postIDs))
	for _, id := range postIDs {
		if _, ok := r.s.likes[likeKey{userID, id}]; ok {
			result[id] = true
		}
	}
	return result, nil
}

type Comments struct{ s *Store }

func (r *Comments) Create(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	now := r.s.tick()
	comment.CreatedAt, comment.UpdatedAt = now, now
	c := *comment
	c.User = nil
	r.s.comments[comment.ID] = &c
	if p, ok := r.s.posts[comment.PostID]; ok {
		p.CommentCount++
	}
	return nil
}

func (r *Comments) ListByPost(_ context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Comment
	for _, c := range r.s.comments {
		if c.PostID == postID {
			cp := *c
			cp.User = r.s.summary(c.UserID)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return earlier(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

type Notifications struct{ s *Store }

func (r *Notifications) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("notifications.create"); err != nil {
		return err
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = r.s.tick()
	c := *n
	c.RelatedUser = nil
	r.s.notifications[n.ID] = &c
	return nil
}

func (r *Notifications) ListByUser(_ context.Context, userID uuid.UUID, offset, limit int) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			c := *n
			c.RelatedUser = r.s.summary(n.RelatedUserID)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return earlier(out[j].CreatedAt, out[i].CreatedAt, out[j].ID, out[i].ID)
	})
	return pageOf(out, offset, limit), nil
}

func (r *Notifications) MarkRead(_ context.Context, userID, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.IsRead = true
	return true, nil
}

func (r *Notifications) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var changed int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			changed++
		}
	}
	return changed, nil
}

func (r *Notifications) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, item := range r.s.notifications {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}
