package services

import (
	"context"
	"time"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/feed-system/socialconnect/pkg/queue"
	"github.com/google/uuid"
)

// The store interfaces are satisfied by the gorm repositories in
// internal/repository and by the in-memory stores in internal/storetest.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	List(ctx context.Context, offset, limit int) ([]*models.User, error)
	Search(ctx context.Context, query string, limit int) ([]*models.User, error)
	Discover(ctx context.Context, userID uuid.UUID, limit int) ([]*models.User, error)
}

type FollowStore interface {
	Create(ctx context.Context, follow *models.Follow) error
	Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Exists(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	ListFollowers(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.Follow, error)
	ListFollowing(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.Follow, error)
	FollowingAmong(ctx context.Context, followerID uuid.UUID, candidates []uuid.UUID) (map[uuid.UUID]bool, error)
	CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error)
	CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error)
}

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	DeleteCascade(ctx context.Context, post *models.Post) (bool, error)
	ListGlobal(ctx context.Context, offset, limit int) ([]*models.Post, error)
	ListPersonalized(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.Post, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type LikeStore interface {
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	Exists(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	LikedAmong(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)
}

type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// EventPublisher is implemented by queue.KafkaProducer and
// workers.DirectPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event queue.Event) error
}

// FeedCache and TokenStore are implemented by cache.RedisClient.
type FeedCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
	Incr(ctx context.Context, key string) (int64, error)
}

type TokenStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Exists(ctx context.Context, keys ...string) (int64, error)
}
