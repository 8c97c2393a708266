package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/feed-system/socialconnect/internal/repository"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/feed-system/socialconnect/pkg/queue"
	"github.com/google/uuid"
)

// EngagementService applies likes and comments to posts and triggers the
// matching notifications.
type EngagementService struct {
	users         UserStore
	posts         PostStore
	likes         LikeStore
	comments      CommentStore
	notifications *NotificationService
	producer      EventPublisher
	logger        *logger.Logger
}

func NewEngagementService(
	users UserStore,
	posts PostStore,
	likes LikeStore,
	comments CommentStore,
	notifications *NotificationService,
	producer EventPublisher,
	logger *logger.Logger,
) *EngagementService {
	return &EngagementService{
		users:         users,
		posts:         posts,
		likes:         likes,
		comments:      comments,
		notifications: notifications,
		producer:      producer,
		logger:        logger,
	}
}

// Like records a like and returns the post with its new like_count. A second
// like of the same post is a conflict and changes nothing.
func (s *EngagementService) Like(ctx context.Context, me *Identity, postID string) (*models.Post, error) {
	post, err := s.existingPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.likes.Exists(ctx, me.UserID, post.ID)
	if err != nil {
		return nil, err
	}
	if liked {
		return nil, newError(ErrConflict, "you already liked this post")
	}

	if err := s.likes.Create(ctx, &models.Like{UserID: me.UserID, PostID: post.ID}); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "you already liked this post")
		}
		return nil, fmt.Errorf("failed to create like: %w", err)
	}

	if post.UserID != me.UserID {
		postRef := post.ID
		s.notifications.Notify(ctx, NotifyParams{
			TargetID:      post.UserID,
			ActorID:       me.UserID,
			Type:          models.NotificationLike,
			Message:       notificationMessage(models.NotificationLike, me.Username),
			RelatedPostID: &postRef,
		})
	}

	publishEvent(ctx, s.producer, s.logger, me.UserID.String(), queue.EventLikeCreated, queue.LikeEventData{
		UserID: me.UserID.String(),
		PostID: post.ID.String(),
	})

	s.logger.WithFields(map[string]interface{}{
		"user_id": me.UserID,
		"post_id": post.ID,
	}).Info("Post liked successfully")

	return s.existingPost(ctx, postID)
}

// Unlike removes the caller's like if present. Notifications already sent
// for the like are kept.
func (s *EngagementService) Unlike(ctx context.Context, me uuid.UUID, postID string) (*models.Post, error) {
	post, err := s.existingPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	removed, err := s.likes.Delete(ctx, me, post.ID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return post, nil
	}

	publishEvent(ctx, s.producer, s.logger, me.String(), queue.EventLikeDeleted, queue.LikeEventData{
		UserID: me.String(),
		PostID: post.ID.String(),
	})

	s.logger.WithFields(map[string]interface{}{
		"user_id": me,
		"post_id": post.ID,
	}).Info("Post unliked successfully")

	return s.existingPost(ctx, postID)
}

func (s *EngagementService) existingPost(ctx context.Context, postID string) (*models.Post, error) {
	id, err := parseID(postID, "post")
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return nil, newError(ErrNotFound, "post not found")
	}
	return post, nil
}
