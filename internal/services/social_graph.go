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

const followPageSize = 50

// SocialGraphService owns the directed follower graph: no self edges and at
// most one edge per ordered pair.
type SocialGraphService struct {
	users         UserStore
	follows       FollowStore
	notifications *NotificationService
	producer      EventPublisher
	logger        *logger.Logger
}

func NewSocialGraphService(users UserStore, follows FollowStore, notifications *NotificationService, producer EventPublisher, logger *logger.Logger) *SocialGraphService {
	return &SocialGraphService{
		users:         users,
		follows:       follows,
		notifications: notifications,
		producer:      producer,
		logger:        logger,
	}
}

func (s *SocialGraphService) Follow(ctx context.Context, me *Identity, targetID string) error {
	target, err := parseID(targetID, "user")
	if err != nil {
		return err
	}
	if target == me.UserID {
		return newError(ErrInvalidOperation, "you cannot follow yourself")
	}

	user, err := s.users.GetByID(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return newError(ErrNotFound, "user not found")
	}

	exists, err := s.follows.Exists(ctx, me.UserID, target)
	if err != nil {
		return err
	}
	if exists {
		return newError(ErrConflict, "already following this user")
	}

	follow := &models.Follow{FollowerID: me.UserID, FollowingID: target}
	if err := s.follows.Create(ctx, follow); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return newError(ErrConflict, "already following this user")
		}
		return fmt.Errorf("failed to create follow: %w", err)
	}

	s.notifications.Notify(ctx, NotifyParams{
		TargetID: target,
		ActorID:  me.UserID,
		Type:     models.NotificationFollow,
		Message:  notificationMessage(models.NotificationFollow, me.Username),
	})

	publishEvent(ctx, s.producer, s.logger, me.UserID.String(), queue.EventFollowCreated, queue.FollowEventData{
		FollowerID:  me.UserID.String(),
		FollowingID: target.String(),
	})

	s.logger.WithFields(map[string]interface{}{
		"follower_id":  me.UserID,
		"following_id": target,
	}).Info("User followed successfully")

	return nil
}

// Unfollow is idempotent: removing an edge that does not exist succeeds.
func (s *SocialGraphService) Unfollow(ctx context.Context, me uuid.UUID, targetID string) error {
	target, err := parseID(targetID, "user")
	if err != nil {
		return err
	}

	removed, err := s.follows.Delete(ctx, me, target)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}

	publishEvent(ctx, s.producer, s.logger, me.String(), queue.EventFollowDeleted, queue.FollowEventData{
		FollowerID:  me.String(),
		FollowingID: target.String(),
	})

	s.logger.WithFields(map[string]interface{}{
		"follower_id":  me,
		"following_id": target,
	}).Info("User unfollowed successfully")

	return nil
}

// ListFollowers returns the users following userID, most recent edge first.
func (s *SocialGraphService) ListFollowers(ctx context.Context, userID string, page int) ([]*models.UserSummary, error) {
	id, err := s.existingUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	offset, limit := pageBounds(page, followPageSize)
	follows, err := s.follows.ListFollowers(ctx, id, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	out := make([]*models.UserSummary, 0, len(follows))
	for _, f := range follows {
		if f.Follower != nil {
			out = append(out, f.Follower)
		}
	}
	return out, nil
}

// ListFollowing returns the users userID follows, most recent edge first.
func (s *SocialGraphService) ListFollowing(ctx context.Context, userID string, page int) ([]*models.UserSummary, error) {
	id, err := s.existingUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	offset, limit := pageBounds(page, followPageSize)
	follows, err := s.follows.ListFollowing(ctx, id, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	out := make([]*models.UserSummary, 0, len(follows))
	for _, f := range follows {
		if f.Following != nil {
			out = append(out, f.Following)
		}
	}
	return out, nil
}

func (s *SocialGraphService) existingUser(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := parseID(raw, "user")
	if err != nil {
		return uuid.Nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return uuid.Nil, newError(ErrNotFound, "user not found")
	}
	return id, nil
}
