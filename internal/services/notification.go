package services

import (
	"context"
	"fmt"

	"github.com/feed-system/socialconnect/internal/models"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/feed-system/socialconnect/pkg/queue"
	"github.com/google/uuid"
)

const notificationPageSize = 20

// NotificationService implements notification fan-out and the read-state
// operations on a user's inbox.
type NotificationService struct {
	notifications NotificationStore
	producer      EventPublisher
	logger        *logger.Logger
}

func NewNotificationService(notifications NotificationStore, producer EventPublisher, logger *logger.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		producer:      producer,
		logger:        logger,
	}
}

type NotifyParams struct {
	TargetID      uuid.UUID
	ActorID       uuid.UUID
	Type          models.NotificationType
	Message       string
	RelatedPostID *uuid.UUID
}

type NotificationPage struct {
	Notifications []*models.Notification `json:"notifications"`
	Page          int                    `json:"page"`
	HasMore       bool                   `json:"has_more"`
}

func notificationMessage(kind models.NotificationType, actorName string) string {
	switch kind {
	case models.NotificationLike:
		return actorName + " liked your post"
	case models.NotificationComment:
		return actorName + " commented on your post"
	case models.NotificationFollow:
		return actorName + " started following you"
	}
	return actorName + " interacted with you"
}

// Notify writes a notification for the target user. It never fails the
// calling mutation: errors are logged and dropped. Self notifications are
// skipped here as well as by callers.
func (s *NotificationService) Notify(ctx context.Context, p NotifyParams) {
	if p.TargetID == p.ActorID {
		return
	}

	notification := &models.Notification{
		UserID:        p.TargetID,
		Type:          p.Type,
		Message:       p.Message,
		RelatedUserID: p.ActorID,
		RelatedPostID: p.RelatedPostID,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"user_id": p.TargetID,
			"type":    p.Type,
		}).Error("Failed to create notification")
		return
	}

	publishEvent(ctx, s.producer, s.logger, p.TargetID.String(), queue.EventNotificationCreated, queue.NotificationEventData{
		NotificationID: notification.ID.String(),
		UserID:         p.TargetID.String(),
		Type:           string(p.Type),
	})
}

func (s *NotificationService) List(ctx context.Context, me uuid.UUID, page int) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	offset, limit := pageBounds(page, notificationPageSize)
	items, err := s.notifications.ListByUser(ctx, me, offset, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	return &NotificationPage{Notifications: items, Page: page, HasMore: hasMore}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, me uuid.UUID, notificationID string) error {
	id, err := parseID(notificationID, "notification")
	if err != nil {
		return err
	}
	ok, err := s.notifications.MarkRead(ctx, me, id)
	if err != nil {
		return err
	}
	if !ok {
		return newError(ErrNotFound, "notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, me uuid.UUID) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, me)
	if err != nil {
		return 0, err
	}
	s.logger.WithFields(map[string]interface{}{
		"user_id": me,
		"count":   n,
	}).Info("Notifications marked read")
	return n, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, me uuid.UUID) (int64, error) {
	return s.notifications.CountUnread(ctx, me)
}
