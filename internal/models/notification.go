package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
)

// Notification is written once by fan-out; only IsRead changes afterwards.
type Notification struct {
	ID            uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID        uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index:idx_notifications_user_read"`
	Type          NotificationType `json:"type" gorm:"type:varchar(20);not null"`
	Message       string           `json:"message" gorm:"type:text;not null"`
	RelatedUserID uuid.UUID        `json:"related_user_id" gorm:"type:uuid;not null"`
	RelatedPostID *uuid.UUID       `json:"related_post_id" gorm:"type:uuid;index"`
	IsRead        bool             `json:"is_read" gorm:"not null;default:false;index:idx_notifications_user_read"`
	CreatedAt     time.Time        `json:"created_at" gorm:"index"`

	RelatedUser *UserSummary `json:"related_user,omitempty" gorm:"foreignKey:RelatedUserID"`
}

func (Notification) TableName() string {
	return "notifications"
}
