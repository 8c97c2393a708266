package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	EventPostCreated         EventType = "post_created"
	EventPostUpdated         EventType = "post_updated"
	EventPostDeleted         EventType = "post_deleted"
	EventFollowCreated       EventType = "follow_created"
	EventFollowDeleted       EventType = "follow_deleted"
	EventLikeCreated         EventType = "like_created"
	EventLikeDeleted         EventType = "like_deleted"
	EventCommentCreated      EventType = "comment_created"
	EventNotificationCreated EventType = "notification_created"
	EventUserUpdated         EventType = "user_updated"
)

type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func NewEvent(eventType EventType, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

func (e Event) Decode(dest interface{}) error {
	if err := json.Unmarshal(e.Data, dest); err != nil {
		return fmt.Errorf("invalid %s event data: %w", e.Type, err)
	}
	return nil
}

type PostEventData struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}

type FollowEventData struct {
	FollowerID  string `json:"follower_id"`
	FollowingID string `json:"following_id"`
}

type LikeEventData struct {
	UserID string `json:"user_id"`
	PostID string `json:"post_id"`
}

type CommentEventData struct {
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
	PostID    string `json:"post_id"`
}

type NotificationEventData struct {
	NotificationID string `json:"notification_id"`
	UserID         string `json:"user_id"`
	Type           string `json:"type"`
}

type UserEventData struct {
	UserID string `json:"user_id"`
}
