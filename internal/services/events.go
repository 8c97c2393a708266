package services

import (
	"context"

	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/feed-system/socialconnect/pkg/queue"
)

// publishEvent emits an event on a best-effort basis: failures are logged and
// never reach the caller.
func publishEvent(ctx context.Context, publisher EventPublisher, log *logger.Logger, key string, eventType queue.EventType, data interface{}) {
	event, err := queue.NewEvent(eventType, data)
	if err != nil {
		log.WithError(err).Error("Failed to build event")
		return
	}
	if err := publisher.Publish(ctx, key, event); err != nil {
		log.WithError(err).WithField("event_type", string(eventType)).Error("Failed to publish event")
	}
}
