package workers

import (
	"context"
	"sync"

	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/feed-system/socialconnect/pkg/queue"
)

// FeedInvalidator is implemented by services.FeedService.
type FeedInvalidator interface {
	Invalidate(ctx context.Context) error
}

type Consumer interface {
	Subscribe(ctx context.Context, handler func(context.Context, queue.Event) error) error
	Close() error
}

// EventWorker reacts to the event stream. Post, engagement and profile events
// change what the global feed shows (cached pages embed author username and
// avatar), so they drop its cached pages.
type EventWorker struct {
	feed     FeedInvalidator
	consumer Consumer
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewEventWorker(feed FeedInvalidator, consumer Consumer, logger *logger.Logger) *EventWorker {
	return &EventWorker{
		feed:     feed,
		consumer: consumer,
		logger:   logger,
	}
}

// Start blocks consuming events until Stop is called or ctx is cancelled.
func (w *EventWorker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	w.logger.Info("Starting event worker...")
	err := w.consumer.Subscribe(ctx, w.Handle)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (w *EventWorker) Stop() error {
	w.logger.Info("Stopping event worker...")
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()
	return w.consumer.Close()
}

func (w *EventWorker) Handle(ctx context.Context, event queue.Event) error {
	w.logger.WithFields(map[string]interface{}{
		"event_type": event.Type,
		"timestamp":  event.Timestamp,
	}).Debug("Processing event")

	switch event.Type {
	case queue.EventPostCreated, queue.EventPostUpdated, queue.EventPostDeleted:
		var data queue.PostEventData
		if err := event.Decode(&data); err != nil {
			return err
		}
		return w.invalidate(ctx, event.Type, data.PostID)
	case queue.EventLikeCreated, queue.EventLikeDeleted:
		var data queue.LikeEventData
		if err := event.Decode(&data); err != nil {
			return err
		}
		return w.invalidate(ctx, event.Type, data.PostID)
	case queue.EventCommentCreated:
		var data queue.CommentEventData
		if err := event.Decode(&data); err != nil {
			return err
		}
		return w.invalidate(ctx, event.Type, data.PostID)
	case queue.EventUserUpdated:
		var data queue.UserEventData
		if err := event.Decode(&data); err != nil {
			return err
		}
		return w.invalidate(ctx, event.Type, "")
	default:
		return nil
	}
}

func (w *EventWorker) invalidate(ctx context.Context, eventType queue.EventType, postID string) error {
	if err := w.feed.Invalidate(ctx); err != nil {
		return err
	}
	fields := map[string]interface{}{"event_type": eventType}
	if postID != "" {
		fields["post_id"] = postID
	}
	w.logger.WithFields(fields).Info("Global feed cache invalidated")
	return nil
}

// DirectPublisher stands in for kafka when it is disabled: each event is
// handled synchronously in the publishing request.
type DirectPublisher struct {
	worker *EventWorker
}

func NewDirectPublisher(worker *EventWorker) *DirectPublisher {
	return &DirectPublisher{worker: worker}
}

func (p *DirectPublisher) Publish(ctx context.Context, _ string, event queue.Event) error {
	return p.worker.Handle(ctx, event)
}
