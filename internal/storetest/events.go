package storetest

import (
	"context"
	"sync"

	"github.com/feed-system/socialconnect/pkg/queue"
)

// Recorder is an event publisher that keeps everything it is given.
type Recorder struct {
	mu     sync.Mutex
	events []queue.Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, _ string, event queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Types() []queue.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]queue.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
