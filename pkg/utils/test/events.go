package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/bridge/pkg/eventstream"
)

// RecordingPublisher is a synchronous eventstream.Publisher that keeps every event.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.Event
}

// Publish implements eventstream.Publisher.
func (p *RecordingPublisher) Publish(_ context.Context, event *eventstream.Event) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Close implements eventstream.Publisher.
func (p *RecordingPublisher) Close() error { return nil }

// Types returns the event types in publish order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType)
	}
	return types
}

// Events returns a copy of the published events.
func (p *RecordingPublisher) Events() []*eventstream.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*eventstream.Event(nil), p.events...)
}

var _ eventstream.Publisher = (*RecordingPublisher)(nil)
