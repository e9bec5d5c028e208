// Package nop provides the publisher used when events.provider is "none".
package nop

import (
	"context"
	"sync/atomic"

	"github.com/papercomputeco/bridge/pkg/eventstream"
)

// Publisher discards events, keeping only a count of what it dropped.
type Publisher struct {
	dropped atomic.Uint64
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(_ context.Context, event *eventstream.Event) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	p.dropped.Add(1)
	return nil
}

// Dropped reports how many events were discarded.
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}

func (p *Publisher) Close() error {
	return nil
}

var _ eventstream.Publisher = (*Publisher)(nil)
