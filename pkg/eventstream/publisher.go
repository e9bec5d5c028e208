package eventstream

import "context"

// Publisher sends lifecycle events to a stream backend. Publish must be safe
// for concurrent use. Close flushes anything buffered.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
