package testutils

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/papercomputeco/bridge/pkg/activity"
	"github.com/papercomputeco/bridge/pkg/channel"
)

// RecordingSender is a channel.Sender that keeps every sent activity.
// Sends to users listed in FailFor return an error instead.
type RecordingSender struct {
	mu      sync.Mutex
	sent    []*activity.Activity
	FailFor map[string]bool
	Err     error
}

// NewRecordingSender creates an empty RecordingSender.
func NewRecordingSender() *RecordingSender {
	return &RecordingSender{FailFor: map[string]bool{}}
}

// SendActivity implements channel.Sender.
func (s *RecordingSender) SendActivity(_ context.Context, act *activity.Activity) (*channel.ResourceResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	if s.FailFor[act.Recipient.ID] {
		return nil, errors.New("delivery failed for " + act.Recipient.ID)
	}

	s.sent = append(s.sent, act)
	return &channel.ResourceResponse{ID: fmt.Sprintf("sent-%d", len(s.sent))}, nil
}

// Sent returns a copy of every recorded activity.
func (s *RecordingSender) Sent() []*activity.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*activity.Activity(nil), s.sent...)
}

// SentOfType returns the recorded activities of the given type.
func (s *RecordingSender) SentOfType(activityType string) []*activity.Activity {
	var out []*activity.Activity
	for _, act := range s.Sent() {
		if act.Type == activityType {
			out = append(out, act)
		}
	}
	return out
}

// Texts returns the text of every recorded message activity.
func (s *RecordingSender) Texts() []string {
	var texts []string
	for _, act := range s.SentOfType(activity.TypeMessage) {
		texts = append(texts, act.Text)
	}
	return texts
}

var _ channel.Sender = (*RecordingSender)(nil)
