package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/papercomputeco/bridge/pkg/assistant"
)

// MessageCall records a single FakeAssistant.Message invocation.
type MessageCall struct {
	SessionID string
	UserID    string
	Text      string
}

// FakeAssistant is a scripted assistant.Client. Session ids are handed out
// as "session-1", "session-2", ... in creation order. Message results are
// taken from MessageResults in call order; once exhausted, Reply is returned.
type FakeAssistant struct {
	mu sync.Mutex

	// CreateErr, when set, fails every CreateSession call.
	CreateErr error

	// CreateErrs fails the n-th CreateSession call (zero based) when present.
	CreateErrs map[int]error

	// MessageResults are consumed in order by Message.
	MessageResults []MessageResult

	// Reply is returned once MessageResults is exhausted.
	Reply *assistant.Response

	// Calls lists "create" and "message" in invocation order.
	Calls []string

	Creates  int
	Messages []MessageCall
}

// MessageResult is one scripted Message outcome.
type MessageResult struct {
	Response *assistant.Response
	Err      error
}

// CreateSession implements assistant.Client.
func (f *FakeAssistant) CreateSession(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.Creates
	f.Creates++
	f.Calls = append(f.Calls, "create")

	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	if err, ok := f.CreateErrs[n]; ok {
		return "", err
	}
	return fmt.Sprintf("session-%d", n+1), nil
}

// Message implements assistant.Client.
func (f *FakeAssistant) Message(_ context.Context, sessionID, userID, text string) (*assistant.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, "message")
	f.Messages = append(f.Messages, MessageCall{SessionID: sessionID, UserID: userID, Text: text})

	if len(f.MessageResults) > 0 {
		next := f.MessageResults[0]
		f.MessageResults = f.MessageResults[1:]
		return next.Response, next.Err
	}
	if f.Reply != nil {
		return f.Reply, nil
	}
	return &assistant.Response{}, nil
}

// TextReply builds a response made of text fragments.
func TextReply(texts ...string) *assistant.Response {
	fragments := make([]assistant.Fragment, 0, len(texts))
	for _, t := range texts {
		fragments = append(fragments, assistant.Text{Text: t})
	}
	return &assistant.Response{Fragments: fragments}
}

var _ assistant.Client = (*FakeAssistant)(nil)
