// Package assistant defines the conversational-AI backend contract consumed by
// the bridge: session creation, message exchange, and the reply fragments the
// backend answers with.
package assistant

import "context"

// Client is a conversational-AI backend that keeps per-session dialog state.
type Client interface {
	// CreateSession opens a new backend session and returns its identifier.
	CreateSession(ctx context.Context) (string, error)

	// Message sends user text within a session and returns the parsed reply.
	// Implementations return an *Error; a rejected or expired session is
	// reported with Kind KindSessionInvalid.
	Message(ctx context.Context, sessionID, userID, text string) (*Response, error)
}

// Response is a parsed backend reply.
type Response struct {
	Fragments []Fragment
}

// ErrorResponse converts a backend failure into a reply carrying a single
// text fragment that describes the error.
func ErrorResponse(err error) *Response {
	return &Response{
		Fragments: []Fragment{Text{Text: "Error " + err.Error()}},
	}
}
