package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeSessionCreated is emitted when an assistant session is created
	// or recreated for a user.
	EventTypeSessionCreated = "bridge.session.created"

	// EventTypeReferenceRecorded is emitted after a conversation reference is persisted.
	EventTypeReferenceRecorded = "bridge.reference.recorded"

	// EventTypeNotificationSent is emitted after a proactive message is delivered.
	EventTypeNotificationSent = "bridge.notification.sent"

	// EventTypeNotificationFailed is emitted when a proactive delivery fails.
	EventTypeNotificationFailed = "bridge.notification.failed"
)

// Event is a transport-neutral payload describing something the bridge did.
type Event struct {
	SchemaVersion  int               `json:"schema_version"`
	EventType      string            `json:"event_type"`
	EventID        string            `json:"event_id"`
	EmittedAt      time.Time         `json:"emitted_at"`
	UserID         string            `json:"user_id,omitempty"`
	ChannelID      string            `json:"channel_id,omitempty"`
	ConversationID string            `json:"conversation_id,omitempty"`
	Detail         map[string]string `json:"detail,omitempty"`
}

// NewEvent builds an event of the given type stamped with a fresh id and time.
func NewEvent(eventType, userID string) *Event {
	return &Event{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		UserID:        userID,
	}
}

// WithConversation sets the channel and conversation ids.
func (e *Event) WithConversation(channelID, conversationID string) *Event {
	e.ChannelID = channelID
	e.ConversationID = conversationID
	return e
}

// WithDetail adds a free-form detail entry.
func (e *Event) WithDetail(key, value string) *Event {
	if e.Detail == nil {
		e.Detail = map[string]string{}
	}
	e.Detail[key] = value
	return e
}
