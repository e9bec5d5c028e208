package activity

import (
	"time"

	"github.com/google/uuid"
)

// Card action types.
const (
	ActionImBack  = "imBack"
	ActionOpenURL = "openUrl"
)

// ContentTypeHeroCard is the attachment content type of a hero card.
const ContentTypeHeroCard = "application/vnd.microsoft.card.hero"

// ContinueConversationEvent is the name of the synthetic event that starts a
// proactive turn.
const ContinueConversationEvent = "ContinueConversation"

// SuggestedActions are quick-reply buttons shown under a message.
type SuggestedActions struct {
	To      []string     `json:"to,omitempty"`
	Actions []CardAction `json:"actions"`
}

// CardAction is a clickable action.
type CardAction struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// CardImage is an image on a card.
type CardImage struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// HeroCard is a card with a title, text, images and buttons.
type HeroCard struct {
	Title    string       `json:"title,omitempty"`
	Subtitle string       `json:"subtitle,omitempty"`
	Text     string       `json:"text,omitempty"`
	Images   []CardImage  `json:"images,omitempty"`
	Buttons  []CardAction `json:"buttons,omitempty"`
}

// Attachment carries rich content such as a card.
type Attachment struct {
	ContentType string `json:"contentType"`
	Content     any    `json:"content,omitempty"`
	ContentURL  string `json:"contentUrl,omitempty"`
	Name        string `json:"name,omitempty"`
}

// Text builds a plain text message.
func Text(text string) *Activity {
	return &Activity{
		Type: TypeMessage,
		Text: text,
	}
}

// Suggested builds a message carrying suggested actions.
func Suggested(text string, actions []CardAction) *Activity {
	return &Activity{
		Type: TypeMessage,
		Text: text,
		SuggestedActions: &SuggestedActions{
			Actions: actions,
		},
	}
}

// HeroCardAttachment wraps a hero card as an attachment.
func HeroCardAttachment(card HeroCard) Attachment {
	return Attachment{
		ContentType: ContentTypeHeroCard,
		Content:     card,
	}
}

// WithAttachment builds a message carrying a single attachment.
func WithAttachment(att Attachment) *Activity {
	return &Activity{
		Type:        TypeMessage,
		Attachments: []Attachment{att},
	}
}

// Trace builds a trace activity, shown only in developer tooling.
func Trace(name, value, valueType, label string) *Activity {
	now := time.Now().UTC()
	return &Activity{
		Type:      TypeTrace,
		Timestamp: &now,
		Name:      name,
		Value:     value,
		ValueType: valueType,
		Label:     label,
	}
}

// ContinuationActivity builds the synthetic event that starts a proactive
// turn in the conversation described by ref.
func ContinuationActivity(ref ConversationReference) *Activity {
	now := time.Now().UTC()
	relatesTo := ref
	return &Activity{
		Type:         TypeEvent,
		Name:         ContinueConversationEvent,
		ID:           uuid.NewString(),
		Timestamp:    &now,
		ChannelID:    ref.ChannelID,
		ServiceURL:   ref.ServiceURL,
		Conversation: ref.Conversation,
		From:         ref.User,
		Recipient:    ref.Bot,
		Locale:       ref.Locale,
		RelatesTo:    &relatesTo,
	}
}
