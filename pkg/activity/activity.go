// Package activity defines the Bot Framework activity wire schema used by the
// bridge: activities, conversation references, and the card and action
// payloads sent back to a channel.
package activity

import (
	"encoding/json"
	"time"
)

// Activity types handled or produced by the bridge.
const (
	TypeMessage            = "message"
	TypeConversationUpdate = "conversationUpdate"
	TypeEvent              = "event"
	TypeTrace              = "trace"
	TypeTyping             = "typing"
)

// Activity is a single Bot Framework activity.
type Activity struct {
	Type             string                 `json:"type"`
	ID               string                 `json:"id,omitempty"`
	Timestamp        *time.Time             `json:"timestamp,omitempty"`
	ServiceURL       string                 `json:"serviceUrl,omitempty"`
	ChannelID        string                 `json:"channelId,omitempty"`
	From             ChannelAccount         `json:"from"`
	Conversation     ConversationAccount    `json:"conversation"`
	Recipient        ChannelAccount         `json:"recipient"`
	Text             string                 `json:"text,omitempty"`
	Locale           string                 `json:"locale,omitempty"`
	ReplyToID        string                 `json:"replyToId,omitempty"`
	MembersAdded     []ChannelAccount       `json:"membersAdded,omitempty"`
	MembersRemoved   []ChannelAccount       `json:"membersRemoved,omitempty"`
	Attachments      []Attachment           `json:"attachments,omitempty"`
	SuggestedActions *SuggestedActions      `json:"suggestedActions,omitempty"`
	Name             string                 `json:"name,omitempty"`
	Label            string                 `json:"label,omitempty"`
	ValueType        string                 `json:"valueType,omitempty"`
	Value            any                    `json:"value,omitempty"`
	RelatesTo        *ConversationReference `json:"relatesTo,omitempty"`
	ChannelData      json.RawMessage        `json:"channelData,omitempty"`
}

// ChannelAccount identifies a user or bot on a channel.
type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// ConversationAccount identifies a conversation on a channel.
type ConversationAccount struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	IsGroup          bool   `json:"isGroup,omitempty"`
	ConversationType string `json:"conversationType,omitempty"`
	TenantID         string `json:"tenantId,omitempty"`
}

// ConversationReference is everything needed to address a message into an
// existing conversation later.
type ConversationReference struct {
	ActivityID   string              `json:"activityId,omitempty"`
	User         ChannelAccount      `json:"user"`
	Bot          ChannelAccount      `json:"bot"`
	Conversation ConversationAccount `json:"conversation"`
	ChannelID    string              `json:"channelId"`
	Locale       string              `json:"locale,omitempty"`
	ServiceURL   string              `json:"serviceUrl"`
}

// GetConversationReference extracts the reference for the conversation an
// inbound activity belongs to.
func GetConversationReference(act *Activity) ConversationReference {
	return ConversationReference{
		ActivityID:   act.ID,
		User:         act.From,
		Bot:          act.Recipient,
		Conversation: act.Conversation,
		ChannelID:    act.ChannelID,
		Locale:       act.Locale,
		ServiceURL:   act.ServiceURL,
	}
}

// ApplyConversationReference addresses an outbound activity to the
// conversation described by ref. When ref carries an activity id the
// outbound activity becomes a reply to it.
func ApplyConversationReference(act *Activity, ref ConversationReference) *Activity {
	act.ChannelID = ref.ChannelID
	act.ServiceURL = ref.ServiceURL
	act.Conversation = ref.Conversation
	act.From = ref.Bot
	act.Recipient = ref.User
	if act.Locale == "" {
		act.Locale = ref.Locale
	}
	if ref.ActivityID != "" {
		act.ReplyToID = ref.ActivityID
	}
	return act
}
