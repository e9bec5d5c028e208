// Package bot runs conversation turns: it routes inbound activities to the
// bridge's handlers, addresses replies back into the originating
// conversation, and starts proactive turns from stored references.
package bot

import (
	"context"
	"log/slog"

	"github.com/papercomputeco/bridge/pkg/activity"
	"github.com/papercomputeco/bridge/pkg/channel"
)

// Turn error messages shown to the user.
const (
	TurnErrorMessage    = "The bot encountered an error or bug."
	TurnErrorFollowUp   = "To continue to run this bot, please fix the bot source code."
	turnErrorTraceName  = "OnTurnError Trace"
	turnErrorTraceType  = "https://www.botframework.com/schemas/error"
	turnErrorTraceLabel = "TurnError"
)

// emulatorChannel is the only channel that displays trace activities.
const emulatorChannel = "emulator"

// Handler runs the logic of a single turn.
type Handler func(ctx context.Context, turn *TurnContext) error

// TurnContext is the per-turn view of a conversation. Activities sent
// through it are addressed to the conversation the turn belongs to.
type TurnContext struct {
	// Activity is the activity that started the turn.
	Activity *activity.Activity

	ref    activity.ConversationReference
	sender channel.Sender
}

// SendActivity addresses act to the turn's conversation and sends it.
func (t *TurnContext) SendActivity(ctx context.Context, act *activity.Activity) (*channel.ResourceResponse, error) {
	activity.ApplyConversationReference(act, t.ref)
	return t.sender.SendActivity(ctx, act)
}

// SendText sends a plain text message.
func (t *TurnContext) SendText(ctx context.Context, text string) error {
	_, err := t.SendActivity(ctx, activity.Text(text))
	return err
}

var _ channel.Sender = (*TurnContext)(nil)

// Adapter connects turn handlers to a channel.
type Adapter struct {
	sender channel.Sender
	logger *slog.Logger
}

// NewAdapter creates an Adapter sending through sender.
func NewAdapter(sender channel.Sender, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		sender: sender,
		logger: logger,
	}
}

// ProcessActivity runs handler for an inbound activity. Replies sent during
// the turn answer that activity. When the handler fails, the user is told
// and the handler's error is returned.
func (a *Adapter) ProcessActivity(ctx context.Context, act *activity.Activity, handler Handler) error {
	turn := &TurnContext{
		Activity: act,
		ref:      activity.GetConversationReference(act),
		sender:   a.sender,
	}

	if err := handler(ctx, turn); err != nil {
		a.onTurnError(ctx, turn, err)
		return err
	}
	return nil
}

// ContinueConversation starts a proactive turn in the conversation described
// by ref. Activities sent during the turn are new messages, not replies.
func (a *Adapter) ContinueConversation(ctx context.Context, ref activity.ConversationReference, handler Handler) error {
	proactive := ref
	proactive.ActivityID = ""

	turn := &TurnContext{
		Activity: activity.ContinuationActivity(ref),
		ref:      proactive,
		sender:   a.sender,
	}
	return handler(ctx, turn)
}

func (a *Adapter) onTurnError(ctx context.Context, turn *TurnContext, err error) {
	a.logger.Error("unhandled turn error",
		"activity_type", turn.Activity.Type,
		"channel_id", turn.Activity.ChannelID,
		"conversation_id", turn.Activity.Conversation.ID,
		"error", err,
	)

	if turn.Activity.ChannelID == emulatorChannel {
		trace := activity.Trace(turnErrorTraceName, err.Error(), turnErrorTraceType, turnErrorTraceLabel)
		if _, sendErr := turn.SendActivity(ctx, trace); sendErr != nil {
			a.logger.Warn("could not send turn error trace", "error", sendErr)
		}
	}

	for _, text := range []string{TurnErrorMessage, TurnErrorFollowUp} {
		if sendErr := turn.SendText(ctx, text); sendErr != nil {
			a.logger.Warn("could not send turn error message", "error", sendErr)
			return
		}
	}
}
