package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/bridge/pkg/activity"
	"github.com/papercomputeco/bridge/pkg/reference"
	"github.com/papercomputeco/bridge/pkg/reply"
	"github.com/papercomputeco/bridge/pkg/session"
)

// Config is the configuration for a Bot.
type Config struct {
	Sessions   *session.Manager
	Profiles   *session.ProfileStore
	Directory  *reference.Directory
	Dispatcher *reply.Dispatcher

	// RecordOnMessage also records the conversation reference on every
	// message, not just on conversation updates.
	RecordOnMessage bool

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Bot relays user messages to the assistant and keeps the conversation
// reference directory current.
type Bot struct {
	sessions        *session.Manager
	profiles        *session.ProfileStore
	directory       *reference.Directory
	dispatcher      *reply.Dispatcher
	recordOnMessage bool
	logger          *slog.Logger
}

// New creates a Bot.
func New(c Config) (*Bot, error) {
	switch {
	case c.Sessions == nil:
		return nil, errors.New("session manager is required")
	case c.Profiles == nil:
		return nil, errors.New("profile store is required")
	case c.Directory == nil:
		return nil, errors.New("reference directory is required")
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dispatcher := c.Dispatcher
	if dispatcher == nil {
		dispatcher = reply.NewDispatcher(logger)
	}

	return &Bot{
		sessions:        c.Sessions,
		profiles:        c.Profiles,
		directory:       c.Directory,
		dispatcher:      dispatcher,
		recordOnMessage: c.RecordOnMessage,
		logger:          logger,
	}, nil
}

// OnTurn is the bot's turn Handler.
func (b *Bot) OnTurn(ctx context.Context, turn *TurnContext) error {
	switch turn.Activity.Type {
	case activity.TypeMessage:
		return b.onMessage(ctx, turn)
	case activity.TypeConversationUpdate:
		return b.onConversationUpdate(ctx, turn)
	default:
		b.logger.Debug("ignoring activity",
			"activity_type", turn.Activity.Type,
		)
		return nil
	}
}

func (b *Bot) onMessage(ctx context.Context, turn *TurnContext) error {
	act := turn.Activity

	if b.recordOnMessage {
		if err := b.record(ctx, act); err != nil {
			return err
		}
	}

	loaded, err := b.profiles.Load(ctx, act.ChannelID, act.From.ID)
	if err != nil {
		return err
	}

	b.logger.Debug("relaying message",
		"user_id", act.From.ID,
		"conversation_id", act.Conversation.ID,
	)

	resp := b.sessions.SendMessage(ctx, act.Text, &loaded.Profile, act.From.ID)
	dispatchErr := b.dispatcher.Dispatch(ctx, turn, resp)

	if err := b.profiles.Save(ctx, loaded); err != nil {
		return errors.Join(dispatchErr, fmt.Errorf("saving user profile: %w", err))
	}
	return dispatchErr
}

func (b *Bot) onConversationUpdate(ctx context.Context, turn *TurnContext) error {
	act := turn.Activity

	if err := b.record(ctx, act); err != nil {
		return err
	}

	for _, member := range act.MembersAdded {
		if member.ID == act.Recipient.ID {
			continue
		}
		if err := b.record(ctx, act); err != nil {
			return err
		}
		b.logger.Info("member added",
			"member_id", member.ID,
			"conversation_id", act.Conversation.ID,
		)
	}
	return nil
}

// record stores the conversation reference for act. Activities without a
// sender cannot be addressed later and are skipped.
func (b *Bot) record(ctx context.Context, act *activity.Activity) error {
	err := b.directory.Record(ctx, act)
	if errors.Is(err, reference.ErrNoUser) {
		b.logger.Debug("not recording conversation without a user",
			"activity_type", act.Type,
			"conversation_id", act.Conversation.ID,
		)
		return nil
	}
	return err
}
