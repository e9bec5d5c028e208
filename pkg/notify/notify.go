// Package notify pushes proactive messages into conversations recorded in
// the reference directory.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/bridge/pkg/activity"
	"github.com/papercomputeco/bridge/pkg/bot"
	"github.com/papercomputeco/bridge/pkg/eventstream"
	"github.com/papercomputeco/bridge/pkg/reference"
)

const (
	// DefaultMessage is the notification text used when none is given.
	DefaultMessage = "Notification hello"

	// DefaultConcurrency bounds simultaneous deliveries in NotifyAll.
	DefaultConcurrency = 8
)

var (
	// ErrNoUser is returned when no user id is given.
	ErrNoUser = errors.New("no user defined")

	// ErrUnknownUser is returned when the user has no recorded conversation.
	ErrUnknownUser = errors.New("unknown user")
)

// Config is the configuration for a Notifier.
type Config struct {
	Directory *reference.Directory
	Adapter   *bot.Adapter

	// Publisher receives notification events. Optional.
	Publisher eventstream.Publisher

	// Message is the default notification text. Defaults to DefaultMessage.
	Message string

	// Concurrency bounds simultaneous deliveries. Defaults to DefaultConcurrency.
	Concurrency int

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Notifier delivers proactive messages.
type Notifier struct {
	directory   *reference.Directory
	adapter     *bot.Adapter
	publisher   eventstream.Publisher
	message     string
	concurrency int
	logger      *slog.Logger
}

// Failure is one undelivered notification.
type Failure struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

// Report summarizes a NotifyAll run.
type Report struct {
	Sent   []string  `json:"sent"`
	Failed []Failure `json:"failed,omitempty"`
}

// NewNotifier creates a Notifier.
func NewNotifier(c Config) (*Notifier, error) {
	if c.Directory == nil {
		return nil, errors.New("reference directory is required")
	}
	if c.Adapter == nil {
		return nil, errors.New("adapter is required")
	}

	message := c.Message
	if message == "" {
		message = DefaultMessage
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Notifier{
		directory:   c.Directory,
		adapter:     c.Adapter,
		publisher:   c.Publisher,
		message:     message,
		concurrency: concurrency,
		logger:      logger,
	}, nil
}

// NotifyUser sends text (or the default message when empty) to one user.
func (n *Notifier) NotifyUser(ctx context.Context, userID, text string) error {
	if userID == "" {
		return ErrNoUser
	}

	ref, ok, err := n.directory.Lookup(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}

	return n.deliver(ctx, ref, n.text(text))
}

// NotifyAll sends text (or the default message when empty) to every
// recorded conversation and waits for all deliveries to finish. A failed
// delivery is reported and does not stop the others.
func (n *Notifier) NotifyAll(ctx context.Context, text string) (*Report, error) {
	refs, err := n.directory.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		report = &Report{Sent: []string{}}
		g      errgroup.Group
	)
	g.SetLimit(n.concurrency)

	msg := n.text(text)
	for _, ref := range refs {
		g.Go(func() error {
			err := n.deliver(ctx, ref, msg)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed = append(report.Failed, Failure{UserID: ref.User.ID, Error: err.Error()})
				return nil
			}
			report.Sent = append(report.Sent, ref.User.ID)
			return nil
		})
	}
	_ = g.Wait()

	slices.Sort(report.Sent)
	slices.SortFunc(report.Failed, func(a, b Failure) int {
		return strings.Compare(a.UserID, b.UserID)
	})

	n.logger.Info("notifications delivered",
		"sent", len(report.Sent),
		"failed", len(report.Failed),
	)
	return report, nil
}

func (n *Notifier) text(text string) string {
	if text == "" {
		return n.message
	}
	return text
}

func (n *Notifier) deliver(ctx context.Context, ref activity.ConversationReference, text string) error {
	err := n.adapter.ContinueConversation(ctx, ref, func(ctx context.Context, turn *bot.TurnContext) error {
		return turn.SendText(ctx, text)
	})

	eventType := eventstream.EventTypeNotificationSent
	if err != nil {
		eventType = eventstream.EventTypeNotificationFailed
		n.logger.Warn("notification failed",
			"user_id", ref.User.ID,
			"conversation_id", ref.Conversation.ID,
			"error", err,
		)
	}

	if n.publisher != nil {
		event := eventstream.NewEvent(eventType, ref.User.ID).
			WithConversation(ref.ChannelID, ref.Conversation.ID)
		if err != nil {
			event.WithDetail("error", err.Error())
		}
		if pubErr := n.publisher.Publish(ctx, event); pubErr != nil {
			n.logger.Warn("could not publish event",
				"event_type", event.EventType,
				"error", pubErr,
			)
		}
	}

	if err != nil {
		return fmt.Errorf("notifying %s: %w", ref.User.ID, err)
	}
	return nil
}
