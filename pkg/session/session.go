// Package session maps each chat user to a conversational-AI backend session
// and relays messages through it, transparently replacing sessions the
// backend has expired.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/bridge/pkg/assistant"
	"github.com/papercomputeco/bridge/pkg/eventstream"
)

// UserProfile is the per-user state persisted between turns.
type UserProfile struct {
	// SessionID is the backend session for this user, empty when none exists yet.
	SessionID string `json:"wa_session_id,omitempty"`
}

// Config is the configuration for a Manager.
type Config struct {
	// Assistant is the backend used to create sessions and exchange messages.
	Assistant assistant.Client

	// Publisher receives session lifecycle events. Optional.
	Publisher eventstream.Publisher

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Manager ensures every user has a live backend session and forwards their
// messages, recovering from an expired session with exactly one retry.
type Manager struct {
	assistant assistant.Client
	publisher eventstream.Publisher
	logger    *slog.Logger
}

// NewManager creates a session Manager.
func NewManager(c Config) (*Manager, error) {
	if c.Assistant == nil {
		return nil, fmt.Errorf("assistant client is required")
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Manager{
		assistant: c.Assistant,
		publisher: c.Publisher,
		logger:    logger,
	}, nil
}

// EnsureSession creates a backend session when the profile has none.
// A profile that already holds a session id is returned untouched, without
// any backend call.
func (m *Manager) EnsureSession(ctx context.Context, profile *UserProfile, userID string) (*UserProfile, error) {
	if profile == nil {
		profile = &UserProfile{}
	}
	if profile.SessionID != "" {
		return profile, nil
	}

	if err := m.createSession(ctx, profile, userID, "new"); err != nil {
		return profile, err
	}
	return profile, nil
}

// SendMessage relays text for userID and returns the backend's reply.
//
// Backend failures never surface as errors: they are turned into a reply
// holding a single text fragment that describes the failure. When the
// backend rejects the session, a replacement session is created, stored in
// the profile, and the message is retried exactly once.
func (m *Manager) SendMessage(ctx context.Context, text string, profile *UserProfile, userID string) *assistant.Response {
	profile, err := m.EnsureSession(ctx, profile, userID)
	if err != nil {
		m.logger.Error("could not create assistant session",
			"user_id", userID,
			"error", err,
		)
		return assistant.ErrorResponse(err)
	}

	resp, err := m.assistant.Message(ctx, profile.SessionID, userID, text)
	if err == nil {
		return resp
	}

	if !assistant.IsSessionInvalid(err) {
		m.logger.Error("assistant message failed",
			"user_id", userID,
			"session_id", profile.SessionID,
			"error", err,
		)
		return assistant.ErrorResponse(err)
	}

	m.logger.Info("assistant session expired, creating a new one",
		"user_id", userID,
		"session_id", profile.SessionID,
	)

	if err := m.createSession(ctx, profile, userID, "expired"); err != nil {
		m.logger.Error("could not replace expired assistant session",
			"user_id", userID,
			"error", err,
		)
		return assistant.ErrorResponse(err)
	}

	resp, err = m.assistant.Message(ctx, profile.SessionID, userID, text)
	if err != nil {
		m.logger.Error("assistant message failed after session replacement",
			"user_id", userID,
			"session_id", profile.SessionID,
			"error", err,
		)
		return assistant.ErrorResponse(err)
	}
	return resp
}

func (m *Manager) createSession(ctx context.Context, profile *UserProfile, userID, reason string) error {
	sessionID, err := m.assistant.CreateSession(ctx)
	if err != nil {
		return err
	}

	profile.SessionID = sessionID
	m.logger.Debug("assistant session created",
		"user_id", userID,
		"session_id", sessionID,
		"reason", reason,
	)

	m.publish(ctx, eventstream.NewEvent(eventstream.EventTypeSessionCreated, userID).
		WithDetail("session_id", sessionID).
		WithDetail("reason", reason))
	return nil
}

func (m *Manager) publish(ctx context.Context, event *eventstream.Event) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.logger.Warn("could not publish event",
			"event_type", event.EventType,
			"error", err,
		)
	}
}
