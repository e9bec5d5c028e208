// Package channel implements the outbound half of the Bot Connector REST API:
// posting activities into conversations on behalf of the bot.
package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/papercomputeco/bridge/pkg/activity"
)

// EmulatorChannelID is the channel id used by the Bot Framework Emulator.
const EmulatorChannelID = "emulator"

// ErrNoServiceURL is returned when an outbound activity has no service URL.
var ErrNoServiceURL = errors.New("activity has no service url")

// Sender delivers outbound activities to a channel.
type Sender interface {
	SendActivity(ctx context.Context, act *activity.Activity) (*ResourceResponse, error)
}

// ResourceResponse is the connector's acknowledgement of a sent activity.
type ResourceResponse struct {
	ID string `json:"id"`
}

// Config holds configuration for the connector client.
type Config struct {
	// AppID is the bot's Microsoft app id. When empty, requests are sent
	// without authorization, which is what the Emulator expects.
	AppID string

	// AppPassword is the bot's client secret.
	AppPassword string

	// TokenURL overrides the token endpoint. Defaults to DefaultTokenURL.
	TokenURL string

	// Scope overrides the token scope. Defaults to DefaultScope.
	Scope string

	// HTTPClient overrides the client used for connector calls.
	HTTPClient *http.Client

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Client posts activities to the Bot Connector service named by each
// activity's service URL.
type Client struct {
	httpClient *http.Client
	tokens     oauth2.TokenSource
	logger     *slog.Logger
}

// NewClient creates a connector client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Client{
		httpClient: httpClient,
		logger:     logger,
	}
	if cfg.AppID != "" {
		c.tokens = newTokenSource(cfg)
	}
	return c
}

// SendActivity posts act into its conversation. Activities with a replyToId
// are posted as replies. Trace activities are only delivered to the Emulator.
func (c *Client) SendActivity(ctx context.Context, act *activity.Activity) (*ResourceResponse, error) {
	if act.Type == activity.TypeTrace && act.ChannelID != EmulatorChannelID {
		c.logger.Debug("dropping trace activity for non-emulator channel",
			"channel_id", act.ChannelID,
			"name", act.Name,
		)
		return &ResourceResponse{}, nil
	}

	if act.ServiceURL == "" {
		return nil, ErrNoServiceURL
	}

	endpoint := strings.TrimRight(act.ServiceURL, "/") +
		"/v3/conversations/" + url.PathEscape(act.Conversation.ID) + "/activities"
	if act.ReplyToID != "" {
		endpoint += "/" + url.PathEscape(act.ReplyToID)
	}

	jsonBody, err := json.Marshal(act)
	if err != nil {
		return nil, fmt.Errorf("marshaling activity: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("requesting connector token: %w", err)
		}
		token.SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending activity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("connector returned status %d: %s", resp.StatusCode, string(body))
	}

	var rr ResourceResponse
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &rr); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
	}

	c.logger.Debug("activity sent",
		"type", act.Type,
		"conversation_id", act.Conversation.ID,
		"activity_id", rr.ID,
	)
	return &rr, nil
}

var _ Sender = (*Client)(nil)
