// Package watson implements pkg/assistant's Client on the Watson Assistant v2
// SDK.
package watson

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/IBM/go-sdk-core/v5/core"
	"github.com/watson-developer-cloud/go-sdk/v3/assistantv2"

	"github.com/papercomputeco/bridge/pkg/assistant"
)

const (
	// DefaultVersion is the API version date sent with every request.
	DefaultVersion = "2021-11-27"

	// DefaultURL is the service URL used when none is configured.
	DefaultURL = "https://gateway.watsonplatform.net/assistant/api"

	// DefaultIAMURL is the IBM Cloud IAM endpoint API keys are exchanged at.
	DefaultIAMURL = "https://iam.cloud.ibm.com"

	// invalidSessionDetail is the error text the service returns for an
	// expired or unknown session.
	invalidSessionDetail = "Invalid Session"
)

// Config holds configuration for the Watson Assistant client.
type Config struct {
	// URL is the service instance URL. Defaults to DefaultURL.
	URL string

	// APIKey is the IBM Cloud API key exchanged for IAM bearer tokens.
	// When empty, requests are sent without authorization (useful for local fakes).
	APIKey string

	// AssistantID identifies the assistant (environment) to talk to.
	AssistantID string

	// Version is the API version date. Defaults to DefaultVersion.
	Version string

	// IAMURL is the IAM base URL. Defaults to DefaultIAMURL.
	IAMURL string

	// HTTPClient overrides the client used for API calls.
	HTTPClient *http.Client
}

// Client talks to one assistant.
type Client struct {
	service     *assistantv2.AssistantV2
	assistantID string
}

// New creates a Watson Assistant client.
func New(cfg Config) (*Client, error) {
	if cfg.AssistantID == "" {
		return nil, fmt.Errorf("assistant id is required")
	}

	serviceURL := cfg.URL
	if serviceURL == "" {
		serviceURL = DefaultURL
	}

	version := cfg.Version
	if version == "" {
		version = DefaultVersion
	}

	authenticator, err := newAuthenticator(cfg)
	if err != nil {
		return nil, err
	}

	service, err := assistantv2.NewAssistantV2(&assistantv2.AssistantV2Options{
		URL:           strings.TrimRight(serviceURL, "/"),
		Version:       core.StringPtr(version),
		Authenticator: authenticator,
	})
	if err != nil {
		return nil, fmt.Errorf("creating assistant service: %w", err)
	}
	if cfg.HTTPClient != nil {
		service.Service.SetHTTPClient(cfg.HTTPClient)
	}

	return &Client{
		service:     service,
		assistantID: cfg.AssistantID,
	}, nil
}

// newAuthenticator exchanges the API key through IAM, or sends nothing when
// no key is configured.
func newAuthenticator(cfg Config) (core.Authenticator, error) {
	if cfg.APIKey == "" {
		return &core.NoAuthAuthenticator{}, nil
	}

	iamURL := cfg.IAMURL
	if iamURL == "" {
		iamURL = DefaultIAMURL
	}

	authenticator, err := core.NewIamAuthenticatorBuilder().
		SetApiKey(cfg.APIKey).
		SetURL(iamURL).
		Build()
	if err != nil {
		return nil, fmt.Errorf("creating iam authenticator: %w", err)
	}
	return authenticator, nil
}

// CreateSession opens a new stateful session.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	result, resp, err := c.service.CreateSessionWithContext(ctx, &assistantv2.CreateSessionOptions{
		AssistantID: core.StringPtr(c.assistantID),
	})
	if err != nil {
		return "", classify(resp, err)
	}
	if result == nil || result.SessionID == nil || *result.SessionID == "" {
		return "", assistant.Other(statusOf(resp), "no session id returned", nil)
	}
	return *result.SessionID, nil
}

// Message sends text to the assistant within a session.
func (c *Client) Message(ctx context.Context, sessionID, userID, text string) (*assistant.Response, error) {
	opts := &assistantv2.MessageOptions{
		AssistantID: core.StringPtr(c.assistantID),
		SessionID:   core.StringPtr(sessionID),
		Input: &assistantv2.MessageInput{
			MessageType: core.StringPtr("text"),
			Text:        core.StringPtr(text),
		},
	}
	if userID != "" {
		opts.UserID = core.StringPtr(userID)
	}

	result, resp, err := c.service.MessageWithContext(ctx, opts)
	if err != nil {
		return nil, classify(resp, err)
	}

	var items []json.RawMessage
	if result != nil && result.Output != nil {
		items = make([]json.RawMessage, 0, len(result.Output.Generic))
		for _, generic := range result.Output.Generic {
			raw, err := json.Marshal(generic)
			if err != nil {
				return nil, assistant.Other(statusOf(resp), "", fmt.Errorf("encoding generic output: %w", err))
			}
			items = append(items, raw)
		}
	}

	return &assistant.Response{
		Fragments: assistant.ParseGeneric(items),
	}, nil
}

// classify turns a failed call into a tagged assistant error. The SDK leaves
// the decoded error body in the response's Result.
func classify(resp *core.DetailedResponse, err error) error {
	status := statusOf(resp)
	if status == 0 {
		return assistant.Other(0, "", err)
	}

	detail := err.Error()
	if body, ok := resp.GetResultAsMap(); ok {
		if msg, ok := body["error"].(string); ok && msg != "" {
			detail = msg
		}
	}

	if detail == invalidSessionDetail {
		return assistant.SessionInvalid(status, detail)
	}
	if detail == "" {
		detail = http.StatusText(status)
	}
	return assistant.Other(status, detail, nil)
}

func statusOf(resp *core.DetailedResponse) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

// Ensure Client implements assistant.Client
var _ assistant.Client = (*Client)(nil)
