package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/bridge/pkg/activity"
)

var (
	listToolName    = "list_conversations"
	listDescription = "List every conversation the bot can proactively message, keyed by user id."

	notifyUserToolName    = "notify_user"
	notifyUserDescription = "Send a proactive message to one user's recorded conversation."

	notifyAllToolName    = "notify_all"
	notifyAllDescription = "Send a proactive message to every recorded conversation and report per-user results."
)

// ListInput is the (empty) input of the list_conversations tool.
type ListInput struct{}

// Conversation is one entry of the reference directory.
type Conversation struct {
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name,omitempty"`
	ChannelID      string `json:"channel_id"`
	ConversationID string `json:"conversation_id"`
	ServiceURL     string `json:"service_url"`
}

// ListOutput is the output of the list_conversations tool.
type ListOutput struct {
	Conversations []Conversation `json:"conversations"`
	Count         int            `json:"count"`
}

// NotifyUserInput is the input of the notify_user tool.
type NotifyUserInput struct {
	UserID  string `json:"user_id" jsonschema:"the user id whose conversation receives the message"`
	Message string `json:"message,omitempty" jsonschema:"message text (default: the configured notification text)"`
}

// NotifyUserOutput is the output of the notify_user tool.
type NotifyUserOutput struct {
	UserID string `json:"user_id"`
	Sent   bool   `json:"sent"`
}

// NotifyAllInput is the input of the notify_all tool.
type NotifyAllInput struct {
	Message string `json:"message,omitempty" jsonschema:"message text (default: the configured notification text)"`
}

// NotifyAllOutput is the output of the notify_all tool.
type NotifyAllOutput struct {
	Sent   []string  `json:"sent"`
	Failed []Failure `json:"failed"`
}

// Failure is one undelivered notification.
type Failure struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

func (s *Server) handleList(ctx context.Context, _ *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ListOutput, error) {
	refs, err := s.config.Directory.ListAll(ctx)
	if err != nil {
		s.config.Logger.Error("failed to list conversation references", "error", err)
		return errorResult("Failed to list conversations: %v", err), ListOutput{}, nil
	}

	output := ListOutput{
		Conversations: make([]Conversation, 0, len(refs)),
		Count:         len(refs),
	}
	for _, ref := range refs {
		output.Conversations = append(output.Conversations, conversation(ref))
	}

	return jsonResult(s, output)
}

func (s *Server) handleNotifyUser(ctx context.Context, _ *mcp.CallToolRequest, input NotifyUserInput) (*mcp.CallToolResult, NotifyUserOutput, error) {
	s.config.Logger.Debug("MCP notify_user request", "user_id", input.UserID)

	if err := s.config.Notifier.NotifyUser(ctx, input.UserID, input.Message); err != nil {
		return errorResult("Failed to notify %q: %v", input.UserID, err), NotifyUserOutput{UserID: input.UserID}, nil
	}

	return jsonResult(s, NotifyUserOutput{UserID: input.UserID, Sent: true})
}

func (s *Server) handleNotifyAll(ctx context.Context, _ *mcp.CallToolRequest, input NotifyAllInput) (*mcp.CallToolResult, NotifyAllOutput, error) {
	report, err := s.config.Notifier.NotifyAll(ctx, input.Message)
	if err != nil {
		s.config.Logger.Error("failed to notify all", "error", err)
		return errorResult("Failed to notify conversations: %v", err), NotifyAllOutput{}, nil
	}

	output := NotifyAllOutput{
		Sent:   report.Sent,
		Failed: make([]Failure, 0, len(report.Failed)),
	}
	for _, f := range report.Failed {
		output.Failed = append(output.Failed, Failure{UserID: f.UserID, Error: f.Error})
	}

	return jsonResult(s, output)
}

func conversation(ref activity.ConversationReference) Conversation {
	return Conversation{
		UserID:         ref.User.ID,
		UserName:       ref.User.Name,
		ChannelID:      ref.ChannelID,
		ConversationID: ref.Conversation.ID,
		ServiceURL:     ref.ServiceURL,
	}
}

// jsonResult returns output as structured content plus a serialized JSON
// text block for clients that ignore structured content.
func jsonResult[T any](s *Server, output T) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		s.config.Logger.Error("failed to marshal tool output", "error", err)
		var zero T
		return errorResult("Failed to serialize results: %v", err), zero, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}
