// Package mcp provides an MCP (Model Context Protocol) server exposing the
// conversation reference directory and proactive notifications as tools.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/bridge/pkg/notify"
	"github.com/papercomputeco/bridge/pkg/reference"
	"github.com/papercomputeco/bridge/pkg/utils"
)

type Config struct {
	// Directory lists recorded conversations
	Directory *reference.Directory

	// Notifier delivers proactive messages
	Notifier *notify.Notifier

	// Logger is the provided slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the directory and notify tools.
func NewServer(c Config) (*Server, error) {
	if c.Directory == nil {
		return nil, errors.New("reference directory is required")
	}
	if c.Notifier == nil {
		return nil, errors.New("notifier is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "bridge",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        listToolName,
		Description: listDescription,
	}, s.handleList)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        notifyUserToolName,
		Description: notifyUserDescription,
	}, s.handleNotifyUser)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        notifyAllToolName,
		Description: notifyAllDescription,
	}, s.handleNotifyAll)

	s.mcpServer = mcpServer

	// Stateless streamable HTTP: every request is served by the same server.
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPServer returns the underlying MCP server, for in-process transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}
