// Package server provides the bridge HTTP endpoint: the Bot Framework
// messaging route, the proactive notification routes and the MCP endpoint.
package server

import (
	"log/slog"
	"net/http"

	"github.com/papercomputeco/bridge/pkg/bot"
	"github.com/papercomputeco/bridge/pkg/notify"
	"github.com/papercomputeco/bridge/pkg/reference"
)

// Config is the server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":3978")
	ListenAddr string

	// Adapter runs inbound turns.
	Adapter *bot.Adapter

	// Bot handles turns.
	Bot *bot.Bot

	// Directory backs the references route.
	Directory *reference.Directory

	// Notifier backs the notify routes.
	Notifier *notify.Notifier

	// MCPHandler is mounted at /mcp when set.
	MCPHandler http.Handler

	// Logger is the provided slog logger
	Logger *slog.Logger
}
