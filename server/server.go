package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
)

// Server is the bridge HTTP server.
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new bridge server and registers its routes.
func NewServer(config Config) (*Server, error) {
	switch {
	case config.Adapter == nil:
		return nil, errors.New("adapter is required")
	case config.Bot == nil:
		return nil, errors.New("bot is required")
	case config.Directory == nil:
		return nil, errors.New("reference directory is required")
	case config.Notifier == nil:
		return nil, errors.New("notifier is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/api/messages", s.handleMessages)
	app.Get("/api/notify", s.handleNotify)
	app.Get("/api/notifyAll", s.handleNotifyAll)
	app.Get("/api/references", s.handleReferences)

	if config.MCPHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCPHandler))
	}

	return s, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting bridge server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
