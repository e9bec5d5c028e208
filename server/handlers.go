package server

import (
	"encoding/json"
	"fmt"
	"html"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/bridge/pkg/activity"
	"github.com/papercomputeco/bridge/pkg/notify"
)

// NotificationsSent is the body heading returned after a notify route succeeds.
const NotificationsSent = "Notification messages have been sent."

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ReferencesResponse is the body of GET /api/references.
type ReferencesResponse struct {
	Count      int                              `json:"count"`
	References []activity.ConversationReference `json:"references"`
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleMessages runs one inbound activity through the adapter and bot.
func (s *Server) handleMessages(c *fiber.Ctx) error {
	act := &activity.Activity{}
	if err := json.Unmarshal(c.Body(), act); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid activity"})
	}
	if act.Type == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "activity type required"})
	}

	if err := s.config.Adapter.ProcessActivity(c.UserContext(), act, s.config.Bot.OnTurn); err != nil {
		s.logger.Error("turn failed",
			"activity_type", act.Type,
			"conversation_id", act.Conversation.ID,
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "turn failed"})
	}

	return c.SendStatus(fiber.StatusOK)
}

// handleNotify sends a proactive message to ?userID=. An optional ?message=
// overrides the configured text.
func (s *Server) handleNotify(c *fiber.Ctx) error {
	userID := c.Query("userID")
	if userID == "" {
		return htmlPage(c, fiber.StatusBadRequest, "Error: No user defined")
	}

	if err := s.config.Notifier.NotifyUser(c.UserContext(), userID, c.Query("message")); err != nil {
		s.logger.Warn("notify failed", "user_id", userID, "error", err)
		return htmlPage(c, fiber.StatusBadRequest, "Error: "+err.Error())
	}

	return htmlPage(c, fiber.StatusOK, NotificationsSent)
}

// handleNotifyAll sends a proactive message to every recorded conversation
// and responds once all deliveries have finished.
func (s *Server) handleNotifyAll(c *fiber.Ctx) error {
	report, err := s.config.Notifier.NotifyAll(c.UserContext(), c.Query("message"))
	if err != nil {
		s.logger.Error("notify all failed", "error", err)
		return htmlPage(c, fiber.StatusBadRequest, "Error: "+err.Error())
	}

	s.logFailures(report)
	return htmlPage(c, fiber.StatusOK, NotificationsSent)
}

func (s *Server) handleReferences(c *fiber.Ctx) error {
	refs, err := s.config.Directory.ListAll(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list references"})
	}

	return c.JSON(ReferencesResponse{
		Count:      len(refs),
		References: refs,
	})
}

// logFailures warns once per user a notification could not reach.
func (s *Server) logFailures(report *notify.Report) {
	for _, f := range report.Failed {
		s.logger.Warn("notification not delivered", "user_id", f.UserID, "error", f.Error)
	}
}

func htmlPage(c *fiber.Ctx, status int, heading string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).SendString(fmt.Sprintf("<html><body><h1>%s</h1></body></html>", html.EscapeString(heading)))
}
