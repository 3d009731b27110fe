package chat

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handlers provides the assistant HTTP endpoint.
type Handlers struct {
	responder Responder
	demo      bool
	log       *zap.Logger
}

// NewHandlers creates the chat handlers. A nil responder selects the demo
// responder and marks replies accordingly.
func NewHandlers(responder Responder, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	demo := false
	if responder == nil {
		responder = DemoResponder{}
		demo = true
	}
	return &Handlers{responder: responder, demo: demo, log: log}
}

// Request is a visitor message plus the prior turns of the conversation.
type Request struct {
	Message string    `json:"message"`
	History []Message `json:"history"`
}

// Chat answers a visitor message.
// POST /api/chat
func (h *Handlers) Chat(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Message is required"})
	}

	text, err := h.responder.Respond(c.Context(), req.Message, req.History)
	if err != nil {
		h.log.Error("chat responder failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "I'm having trouble thinking right now. Please try again later.",
		})
	}

	if h.demo {
		return c.JSON(fiber.Map{"text": text, "isDemo": true})
	}
	return c.JSON(fiber.Map{"text": text})
}

// SetupRoutes mounts the chat route.
func SetupRoutes(app *fiber.App, h *Handlers) {
	app.Post("/api/chat", h.Chat)
}
