package routes

import (
	"github.com/addahq/adda-backend/handlers"
	"github.com/addahq/adda-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func MessageRoutes(app *fiber.App, h *handlers.MessageHandler) {
	api := app.Group("/api/v1")

	messages := api.Group("/messages")

	// The event stream is opened by EventSource, which cannot set an
	// Authorization header, so it stays outside the JWT middleware.
	messages.Get("/:userId/events", h.StreamEvents)

	messages.Post("/send", middleware.Protected(), h.SendMessage)
	messages.Post("/chat", middleware.Protected(), h.GetChatMessages)
	messages.Get("/recent", middleware.Protected(), h.RecentMessages)
	messages.Delete("/conversation/:userId", middleware.Protected(), h.DeleteConversation)
	messages.Delete("/:id", middleware.Protected(), h.DeleteMessage)
}
