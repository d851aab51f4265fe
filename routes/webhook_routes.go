package routes

import (
	"github.com/addahq/adda-backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func WebhookRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Authenticated by a shared webhook secret, not a user session.
	api.Post("/webhooks/identity", handlers.IdentityWebhook)
}
