package routes

import (
	"github.com/addahq/adda-backend/handlers"
	"github.com/addahq/adda-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func StoryRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	stories := api.Group("/stories", middleware.Protected())
	stories.Post("", handlers.AddStory)
	stories.Get("", handlers.GetStories)
}
