package routes

import (
	"github.com/addahq/adda-backend/handlers"
	"github.com/addahq/adda-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func UserRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	users := api.Group("/users", middleware.Protected())
	users.Get("/me", handlers.GetProfile)
	users.Put("/me", handlers.UpdateProfile)
	users.Post("/discover", handlers.DiscoverUsers)
	users.Post("/follow", handlers.FollowUser)
	users.Post("/unfollow", handlers.UnfollowUser)
	users.Post("/connect", handlers.SendConnectionRequest)
	users.Post("/connect/accept", handlers.AcceptConnectionRequest)
	users.Get("/connections", handlers.GetUserConnections)
	users.Get("/:id", handlers.GetUserProfile)
}
