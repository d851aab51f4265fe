package routes

import (
	"github.com/addahq/adda-backend/handlers"
	"github.com/addahq/adda-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func PostRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	posts := api.Group("/posts", middleware.Protected())
	posts.Post("", handlers.AddPost)
	posts.Get("/feed", handlers.GetFeedPosts)
	posts.Post("/like", handlers.LikePost)
	posts.Post("/share", handlers.SharePost)
	posts.Put("/:id", handlers.UpdatePost)
	posts.Delete("/:id", handlers.DeletePost)
	posts.Post("/:id/comments", handlers.AddComment)
	posts.Delete("/:postId/comments/:commentId", handlers.DeleteComment)
}
