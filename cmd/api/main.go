package main

import (
	"log"
	"time"

	config "github.com/addahq/adda-backend/configs"
	"github.com/addahq/adda-backend/database"
	"github.com/addahq/adda-backend/handlers"
	"github.com/addahq/adda-backend/jobs"
	"github.com/addahq/adda-backend/realtime"
	"github.com/addahq/adda-backend/routes"
	"github.com/addahq/adda-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate()

	var media *services.MediaService
	if cloudinaryURL := config.Config("CLOUDINARY_URL"); cloudinaryURL != "" {
		var err error
		media, err = services.NewMediaService(cloudinaryURL)
		if err != nil {
			log.Fatalf("🔥 Failed to initialize media service: %v", err)
		}
	} else {
		log.Println("Warning: CLOUDINARY_URL not set, image uploads disabled")
	}

	registry := realtime.NewRegistry()
	messages := services.NewMessageService(database.DB, registry)
	handlers.Setup(media, messages)
	messageHandler := handlers.NewMessageHandler(messages, registry, media)

	c := cron.New()
	c.AddFunc("*/15 * * * *", jobs.DeleteExpiredStories)
	go c.Start()
	log.Println("✅ Cron job for story cleanup scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "ADDA",
		CaseSensitive:     true,
		StrictRouting:     false,
		EnablePrintRoutes: true,
		// No WriteTimeout: the event stream holds its response open
		// indefinitely.
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Server is running",
		})
	})

	routes.WebhookRoutes(app)
	routes.UserRoutes(app)
	routes.PostRoutes(app)
	routes.StoryRoutes(app)
	routes.MessageRoutes(app, messageHandler)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	port := config.ConfigOr("PORT", "4000")
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
