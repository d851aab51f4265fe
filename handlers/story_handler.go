package handlers

import (
	"log"
	"time"

	"github.com/addahq/adda-backend/database"
	"github.com/addahq/adda-backend/middleware"
	"github.com/addahq/adda-backend/models"
	"github.com/gofiber/fiber/v2"
)

// AddStory creates a 24h story: either text on a background color or an
// uploaded image.
func AddStory(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	content := c.FormValue("content")
	backgroundColor := c.FormValue("background_color")

	mediaURL := ""
	mediaType := models.StoryTypeText
	if fileHeader, err := c.FormFile("media"); err == nil {
		if mediaService == nil {
			return c.Status(fiber.StatusServiceUnavailable).
				JSON(fiber.Map{"success": false, "message": "Image uploads are not configured"})
		}
		url, err := mediaService.UploadImage(c.Context(), fileHeader, "stories")
		if err != nil {
			log.Printf("Failed to upload story media: %v", err)
			return c.Status(fiber.StatusBadGateway).
				JSON(fiber.Map{"success": false, "message": "Failed to upload media"})
		}
		mediaURL = url
		mediaType = models.StoryTypeImage
	}

	if content == "" && mediaURL == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Story must contain text or media"})
	}

	story := models.Story{
		UserID:          userID,
		Content:         content,
		MediaURL:        mediaURL,
		MediaType:       mediaType,
		BackgroundColor: backgroundColor,
	}
	if err := database.DB.Create(&story).Error; err != nil {
		log.Printf("Failed to create story for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to create story"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Story created successfully"})
}

// GetStories returns unexpired stories from the caller and their network,
// newest first.
func GetStories(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	userIDs := []string{userID}

	var connectionIDs []string
	database.DB.Table("user_connections").
		Where("user_id = ?", userID).
		Pluck("connection_id", &connectionIDs)
	userIDs = append(userIDs, connectionIDs...)

	var followingIDs []string
	database.DB.Table("user_following").
		Where("user_id = ?", userID).
		Pluck("following_id", &followingIDs)
	userIDs = append(userIDs, followingIDs...)

	cutoff := time.Now().Add(-models.StoryTTL)

	var stories []models.Story
	err := database.DB.
		Preload("User").
		Where("user_id IN ? AND created_at > ?", userIDs, cutoff).
		Order("created_at desc").
		Find(&stories).Error
	if err != nil {
		log.Printf("Failed to fetch stories for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to fetch stories"})
	}

	return c.JSON(fiber.Map{"success": true, "stories": stories})
}
