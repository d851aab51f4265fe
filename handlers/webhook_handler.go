package handlers

import (
	"crypto/subtle"
	"fmt"
	"log"
	"math/rand"
	"strings"

	config "github.com/addahq/adda-backend/configs"
	"github.com/addahq/adda-backend/database"
	"github.com/addahq/adda-backend/models"
	"github.com/gofiber/fiber/v2"
)

type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Username  string `json:"username"`
		ImageURL  string `json:"image_url"`
	} `json:"data"`
}

// IdentityWebhook ingests user lifecycle events from the identity provider,
// which owns sign-up and sign-in. This service only mirrors the profile
// record so posts and messages have something to join against.
func IdentityWebhook(c *fiber.Ctx) error {
	secret := config.Config("WEBHOOK_SECRET")
	provided := c.Get("X-Webhook-Secret")
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(provided)) != 1 {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"success": false, "message": "Invalid webhook secret"})
	}

	var event identityEvent
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if event.Data.ID == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Missing user id"})
	}

	switch event.Type {
	case "user.created":
		user := models.User{
			ID:             event.Data.ID,
			Email:          event.Data.Email,
			FullName:       strings.TrimSpace(event.Data.FirstName + " " + event.Data.LastName),
			Username:       uniqueUsername(event.Data.Username, event.Data.Email),
			Bio:            models.DefaultBio,
			ProfilePicture: event.Data.ImageURL,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Failed to create user %s from webhook: %v", event.Data.ID, err)
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"success": false, "message": "Failed to create user"})
		}

	case "user.updated":
		var user models.User
		if err := database.DB.First(&user, "id = ?", event.Data.ID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"success": false, "message": "User not found"})
		}
		user.Email = event.Data.Email
		user.FullName = strings.TrimSpace(event.Data.FirstName + " " + event.Data.LastName)
		if event.Data.ImageURL != "" {
			user.ProfilePicture = event.Data.ImageURL
		}
		if err := database.DB.Save(&user).Error; err != nil {
			log.Printf("Failed to update user %s from webhook: %v", event.Data.ID, err)
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"success": false, "message": "Failed to update user"})
		}

	case "user.deleted":
		if err := database.DB.Delete(&models.User{}, "id = ?", event.Data.ID).Error; err != nil {
			log.Printf("Failed to delete user %s from webhook: %v", event.Data.ID, err)
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"success": false, "message": "Failed to delete user"})
		}

	default:
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Unknown event type"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// uniqueUsername prefers the provider's username, falls back to the email
// local part, and appends digits until the result is free.
func uniqueUsername(preferred, email string) string {
	base := preferred
	if base == "" {
		base = strings.SplitN(email, "@", 2)[0]
	}
	if base == "" {
		base = "user"
	}

	candidate := base
	for {
		var taken int64
		database.DB.Model(&models.User{}).Where("username = ?", candidate).Count(&taken)
		if taken == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s%d", base, rand.Intn(10000))
	}
}
