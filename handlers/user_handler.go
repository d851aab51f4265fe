package handlers

import (
	"log"

	"github.com/addahq/adda-backend/database"
	"github.com/addahq/adda-backend/middleware"
	"github.com/addahq/adda-backend/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetProfile returns the caller's own profile.
func GetProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// GetUserProfile returns any user's profile together with their posts.
func GetUserProfile(c *fiber.Ctx) error {
	profileID := c.Params("id")

	var user models.User
	if err := database.DB.First(&user, "id = ?", profileID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	var posts []models.Post
	if err := database.DB.
		Preload("User").
		Preload("Likes").
		Preload("Comments").
		Preload("Comments.User").
		Where("user_id = ?", profileID).
		Order("created_at desc").
		Find(&posts).Error; err != nil {
		log.Printf("Failed to fetch posts for profile %s: %v", profileID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to fetch profile"})
	}

	return c.JSON(fiber.Map{"success": true, "profile": user, "posts": posts})
}

// UpdateProfile edits the caller's profile from a multipart form. Profile
// picture and cover photo, when present, are uploaded to the asset host
// first.
func UpdateProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	if username := c.FormValue("username"); username != "" && username != user.Username {
		var taken int64
		database.DB.Model(&models.User{}).
			Where("username = ? AND id <> ?", username, userID).
			Count(&taken)
		if taken > 0 {
			return c.Status(fiber.StatusConflict).
				JSON(fiber.Map{"success": false, "message": "Username already taken"})
		}
		user.Username = username
	}
	if fullName := c.FormValue("full_name"); fullName != "" {
		user.FullName = fullName
	}
	if bio := c.FormValue("bio"); bio != "" {
		user.Bio = bio
	}
	if location := c.FormValue("location"); location != "" {
		user.Location = location
	}

	for field, dest := range map[string]*string{
		"profile_picture": &user.ProfilePicture,
		"cover_photo":     &user.CoverPhoto,
	} {
		fileHeader, err := c.FormFile(field)
		if err != nil {
			continue
		}
		if mediaService == nil {
			return c.Status(fiber.StatusServiceUnavailable).
				JSON(fiber.Map{"success": false, "message": "Image uploads are not configured"})
		}
		url, err := mediaService.UploadImage(c.Context(), fileHeader, "profiles")
		if err != nil {
			log.Printf("Failed to upload %s for %s: %v", field, userID, err)
			return c.Status(fiber.StatusBadGateway).
				JSON(fiber.Map{"success": false, "message": "Failed to upload image"})
		}
		*dest = url
	}

	if err := database.DB.Save(&user).Error; err != nil {
		log.Printf("Failed to update profile %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"success": true, "user": user, "message": "Profile updated successfully"})
}

// DiscoverUsers searches profiles by username, name, location or email,
// excluding the caller.
func DiscoverUsers(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req struct {
		Input string `json:"input"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}

	pattern := "%" + req.Input + "%"
	var users []models.User
	err := database.DB.
		Where("id <> ?", userID).
		Where(
			database.DB.Where("username LIKE ?", pattern).
				Or("full_name LIKE ?", pattern).
				Or("location LIKE ?", pattern).
				Or("email LIKE ?", pattern),
		).
		Find(&users).Error
	if err != nil {
		log.Printf("Failed to search users: %v", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to search users"})
	}

	return c.JSON(fiber.Map{"success": true, "users": users})
}

// FollowUser adds the caller to the target's followers and the target to the
// caller's following list.
func FollowUser(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req struct {
		ID string `json:"id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	if req.ID == userID {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "You cannot follow yourself"})
	}

	var user, target models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "User not found"})
	}
	if err := database.DB.First(&target, "id = ?", req.ID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	if err := database.DB.Model(&user).Association("Following").Append(&target); err != nil {
		log.Printf("Failed to follow %s -> %s: %v", userID, target.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to follow user"})
	}
	if err := database.DB.Model(&target).Association("Followers").Append(&user); err != nil {
		log.Printf("Failed to record follower %s for %s: %v", userID, target.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to follow user"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Now you are following this user"})
}

// UnfollowUser undoes FollowUser.
func UnfollowUser(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req struct {
		ID string `json:"id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	var user, target models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "User not found"})
	}
	if err := database.DB.First(&target, "id = ?", req.ID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	if err := database.DB.Model(&user).Association("Following").Delete(&target); err != nil {
		log.Printf("Failed to unfollow %s -> %s: %v", userID, target.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to unfollow user"})
	}
	if err := database.DB.Model(&target).Association("Followers").Delete(&user); err != nil {
		log.Printf("Failed to remove follower %s from %s: %v", userID, target.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to unfollow user"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "You are no longer following this user"})
}

// SendConnectionRequest creates a pending connection to another user. If a
// pending request already exists in the other direction, both are accepted.
func SendConnectionRequest(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req struct {
		ID string `json:"id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	if req.ID == userID {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "You cannot connect with yourself"})
	}

	var existing models.Connection
	err := database.DB.
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userID, req.ID, req.ID, userID).
		First(&existing).Error
	if err == nil {
		if existing.Status == models.ConnectionStatusAccepted {
			return c.JSON(fiber.Map{"success": true, "message": "You are already connected"})
		}
		if existing.FromUserID == req.ID {
			// The other side already asked; treat this as an accept.
			return acceptConnection(c, &existing, userID)
		}
		return c.JSON(fiber.Map{"success": true, "message": "Connection request pending"})
	}
	if err != gorm.ErrRecordNotFound {
		log.Printf("Failed to look up connection %s/%s: %v", userID, req.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to send connection request"})
	}

	connection := models.Connection{
		FromUserID: userID,
		ToUserID:   req.ID,
		Status:     models.ConnectionStatusPending,
	}
	if err := database.DB.Create(&connection).Error; err != nil {
		log.Printf("Failed to create connection request %s -> %s: %v", userID, req.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to send connection request"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Connection request sent successfully"})
}

// AcceptConnectionRequest accepts a pending request addressed to the caller.
func AcceptConnectionRequest(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req struct {
		ID string `json:"id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	var connection models.Connection
	err := database.DB.
		Where("from_user_id = ? AND to_user_id = ? AND status = ?",
			req.ID, userID, models.ConnectionStatusPending).
		First(&connection).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "Connection request not found"})
	}

	return acceptConnection(c, &connection, userID)
}

func acceptConnection(c *fiber.Ctx, connection *models.Connection, userID string) error {
	var from, to models.User
	if err := database.DB.First(&from, "id = ?", connection.FromUserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "User not found"})
	}
	if err := database.DB.First(&to, "id = ?", connection.ToUserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	connection.Status = models.ConnectionStatusAccepted
	if err := database.DB.Save(connection).Error; err != nil {
		log.Printf("Failed to accept connection %s: %v", connection.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to accept connection"})
	}
	if err := database.DB.Model(&from).Association("Connections").Append(&to); err != nil {
		log.Printf("Failed to link connection %s: %v", connection.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to accept connection"})
	}
	if err := database.DB.Model(&to).Association("Connections").Append(&from); err != nil {
		log.Printf("Failed to link connection %s: %v", connection.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to accept connection"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Connection accepted successfully"})
}

// GetUserConnections returns the caller's followers, following, connections
// and pending incoming requests in one shot.
func GetUserConnections(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var user models.User
	err := database.DB.
		Preload("Followers").
		Preload("Following").
		Preload("Connections").
		First(&user, "id = ?", userID).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	var pending []models.Connection
	database.DB.Preload("FromUser").
		Where("to_user_id = ? AND status = ?", userID, models.ConnectionStatusPending).
		Find(&pending)

	return c.JSON(fiber.Map{
		"success":             true,
		"followers":           user.Followers,
		"following":           user.Following,
		"connections":         user.Connections,
		"pending_connections": pending,
	})
}
