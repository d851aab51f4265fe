package handlers

import (
	"log"

	"github.com/addahq/adda-backend/database"
	"github.com/addahq/adda-backend/middleware"
	"github.com/addahq/adda-backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxPostImages = 4

// AddPost creates a post from a multipart form: content plus up to four
// images, which are uploaded to the asset host before the post is stored.
func AddPost(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	content := c.FormValue("content")

	var imageURLs []string
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files := form.File["images"]
		if len(files) > maxPostImages {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"success": false, "message": "A post can have at most 4 images"})
		}
		if len(files) > 0 && mediaService == nil {
			return c.Status(fiber.StatusServiceUnavailable).
				JSON(fiber.Map{"success": false, "message": "Image uploads are not configured"})
		}
		for _, fileHeader := range files {
			url, err := mediaService.UploadImage(c.Context(), fileHeader, "posts")
			if err != nil {
				log.Printf("Failed to upload post image: %v", err)
				return c.Status(fiber.StatusBadGateway).
					JSON(fiber.Map{"success": false, "message": "Failed to upload image"})
			}
			imageURLs = append(imageURLs, url)
		}
	}

	if content == "" && len(imageURLs) == 0 {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Post must contain text or images"})
	}

	postType := models.PostTypeText
	switch {
	case content != "" && len(imageURLs) > 0:
		postType = models.PostTypeTextWithImage
	case len(imageURLs) > 0:
		postType = models.PostTypeImage
	}

	post := models.Post{
		UserID:    userID,
		Content:   content,
		ImageURLs: imageURLs,
		PostType:  postType,
	}
	if err := database.DB.Create(&post).Error; err != nil {
		log.Printf("Failed to create post for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to create post"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Post created successfully"})
}

// GetFeedPosts returns posts by the caller, their connections and everyone
// they follow, newest first.
func GetFeedPosts(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	userIDs := []string{userID}

	var connectionIDs []string
	if err := database.DB.Table("user_connections").
		Where("user_id = ?", userID).
		Pluck("connection_id", &connectionIDs).Error; err != nil {
		log.Printf("Failed to fetch connections for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to fetch feed"})
	}
	userIDs = append(userIDs, connectionIDs...)

	var followingIDs []string
	if err := database.DB.Table("user_following").
		Where("user_id = ?", userID).
		Pluck("following_id", &followingIDs).Error; err != nil {
		log.Printf("Failed to fetch following for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to fetch feed"})
	}
	userIDs = append(userIDs, followingIDs...)

	var posts []models.Post
	err := database.DB.
		Preload("User").
		Preload("Likes").
		Preload("Comments").
		Preload("Comments.User").
		Where("user_id IN ?", userIDs).
		Order("created_at desc").
		Find(&posts).Error
	if err != nil {
		log.Printf("Failed to fetch feed for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to fetch feed"})
	}

	return c.JSON(fiber.Map{"success": true, "posts": posts})
}

// LikePost toggles the caller's like on a post.
func LikePost(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req struct {
		PostID string `json:"post_id" validate:"required,uuid"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	var post models.Post
	if err := database.DB.First(&post, "id = ?", req.PostID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "Post not found"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	var liked int64
	database.DB.Table("post_likes").
		Where("post_id = ? AND user_id = ?", post.ID, userID).
		Count(&liked)

	if liked > 0 {
		if err := database.DB.Model(&post).Association("Likes").Delete(&user); err != nil {
			log.Printf("Failed to unlike post %s: %v", post.ID, err)
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"success": false, "message": "Failed to unlike post"})
		}
		return c.JSON(fiber.Map{"success": true, "message": "Post unliked"})
	}

	if err := database.DB.Model(&post).Association("Likes").Append(&user); err != nil {
		log.Printf("Failed to like post %s: %v", post.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to like post"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Post liked"})
}

// DeletePost removes a post; only the owner may do this.
func DeletePost(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	postID := c.Params("id")

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "Post not found"})
	}
	if post.UserID != userID {
		return c.Status(fiber.StatusForbidden).
			JSON(fiber.Map{"success": false, "message": "Unauthorized Action"})
	}

	if err := database.DB.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
		log.Printf("Failed to delete comments of post %s: %v", post.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to delete post"})
	}
	if err := database.DB.Delete(&post).Error; err != nil {
		log.Printf("Failed to delete post %s: %v", post.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to delete post"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Post deleted successfully"})
}

// UpdatePost edits a post's content; only the owner may do this.
func UpdatePost(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	postID := c.Params("id")

	var req struct {
		Content string `json:"content" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "Post not found"})
	}
	if post.UserID != userID {
		return c.Status(fiber.StatusForbidden).
			JSON(fiber.Map{"success": false, "message": "Unauthorized Action"})
	}

	post.Content = req.Content
	if err := database.DB.Save(&post).Error; err != nil {
		log.Printf("Failed to update post %s: %v", post.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to update post"})
	}

	database.DB.Preload("User").First(&post, "id = ?", post.ID)

	return c.JSON(fiber.Map{"success": true, "post": post, "message": "Post updated successfully"})
}

// AddComment appends a comment to a post.
func AddComment(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	postID := c.Params("id")

	var req struct {
		Text string `json:"text" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "Post not found"})
	}

	comment := models.Comment{
		PostID: post.ID,
		UserID: userID,
		Text:   req.Text,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		log.Printf("Failed to add comment to post %s: %v", post.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to add comment"})
	}

	var comments []models.Comment
	database.DB.Preload("User").
		Where("post_id = ?", post.ID).
		Order("created_at asc").
		Find(&comments)

	return c.JSON(fiber.Map{"success": true, "comments": comments, "message": "Comment added"})
}

// DeleteComment removes a comment; allowed for the comment owner or the post
// owner.
func DeleteComment(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	postID := c.Params("postId")
	commentID := c.Params("commentId")

	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "Post not found"})
	}

	var comment models.Comment
	if err := database.DB.First(&comment, "id = ? AND post_id = ?", commentID, post.ID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "Comment not found"})
	}

	if comment.UserID != userID && post.UserID != userID {
		return c.Status(fiber.StatusForbidden).
			JSON(fiber.Map{"success": false, "message": "Not authorized to delete this comment"})
	}

	if err := database.DB.Delete(&comment).Error; err != nil {
		log.Printf("Failed to delete comment %s: %v", comment.ID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to delete comment"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Comment deleted"})
}

// SharePost sends a post to another user as a direct message, so shares ride
// the same persistence and push path as any other message.
func SharePost(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req struct {
		PostID      string `json:"post_id" validate:"required,uuid"`
		RecipientID string `json:"recipient_id" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	postID, _ := uuid.Parse(req.PostID)
	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"success": false, "message": "Post not found"})
	}

	if _, err := messageService.Send(userID, req.RecipientID, "", "", &post.ID); err != nil {
		log.Printf("Failed to share post %s with %s: %v", post.ID, req.RecipientID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to share post"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Post shared successfully"})
}
