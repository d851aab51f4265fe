package handlers

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/addahq/adda-backend/middleware"
	"github.com/addahq/adda-backend/realtime"
	"github.com/addahq/adda-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// keepaliveInterval is how often an idle event stream writes a comment frame.
// The write is what detects a dead transport and triggers registry cleanup.
const keepaliveInterval = 30 * time.Second

// MessageHandler serves the direct-message endpoints and the per-user event
// stream. The registry and service are constructed in main and passed in, so
// tests can run the handler against their own instances.
type MessageHandler struct {
	service  *services.MessageService
	registry *realtime.Registry
	media    *services.MediaService
}

func NewMessageHandler(service *services.MessageService, registry *realtime.Registry, media *services.MediaService) *MessageHandler {
	return &MessageHandler{service: service, registry: registry, media: media}
}

// SendMessage accepts a multipart form with to_user_id, optional text and an
// optional single image, persists the message and reports it back. Push
// delivery to the recipient happens inside the service and never fails the
// request.
func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	toUserID := c.FormValue("to_user_id")
	if toUserID == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "to_user_id is required"})
	}
	text := c.FormValue("text")

	mediaURL := ""
	if fileHeader, err := c.FormFile("image"); err == nil {
		if h.media == nil {
			return c.Status(fiber.StatusServiceUnavailable).
				JSON(fiber.Map{"success": false, "message": "Image uploads are not configured"})
		}
		mediaURL, err = h.media.UploadImage(c.Context(), fileHeader, "messages")
		if err != nil {
			log.Printf("Failed to upload message image: %v", err)
			return c.Status(fiber.StatusBadGateway).
				JSON(fiber.Map{"success": false, "message": "Failed to upload image"})
		}
	}

	message, err := h.service.Send(userID, toUserID, text, mediaURL, nil)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"success": false, "message": err.Error()})
		}
		log.Printf("Failed to send message from %s to %s: %v", userID, toUserID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to send message"})
	}

	return c.JSON(fiber.Map{"success": true, "message": message})
}

// GetChatMessages returns the thread with the requested user, oldest first,
// and marks every message from that user as read.
func (h *MessageHandler) GetChatMessages(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req struct {
		ToUserID string `json:"to_user_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.ToUserID == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "to_user_id is required"})
	}

	messages, err := h.service.ListConversation(userID, req.ToUserID)
	if err != nil {
		log.Printf("Failed to fetch conversation %s/%s: %v", userID, req.ToUserID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to fetch messages"})
	}

	return c.JSON(fiber.Map{"success": true, "messages": messages})
}

// RecentMessages returns one summary per counterpart, newest first.
func (h *MessageHandler) RecentMessages(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	summaries, err := h.service.RecentConversations(userID)
	if err != nil {
		log.Printf("Failed to fetch recent conversations for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to fetch recent messages"})
	}

	return c.JSON(fiber.Map{"success": true, "conversations": summaries})
}

// DeleteMessage soft-deletes one message for the caller only.
func (h *MessageHandler) DeleteMessage(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Invalid message id"})
	}

	if err := h.service.SoftDelete(messageID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrMessageNotFound):
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"success": false, "message": "Message not found"})
		case errors.Is(err, services.ErrNotParticipant):
			return c.Status(fiber.StatusForbidden).
				JSON(fiber.Map{"success": false, "message": "Not a participant of this message"})
		default:
			log.Printf("Failed to delete message %s for %s: %v", messageID, userID, err)
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"success": false, "message": "Failed to delete message"})
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "Message deleted for you"})
}

// DeleteConversation removes the entire shared history with the counterpart,
// for both sides. There is no undo.
func (h *MessageHandler) DeleteConversation(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	otherID := c.Params("userId")

	if err := h.service.DeleteConversation(userID, otherID); err != nil {
		log.Printf("Failed to delete conversation %s/%s: %v", userID, otherID, err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to delete conversation"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Conversation deleted"})
}

// StreamEvents opens the long-lived SSE stream for one user. A reconnect
// replaces any previous stream for the same user; the old writer sees its
// channel close and exits.
func (h *MessageHandler) StreamEvents(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "No user ID provided"})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")

	stream := h.registry.Register(userID)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		h.writeEvents(w, userID, stream)
	}))

	return nil
}

// writeEvents pumps a registered stream onto the wire until the transport
// dies or the stream is replaced. Any failed flush means the client is gone,
// so the registry entry is cleaned up before returning.
func (h *MessageHandler) writeEvents(w *bufio.Writer, userID string, stream chan []byte) {
	defer h.registry.Unregister(userID, stream)

	fmt.Fprint(w, "log: Connected to SSE stream\n\n")
	if err := w.Flush(); err != nil {
		return
	}

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case payload, ok := <-stream:
			if !ok {
				// Replaced by a newer connection.
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}
