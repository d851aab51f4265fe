package services

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/addahq/adda-backend/models"
	"github.com/addahq/adda-backend/realtime"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEmptyMessage    = errors.New("message must contain text, an image or a shared post")
	ErrNotParticipant  = errors.New("only a participant of the message may delete it")
	ErrMessageNotFound = errors.New("message not found")
)

// MessageService owns the direct-message lifecycle: persistence, conversation
// summaries and best-effort push delivery over the stream registry.
type MessageService struct {
	db       *gorm.DB
	registry *realtime.Registry
}

func NewMessageService(db *gorm.DB, registry *realtime.Registry) *MessageService {
	return &MessageService{db: db, registry: registry}
}

// Send persists a message from fromID to toID and attempts immediate push
// delivery to the recipient. Push absence or failure is not an error; the
// persisted message is returned either way.
func (s *MessageService) Send(fromID, toID, text, mediaURL string, postID *uuid.UUID) (*models.Message, error) {
	if text == "" && mediaURL == "" && postID == nil {
		return nil, ErrEmptyMessage
	}

	messageType := models.MessageTypeText
	if postID != nil {
		messageType = models.MessageTypePost
	} else if mediaURL != "" {
		messageType = models.MessageTypeImage
	}

	message := models.Message{
		FromUserID:  fromID,
		ToUserID:    toID,
		Text:        text,
		MessageType: messageType,
		MediaURL:    mediaURL,
		PostID:      postID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		// Both summary rows move forward with every send; only the
		// recipient's row accrues unread.
		if err := upsertSummary(tx, fromID, toID, &message, 0); err != nil {
			return err
		}
		return upsertSummary(tx, toID, fromID, &message, 1)
	})
	if err != nil {
		return nil, err
	}

	s.fanOut(&message)

	return &message, nil
}

// fanOut pushes the freshly persisted message, with the sender profile
// denormalized, to the recipient's stream if one is open. At most once, no
// queue: an offline recipient picks the message up on the next fetch.
func (s *MessageService) fanOut(message *models.Message) {
	var full models.Message
	err := s.db.Preload("FromUser").Preload("Post").First(&full, "id = ?", message.ID).Error
	if err != nil {
		log.Printf("fan-out: failed to load message %s: %v", message.ID, err)
		return
	}

	payload, err := json.Marshal(full)
	if err != nil {
		log.Printf("fan-out: failed to encode message %s: %v", message.ID, err)
		return
	}

	s.registry.Push(message.ToUserID, payload)
}

func upsertSummary(tx *gorm.DB, ownerID, counterpartID string, message *models.Message, unreadDelta int) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "counterpart_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"latest_message_id": message.ID,
			"latest_created_at": message.CreatedAt,
			"unread_count":      gorm.Expr("unread_count + ?", unreadDelta),
			// The conflict path bypasses gorm's automatic timestamp.
			"updated_at": time.Now(),
		}),
	}).Create(&models.ConversationSummary{
		OwnerID:         ownerID,
		CounterpartID:   counterpartID,
		LatestMessageID: message.ID,
		LatestCreatedAt: message.CreatedAt,
		UnreadCount:     unreadDelta,
	}).Error
}

// ListConversation returns the full thread between userID and otherID,
// excluding messages userID has soft-deleted, in ascending creation order.
// Side effect: every message from otherID to userID is marked read
// (soft-deleted ones included) and userID's unread counter for otherID is
// reset.
func (s *MessageService) ListConversation(userID, otherID string) ([]models.Message, error) {
	var messages []models.Message

	err := s.db.
		Preload("FromUser").
		Preload("Post").
		Where("((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?))",
			userID, otherID, otherID, userID).
		Where("NOT EXISTS (SELECT 1 FROM message_deletions d WHERE d.message_id = messages.id AND d.user_id = ?)", userID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Message{}).
			Where("from_user_id = ? AND to_user_id = ?", otherID, userID).
			Update("is_read", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.ConversationSummary{}).
			Where("owner_id = ? AND counterpart_id = ?", userID, otherID).
			Update("unread_count", 0).Error
	})
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// SoftDelete hides the message from actorID's view only. The actor must be a
// participant; repeating the call is a no-op.
func (s *MessageService) SoftDelete(messageID uuid.UUID, actorID string) error {
	var message models.Message
	if err := s.db.First(&message, "id = ?", messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	if message.FromUserID != actorID && message.ToUserID != actorID {
		return ErrNotParticipant
	}

	return s.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.MessageDeletion{MessageID: messageID, UserID: actorID}).Error
}

// DeleteConversation hard-deletes every message between the two users, in
// both directions, along with the soft-delete rows and both conversation
// summaries. Irreversible.
func (s *MessageService) DeleteConversation(userID, otherID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		pair := tx.Model(&models.Message{}).
			Select("id").
			Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
				userID, otherID, otherID, userID)

		if err := tx.Where("message_id IN (?)", pair).
			Delete(&models.MessageDeletion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userID, otherID, otherID, userID).
			Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("(owner_id = ? AND counterpart_id = ?) OR (owner_id = ? AND counterpart_id = ?)",
			userID, otherID, otherID, userID).
			Delete(&models.ConversationSummary{}).Error
	})
}

// RecentConversations returns one summary per counterpart, newest
// conversation first, with the latest message and counterpart profile
// denormalized.
func (s *MessageService) RecentConversations(userID string) ([]models.ConversationSummary, error) {
	var summaries []models.ConversationSummary

	err := s.db.
		Preload("Counterpart").
		Preload("LatestMessage").
		Preload("LatestMessage.FromUser").
		Where("owner_id = ?", userID).
		Order("latest_created_at desc").
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}

	return summaries, nil
}
