package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypePost  = "post"
)

type Message struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	FromUserID  string     `gorm:"size:64;not null;index:idx_messages_from_to" json:"from_user_id"`
	ToUserID    string     `gorm:"size:64;not null;index:idx_messages_from_to" json:"to_user_id"`
	Text        string     `gorm:"type:text" json:"text"`
	MessageType string     `gorm:"size:16;not null;default:'text'" json:"message_type"`
	MediaURL    string     `gorm:"size:512" json:"media_url"`
	PostID      *uuid.UUID `gorm:"type:uuid" json:"post_id,omitempty"`
	IsRead      bool       `gorm:"not null;default:false" json:"is_read"`

	FromUser User  `gorm:"foreignkey:FromUserID" json:"from_user,omitempty"`
	ToUser   User  `gorm:"foreignkey:ToUserID" json:"to_user,omitempty"`
	Post     *Post `gorm:"foreignkey:PostID" json:"post,omitempty"`

	Deletions []MessageDeletion `gorm:"foreignkey:MessageID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MessageDeletion hides one message from one participant without removing it
// for the other. A row per (message, user) keeps the set-add idempotent.
type MessageDeletion struct {
	MessageID uuid.UUID `gorm:"type:uuid;primary_key" json:"message_id"`
	UserID    string    `gorm:"size:64;primary_key" json:"user_id"`
}
