package models

import (
	"time"

	"github.com/google/uuid"
)

// ConversationSummary is the incrementally maintained recent-conversations
// record: one row per (owner, counterpart) pair, updated in the same
// transaction as every send and read-mark so the recent list never rescans
// the full message history.
type ConversationSummary struct {
	OwnerID         string    `gorm:"size:64;primary_key" json:"owner_id"`
	CounterpartID   string    `gorm:"size:64;primary_key" json:"counterpart_id"`
	LatestMessageID uuid.UUID `gorm:"type:uuid;not null" json:"latest_message_id"`
	LatestCreatedAt time.Time `gorm:"not null;index" json:"latest_created_at"`
	UnreadCount     int       `gorm:"not null;default:0" json:"unread_count"`

	LatestMessage Message `gorm:"foreignkey:LatestMessageID" json:"latest_message,omitempty"`
	Counterpart   User    `gorm:"foreignkey:CounterpartID" json:"counterpart,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
