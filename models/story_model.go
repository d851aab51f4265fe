package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StoryTypeText  = "text"
	StoryTypeImage = "image"
)

// Story is a 24-hour ephemeral post; expired rows are purged by a cron job.
type Story struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID          string    `gorm:"size:64;not null;index" json:"user_id"`
	Content         string    `gorm:"type:text" json:"content"`
	MediaURL        string    `gorm:"size:512" json:"media_url"`
	MediaType       string    `gorm:"size:16;not null;default:'text'" json:"media_type"`
	BackgroundColor string    `gorm:"size:16" json:"background_color"`

	User User `gorm:"foreignkey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// StoryTTL is how long a story stays visible before the cleanup job removes it.
const StoryTTL = 24 * time.Hour
