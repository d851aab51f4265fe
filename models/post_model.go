package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PostTypeText          = "text"
	PostTypeImage         = "image"
	PostTypeTextWithImage = "text_with_image"
)

type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    string    `gorm:"size:64;not null;index" json:"user_id"`
	Content   string    `gorm:"type:text" json:"content"`
	ImageURLs []string  `gorm:"serializer:json" json:"image_urls"`
	PostType  string    `gorm:"size:32;not null;default:'text'" json:"post_type"`

	User     User      `gorm:"foreignkey:UserID" json:"user,omitempty"`
	Likes    []*User   `gorm:"many2many:post_likes" json:"likes,omitempty"`
	Comments []Comment `gorm:"foreignkey:PostID" json:"comments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Comment struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PostID uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID string    `gorm:"size:64;not null" json:"user_id"`
	Text   string    `gorm:"type:text;not null" json:"text"`

	User User `gorm:"foreignkey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
