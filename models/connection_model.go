package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ConnectionStatusPending  = "pending"
	ConnectionStatusAccepted = "accepted"
)

// Connection is a request edge between two users. Once accepted, both users
// also gain a row in the user_connections join table so feed queries stay a
// single IN clause.
type Connection struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FromUserID string    `gorm:"size:64;not null;index:idx_connections_pair,unique" json:"from_user_id"`
	ToUserID   string    `gorm:"size:64;not null;index:idx_connections_pair,unique" json:"to_user_id"`
	Status     string    `gorm:"size:16;not null;default:'pending'" json:"status"`

	FromUser User `gorm:"foreignkey:FromUserID" json:"from_user,omitempty"`
	ToUser   User `gorm:"foreignkey:ToUserID" json:"to_user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Connection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
