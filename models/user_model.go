package models

import (
	"time"
)

// User mirrors the profile record synced from the external identity provider.
// The ID is the provider's subject identifier, so it is a plain string rather
// than a locally generated uuid.
type User struct {
	ID             string `gorm:"primary_key;size:64" json:"id"`
	Email          string `gorm:"size:255;not null" json:"email"`
	FullName       string `gorm:"size:255;not null" json:"full_name"`
	Username       string `gorm:"size:64;unique" json:"username"`
	Bio            string `gorm:"type:text" json:"bio"`
	ProfilePicture string `gorm:"size:512" json:"profile_picture"`
	CoverPhoto     string `gorm:"size:512" json:"cover_photo"`
	Location       string `gorm:"size:255" json:"location"`

	Followers   []*User `gorm:"many2many:user_followers;joinForeignKey:user_id;joinReferences:follower_id" json:"followers,omitempty"`
	Following   []*User `gorm:"many2many:user_following;joinForeignKey:user_id;joinReferences:following_id" json:"following,omitempty"`
	Connections []*User `gorm:"many2many:user_connections;joinForeignKey:user_id;joinReferences:connection_id" json:"connections,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const DefaultBio = "Hey there! I am using ADDA"
