package models

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID            uuid.UUID `gorm:"not null;unique" json:"user_id"`
	FullName          string    `gorm:"size:255;not null" json:"full_name"`
	Phone             *string   `gorm:"size:20" json:"phone"`
	ProfilePictureURL *string   `gorm:"size:255" json:"profile_picture_url"`
	Bio               *string   `gorm:"type:text" json:"bio"`
	TimeZone          *string   `gorm:"size:100" json:"time_zone"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
