package models

import (
	"time"

	"github.com/google/uuid"
)

// UnmatchedRequest records a seeker who found no suitable slot, for staff
// follow-up.
type UnmatchedRequest struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	SeekerID      uuid.UUID  `gorm:"not null" json:"seeker_id"`
	Topic         string     `gorm:"size:255;not null" json:"topic"`
	PreferredTime *time.Time `json:"preferred_time"`
	Budget        *int64     `json:"budget"`
	Status        string     `gorm:"size:20;not null;default:'open'" json:"status"`

	Seeker User `gorm:"foreignkey:SeekerID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
