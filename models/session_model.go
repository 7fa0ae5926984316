package models

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	BookingID     uuid.UUID  `gorm:"not null;unique" json:"booking_id"`
	StartedAt     *time.Time `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at"`
	ChatExpiresAt time.Time  `gorm:"not null" json:"chat_expires_at"`
	RecordingURL  *string    `gorm:"size:255" json:"recording_url"`
	ReceiptURL    *string    `gorm:"size:255" json:"receipt_url"`

	Booking Booking `gorm:"foreignkey:BookingID" json:"booking,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
