package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SlotStatusAvailable = "available"
	SlotStatusBooked    = "booked"
)

type AvailabilitySlot struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProviderID uuid.UUID `gorm:"not null" json:"-"`
	StartTime  time.Time `gorm:"not null" json:"start_time"`
	EndTime    time.Time `gorm:"not null" json:"end_time"`
	Status     string    `gorm:"size:20;not null;default:'available'" json:"status"`

	Provider User `gorm:"foreignkey:ProviderID" json:"provider,omitempty"`
}
