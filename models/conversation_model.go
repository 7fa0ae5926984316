package models

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BookingID uuid.UUID `gorm:"not null;unique" json:"booking_id"`

	Participants []*User `gorm:"many2many:conversation_participants;" json:"participants,omitempty"`
	Booking      Booking `gorm:"foreignkey:BookingID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
