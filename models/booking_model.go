package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	BookingStatusPending        = "PENDING"
	BookingStatusPaymentPending = "PAYMENT_PENDING"
	BookingStatusConfirmed      = "CONFIRMED"
	BookingStatusCompleted      = "COMPLETED"
	BookingStatusCancelled      = "CANCELLED"
	BookingStatusDisputed       = "DISPUTED"
)

// PaymentDeadlineWindow is how long before the session start an unpaid
// booking is still allowed to complete payment.
const PaymentDeadlineWindow = 60 * time.Minute

type Booking struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	SeekerID           uuid.UUID  `gorm:"not null" json:"seeker_id"`
	ProviderID         uuid.UUID  `gorm:"not null" json:"provider_id"`
	AvailabilitySlotID *uuid.UUID `json:"availability_slot_id"`
	StartTime          time.Time  `gorm:"not null" json:"start_time"`
	EndTime            time.Time  `gorm:"not null" json:"end_time"`
	Amount             int64      `gorm:"not null" json:"amount"`
	Status             string     `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	MeetURL            *string    `gorm:"size:255" json:"meet_url"`
	RecordingURL       *string    `gorm:"size:255" json:"recording_url"`

	Seeker           User             `gorm:"foreignkey:SeekerID" json:"seeker,omitempty"`
	Provider         User             `gorm:"foreignkey:ProviderID" json:"provider,omitempty"`
	AvailabilitySlot AvailabilitySlot `gorm:"foreignkey:AvailabilitySlotID" json:"availability_slot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentDeadline is the instant after which an unpaid booking expires.
// An event arriving at exactly the deadline counts as expired.
func (b *Booking) PaymentDeadline() time.Time {
	return b.StartTime.Add(-PaymentDeadlineWindow)
}
