package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DisputeStatusOpen     = "open"
	DisputeStatusResolved = "resolved"
)

const (
	ResolutionRefundSeeker  = "REFUND_SEEKER"
	ResolutionFavorProvider = "FAVOR_PROVIDER"
	ResolutionPartialRefund = "PARTIAL_REFUND"
)

type Dispute struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BookingID   uuid.UUID `gorm:"not null;unique" json:"booking_id"`
	InitiatorID uuid.UUID `gorm:"not null" json:"initiator_id"`
	Reason      string    `gorm:"type:text;not null" json:"reason"`
	EvidenceURL *string   `gorm:"size:255" json:"evidence_url"`
	Status      string    `gorm:"size:20;not null;default:'open'" json:"status"`

	Resolution     *string    `gorm:"size:20" json:"resolution"`
	RefundedAmount *int64     `json:"refunded_amount"`
	ResolvedByID   *uuid.UUID `json:"resolved_by_id"`
	ResolutionNote *string    `gorm:"type:text" json:"resolution_note"`
	ResolvedAt     *time.Time `json:"resolved_at"`

	Booking   Booking `gorm:"foreignkey:BookingID" json:"booking,omitempty"`
	Initiator User    `gorm:"foreignkey:InitiatorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
