package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PayoutStatusRequested  = "REQUESTED"
	PayoutStatusApproved   = "APPROVED"
	PayoutStatusProcessing = "PROCESSING"
	PayoutStatusCompleted  = "COMPLETED"
	PayoutStatusRejected   = "REJECTED"
	PayoutStatusFailed     = "FAILED"
)

type Payout struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProviderID      uuid.UUID `gorm:"not null" json:"provider_id"`
	BankAccountID   uuid.UUID `gorm:"not null" json:"bank_account_id"`
	RequestedAmount int64     `gorm:"not null" json:"requested_amount"`
	// ActualAmount is RequestedAmount minus the transfer fee, set on approval.
	ActualAmount    *int64     `json:"actual_amount"`
	Status          string     `gorm:"size:20;not null;default:'REQUESTED'" json:"status"`
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason"`
	ProcessedAt     *time.Time `json:"processed_at"`

	Provider    User         `gorm:"foreignkey:ProviderID" json:"provider,omitempty"`
	BankAccount BankAccount  `gorm:"foreignkey:BankAccountID" json:"bank_account,omitempty"`
	AuditLogs   []PayoutAuditLog `gorm:"foreignkey:PayoutID" json:"audit_logs,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PayoutAuditLog rows are append-only; every payout transition writes one.
type PayoutAuditLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PayoutID    uuid.UUID `gorm:"not null" json:"payout_id"`
	Action      string    `gorm:"size:50;not null" json:"action"`
	Details     *string   `gorm:"type:text" json:"details"`
	PerformedBy uuid.UUID `gorm:"not null" json:"performed_by"`
	CreatedAt   time.Time `json:"created_at"`
}
