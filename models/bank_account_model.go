package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	BankVerificationPending       = "PENDING"
	BankVerificationPennyTestSent = "PENNY_TEST_SENT"
	BankVerificationVerified      = "VERIFIED"
	BankVerificationRejected      = "REJECTED"
)

const MaxPennyTestAttempts = 3

type BankAccount struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProviderID         uuid.UUID `gorm:"not null" json:"provider_id"`
	AccountHolderName  string    `gorm:"size:255;not null" json:"account_holder_name"`
	AccountNumber      string    `gorm:"size:34;not null" json:"account_number"`
	IFSCCode           string    `gorm:"size:11;not null" json:"ifsc_code"`
	BankName           string    `gorm:"size:255;not null" json:"bank_name"`
	VerificationStatus string    `gorm:"size:20;not null;default:'PENDING'" json:"verification_status"`

	// PennyAmount is in paise, never exposed to the account owner.
	PennyAmount       *int64 `json:"-"`
	PennyTestAttempts int    `gorm:"not null;default:0" json:"penny_test_attempts"`

	Provider User `gorm:"foreignkey:ProviderID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
