package models

import (
	"time"

	"github.com/google/uuid"
)

// Balance and PendingAmount are whole rupees. PendingAmount tracks funds
// reserved for in-flight payouts and is never spendable.
type Wallet struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID `gorm:"not null;unique" json:"user_id"`
	Balance       int64     `gorm:"not null;default:0" json:"balance"`
	PendingAmount int64     `gorm:"not null;default:0" json:"pending_amount"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
