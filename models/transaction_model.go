package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TxnTypeBookingPayment = "BOOKING_PAYMENT"
	TxnTypeRefund         = "REFUND"
	TxnTypeCommission     = "COMMISSION"
	TxnTypeTopup          = "TOPUP"
	TxnTypePayout         = "PAYOUT"
)

const (
	TxnStatusPending   = "pending"
	TxnStatusCompleted = "completed"
	TxnStatusFailed    = "failed"
	TxnStatusCancelled = "cancelled"
)

type Transaction struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID  `gorm:"not null" json:"user_id"`
	BookingID *uuid.UUID `json:"booking_id"`
	Amount    int64      `gorm:"not null" json:"amount"`
	Type      string     `gorm:"size:20;not null" json:"type"`
	Status    string     `gorm:"size:20;not null;default:'pending'" json:"status"`

	// Order reference handed to the payment gateway; webhook deliveries are
	// correlated back through this column.
	GatewayOrderID   *string `gorm:"size:255;unique" json:"gateway_order_id"`
	GatewayPaymentID *string `gorm:"size:255" json:"gateway_payment_id"`

	User    User    `gorm:"foreignkey:UserID" json:"-"`
	Booking Booking `gorm:"foreignkey:BookingID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
