package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProviderStatusPending  = "pending"
	ProviderStatusActive   = "active"
	ProviderStatusRejected = "rejected"
)

type Provider struct {
	UserID         uuid.UUID `gorm:"primary_key" json:"user_id"`
	Headline       *string   `gorm:"size:255" json:"headline"`
	Expertise      *string   `gorm:"type:text" json:"expertise"`
	Status         string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	RatePerSession int64     `gorm:"not null;default:0" json:"rate_per_session"`

	User User `gorm:"foreignkey:UserID" json:"user"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
