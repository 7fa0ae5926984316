package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleSeeker     = "SEEKER"
	RoleProvider   = "PROVIDER"
	RoleEmployee   = "EMPLOYEE"
	RoleSuperAdmin = "SUPER_ADMIN"
)

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email           string    `gorm:"size:255;not null;unique" json:"email"`
	Password        string    `gorm:"not null" json:"-"`
	Role            string    `gorm:"size:20;not null;default:'SEEKER'" json:"role"`
	IsEmailVerified bool      `gorm:"default:false" json:"is_email_verified"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`

	ResetPasswordToken          *string    `gorm:"size:255;unique" json:"-"`
	ResetPasswordTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
