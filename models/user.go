// Package models contains domain entities and business models for the platform
package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UUID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Email    string    `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`
	Username string    `gorm:"size:50;not null;uniqueIndex:idx_users_username" json:"username"`

	PasswordHash string `gorm:"size:255;not null" json:"-"` // Never serialize password hash

	// Status and verification
	IsEmailVerified *bool `gorm:"default:false" json:"is_email_verified"`
	IsActive        *bool `gorm:"default:true;index:idx_users_is_active" json:"is_active"`
	IsAdmin         *bool `gorm:"default:false" json:"is_admin"`

	// Timestamps
	CreatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_users_created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	LastLoginAt     *time.Time `gorm:"index:idx_users_last_login_at" json:"last_login_at,omitempty"`

	// Relations
	Profile     *Profile      `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Sessions    []UserSession `gorm:"foreignKey:UserID" json:"-"`
	Projects    []Project     `gorm:"foreignKey:UserID" json:"-"`
	MediaAssets []MediaAsset  `gorm:"foreignKey:UserID" json:"-"`
	Points      *UserPoints   `gorm:"foreignKey:UserID" json:"points,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	Email           *string
	Username        *string
	IsEmailVerified *bool
	IsActive        *bool
	IsAdmin         *bool
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
	LastLoginAfter  *time.Time
	LastLoginBefore *time.Time
}
