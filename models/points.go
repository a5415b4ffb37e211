// Package models contains domain entities and business models for the platform
package models

import (
	"time"
)

// Ledger actions
const (
	PointsActionProfilePicture   = "profile_picture"
	PointsActionMediaUpload      = "media_upload"
	PointsActionProjectPublished = "project_published"
)

// PointsTransaction is one entry in the gamification ledger. Positive
// points are earned, negative points are spent.
type PointsTransaction struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	UserID      uint    `gorm:"not null;index:idx_points_tx_user_id" json:"user_id"`
	User        *User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Points      int     `gorm:"not null" json:"points"`
	Action      string  `gorm:"size:50;not null;index:idx_points_tx_action" json:"action"` // profile_picture, media_upload, project_published, ...
	Description *string `gorm:"size:255" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_points_tx_created_at" json:"created_at"`
}

func (PointsTransaction) TableName() string {
	return "points_transactions"
}

// PointsTransactionFilter represents filter criteria for ledger queries
type PointsTransactionFilter struct {
	ID            *uint
	UserID        *uint
	Action        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// UserPoints is the denormalized balance per user, kept in step with the
// ledger inside the same transaction.
type UserPoints struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:uk_user_points_user_id" json:"user_id"`
	User            *User     `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	TotalPoints     int       `gorm:"default:0" json:"total_points"`
	AvailablePoints int       `gorm:"default:0" json:"available_points"`
	UpdatedAt       time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (UserPoints) TableName() string {
	return "user_points"
}

// UserPointsFilter represents filter criteria for balance queries
type UserPointsFilter struct {
	ID     *uint
	UserID *uint
}
