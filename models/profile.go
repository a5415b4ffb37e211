// Package models contains domain entities and business models for the platform
package models

import (
	"time"

	"github.com/lib/pq"
)

// Profile is the public portfolio page attached to a user.
type Profile struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex:uk_profiles_user_id" json:"user_id"`
	User   User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user,omitempty"`

	DisplayName *string `gorm:"size:100" json:"display_name,omitempty"`
	Headline    *string `gorm:"size:120" json:"headline,omitempty"`
	Bio         *string `gorm:"size:200" json:"bio,omitempty"`
	About       *string `gorm:"size:500" json:"about,omitempty"`
	Location    *string `gorm:"size:100" json:"location,omitempty"`
	WebsiteURL  *string `gorm:"size:255" json:"website_url,omitempty"`

	Skills pq.StringArray `gorm:"type:text[]" json:"skills,omitempty"`

	// URLs produced by the upload pipeline
	ProfilePicture *string `gorm:"type:text" json:"profile_picture,omitempty"`
	BannerImage    *string `gorm:"type:text" json:"banner_image,omitempty"`

	ProfileSetupCompleted *bool `gorm:"default:false" json:"profile_setup_completed"`

	// Denormalized counters maintained by the flows
	LikesCount          int `gorm:"default:0" json:"likes_count"`
	ViewsCount          int `gorm:"default:0" json:"views_count"`
	PortfolioItemsCount int `gorm:"default:0" json:"portfolio_items_count"`
	ProjectsCount       int `gorm:"default:0" json:"projects_count"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ProfileFilter represents filter criteria for profile queries
type ProfileFilter struct {
	ID            *uint
	UserID        *uint
	Location      *string
	SetupComplete *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
