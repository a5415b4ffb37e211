// Package models contains domain entities and business models for the platform
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/webstar-labs/webstar/utils"
)

// Project is a published body of work on a user's portfolio.
type Project struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_projects_uuid" json:"uuid"`
	UserID uint      `gorm:"not null;index:idx_projects_user_id" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user,omitempty"`

	Title       string  `gorm:"size:150;not null" json:"title"`
	Description *string `gorm:"size:500" json:"description,omitempty"`
	ProjectURL  *string `gorm:"size:255" json:"project_url,omitempty"`

	Tags pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`

	// Cover image URL produced by the upload pipeline
	CoverImage *string `gorm:"type:text" json:"cover_image,omitempty"`

	IsPublished *bool `gorm:"default:false;index:idx_projects_is_published" json:"is_published"`

	Views        int `gorm:"default:0" json:"views"`
	Clicks       int `gorm:"default:0" json:"clicks"`
	DisplayOrder int `gorm:"default:0" json:"display_order"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_projects_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Media []ProjectMedia `gorm:"foreignKey:ProjectID" json:"media,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

// BeforeCreate ensures UUID and timestamps are set.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// ProjectMedia links a stored media URL into a project gallery.
type ProjectMedia struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index:idx_project_media_project_id" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
	MediaURL  string    `gorm:"type:text;not null" json:"media_url"`
	MediaType string    `gorm:"size:20;not null" json:"media_type"` // photo, video
	Caption   *string   `gorm:"size:200" json:"caption,omitempty"`
	Order     int       `gorm:"default:0" json:"order"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (ProjectMedia) TableName() string {
	return "project_media"
}

// ProjectFilter represents filter criteria for project queries
type ProjectFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	UserID        *uint
	IsPublished   *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
