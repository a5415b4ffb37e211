// Package models contains domain entities and business models for the platform
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webstar-labs/webstar/utils"
)

// MediaAsset records one file that made it through the upload pipeline.
// The StorageKey mirrors the object-store key; PublicURL is either the
// remote public URL or the local /uploads fallback path.
type MediaAsset struct {
	ID     uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	UserID uint      `gorm:"not null;index" json:"user_id"`

	OriginalFilename string `gorm:"type:varchar(255);not null" json:"original_filename"`
	StorageKey       string `gorm:"type:text;not null" json:"storage_key"`
	PublicURL        string `gorm:"type:text;not null" json:"public_url"`
	MediaType        string `gorm:"type:varchar(20);not null;index" json:"media_type"` // photo, video, audio, pdf
	MimeType         string `gorm:"type:varchar(100);not null" json:"mime_type"`

	// Pixel dimensions, zero for non-photo assets.
	Width  int `gorm:"not null;default:0" json:"width"`
	Height int `gorm:"not null;default:0" json:"height"`

	OriginalSizeBytes  int64 `gorm:"type:bigint;not null" json:"original_size_bytes"`
	StoredSizeBytes    int64 `gorm:"type:bigint;not null" json:"stored_size_bytes"`
	CompressionApplied bool  `gorm:"not null;default:false" json:"compression_applied"`

	// True when the asset only exists in the local fallback directory.
	StoredLocally bool `gorm:"not null;default:false" json:"stored_locally"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (MediaAsset) TableName() string { return "media_assets" }

// BeforeCreate ensures UUID and timestamps are set.
func (m *MediaAsset) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == uuid.Nil {
		m.UUID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = utils.UTCNow()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// MediaAssetFilter represents filter criteria for media asset queries.
type MediaAssetFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	UserID        *uint      `json:"user_id,omitempty"`
	MediaType     *string    `json:"media_type,omitempty"`
	StoredLocally *bool      `json:"stored_locally,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
