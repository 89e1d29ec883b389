package models

import (
	"time"

	"github.com/lib/pq"
)

// Tracking pixel extensions supported by the pixel endpoint
const (
	PixelExtensionPNG = "png"
	PixelExtensionGIF = "gif"
)

// Link represents a shortened link record. The alias set lives in the
// aliases table; a link may carry several aliases added over time, and only
// non-deleted aliases resolve. Deletion is always soft so visit history
// stays queryable by link id.
type Link struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	OwnerNetid      string         `gorm:"size:64;not null;index:idx_links_owner_netid" json:"owner_netid"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	LongURL         string         `gorm:"type:text;not null" json:"long_url"`
	ExpiresAt       *time.Time     `gorm:"index:idx_links_expires_at" json:"expires_at,omitempty"`
	IsTrackingPixel bool           `gorm:"not null;default:false" json:"is_tracking_pixel"`
	PixelExtension  string         `gorm:"size:8" json:"pixel_extension,omitempty"`
	Tags            pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tags"`
	Deleted         bool           `gorm:"not null;default:false;index:idx_links_deleted" json:"deleted"`
	DeletedAt       *time.Time     `json:"deleted_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_links_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Aliases []Alias `gorm:"foreignKey:LinkID;references:ID" json:"aliases,omitempty"`
}

func (Link) TableName() string { return "links" }

// IsExpiredAt reports whether the link is expired relative to the given
// instant. Expiry is evaluated at lookup time, never persisted.
func (l *Link) IsExpiredAt(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// LinkFilter provides filter fields for repository queries. Fields map to
// fixed, parameterized predicates; the search flow builds instances of this
// struct from validated client input.
type LinkFilter struct {
	ID              *uint
	OwnerNetid      *string
	TitleContains   *string
	URLContains     *string
	TextContains    *string // matches title or long_url
	IsTrackingPixel *bool
	Deleted         *bool
	ExpiredAt       *time.Time // matches links expired relative to this instant
	NotExpiredAt    *time.Time // matches links live relative to this instant
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
}
