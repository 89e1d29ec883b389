package models

import (
	"time"

	"github.com/google/uuid"
)

// Visit is one recorded resolution of a short link. Rows are append-only;
// nothing in the request path ever mutates them. The alias string is
// denormalized so history survives alias removal and reuse.
type Visit struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LinkID     uint      `gorm:"not null;index:idx_visits_link_id" json:"link_id"`
	Alias      string    `gorm:"size:64;not null;index:idx_visits_alias" json:"alias"`
	SourceIP   string    `gorm:"size:64;not null" json:"source_ip"`
	TrackingID uuid.UUID `gorm:"type:uuid;not null;index:idx_visits_tracking_id" json:"tracking_id"`
	UserAgent  *string   `gorm:"type:text" json:"user_agent,omitempty"`
	Referer    *string   `gorm:"type:text" json:"referer,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_visits_created_at" json:"created_at"`
}

func (Visit) TableName() string { return "visits" }

// VisitFilter provides filter fields for repository queries
type VisitFilter struct {
	ID            *uint
	LinkID        *uint
	Alias         *string
	SourceIP      *string
	TrackingID    *uuid.UUID
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
