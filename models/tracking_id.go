package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackingID is a stable pseudonymous identifier assigned lazily per source
// IP on first observation and reused for all later visits from that IP.
// The unique index on source_ip lets concurrent first visits race safely:
// the insert uses ON CONFLICT DO NOTHING and rereads the winner.
type TrackingID struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	SourceIP string    `gorm:"size:64;not null;uniqueIndex:uk_tracking_ids_source_ip" json:"source_ip"`
	UUID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_tracking_ids_uuid" json:"uuid"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (TrackingID) TableName() string { return "tracking_ids" }

// TrackingIDFilter provides filter fields for repository queries
type TrackingIDFilter struct {
	ID       *uint
	SourceIP *string
	UUID     *uuid.UUID
}
