package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/plexlink/plexlink/utils"
	"gorm.io/gorm"
)

// Ticket statuses and reasons
const (
	TicketStatusOpen   = "open"
	TicketStatusClosed = "closed"

	TicketReasonPowerUser   = "power_user"
	TicketReasonWhitelisted = "whitelisted"
	TicketReasonOther       = "other"
)

// Ticket represents a request submitted by a user, usually asking for a
// role grant. The partial unique index on (created_by, reason,
// coalesce(entity, '')) WHERE status = 'open' rejects a duplicate open
// ticket even under concurrent submission; once closed, the same request
// may be submitted again.
type Ticket struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	Reason     string    `gorm:"size:32;not null" json:"reason"`
	Entity     *string   `gorm:"size:255" json:"entity,omitempty"`
	Comment    string    `gorm:"type:text;not null" json:"comment"`
	Status     string    `gorm:"size:16;not null;default:'open';index:idx_tickets_status" json:"status"`
	CreatedBy  string    `gorm:"size:64;not null;index:idx_tickets_created_by" json:"created_by"`
	ActionedBy *string   `gorm:"size:64" json:"actioned_by,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_tickets_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Ticket) TableName() string { return "tickets" }

// BeforeCreate ensures UUID and timestamps are set
func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TicketStatusOpen
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = utils.UTCNow()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// IsKnownTicketReason reports whether the reason is one tickets accept
func IsKnownTicketReason(reason string) bool {
	switch reason {
	case TicketReasonPowerUser, TicketReasonWhitelisted, TicketReasonOther:
		return true
	}
	return false
}

// TicketFilter represents filter criteria for ticket queries
type TicketFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Reason        *string
	Entity        *string
	Status        *string
	CreatedBy     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
