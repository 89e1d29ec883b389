package models

import "time"

// Alias resource types
const (
	AliasResourceLink    = "link"
	AliasResourceLinkHub = "linkhub"
)

// Alias maps a short path segment to a link or a LinkHub. Links and
// LinkHubs share one namespace: the partial unique index on (alias) WHERE
// NOT deleted is the storage-level arbiter for concurrent creation, so two
// requests racing on the same alias produce exactly one winner.
type Alias struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Alias        string `gorm:"size:64;not null;index:idx_aliases_alias;uniqueIndex:uk_aliases_alias_live,where:deleted = false" json:"alias"`
	ResourceType string `gorm:"size:16;not null" json:"resource_type"`
	LinkID       *uint  `gorm:"index:idx_aliases_link_id" json:"link_id,omitempty"`
	LinkHubID    *uint  `gorm:"column:linkhub_id;index:idx_aliases_linkhub_id" json:"linkhub_id,omitempty"`
	Deleted      bool   `gorm:"not null;default:false" json:"deleted"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Alias) TableName() string { return "aliases" }

// AliasFilter provides filter fields for repository queries
type AliasFilter struct {
	ID           *uint
	Alias        *string
	ResourceType *string
	LinkID       *uint
	LinkHubID    *uint
	Deleted      *bool
}
