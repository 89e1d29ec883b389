package models

import "time"

// Collaborator entity types and permission levels. Levels are ordered:
// viewer < editor < owner.
const (
	CollaboratorTypeNetid = "netid"
	CollaboratorTypeOrg   = "org"

	PermissionViewer = "viewer"
	PermissionEditor = "editor"
	PermissionOwner  = "owner"
)

// LinkHub bundles multiple links under one alias with its own collaborator
// model. The alias row lives in the shared aliases table.
type LinkHub struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	OwnerNetid string     `gorm:"size:64;not null;index:idx_linkhubs_owner_netid" json:"owner_netid"`
	IsPublic   bool       `gorm:"not null;default:false" json:"is_public"`
	Deleted    bool       `gorm:"not null;default:false;index:idx_linkhubs_deleted" json:"deleted"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Links         []LinkHubLink         `gorm:"foreignKey:LinkHubID;references:ID" json:"links,omitempty"`
	Collaborators []LinkHubCollaborator `gorm:"foreignKey:LinkHubID;references:ID" json:"collaborators,omitempty"`
}

func (LinkHub) TableName() string { return "linkhubs" }

// LinkHubLink is one entry in a hub's ordered link list
type LinkHubLink struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	LinkHubID uint   `gorm:"column:linkhub_id;not null;index:idx_linkhub_links_hub_id" json:"linkhub_id"`
	Position  int    `gorm:"not null;default:0" json:"position"`
	Title     string `gorm:"size:255;not null" json:"title"`
	URL       string `gorm:"type:text;not null" json:"url"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (LinkHubLink) TableName() string { return "linkhub_links" }

// LinkHubCollaborator grants a netid or an organization access to a hub.
// The unique index on (linkhub_id, entity_type, entity) deduplicates
// collaborator entries at the storage layer.
type LinkHubCollaborator struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	LinkHubID  uint   `gorm:"column:linkhub_id;not null;uniqueIndex:uk_linkhub_collaborators_entity;index:idx_linkhub_collaborators_hub_id" json:"linkhub_id"`
	EntityType string `gorm:"size:16;not null;uniqueIndex:uk_linkhub_collaborators_entity" json:"entity_type"`
	Entity     string `gorm:"size:128;not null;uniqueIndex:uk_linkhub_collaborators_entity" json:"entity"`
	Permission string `gorm:"size:16;not null;default:'viewer'" json:"permission"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (LinkHubCollaborator) TableName() string { return "linkhub_collaborators" }

// PermissionLevel maps a permission name to its rank for comparisons
func PermissionLevel(p string) int {
	switch p {
	case PermissionOwner:
		return 3
	case PermissionEditor:
		return 2
	case PermissionViewer:
		return 1
	default:
		return 0
	}
}

// LinkHubFilter provides filter fields for repository queries
type LinkHubFilter struct {
	ID         *uint
	OwnerNetid *string
	IsPublic   *bool
	Deleted    *bool
}
