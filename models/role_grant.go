package models

import "time"

// Role names known to the grant engine. Each role declares an entity
// format: netid-shaped entities for user roles, URLs for blocked_url.
const (
	RoleAdmin       = "admin"
	RolePowerUser   = "power_user"
	RoleWhitelisted = "whitelisted"
	RoleBlacklisted = "blacklisted"
	RoleBlockedURL  = "blocked_url"
)

// RoleGrant binds a role to an entity (netid, URL, org name). The unique
// index on (role, entity) enforces at most one active grant per pair, so a
// duplicate grant loses at the storage layer even when two requests race.
type RoleGrant struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Role      string  `gorm:"size:32;not null;uniqueIndex:uk_role_grants_role_entity;index:idx_role_grants_role" json:"role"`
	Entity    string  `gorm:"size:255;not null;uniqueIndex:uk_role_grants_role_entity;index:idx_role_grants_entity" json:"entity"`
	GrantedBy string  `gorm:"size:64;not null" json:"granted_by"`
	Comment   *string `gorm:"type:text" json:"comment,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (RoleGrant) TableName() string { return "role_grants" }

// KnownRoles lists every role the engine accepts
func KnownRoles() []string {
	return []string{RoleAdmin, RolePowerUser, RoleWhitelisted, RoleBlacklisted, RoleBlockedURL}
}

// IsKnownRole reports whether the role name is one the engine accepts
func IsKnownRole(role string) bool {
	switch role {
	case RoleAdmin, RolePowerUser, RoleWhitelisted, RoleBlacklisted, RoleBlockedURL:
		return true
	}
	return false
}

// RoleGrantFilter provides filter fields for repository queries
type RoleGrantFilter struct {
	ID     *uint
	Role   *string
	Entity *string
}
