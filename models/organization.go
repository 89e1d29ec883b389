package models

import "time"

// Organization groups netids for shared LinkHub access. Membership is
// process-wide shared state: permission evaluation reads it at request time,
// so membership changes take effect immediately.
type Organization struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:128;not null;uniqueIndex:uk_organizations_name" json:"name"`
	Deleted   bool       `gorm:"not null;default:false" json:"deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Members []OrganizationMember `gorm:"foreignKey:OrganizationID;references:ID" json:"members,omitempty"`
}

func (Organization) TableName() string { return "organizations" }

// OrganizationMember is one netid's membership in an organization. The
// last-admin invariant (an org always keeps at least one admin) is enforced
// transactionally in the org flow, with the membership rows locked.
type OrganizationMember struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	OrganizationID uint   `gorm:"not null;uniqueIndex:uk_organization_members_org_netid;index:idx_organization_members_org_id" json:"organization_id"`
	Netid          string `gorm:"size:64;not null;uniqueIndex:uk_organization_members_org_netid;index:idx_organization_members_netid" json:"netid"`
	IsAdmin        bool   `gorm:"not null;default:false" json:"is_admin"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (OrganizationMember) TableName() string { return "organization_members" }

// OrganizationFilter provides filter fields for repository queries
type OrganizationFilter struct {
	ID          *uint
	Name        *string
	Deleted     *bool
	MemberNetid *string
}
