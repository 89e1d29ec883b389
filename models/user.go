package models

import "time"

// User represents a local account identified by netid. Sessions are issued
// against users; ownership of links, hubs and tickets is keyed by netid.
type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Netid        string  `gorm:"size:64;not null;uniqueIndex:uk_users_netid" json:"netid"`
	PasswordHash string  `gorm:"type:text;not null" json:"-"`
	DisplayName  *string `gorm:"size:255" json:"display_name,omitempty"`
	IsActive     *bool   `gorm:"default:true" json:"is_active,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// UserFilter provides filter fields for repository queries
type UserFilter struct {
	ID       *uint
	Netid    *string
	IsActive *bool
}
