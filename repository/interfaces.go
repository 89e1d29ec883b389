// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/plexlink/plexlink/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByNetid(ctx context.Context, netid string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
}

// LinkRepository defines operations for links
type LinkRepository interface {
	Repository[models.Link, models.LinkFilter]
	Update(ctx context.Context, linkID uint, updates map[string]any) error
	SoftDelete(ctx context.Context, linkID uint, at time.Time) error
	ListByOwner(ctx context.Context, ownerNetid string, limit, offset int) ([]*models.Link, error)
}

// AliasRepository defines operations for the shared alias namespace
type AliasRepository interface {
	Repository[models.Alias, models.AliasFilter]
	ByAlias(ctx context.Context, alias string) (*models.Alias, error)
	ListByLink(ctx context.Context, linkID uint, includeDeleted bool) ([]*models.Alias, error)
	SoftDelete(ctx context.Context, aliasID uint) error
	SoftDeleteByLink(ctx context.Context, linkID uint) error
	SoftDeleteByLinkHub(ctx context.Context, linkHubID uint) error
}

// LinkHubRepository defines operations for LinkHubs and their children
type LinkHubRepository interface {
	Repository[models.LinkHub, models.LinkHubFilter]
	WithChildren(ctx context.Context, hubID uint) (*models.LinkHub, error)
	Update(ctx context.Context, hubID uint, updates map[string]any) error
	SoftDelete(ctx context.Context, hubID uint, at time.Time) error
	ReplaceLinks(ctx context.Context, hubID uint, links []*models.LinkHubLink) error
	AddCollaborator(ctx context.Context, c *models.LinkHubCollaborator) error
	RemoveCollaborator(ctx context.Context, hubID uint, entityType, entity string) error
	ListCollaborators(ctx context.Context, hubID uint) ([]*models.LinkHubCollaborator, error)
}

// VisitRepository defines operations for visit history
type VisitRepository interface {
	Repository[models.Visit, models.VisitFilter]
	CountByLink(ctx context.Context, linkID uint) (int64, error)
	GroupByUserAgent(ctx context.Context, linkID *uint) ([]*FieldCount, error)
	GroupByReferer(ctx context.Context, linkID *uint) ([]*FieldCount, error)
	CountByDay(ctx context.Context, from, to time.Time) ([]*DayCount, error)
}

// FieldCount is one bucket of a grouped visit aggregation. Value carries
// the raw grouped field (user agent or referer); derivation into browser,
// platform or display domain happens in the stats flow.
type FieldCount struct {
	Value string `gorm:"column:value"`
	Count int64  `gorm:"column:cnt"`
}

// DayCount is one day's visit total for the admin overview
type DayCount struct {
	Day   time.Time `gorm:"column:day"`
	Count int64     `gorm:"column:cnt"`
}

// TrackingIDRepository defines operations for per-IP tracking ids
type TrackingIDRepository interface {
	Repository[models.TrackingID, models.TrackingIDFilter]
	BySourceIP(ctx context.Context, sourceIP string) (*models.TrackingID, error)
	LookupOrCreate(ctx context.Context, sourceIP string) (uuid.UUID, error)
}

// RoleGrantRepository defines operations for role grants
type RoleGrantRepository interface {
	Repository[models.RoleGrant, models.RoleGrantFilter]
	ByRoleAndEntity(ctx context.Context, role, entity string) (*models.RoleGrant, error)
	ListEntities(ctx context.Context, role string) ([]string, error)
	ListRolesForEntity(ctx context.Context, entity string) ([]string, error)
	Delete(ctx context.Context, role, entity string) (bool, error)
}

// OrganizationRepository defines operations for organizations and members
type OrganizationRepository interface {
	Repository[models.Organization, models.OrganizationFilter]
	ByName(ctx context.Context, name string) (*models.Organization, error)
	WithMembers(ctx context.Context, orgID uint) (*models.Organization, error)
	SoftDelete(ctx context.Context, orgID uint, at time.Time) error
	AddMember(ctx context.Context, m *models.OrganizationMember) error
	RemoveMember(ctx context.Context, orgID uint, netid string) (bool, error)
	SetMemberAdmin(ctx context.Context, orgID uint, netid string, isAdmin bool) error
	ListMembers(ctx context.Context, orgID uint) ([]*models.OrganizationMember, error)
	ListMembersForUpdate(ctx context.Context, orgID uint) ([]*models.OrganizationMember, error)
	ListOrgNamesForNetid(ctx context.Context, netid string) ([]string, error)
}

// TicketRepository defines operations for tickets
type TicketRepository interface {
	Repository[models.Ticket, models.TicketFilter]
	ByUUID(ctx context.Context, uuidStr string) (*models.Ticket, error)
	OpenDuplicateExists(ctx context.Context, createdBy, reason string, entity *string) (bool, error)
	Close(ctx context.Context, ticketID uint, actionedBy string, at time.Time) error
	DeleteOpen(ctx context.Context, ticketID uint, createdBy string) (bool, error)
}
