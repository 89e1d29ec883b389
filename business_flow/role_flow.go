package businessflow

import (
	"context"
	"net/url"
	"regexp"

	"github.com/plexlink/plexlink/app/dto"
	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/repository"
)

// netidPattern matches institutional usernames: lowercase alphanumeric
// with dots, dashes and underscores, 2..64 chars, starting with a letter
var netidPattern = regexp.MustCompile(`^[a-z][a-z0-9._-]{1,63}$`)

// RoleFlow defines operations for the role grant engine
type RoleFlow interface {
	Grant(ctx context.Context, actorNetid string, actorIsAdmin bool, role, entity string, req *dto.GrantRoleRequest) error
	Revoke(ctx context.Context, actorNetid string, actorIsAdmin bool, role, entity string) error
	Check(ctx context.Context, role, entity string) (bool, error)
	List(ctx context.Context, actorIsAdmin bool, role string) (*dto.ListRoleEntitiesResponse, error)
}

// RoleFlowImpl implements RoleFlow
type RoleFlowImpl struct {
	roleRepo repository.RoleGrantRepository
}

func NewRoleFlow(roleRepo repository.RoleGrantRepository) RoleFlow {
	return &RoleFlowImpl{roleRepo: roleRepo}
}

// Grant binds a role to an entity. Only admins may grant; the (role,
// entity) unique index makes the second of two racing grants fail, which
// surfaces as AlreadyGranted just like the pre-check.
func (f *RoleFlowImpl) Grant(ctx context.Context, actorNetid string, actorIsAdmin bool, role, entity string, req *dto.GrantRoleRequest) error {
	if !actorIsAdmin {
		return ErrForbidden
	}
	if err := validateRoleEntity(role, entity); err != nil {
		return err
	}

	existing, err := f.roleRepo.ByRoleAndEntity(ctx, role, entity)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAlreadyGranted
	}

	grant := &models.RoleGrant{Role: role, Entity: entity, GrantedBy: actorNetid}
	if req != nil {
		grant.Comment = req.Comment
	}
	if err := f.roleRepo.Save(ctx, grant); err != nil {
		if repository.IsDuplicateKey(err) {
			return ErrAlreadyGranted
		}
		return err
	}
	return nil
}

// Revoke removes a grant. Revoking an absent grant succeeds; the operation
// is idempotent.
func (f *RoleFlowImpl) Revoke(ctx context.Context, actorNetid string, actorIsAdmin bool, role, entity string) error {
	if !actorIsAdmin {
		return ErrForbidden
	}
	if !models.IsKnownRole(role) {
		return ErrUnknownRole
	}
	_, err := f.roleRepo.Delete(ctx, role, entity)
	return err
}

func (f *RoleFlowImpl) Check(ctx context.Context, role, entity string) (bool, error) {
	if !models.IsKnownRole(role) {
		return false, ErrUnknownRole
	}
	grant, err := f.roleRepo.ByRoleAndEntity(ctx, role, entity)
	if err != nil {
		return false, err
	}
	return grant != nil, nil
}

func (f *RoleFlowImpl) List(ctx context.Context, actorIsAdmin bool, role string) (*dto.ListRoleEntitiesResponse, error) {
	if !actorIsAdmin {
		return nil, ErrForbidden
	}
	if !models.IsKnownRole(role) {
		return nil, ErrUnknownRole
	}
	entities, err := f.roleRepo.ListEntities(ctx, role)
	if err != nil {
		return nil, err
	}
	return &dto.ListRoleEntitiesResponse{Role: role, Entities: entities}, nil
}

// validateRoleEntity enforces the per-role entity format: netid-shaped
// entities for user roles, absolute URLs for blocked_url
func validateRoleEntity(role, entity string) error {
	if !models.IsKnownRole(role) {
		return ErrUnknownRole
	}
	switch role {
	case models.RoleBlockedURL:
		u, err := url.ParseRequestURI(entity)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return ErrInvalidEntity
		}
	default:
		if !netidPattern.MatchString(entity) {
			return ErrInvalidEntity
		}
	}
	return nil
}
