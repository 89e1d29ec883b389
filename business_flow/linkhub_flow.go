package businessflow

import (
	"context"
	"strings"
	"time"

	"github.com/plexlink/plexlink/app/dto"
	"github.com/plexlink/plexlink/app/services"
	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/repository"
	"github.com/plexlink/plexlink/utils"
	"gorm.io/gorm"
)

// LinkHubFlow defines operations for LinkHubs
type LinkHubFlow interface {
	CreateLinkHub(ctx context.Context, netid string, req *dto.CreateLinkHubRequest) (*dto.CreateLinkHubResponse, error)
	GetLinkHub(ctx context.Context, netid string, isAdmin bool, hubID uint) (*dto.LinkHubDTO, error)
	ResolveLinkHub(ctx context.Context, alias string) (*dto.LinkHubDTO, error)
	UpdateLinkHub(ctx context.Context, netid string, isAdmin bool, hubID uint, req *dto.UpdateLinkHubRequest) (*dto.LinkHubDTO, error)
	AddCollaborator(ctx context.Context, netid string, isAdmin bool, hubID uint, req *dto.AddCollaboratorRequest) error
	RemoveCollaborator(ctx context.Context, netid string, isAdmin bool, hubID uint, entityType, entity string) error
	DeleteLinkHub(ctx context.Context, netid string, isAdmin bool, hubID uint) error
}

// LinkHubFlowImpl implements LinkHubFlow
type LinkHubFlowImpl struct {
	db          *gorm.DB
	linkHubRepo repository.LinkHubRepository
	aliasRepo   repository.AliasRepository
	roleRepo    repository.RoleGrantRepository
	orgRepo     repository.OrganizationRepository
	binder      *aliasBinder
}

func NewLinkHubFlow(db *gorm.DB, linkHubRepo repository.LinkHubRepository, aliasRepo repository.AliasRepository, roleRepo repository.RoleGrantRepository, orgRepo repository.OrganizationRepository, aliasSvc services.AliasService) LinkHubFlow {
	return &LinkHubFlowImpl{
		db:          db,
		linkHubRepo: linkHubRepo,
		aliasRepo:   aliasRepo,
		roleRepo:    roleRepo,
		orgRepo:     orgRepo,
		binder:      &aliasBinder{aliasSvc: aliasSvc, aliasRepo: aliasRepo},
	}
}

// CreateLinkHub creates a hub and binds its alias; hubs share the alias
// namespace with links
func (f *LinkHubFlowImpl) CreateLinkHub(ctx context.Context, netid string, req *dto.CreateLinkHubRequest) (*dto.CreateLinkHubResponse, error) {
	hub := &models.LinkHub{
		Title:      strings.TrimSpace(req.Title),
		OwnerNetid: netid,
		IsPublic:   req.IsPublic,
	}

	var alias string
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.linkHubRepo.Save(txCtx, hub); err != nil {
			return err
		}
		bound, err := f.binder.bind(txCtx, req.Alias, models.AliasResourceLinkHub, nil, &hub.ID)
		if err != nil {
			return err
		}
		alias = bound

		if len(req.Links) > 0 {
			entries := make([]*models.LinkHubLink, 0, len(req.Links))
			for _, l := range req.Links {
				if err := validateLongURL(l.URL); err != nil {
					return err
				}
				entries = append(entries, &models.LinkHubLink{Title: l.Title, URL: l.URL})
			}
			return f.linkHubRepo.ReplaceLinks(txCtx, hub.ID, entries)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.CreateLinkHubResponse{ID: hub.ID, Alias: alias}, nil
}

func (f *LinkHubFlowImpl) GetLinkHub(ctx context.Context, netid string, isAdmin bool, hubID uint) (*dto.LinkHubDTO, error) {
	hub, err := f.liveHubWithChildren(ctx, hubID)
	if err != nil {
		return nil, err
	}
	if err := f.authorize(ctx, netid, isAdmin, hub, ActionView); err != nil {
		return nil, err
	}
	return f.toDTO(ctx, hub, true)
}

// ResolveLinkHub serves the public hub page. Private hubs are
// indistinguishable from absent ones on this path.
func (f *LinkHubFlowImpl) ResolveLinkHub(ctx context.Context, alias string) (*dto.LinkHubDTO, error) {
	aliasRow, err := f.aliasRepo.ByAlias(ctx, alias)
	if err != nil {
		return nil, err
	}
	if aliasRow == nil || aliasRow.ResourceType != models.AliasResourceLinkHub || aliasRow.LinkHubID == nil {
		return nil, ErrLinkHubNotFound
	}

	hub, err := f.liveHubWithChildren(ctx, *aliasRow.LinkHubID)
	if err != nil {
		return nil, err
	}
	if !hub.IsPublic {
		return nil, ErrLinkHubNotFound
	}
	return f.toDTO(ctx, hub, false)
}

func (f *LinkHubFlowImpl) UpdateLinkHub(ctx context.Context, netid string, isAdmin bool, hubID uint, req *dto.UpdateLinkHubRequest) (*dto.LinkHubDTO, error) {
	hub, err := f.liveHubWithChildren(ctx, hubID)
	if err != nil {
		return nil, err
	}
	if err := f.authorize(ctx, netid, isAdmin, hub, ActionEdit); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if len(updates) > 0 {
			if err := f.linkHubRepo.Update(txCtx, hub.ID, updates); err != nil {
				return err
			}
		}
		if req.Links != nil {
			entries := make([]*models.LinkHubLink, 0, len(*req.Links))
			for _, l := range *req.Links {
				if err := validateLongURL(l.URL); err != nil {
					return err
				}
				entries = append(entries, &models.LinkHubLink{Title: l.Title, URL: l.URL})
			}
			return f.linkHubRepo.ReplaceLinks(txCtx, hub.ID, entries)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fresh, err := f.liveHubWithChildren(ctx, hub.ID)
	if err != nil {
		return nil, err
	}
	return f.toDTO(ctx, fresh, true)
}

// AddCollaborator grants a netid or org access; only owners and admins
// manage collaborators
func (f *LinkHubFlowImpl) AddCollaborator(ctx context.Context, netid string, isAdmin bool, hubID uint, req *dto.AddCollaboratorRequest) error {
	hub, err := f.liveHubWithChildren(ctx, hubID)
	if err != nil {
		return err
	}
	if err := f.authorize(ctx, netid, isAdmin, hub, ActionManage); err != nil {
		return err
	}

	if req.EntityType == models.CollaboratorTypeOrg {
		org, err := f.orgRepo.ByName(ctx, req.Entity)
		if err != nil {
			return err
		}
		if org == nil {
			return ErrOrgNotFound
		}
	}

	err = f.linkHubRepo.AddCollaborator(ctx, &models.LinkHubCollaborator{
		LinkHubID:  hub.ID,
		EntityType: req.EntityType,
		Entity:     req.Entity,
		Permission: req.Permission,
	})
	if err != nil {
		if repository.IsDuplicateKey(err) {
			return ErrCollaboratorExists
		}
		return err
	}
	return nil
}

func (f *LinkHubFlowImpl) RemoveCollaborator(ctx context.Context, netid string, isAdmin bool, hubID uint, entityType, entity string) error {
	hub, err := f.liveHubWithChildren(ctx, hubID)
	if err != nil {
		return err
	}
	if err := f.authorize(ctx, netid, isAdmin, hub, ActionManage); err != nil {
		return err
	}
	return f.linkHubRepo.RemoveCollaborator(ctx, hub.ID, entityType, entity)
}

// DeleteLinkHub soft-deletes the hub and frees its alias for reuse
func (f *LinkHubFlowImpl) DeleteLinkHub(ctx context.Context, netid string, isAdmin bool, hubID uint) error {
	hub, err := f.liveHubWithChildren(ctx, hubID)
	if err != nil {
		return err
	}
	if err := f.authorize(ctx, netid, isAdmin, hub, ActionManage); err != nil {
		return err
	}

	now := utils.UTCNow()
	return repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.linkHubRepo.SoftDelete(txCtx, hub.ID, now); err != nil {
			return err
		}
		return f.aliasRepo.SoftDeleteByLinkHub(txCtx, hub.ID)
	})
}

func (f *LinkHubFlowImpl) liveHubWithChildren(ctx context.Context, hubID uint) (*models.LinkHub, error) {
	hub, err := f.linkHubRepo.WithChildren(ctx, hubID)
	if err != nil {
		return nil, err
	}
	if hub == nil || hub.Deleted {
		return nil, ErrLinkHubNotFound
	}
	return hub, nil
}

// authorize runs the permission evaluator against a freshly loaded actor
// context
func (f *LinkHubFlowImpl) authorize(ctx context.Context, netid string, isAdmin bool, hub *models.LinkHub, action Action) error {
	actor, err := LoadActorContext(ctx, netid, f.roleRepo, f.orgRepo)
	if err != nil {
		return err
	}
	if isAdmin {
		actor.Roles[models.RoleAdmin] = struct{}{}
	}

	decision := Evaluate(actor, Resource{
		OwnerNetid:    hub.OwnerNetid,
		IsPublic:      hub.IsPublic,
		Collaborators: hub.Collaborators,
	}, action)
	if !decision.Allowed {
		return ErrForbidden
	}
	return nil
}

func (f *LinkHubFlowImpl) toDTO(ctx context.Context, hub *models.LinkHub, includeCollaborators bool) (*dto.LinkHubDTO, error) {
	out := &dto.LinkHubDTO{
		ID:         hub.ID,
		Title:      hub.Title,
		OwnerNetid: hub.OwnerNetid,
		IsPublic:   hub.IsPublic,
		Links:      make([]dto.LinkHubEntryDTO, 0, len(hub.Links)),
		CreatedAt:  hub.CreatedAt.Format(time.RFC3339),
	}
	for _, l := range hub.Links {
		out.Links = append(out.Links, dto.LinkHubEntryDTO{Title: l.Title, URL: l.URL})
	}
	if includeCollaborators {
		for _, c := range hub.Collaborators {
			out.Collaborators = append(out.Collaborators, dto.CollaboratorDTO{
				EntityType: c.EntityType,
				Entity:     c.Entity,
				Permission: c.Permission,
			})
		}
	}

	deleted := false
	aliases, err := f.aliasRepo.ByFilter(ctx, models.AliasFilter{LinkHubID: &hub.ID, Deleted: &deleted}, "id ASC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(aliases) > 0 {
		out.Alias = aliases[0].Alias
	}
	return out, nil
}
