package businessflow

import (
	"context"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"github.com/plexlink/plexlink/app/dto"
	"github.com/plexlink/plexlink/app/services"
	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/repository"
	"github.com/plexlink/plexlink/utils"
	"gorm.io/gorm"
)

// LinkFlow defines operations for creating and managing links
type LinkFlow interface {
	CreateLink(ctx context.Context, netid string, req *dto.CreateLinkRequest, metadata *ClientMetadata) (*dto.CreateLinkResponse, error)
	GetLink(ctx context.Context, netid string, isAdmin bool, linkID uint) (*dto.LinkDTO, error)
	ListLinks(ctx context.Context, netid string, page, pageSize int) (*dto.ListLinksResponse, error)
	UpdateLink(ctx context.Context, netid string, isAdmin bool, linkID uint, req *dto.UpdateLinkRequest) (*dto.LinkDTO, error)
	DeleteLink(ctx context.Context, netid string, isAdmin bool, linkID uint) error
	AddAlias(ctx context.Context, netid string, isAdmin bool, linkID uint, req *dto.AddAliasRequest) (*dto.AddAliasResponse, error)
	RemoveAlias(ctx context.Context, netid string, isAdmin bool, linkID uint, alias string) error
}

// LinkFlowImpl implements LinkFlow
type LinkFlowImpl struct {
	db        *gorm.DB
	linkRepo  repository.LinkRepository
	aliasRepo repository.AliasRepository
	binder    *aliasBinder
}

func NewLinkFlow(db *gorm.DB, linkRepo repository.LinkRepository, aliasRepo repository.AliasRepository, aliasSvc services.AliasService) LinkFlow {
	return &LinkFlowImpl{
		db:        db,
		linkRepo:  linkRepo,
		aliasRepo: aliasRepo,
		binder:    &aliasBinder{aliasSvc: aliasSvc, aliasRepo: aliasRepo},
	}
}

func (f *LinkFlowImpl) CreateLink(ctx context.Context, netid string, req *dto.CreateLinkRequest, metadata *ClientMetadata) (*dto.CreateLinkResponse, error) {
	if err := validateLongURL(req.LongURL); err != nil {
		return nil, err
	}

	pixelExt := ""
	if req.IsTrackingPixel {
		pixelExt = req.PixelExtension
		if pixelExt == "" {
			pixelExt = models.PixelExtensionPNG
		}
		if pixelExt != models.PixelExtensionPNG && pixelExt != models.PixelExtensionGIF {
			return nil, ErrInvalidPixelType
		}
	}

	link := &models.Link{
		OwnerNetid:      netid,
		Title:           strings.TrimSpace(req.Title),
		LongURL:         req.LongURL,
		ExpiresAt:       utils.TimeToUTCPtr(req.ExpiresAt),
		IsTrackingPixel: req.IsTrackingPixel,
		PixelExtension:  pixelExt,
		Tags:            pq.StringArray(req.Tags),
	}

	var alias string
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.linkRepo.Save(txCtx, link); err != nil {
			return err
		}
		bound, err := f.binder.bind(txCtx, req.Alias, models.AliasResourceLink, &link.ID, nil)
		if err != nil {
			return err
		}
		alias = bound
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.CreateLinkResponse{ID: link.ID, Alias: alias}, nil
}

func (f *LinkFlowImpl) GetLink(ctx context.Context, netid string, isAdmin bool, linkID uint) (*dto.LinkDTO, error) {
	link, err := f.ownedLink(ctx, netid, isAdmin, linkID, false)
	if err != nil {
		return nil, err
	}
	if err := f.attachAliases(ctx, link); err != nil {
		return nil, err
	}
	out := ToLinkDTO(link)
	return &out, nil
}

func (f *LinkFlowImpl) ListLinks(ctx context.Context, netid string, page, pageSize int) (*dto.ListLinksResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	deleted := false
	filter := models.LinkFilter{OwnerNetid: &netid, Deleted: &deleted}
	total, err := f.linkRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	links, err := f.linkRepo.ListByOwner(ctx, netid, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	out := make([]dto.LinkDTO, 0, len(links))
	for _, link := range links {
		if err := f.attachAliases(ctx, link); err != nil {
			return nil, err
		}
		out = append(out, ToLinkDTO(link))
	}

	return &dto.ListLinksResponse{Links: out, Total: total, Page: page, PageSize: pageSize}, nil
}

func (f *LinkFlowImpl) UpdateLink(ctx context.Context, netid string, isAdmin bool, linkID uint, req *dto.UpdateLinkRequest) (*dto.LinkDTO, error) {
	link, err := f.ownedLink(ctx, netid, isAdmin, linkID, false)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.LongURL != nil {
		if err := validateLongURL(*req.LongURL); err != nil {
			return nil, err
		}
		updates["long_url"] = *req.LongURL
	}
	if req.ClearExpiry {
		updates["expires_at"] = nil
	} else if req.ExpiresAt != nil {
		updates["expires_at"] = utils.TimeToUTC(*req.ExpiresAt)
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}

	if len(updates) > 0 {
		if err := f.linkRepo.Update(ctx, link.ID, updates); err != nil {
			return nil, err
		}
	}

	fresh, err := f.linkRepo.ByID(ctx, link.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, ErrLinkNotFound
	}
	if err := f.attachAliases(ctx, fresh); err != nil {
		return nil, err
	}
	out := ToLinkDTO(fresh)
	return &out, nil
}

// DeleteLink soft-deletes the link and retires its aliases; visit history
// is preserved
func (f *LinkFlowImpl) DeleteLink(ctx context.Context, netid string, isAdmin bool, linkID uint) error {
	link, err := f.ownedLink(ctx, netid, isAdmin, linkID, false)
	if err != nil {
		return err
	}

	now := utils.UTCNow()
	return repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.linkRepo.SoftDelete(txCtx, link.ID, now); err != nil {
			return err
		}
		return f.aliasRepo.SoftDeleteByLink(txCtx, link.ID)
	})
}

func (f *LinkFlowImpl) AddAlias(ctx context.Context, netid string, isAdmin bool, linkID uint, req *dto.AddAliasRequest) (*dto.AddAliasResponse, error) {
	link, err := f.ownedLink(ctx, netid, isAdmin, linkID, false)
	if err != nil {
		return nil, err
	}

	alias, err := f.binder.bind(ctx, req.Alias, models.AliasResourceLink, &link.ID, nil)
	if err != nil {
		return nil, err
	}
	return &dto.AddAliasResponse{Alias: alias}, nil
}

// RemoveAlias retires one alias. Removing the last live alias is allowed:
// the link becomes unreachable but stays queryable by id.
func (f *LinkFlowImpl) RemoveAlias(ctx context.Context, netid string, isAdmin bool, linkID uint, alias string) error {
	link, err := f.ownedLink(ctx, netid, isAdmin, linkID, false)
	if err != nil {
		return err
	}

	row, err := f.aliasRepo.ByAlias(ctx, alias)
	if err != nil {
		return err
	}
	if row == nil || row.LinkID == nil || *row.LinkID != link.ID {
		return ErrAliasNotFound
	}
	return f.aliasRepo.SoftDelete(ctx, row.ID)
}

// ownedLink loads a link and enforces the owner-or-admin rule. Plain links
// have no collaborator model.
func (f *LinkFlowImpl) ownedLink(ctx context.Context, netid string, isAdmin bool, linkID uint, includeDeleted bool) (*models.Link, error) {
	link, err := f.linkRepo.ByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link == nil || (link.Deleted && !includeDeleted) {
		return nil, ErrLinkNotFound
	}
	if link.OwnerNetid != netid && !isAdmin {
		return nil, ErrForbidden
	}
	return link, nil
}

func (f *LinkFlowImpl) attachAliases(ctx context.Context, link *models.Link) error {
	rows, err := f.aliasRepo.ListByLink(ctx, link.ID, false)
	if err != nil {
		return err
	}
	link.Aliases = link.Aliases[:0]
	for _, a := range rows {
		link.Aliases = append(link.Aliases, *a)
	}
	return nil
}

// validateLongURL accepts absolute http(s) URLs only
func validateLongURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	if u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
