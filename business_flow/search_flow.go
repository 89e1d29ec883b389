package businessflow

import (
	"context"
	"strings"

	"github.com/plexlink/plexlink/app/dto"
	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/repository"
	"github.com/plexlink/plexlink/utils"
)

// sortOrders maps the enumerated sort values to fixed ORDER BY clauses.
// Client input selects from this table and never reaches SQL directly.
var sortOrders = map[string]string{
	"relevance":    "created_at DESC",
	"created_asc":  "created_at ASC",
	"created_desc": "created_at DESC",
	"visits":       "(SELECT COUNT(*) FROM visits WHERE visits.link_id = links.id) DESC",
}

// SearchFlow defines the typed link search
type SearchFlow interface {
	Search(ctx context.Context, netid string, isAdmin bool, req *dto.SearchRequest) (*dto.SearchResponse, error)
}

// SearchFlowImpl implements SearchFlow
type SearchFlowImpl struct {
	linkRepo  repository.LinkRepository
	aliasRepo repository.AliasRepository
}

func NewSearchFlow(linkRepo repository.LinkRepository, aliasRepo repository.AliasRepository) SearchFlow {
	return &SearchFlowImpl{linkRepo: linkRepo, aliasRepo: aliasRepo}
}

// Search compiles the request into a link filter and runs it. Searching
// everyone's links requires admin; everything else defaults to the
// caller's own set.
func (f *SearchFlowImpl) Search(ctx context.Context, netid string, isAdmin bool, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	filter, orderBy, err := buildSearchFilter(netid, isAdmin, req)
	if err != nil {
		return nil, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	total, err := f.linkRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	links, err := f.linkRepo.ByFilter(ctx, filter, orderBy, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	results := make([]dto.LinkDTO, 0, len(links))
	for _, link := range links {
		aliases, err := f.aliasRepo.ListByLink(ctx, link.ID, false)
		if err != nil {
			return nil, err
		}
		for _, a := range aliases {
			link.Aliases = append(link.Aliases, *a)
		}
		results = append(results, ToLinkDTO(link))
	}

	return &dto.SearchResponse{Results: results, Total: total, Page: page, PageSize: pageSize}, nil
}

// buildSearchFilter turns validated request fields into a filter plus a
// fixed ORDER BY clause
func buildSearchFilter(netid string, isAdmin bool, req *dto.SearchRequest) (models.LinkFilter, string, error) {
	filter := models.LinkFilter{}

	switch req.Set {
	case "all":
		if !isAdmin {
			return filter, "", ErrForbidden
		}
	case "", "mine":
		filter.OwnerNetid = &netid
	default:
		return filter, "", NewBusinessError("INVALID_SET", "set must be mine or all", nil)
	}

	if q := strings.TrimSpace(req.Query); q != "" {
		filter.TextContains = &q
	}

	if !req.ShowDeletedLinks {
		filter.Deleted = utils.ToPtr(false)
	}
	if !req.ShowExpiredLinks {
		filter.NotExpiredAt = utils.UTCNowPtr()
	}

	switch req.ShowType {
	case "links":
		filter.IsTrackingPixel = utils.ToPtr(false)
	case "tracking_pixels":
		filter.IsTrackingPixel = utils.ToPtr(true)
	case "", "both":
	default:
		return filter, "", NewBusinessError("INVALID_SHOW_TYPE", "show_type must be links, tracking_pixels or both", nil)
	}

	orderBy, ok := sortOrders[req.Sort]
	if !ok {
		if req.Sort == "" {
			orderBy = sortOrders["relevance"]
		} else {
			return filter, "", NewBusinessError("INVALID_SORT", "unknown sort order", nil)
		}
	}

	return filter, orderBy, nil
}
