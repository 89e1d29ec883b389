package businessflow

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/repository"
	"github.com/plexlink/plexlink/utils"
)

// visitsTotal counts recorded visits by resource type
var visitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "plexlink_visits_total",
	Help: "Total recorded link visits",
}, []string{"kind"})

const (
	trackingIDCachePrefix = "tracking:ip:"
	trackingIDCacheTTL    = 24 * time.Hour
	visitRecordTimeout    = 5 * time.Second
)

// Smallest valid transparent 1x1 images, served by the pixel endpoint
var (
	pixelPNG, _ = base64.StdEncoding.DecodeString(
		"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")
	pixelGIF, _ = base64.StdEncoding.DecodeString(
		"R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7")
)

// PixelResult is the payload for a tracking-pixel resolution
type PixelResult struct {
	ImageName   string
	ContentType string
	Body        []byte
}

// VisitFlow resolves aliases and records visits
type VisitFlow interface {
	ResolveLink(ctx context.Context, alias string, metadata *ClientMetadata) (string, error)
	ResolvePixel(ctx context.Context, alias string, metadata *ClientMetadata) (*PixelResult, error)
}

// VisitFlowImpl implements VisitFlow
type VisitFlowImpl struct {
	linkRepo     repository.LinkRepository
	aliasRepo    repository.AliasRepository
	visitRepo    repository.VisitRepository
	trackingRepo repository.TrackingIDRepository
	roleRepo     repository.RoleGrantRepository
	redisClient  *redis.Client
}

func NewVisitFlow(linkRepo repository.LinkRepository, aliasRepo repository.AliasRepository, visitRepo repository.VisitRepository, trackingRepo repository.TrackingIDRepository, roleRepo repository.RoleGrantRepository, redisClient *redis.Client) VisitFlow {
	return &VisitFlowImpl{
		linkRepo:     linkRepo,
		aliasRepo:    aliasRepo,
		visitRepo:    visitRepo,
		trackingRepo: trackingRepo,
		roleRepo:     roleRepo,
		redisClient:  redisClient,
	}
}

// ResolveLink maps a live alias to its destination URL and records the
// visit. Deleted aliases, deleted or expired links, blacklisted owners and
// blocked destinations all resolve to the same not-found answer so callers
// cannot probe which rule fired.
func (f *VisitFlowImpl) ResolveLink(ctx context.Context, alias string, metadata *ClientMetadata) (string, error) {
	link, aliasRow, err := f.resolve(ctx, alias)
	if err != nil {
		return "", err
	}
	f.recordVisitAsync(link, aliasRow.Alias, metadata, "link")
	return link.LongURL, nil
}

// ResolvePixel serves a tracking pixel and records the visit. The caller
// sets the X-Image-Name header from ImageName.
func (f *VisitFlowImpl) ResolvePixel(ctx context.Context, alias string, metadata *ClientMetadata) (*PixelResult, error) {
	link, aliasRow, err := f.resolve(ctx, alias)
	if err != nil {
		return nil, err
	}
	if !link.IsTrackingPixel {
		return nil, ErrLinkNotFound
	}

	f.recordVisitAsync(link, aliasRow.Alias, metadata, "pixel")

	ext := link.PixelExtension
	if ext == "" {
		ext = models.PixelExtensionPNG
	}
	result := &PixelResult{ImageName: fmt.Sprintf("%s.%s", aliasRow.Alias, ext)}
	switch ext {
	case models.PixelExtensionGIF:
		result.ContentType = "image/gif"
		result.Body = pixelGIF
	default:
		result.ContentType = "image/png"
		result.Body = pixelPNG
	}
	return result, nil
}

// resolve walks alias -> link and applies the resolution gates
func (f *VisitFlowImpl) resolve(ctx context.Context, alias string) (*models.Link, *models.Alias, error) {
	aliasRow, err := f.aliasRepo.ByAlias(ctx, alias)
	if err != nil {
		return nil, nil, err
	}
	if aliasRow == nil || aliasRow.ResourceType != models.AliasResourceLink || aliasRow.LinkID == nil {
		return nil, nil, ErrAliasNotFound
	}

	link, err := f.linkRepo.ByID(ctx, *aliasRow.LinkID)
	if err != nil {
		return nil, nil, err
	}
	if link == nil || link.Deleted {
		return nil, nil, ErrLinkNotFound
	}
	if link.IsExpiredAt(utils.UTCNow()) {
		return nil, nil, ErrLinkNotFound
	}

	blacklisted, err := f.roleRepo.Exists(ctx, models.RoleGrantFilter{
		Role:   utils.ToPtr(models.RoleBlacklisted),
		Entity: &link.OwnerNetid,
	})
	if err != nil {
		return nil, nil, err
	}
	if blacklisted {
		return nil, nil, ErrLinkNotFound
	}

	blocked, err := f.roleRepo.Exists(ctx, models.RoleGrantFilter{
		Role:   utils.ToPtr(models.RoleBlockedURL),
		Entity: &link.LongURL,
	})
	if err != nil {
		return nil, nil, err
	}
	if blocked {
		return nil, nil, ErrLinkNotFound
	}

	return link, aliasRow, nil
}

// recordVisitAsync records the visit on a detached context so the redirect
// never waits on analytics. Failures are logged and swallowed.
func (f *VisitFlowImpl) recordVisitAsync(link *models.Link, alias string, metadata *ClientMetadata, kind string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), visitRecordTimeout)
		defer cancel()

		trackingID, err := f.lookupTrackingID(ctx, metadata.IPAddress)
		if err != nil {
			log.Printf("visit record: tracking id for link %d: %v", link.ID, err)
			return
		}

		visit := &models.Visit{
			LinkID:     link.ID,
			Alias:      alias,
			SourceIP:   metadata.IPAddress,
			TrackingID: trackingID,
			CreatedAt:  utils.UTCNow(),
		}
		if metadata.UserAgent != "" {
			visit.UserAgent = &metadata.UserAgent
		}
		if metadata.Referer != "" {
			visit.Referer = &metadata.Referer
		}

		if err := f.visitRepo.Save(ctx, visit); err != nil {
			log.Printf("visit record: save for link %d: %v", link.ID, err)
			return
		}
		visitsTotal.WithLabelValues(kind).Inc()
	}()
}

// lookupTrackingID resolves the stable per-IP id, caching in Redis. Cache
// failures fall through to the database.
func (f *VisitFlowImpl) lookupTrackingID(ctx context.Context, sourceIP string) (uuid.UUID, error) {
	key := trackingIDCachePrefix + sourceIP

	if f.redisClient != nil {
		if cached, err := f.redisClient.Get(ctx, key).Result(); err == nil {
			if id, err := utils.ParseUUID(cached); err == nil {
				return id, nil
			}
		}
	}

	id, err := f.trackingRepo.LookupOrCreate(ctx, sourceIP)
	if err != nil {
		return uuid.Nil, err
	}

	if f.redisClient != nil {
		if err := f.redisClient.Set(ctx, key, id.String(), trackingIDCacheTTL).Err(); err != nil {
			log.Printf("visit record: cache tracking id: %v", err)
		}
	}
	return id, nil
}
