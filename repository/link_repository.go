package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/utils"
	"gorm.io/gorm"
)

// LinkRepositoryImpl implements LinkRepository
type LinkRepositoryImpl struct {
	*BaseRepository[models.Link, models.LinkFilter]
}

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &LinkRepositoryImpl{BaseRepository: NewBaseRepository[models.Link, models.LinkFilter](db)}
}

func (r *LinkRepositoryImpl) Update(ctx context.Context, linkID uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	db := r.getDB(ctx)
	updates["updated_at"] = utils.UTCNow()
	res := db.Model(&models.Link{}).Where("id = ? AND deleted = false", linkID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update link %d: %w", linkID, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDelete marks the link deleted, preserving the row and its visit
// history. Alias rows are retired separately by the alias repository.
func (r *LinkRepositoryImpl) SoftDelete(ctx context.Context, linkID uint, at time.Time) error {
	db := r.getDB(ctx)
	res := db.Model(&models.Link{}).Where("id = ? AND deleted = false", linkID).Updates(map[string]any{
		"deleted":    true,
		"deleted_at": at,
		"updated_at": at,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to soft-delete link %d: %w", linkID, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LinkRepositoryImpl) ListByOwner(ctx context.Context, ownerNetid string, limit, offset int) ([]*models.Link, error) {
	deleted := false
	return r.ByFilter(ctx, models.LinkFilter{OwnerNetid: &ownerNetid, Deleted: &deleted}, "created_at DESC", limit, offset)
}

func (r *LinkRepositoryImpl) applyFilter(db *gorm.DB, f models.LinkFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.OwnerNetid != nil {
		db = db.Where("owner_netid = ?", *f.OwnerNetid)
	}
	if f.TitleContains != nil {
		db = db.Where("title ILIKE ?", "%"+escapeLike(*f.TitleContains)+"%")
	}
	if f.URLContains != nil {
		db = db.Where("long_url ILIKE ?", "%"+escapeLike(*f.URLContains)+"%")
	}
	if f.TextContains != nil {
		pattern := "%" + escapeLike(*f.TextContains) + "%"
		db = db.Where("title ILIKE ? OR long_url ILIKE ?", pattern, pattern)
	}
	if f.IsTrackingPixel != nil {
		db = db.Where("is_tracking_pixel = ?", *f.IsTrackingPixel)
	}
	if f.Deleted != nil {
		db = db.Where("deleted = ?", *f.Deleted)
	}
	if f.ExpiredAt != nil {
		db = db.Where("expires_at IS NOT NULL AND expires_at <= ?", *f.ExpiredAt)
	}
	if f.NotExpiredAt != nil {
		db = db.Where("expires_at IS NULL OR expires_at > ?", *f.NotExpiredAt)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *LinkRepositoryImpl) ByFilter(ctx context.Context, filter models.LinkFilter, orderBy string, limit, offset int) ([]*models.Link, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Link{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Link
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LinkRepositoryImpl) Count(ctx context.Context, filter models.LinkFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Link{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LinkRepositoryImpl) Exists(ctx context.Context, filter models.LinkFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// escapeLike neutralizes LIKE metacharacters in user-supplied substrings
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '%', '_', '\\':
			out = append(out, '\\', r)
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
