package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/plexlink/plexlink/models"
	"gorm.io/gorm"
)

// VisitRepositoryImpl implements VisitRepository. Visits are append-only;
// this repository only inserts and aggregates.
type VisitRepositoryImpl struct {
	*BaseRepository[models.Visit, models.VisitFilter]
}

func NewVisitRepository(db *gorm.DB) VisitRepository {
	return &VisitRepositoryImpl{BaseRepository: NewBaseRepository[models.Visit, models.VisitFilter](db)}
}

func (r *VisitRepositoryImpl) CountByLink(ctx context.Context, linkID uint) (int64, error) {
	return r.Count(ctx, models.VisitFilter{LinkID: &linkID})
}

// GroupByUserAgent buckets visits by raw user agent. A nil linkID
// aggregates over every visit (admin overview); NULL agents group under
// the empty string.
func (r *VisitRepositoryImpl) GroupByUserAgent(ctx context.Context, linkID *uint) ([]*FieldCount, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Visit{}).
		Select("COALESCE(user_agent, '') AS value, COUNT(*) AS cnt").
		Group("COALESCE(user_agent, '')").
		Order("cnt DESC")
	if linkID != nil {
		query = query.Where("link_id = ?", *linkID)
	}
	var rows []*FieldCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to group visits by user agent: %w", err)
	}
	return rows, nil
}

func (r *VisitRepositoryImpl) GroupByReferer(ctx context.Context, linkID *uint) ([]*FieldCount, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Visit{}).
		Select("COALESCE(referer, '') AS value, COUNT(*) AS cnt").
		Group("COALESCE(referer, '')").
		Order("cnt DESC")
	if linkID != nil {
		query = query.Where("link_id = ?", *linkID)
	}
	var rows []*FieldCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to group visits by referer: %w", err)
	}
	return rows, nil
}

// CountByDay returns per-day visit totals in [from, to). Days with no
// visits are absent; the stats flow fills gaps when it needs a dense series.
func (r *VisitRepositoryImpl) CountByDay(ctx context.Context, from, to time.Time) ([]*DayCount, error) {
	db := r.getDB(ctx)
	var rows []*DayCount
	err := db.Model(&models.Visit{}).
		Select("date_trunc('day', created_at) AS day, COUNT(*) AS cnt").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("date_trunc('day', created_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count visits by day: %w", err)
	}
	return rows, nil
}

func (r *VisitRepositoryImpl) applyFilter(db *gorm.DB, f models.VisitFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.LinkID != nil {
		db = db.Where("link_id = ?", *f.LinkID)
	}
	if f.Alias != nil {
		db = db.Where("alias = ?", *f.Alias)
	}
	if f.SourceIP != nil {
		db = db.Where("source_ip = ?", *f.SourceIP)
	}
	if f.TrackingID != nil {
		db = db.Where("tracking_id = ?", *f.TrackingID)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *VisitRepositoryImpl) ByFilter(ctx context.Context, filter models.VisitFilter, orderBy string, limit, offset int) ([]*models.Visit, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Visit{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Visit
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *VisitRepositoryImpl) Count(ctx context.Context, filter models.VisitFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Visit{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VisitRepositoryImpl) Exists(ctx context.Context, filter models.VisitFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
