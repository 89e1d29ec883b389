package repository

import (
	"context"
	"fmt"

	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/utils"
	"gorm.io/gorm"
)

// AliasRepositoryImpl implements AliasRepository. Save relies on the
// partial unique index uk_aliases_alias_live: concurrent inserts of the
// same live alias produce exactly one winner, and the loser surfaces
// gorm.ErrDuplicatedKey to the caller.
type AliasRepositoryImpl struct {
	*BaseRepository[models.Alias, models.AliasFilter]
}

func NewAliasRepository(db *gorm.DB) AliasRepository {
	return &AliasRepositoryImpl{BaseRepository: NewBaseRepository[models.Alias, models.AliasFilter](db)}
}

// ByAlias returns the live (non-deleted) row for an alias, or nil
func (r *AliasRepositoryImpl) ByAlias(ctx context.Context, alias string) (*models.Alias, error) {
	deleted := false
	rows, err := r.ByFilter(ctx, models.AliasFilter{Alias: &alias, Deleted: &deleted}, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *AliasRepositoryImpl) ListByLink(ctx context.Context, linkID uint, includeDeleted bool) ([]*models.Alias, error) {
	filter := models.AliasFilter{LinkID: &linkID}
	if !includeDeleted {
		deleted := false
		filter.Deleted = &deleted
	}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

func (r *AliasRepositoryImpl) SoftDelete(ctx context.Context, aliasID uint) error {
	db := r.getDB(ctx)
	res := db.Model(&models.Alias{}).Where("id = ? AND deleted = false", aliasID).Updates(map[string]any{
		"deleted":    true,
		"updated_at": utils.UTCNow(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to soft-delete alias %d: %w", aliasID, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AliasRepositoryImpl) SoftDeleteByLink(ctx context.Context, linkID uint) error {
	db := r.getDB(ctx)
	err := db.Model(&models.Alias{}).Where("link_id = ? AND deleted = false", linkID).Updates(map[string]any{
		"deleted":    true,
		"updated_at": utils.UTCNow(),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to retire aliases for link %d: %w", linkID, err)
	}
	return nil
}

func (r *AliasRepositoryImpl) SoftDeleteByLinkHub(ctx context.Context, linkHubID uint) error {
	db := r.getDB(ctx)
	err := db.Model(&models.Alias{}).Where("linkhub_id = ? AND deleted = false", linkHubID).Updates(map[string]any{
		"deleted":    true,
		"updated_at": utils.UTCNow(),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to retire aliases for linkhub %d: %w", linkHubID, err)
	}
	return nil
}

func (r *AliasRepositoryImpl) applyFilter(db *gorm.DB, f models.AliasFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.Alias != nil {
		db = db.Where("alias = ?", *f.Alias)
	}
	if f.ResourceType != nil {
		db = db.Where("resource_type = ?", *f.ResourceType)
	}
	if f.LinkID != nil {
		db = db.Where("link_id = ?", *f.LinkID)
	}
	if f.LinkHubID != nil {
		db = db.Where("linkhub_id = ?", *f.LinkHubID)
	}
	if f.Deleted != nil {
		db = db.Where("deleted = ?", *f.Deleted)
	}
	return db
}

func (r *AliasRepositoryImpl) ByFilter(ctx context.Context, filter models.AliasFilter, orderBy string, limit, offset int) ([]*models.Alias, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Alias{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Alias
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AliasRepositoryImpl) Count(ctx context.Context, filter models.AliasFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Alias{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AliasRepositoryImpl) Exists(ctx context.Context, filter models.AliasFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
