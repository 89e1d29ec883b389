package repository

import (
	"context"
	"fmt"

	"github.com/plexlink/plexlink/models"
	"gorm.io/gorm"
)

// RoleGrantRepositoryImpl implements RoleGrantRepository. The unique index
// on (role, entity) is the concurrency arbiter for duplicate grants.
type RoleGrantRepositoryImpl struct {
	*BaseRepository[models.RoleGrant, models.RoleGrantFilter]
}

func NewRoleGrantRepository(db *gorm.DB) RoleGrantRepository {
	return &RoleGrantRepositoryImpl{BaseRepository: NewBaseRepository[models.RoleGrant, models.RoleGrantFilter](db)}
}

func (r *RoleGrantRepositoryImpl) ByRoleAndEntity(ctx context.Context, role, entity string) (*models.RoleGrant, error) {
	rows, err := r.ByFilter(ctx, models.RoleGrantFilter{Role: &role, Entity: &entity}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *RoleGrantRepositoryImpl) ListEntities(ctx context.Context, role string) ([]string, error) {
	db := r.getDB(ctx)
	var entities []string
	err := db.Model(&models.RoleGrant{}).Where("role = ?", role).Order("entity ASC").Pluck("entity", &entities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list entities for role %s: %w", role, err)
	}
	return entities, nil
}

func (r *RoleGrantRepositoryImpl) ListRolesForEntity(ctx context.Context, entity string) ([]string, error) {
	db := r.getDB(ctx)
	var roles []string
	err := db.Model(&models.RoleGrant{}).Where("entity = ?", entity).Order("role ASC").Pluck("role", &roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list roles for entity: %w", err)
	}
	return roles, nil
}

// Delete removes a grant and reports whether a row existed. Revoking an
// absent grant is not an error; callers treat false as an idempotent no-op.
func (r *RoleGrantRepositoryImpl) Delete(ctx context.Context, role, entity string) (bool, error) {
	db := r.getDB(ctx)
	res := db.Where("role = ? AND entity = ?", role, entity).Delete(&models.RoleGrant{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete grant: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *RoleGrantRepositoryImpl) applyFilter(db *gorm.DB, f models.RoleGrantFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.Role != nil {
		db = db.Where("role = ?", *f.Role)
	}
	if f.Entity != nil {
		db = db.Where("entity = ?", *f.Entity)
	}
	return db
}

func (r *RoleGrantRepositoryImpl) ByFilter(ctx context.Context, filter models.RoleGrantFilter, orderBy string, limit, offset int) ([]*models.RoleGrant, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.RoleGrant{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.RoleGrant
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *RoleGrantRepositoryImpl) Count(ctx context.Context, filter models.RoleGrantFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.RoleGrant{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *RoleGrantRepositoryImpl) Exists(ctx context.Context, filter models.RoleGrantFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
