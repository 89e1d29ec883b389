package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/plexlink/plexlink/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrganizationRepositoryImpl implements OrganizationRepository
type OrganizationRepositoryImpl struct {
	*BaseRepository[models.Organization, models.OrganizationFilter]
}

func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &OrganizationRepositoryImpl{BaseRepository: NewBaseRepository[models.Organization, models.OrganizationFilter](db)}
}

func (r *OrganizationRepositoryImpl) ByName(ctx context.Context, name string) (*models.Organization, error) {
	deleted := false
	rows, err := r.ByFilter(ctx, models.OrganizationFilter{Name: &name, Deleted: &deleted}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *OrganizationRepositoryImpl) WithMembers(ctx context.Context, orgID uint) (*models.Organization, error) {
	db := r.getDB(ctx)
	var org models.Organization
	err := db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("netid ASC")
	}).First(&org, orgID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load organization %d: %w", orgID, err)
	}
	return &org, nil
}

func (r *OrganizationRepositoryImpl) SoftDelete(ctx context.Context, orgID uint, at time.Time) error {
	db := r.getDB(ctx)
	res := db.Model(&models.Organization{}).Where("id = ? AND deleted = false", orgID).Updates(map[string]any{
		"deleted":    true,
		"deleted_at": at,
		"updated_at": at,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to soft-delete organization %d: %w", orgID, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *OrganizationRepositoryImpl) AddMember(ctx context.Context, m *models.OrganizationMember) error {
	db := r.getDB(ctx)
	if err := db.Create(m).Error; err != nil {
		// %w keeps gorm.ErrDuplicatedKey visible for repeated adds
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (r *OrganizationRepositoryImpl) RemoveMember(ctx context.Context, orgID uint, netid string) (bool, error) {
	db := r.getDB(ctx)
	res := db.Where("organization_id = ? AND netid = ?", orgID, netid).Delete(&models.OrganizationMember{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove member: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *OrganizationRepositoryImpl) SetMemberAdmin(ctx context.Context, orgID uint, netid string, isAdmin bool) error {
	db := r.getDB(ctx)
	res := db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND netid = ?", orgID, netid).
		Update("is_admin", isAdmin)
	if res.Error != nil {
		return fmt.Errorf("failed to update member admin flag: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *OrganizationRepositoryImpl) ListMembers(ctx context.Context, orgID uint) ([]*models.OrganizationMember, error) {
	db := r.getDB(ctx)
	var rows []*models.OrganizationMember
	if err := db.Where("organization_id = ?", orgID).Order("netid ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list members for organization %d: %w", orgID, err)
	}
	return rows, nil
}

// ListMembersForUpdate loads the membership rows under FOR UPDATE so the
// last-admin check and the mutation it guards see a stable set. Only
// meaningful inside WithTransaction.
func (r *OrganizationRepositoryImpl) ListMembersForUpdate(ctx context.Context, orgID uint) ([]*models.OrganizationMember, error) {
	db := r.getDB(ctx)
	var rows []*models.OrganizationMember
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("organization_id = ?", orgID).
		Order("netid ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock members for organization %d: %w", orgID, err)
	}
	return rows, nil
}

func (r *OrganizationRepositoryImpl) ListOrgNamesForNetid(ctx context.Context, netid string) ([]string, error) {
	db := r.getDB(ctx)
	var names []string
	err := db.Model(&models.OrganizationMember{}).
		Joins("JOIN organizations ON organizations.id = organization_members.organization_id").
		Where("organization_members.netid = ? AND organizations.deleted = false", netid).
		Order("organizations.name ASC").
		Pluck("organizations.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations for netid: %w", err)
	}
	return names, nil
}

func (r *OrganizationRepositoryImpl) applyFilter(db *gorm.DB, f models.OrganizationFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.Name != nil {
		db = db.Where("name = ?", *f.Name)
	}
	if f.Deleted != nil {
		db = db.Where("deleted = ?", *f.Deleted)
	}
	if f.MemberNetid != nil {
		db = db.Where("id IN (?)", r.DB.Model(&models.OrganizationMember{}).
			Select("organization_id").Where("netid = ?", *f.MemberNetid))
	}
	return db
}

func (r *OrganizationRepositoryImpl) ByFilter(ctx context.Context, filter models.OrganizationFilter, orderBy string, limit, offset int) ([]*models.Organization, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Organization{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Organization
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *OrganizationRepositoryImpl) Count(ctx context.Context, filter models.OrganizationFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Organization{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *OrganizationRepositoryImpl) Exists(ctx context.Context, filter models.OrganizationFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
