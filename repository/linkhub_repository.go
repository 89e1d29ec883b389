package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/utils"
	"gorm.io/gorm"
)

// LinkHubRepositoryImpl implements LinkHubRepository
type LinkHubRepositoryImpl struct {
	*BaseRepository[models.LinkHub, models.LinkHubFilter]
}

func NewLinkHubRepository(db *gorm.DB) LinkHubRepository {
	return &LinkHubRepositoryImpl{BaseRepository: NewBaseRepository[models.LinkHub, models.LinkHubFilter](db)}
}

// WithChildren loads a hub with its ordered links and collaborators
func (r *LinkHubRepositoryImpl) WithChildren(ctx context.Context, hubID uint) (*models.LinkHub, error) {
	db := r.getDB(ctx)
	var hub models.LinkHub
	err := db.Preload("Links", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).Preload("Collaborators").First(&hub, hubID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load linkhub %d: %w", hubID, err)
	}
	return &hub, nil
}

func (r *LinkHubRepositoryImpl) Update(ctx context.Context, hubID uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	db := r.getDB(ctx)
	updates["updated_at"] = utils.UTCNow()
	res := db.Model(&models.LinkHub{}).Where("id = ? AND deleted = false", hubID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update linkhub %d: %w", hubID, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LinkHubRepositoryImpl) SoftDelete(ctx context.Context, hubID uint, at time.Time) error {
	db := r.getDB(ctx)
	res := db.Model(&models.LinkHub{}).Where("id = ? AND deleted = false", hubID).Updates(map[string]any{
		"deleted":    true,
		"deleted_at": at,
		"updated_at": at,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to soft-delete linkhub %d: %w", hubID, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceLinks swaps the hub's link list atomically. Positions are
// reassigned from slice order so callers only control ordering.
func (r *LinkHubRepositoryImpl) ReplaceLinks(ctx context.Context, hubID uint, links []*models.LinkHubLink) error {
	db := r.getDB(ctx)
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("linkhub_id = ?", hubID).Delete(&models.LinkHubLink{}).Error; err != nil {
			return fmt.Errorf("failed to clear linkhub %d links: %w", hubID, err)
		}
		for i, l := range links {
			l.ID = 0
			l.LinkHubID = hubID
			l.Position = i
		}
		if len(links) > 0 {
			if err := tx.Create(&links).Error; err != nil {
				return fmt.Errorf("failed to insert linkhub %d links: %w", hubID, err)
			}
		}
		return nil
	})
}

func (r *LinkHubRepositoryImpl) AddCollaborator(ctx context.Context, c *models.LinkHubCollaborator) error {
	db := r.getDB(ctx)
	if err := db.Create(c).Error; err != nil {
		// %w keeps gorm.ErrDuplicatedKey visible for duplicate collaborators
		return fmt.Errorf("failed to add collaborator: %w", err)
	}
	return nil
}

func (r *LinkHubRepositoryImpl) RemoveCollaborator(ctx context.Context, hubID uint, entityType, entity string) error {
	db := r.getDB(ctx)
	err := db.Where("linkhub_id = ? AND entity_type = ? AND entity = ?", hubID, entityType, entity).
		Delete(&models.LinkHubCollaborator{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}
	return nil
}

func (r *LinkHubRepositoryImpl) ListCollaborators(ctx context.Context, hubID uint) ([]*models.LinkHubCollaborator, error) {
	db := r.getDB(ctx)
	var rows []*models.LinkHubCollaborator
	if err := db.Where("linkhub_id = ?", hubID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list collaborators for linkhub %d: %w", hubID, err)
	}
	return rows, nil
}

func (r *LinkHubRepositoryImpl) applyFilter(db *gorm.DB, f models.LinkHubFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.OwnerNetid != nil {
		db = db.Where("owner_netid = ?", *f.OwnerNetid)
	}
	if f.IsPublic != nil {
		db = db.Where("is_public = ?", *f.IsPublic)
	}
	if f.Deleted != nil {
		db = db.Where("deleted = ?", *f.Deleted)
	}
	return db
}

func (r *LinkHubRepositoryImpl) ByFilter(ctx context.Context, filter models.LinkHubFilter, orderBy string, limit, offset int) ([]*models.LinkHub, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LinkHub{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.LinkHub
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LinkHubRepositoryImpl) Count(ctx context.Context, filter models.LinkHubFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LinkHub{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LinkHubRepositoryImpl) Exists(ctx context.Context, filter models.LinkHubFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
