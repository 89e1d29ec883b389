package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/utils"
	"gorm.io/gorm"
)

// TicketRepositoryImpl implements TicketRepository. The partial unique
// index over open tickets makes duplicate submission lose at insert time.
type TicketRepositoryImpl struct {
	*BaseRepository[models.Ticket, models.TicketFilter]
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &TicketRepositoryImpl{BaseRepository: NewBaseRepository[models.Ticket, models.TicketFilter](db)}
}

func (r *TicketRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Ticket, error) {
	id, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, nil
	}
	rows, err := r.ByFilter(ctx, models.TicketFilter{UUID: &id}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Close marks an open ticket closed. Returns gorm.ErrRecordNotFound when
// the ticket is absent or already closed, so closing is not idempotent.
func (r *TicketRepositoryImpl) Close(ctx context.Context, ticketID uint, actionedBy string, at time.Time) error {
	db := r.getDB(ctx)
	res := db.Model(&models.Ticket{}).
		Where("id = ? AND status = ?", ticketID, models.TicketStatusOpen).
		Updates(map[string]any{
			"status":      models.TicketStatusClosed,
			"actioned_by": actionedBy,
			"closed_at":   at,
			"updated_at":  at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to close ticket %d: %w", ticketID, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// OpenDuplicateExists reports whether an open ticket for the same request
// already exists. The match mirrors the uk_tickets_open_request index: a
// nil entity matches only tickets without an entity.
func (r *TicketRepositoryImpl) OpenDuplicateExists(ctx context.Context, createdBy, reason string, entity *string) (bool, error) {
	db := r.getDB(ctx)
	coalesced := ""
	if entity != nil {
		coalesced = *entity
	}
	var count int64
	err := db.Model(&models.Ticket{}).
		Where("created_by = ? AND reason = ? AND COALESCE(entity, '') = ? AND status = ?",
			createdBy, reason, coalesced, models.TicketStatusOpen).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check for open duplicate ticket: %w", err)
	}
	return count > 0, nil
}

// DeleteOpen removes a still-open ticket owned by createdBy. Reports
// whether a row was removed; closed tickets stay for the audit trail.
func (r *TicketRepositoryImpl) DeleteOpen(ctx context.Context, ticketID uint, createdBy string) (bool, error) {
	db := r.getDB(ctx)
	res := db.Where("id = ? AND created_by = ? AND status = ?", ticketID, createdBy, models.TicketStatusOpen).
		Delete(&models.Ticket{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete ticket %d: %w", ticketID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *TicketRepositoryImpl) applyFilter(db *gorm.DB, f models.TicketFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.Reason != nil {
		db = db.Where("reason = ?", *f.Reason)
	}
	if f.Entity != nil {
		db = db.Where("entity = ?", *f.Entity)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.CreatedBy != nil {
		db = db.Where("created_by = ?", *f.CreatedBy)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *TicketRepositoryImpl) ByFilter(ctx context.Context, filter models.TicketFilter, orderBy string, limit, offset int) ([]*models.Ticket, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Ticket{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Ticket
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *TicketRepositoryImpl) Count(ctx context.Context, filter models.TicketFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Ticket{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TicketRepositoryImpl) Exists(ctx context.Context, filter models.TicketFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
