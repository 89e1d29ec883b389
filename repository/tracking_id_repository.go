package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/plexlink/plexlink/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrackingIDRepositoryImpl implements TrackingIDRepository
type TrackingIDRepositoryImpl struct {
	*BaseRepository[models.TrackingID, models.TrackingIDFilter]
}

func NewTrackingIDRepository(db *gorm.DB) TrackingIDRepository {
	return &TrackingIDRepositoryImpl{BaseRepository: NewBaseRepository[models.TrackingID, models.TrackingIDFilter](db)}
}

func (r *TrackingIDRepositoryImpl) BySourceIP(ctx context.Context, sourceIP string) (*models.TrackingID, error) {
	rows, err := r.ByFilter(ctx, models.TrackingIDFilter{SourceIP: &sourceIP}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// LookupOrCreate returns the tracking id for a source IP, assigning one on
// first sight. Concurrent first visits from the same IP race on the
// source_ip unique index: the insert is ON CONFLICT DO NOTHING, and a
// reread picks up whichever row won, so both callers observe the same id.
func (r *TrackingIDRepositoryImpl) LookupOrCreate(ctx context.Context, sourceIP string) (uuid.UUID, error) {
	existing, err := r.BySourceIP(ctx, sourceIP)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		return existing.UUID, nil
	}

	db := r.getDB(ctx)
	row := &models.TrackingID{SourceIP: sourceIP, UUID: uuid.New()}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_ip"}},
		DoNothing: true,
	}).Create(row).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return uuid.Nil, fmt.Errorf("failed to assign tracking id for %s: %w", sourceIP, err)
	}

	// Reread: with DoNothing the returned row is not authoritative when
	// another insert won the race.
	winner, err := r.BySourceIP(ctx, sourceIP)
	if err != nil {
		return uuid.Nil, err
	}
	if winner == nil {
		return uuid.Nil, fmt.Errorf("tracking id for %s vanished after insert", sourceIP)
	}
	return winner.UUID, nil
}

func (r *TrackingIDRepositoryImpl) applyFilter(db *gorm.DB, f models.TrackingIDFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.SourceIP != nil {
		db = db.Where("source_ip = ?", *f.SourceIP)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	return db
}

func (r *TrackingIDRepositoryImpl) ByFilter(ctx context.Context, filter models.TrackingIDFilter, orderBy string, limit, offset int) ([]*models.TrackingID, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.TrackingID{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.TrackingID
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *TrackingIDRepositoryImpl) Count(ctx context.Context, filter models.TrackingIDFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.TrackingID{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TrackingIDRepositoryImpl) Exists(ctx context.Context, filter models.TrackingIDFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
