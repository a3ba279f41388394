package repository

import (
	"context"

	"github.com/yukikurage/timewise-api/internal/database"
	"github.com/yukikurage/timewise-api/internal/models"
	"gorm.io/gorm"
)

// GormAnalyticsRepository is a GORM implementation of AnalyticsRepository
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

// Create appends a ledger entry. Entries are never updated.
func (r *GormAnalyticsRepository) Create(ctx context.Context, entry *models.Analytics) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *GormAnalyticsRepository) ListByUserID(ctx context.Context, userID string) ([]models.Analytics, error) {
	var entries []models.Analytics
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(userID)).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
