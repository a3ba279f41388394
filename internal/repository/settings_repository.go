package repository

import (
	"context"

	"github.com/yukikurage/timewise-api/internal/models"
	"gorm.io/gorm"
)

// GormSettingsRepository is a GORM implementation of SettingsRepository
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &GormSettingsRepository{db: db}
}

func (r *GormSettingsRepository) FindByUserID(ctx context.Context, userID string) (*models.UserSettings, error) {
	var settings models.UserSettings
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *GormSettingsRepository) Create(ctx context.Context, settings *models.UserSettings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *GormSettingsRepository) Update(ctx context.Context, settings *models.UserSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
