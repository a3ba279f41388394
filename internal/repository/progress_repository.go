package repository

import (
	"context"

	"github.com/yukikurage/timewise-api/internal/models"
	"gorm.io/gorm"
)

// GormProgressRepository is a GORM implementation of ProgressRepository
type GormProgressRepository struct {
	db *gorm.DB
}

// NewProgressRepository creates a new ProgressRepository
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &GormProgressRepository{db: db}
}

func (r *GormProgressRepository) Create(ctx context.Context, progress *models.Progress) error {
	return r.db.WithContext(ctx).Create(progress).Error
}

func (r *GormProgressRepository) FindByID(ctx context.Context, id string) (*models.Progress, error) {
	var progress models.Progress
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *GormProgressRepository) FindOpenByTaskID(ctx context.Context, taskID string) (*models.Progress, error) {
	var progress models.Progress
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND end_time IS NULL", taskID).
		Order("start_time DESC").
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *GormProgressRepository) List(ctx context.Context, filter ProgressFilter) ([]models.Progress, error) {
	var sessions []models.Progress

	query := r.db.WithContext(ctx).Model(&models.Progress{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.TaskID != "" {
		query = query.Where("task_id = ?", filter.TaskID)
	}

	if err := query.Order("start_time DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *GormProgressRepository) Update(ctx context.Context, progress *models.Progress) error {
	return r.db.WithContext(ctx).Save(progress).Error
}
