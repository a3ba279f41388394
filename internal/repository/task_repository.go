package repository

import (
	"context"
	"time"

	"github.com/yukikurage/timewise-api/internal/database"
	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{}).Scopes(database.OwnedBy(filter.UserID))

	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.NewPaginationParams(filter.Page, filter.PageSize)))
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

const summaryColumns = "COUNT(*) AS total_tasks, " +
	"COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed_tasks, " +
	"COALESCE(SUM(total_time_spent), 0) AS total_time_spent"

// Summarize counts a user's tasks and sums their accumulated time
func (r *GormTaskRepository) Summarize(ctx context.Context, userID string) (TaskSummary, error) {
	var row struct {
		TotalTasks     int64
		CompletedTasks int64
		TotalTimeSpent int64
	}

	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Select(summaryColumns).
		Scopes(database.OwnedBy(userID)).
		Scan(&row).Error
	if err != nil {
		return TaskSummary{}, err
	}

	return TaskSummary{
		TotalTasks:     row.TotalTasks,
		CompletedTasks: row.CompletedTasks,
		TotalTimeSpent: time.Duration(row.TotalTimeSpent),
	}, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// AddTimeSpent increments total_time_spent without reading it first
func (r *GormTaskRepository) AddTimeSpent(ctx context.Context, id string, d time.Duration) error {
	result := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ?", id).
		UpdateColumn("total_time_spent", gorm.Expr("total_time_spent + ?", int64(d)))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a task, its sessions and its ledger entries
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Progress{}).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.Analytics{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&models.Task{}).Error
	})
}
