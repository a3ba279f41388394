package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/timewise-api/internal/constants"
	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/repository"
	"gorm.io/gorm"
)

// AnalyticsService reports time spent. Task totals are the source of truth
// for reads. Every change to a task total appends a ledger row carrying the
// delta in the same transaction, so a task's ledger rows sum to its total.
type AnalyticsService struct {
	store *repository.Store
}

func NewAnalyticsService(store *repository.Store) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// RecordTimeInput represents time logged against a task
type RecordTimeInput struct {
	TaskID  string
	Seconds int64
}

// Summary rolls up the owner's tasks.
func (s *AnalyticsService) Summary(ctx context.Context, ownerID string) (repository.TaskSummary, error) {
	summary, err := s.store.Tasks().Summarize(ctx, ownerID)
	if err != nil {
		return repository.TaskSummary{}, fmt.Errorf("failed to summarize tasks: %w", err)
	}
	return summary, nil
}

// Record appends a ledger entry for one of the owner's tasks and adds the time
// to the task. A task owned by someone else is reported as missing.
func (s *AnalyticsService) Record(ctx context.Context, ownerID string, input RecordTimeInput) (*models.Analytics, error) {
	if input.TaskID == "" {
		return nil, missingField("task_id")
	}
	spent, err := secondsToDuration(input.Seconds)
	if err != nil {
		return nil, err
	}

	var entry *models.Analytics
	err = s.store.WithinTx(ctx, func(tx *repository.Store) error {
		task, err := tx.Tasks().FindByID(ctx, input.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}
		if task.UserID != ownerID {
			return ErrTaskNotFound
		}
		if task.TotalTimeSpent+spent > constants.MaxTimeSpent {
			return invalidField("total_time_spent", "total_time_spent of a task cannot exceed %d seconds", maxTimeSpentSeconds)
		}

		entry, err = recordTime(ctx, tx, task, spent)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Entries lists the owner's ledger, most recent first.
func (s *AnalyticsService) Entries(ctx context.Context, ownerID string) ([]models.Analytics, error) {
	entries, err := s.store.Analytics().ListByUserID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analytics: %w", err)
	}
	return entries, nil
}

var maxTimeSpentSeconds = int64(constants.MaxTimeSpent / time.Second)

// secondsToDuration converts client-supplied seconds, rejecting values that
// are negative or above constants.MaxTimeSpent.
func secondsToDuration(seconds int64) (time.Duration, error) {
	if seconds < 0 {
		return 0, invalidField("total_time_spent", "total_time_spent cannot be negative")
	}
	if seconds > maxTimeSpentSeconds {
		return 0, invalidField("total_time_spent", "total_time_spent cannot exceed %d seconds", maxTimeSpentSeconds)
	}
	return time.Duration(seconds) * time.Second, nil
}

// recordTime appends a ledger row for delta and adds delta to the task total.
// It must run inside tx. A zero delta records nothing.
func recordTime(ctx context.Context, tx *repository.Store, task *models.Task, delta time.Duration) (*models.Analytics, error) {
	entry := &models.Analytics{
		UserID:         task.UserID,
		TaskID:         &task.ID,
		TotalTimeSpent: delta,
	}
	if delta == 0 {
		return entry, nil
	}

	if err := tx.Analytics().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record analytics: %w", err)
	}
	if err := tx.Tasks().AddTimeSpent(ctx, task.ID, delta); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to add time to task: %w", err)
	}
	task.TotalTimeSpent += delta
	return entry, nil
}
