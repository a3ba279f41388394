package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/timewise-api/internal/authz"
	"github.com/yukikurage/timewise-api/internal/constants"
	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/repository"
	"gorm.io/gorm"
)

// TaskService handles task business logic
type TaskService struct {
	store *repository.Store
}

// NewTaskService creates a new TaskService
func NewTaskService(store *repository.Store) *TaskService {
	return &TaskService{store: store}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	OwnerID   string
	Completed *bool
	Priority  *models.TaskPriority
	Page      int
	PageSize  int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	Deadline    *time.Time
	OwnerID     string
}

// TaskPatch lists the task fields a caller may change. Nil fields are left
// untouched; ClearDeadline removes the deadline.
type TaskPatch struct {
	Title         *string
	Description   *string
	Priority      *string
	Deadline      *time.Time
	ClearDeadline bool
	Completed     *bool
	Progress      *int
}

// TaskAnalytics is the per-task time report.
type TaskAnalytics struct {
	TotalTimeSpent time.Duration
	Progress       int
	Completed      bool
}

// ListTasks returns the owner's tasks matching the filters
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.store.Tasks().List(ctx, repository.TaskFilter{
		UserID:    input.OwnerID,
		Completed: input.Completed,
		Priority:  input.Priority,
		Page:      input.Page,
		PageSize:  input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask returns a task the actor may access
func (s *TaskService) GetTask(ctx context.Context, actor *models.User, taskID string) (*models.Task, error) {
	return findAccessibleTask(ctx, s.store, actor, taskID)
}

// CreateTask creates a new task owned by input.OwnerID
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, missingField("title")
	}
	if len(title) > constants.MaxTitleLength {
		return nil, invalidField("title", "title must be at most %d characters", constants.MaxTitleLength)
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, missingField("description")
	}

	priority := models.PriorityMedium
	if input.Priority != "" {
		p, err := models.ParsePriority(input.Priority)
		if err != nil {
			return nil, invalidField("priority", "Invalid priority. Must be one of low, medium, high")
		}
		priority = p
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		Deadline:    input.Deadline,
		UserID:      input.OwnerID,
	}

	if err := s.store.Tasks().Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// UpdateTask applies patch to a task the actor may access
func (s *TaskService) UpdateTask(ctx context.Context, actor *models.User, taskID string, patch TaskPatch) (*models.Task, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, actor, taskID, func(task *models.Task) {
		if patch.Title != nil {
			task.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			task.Description = *patch.Description
		}
		if patch.Priority != nil {
			task.Priority, _ = models.ParsePriority(*patch.Priority)
		}
		if patch.ClearDeadline {
			task.Deadline = nil
		} else if patch.Deadline != nil {
			task.Deadline = patch.Deadline
		}
		if patch.Completed != nil {
			task.Completed = *patch.Completed
		}
		if patch.Progress != nil {
			task.Progress = *patch.Progress
		}
	})
}

// DeleteTask deletes a task together with its sessions and ledger entries
func (s *TaskService) DeleteTask(ctx context.Context, actor *models.User, taskID string) error {
	return s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if _, err := findAccessibleTask(ctx, tx, actor, taskID); err != nil {
			return err
		}
		if err := tx.Tasks().Delete(ctx, taskID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
}

// SetCompleted marks a task completed or not. Repeating the call is a no-op.
func (s *TaskService) SetCompleted(ctx context.Context, actor *models.User, taskID string, completed bool) (*models.Task, error) {
	return s.mutate(ctx, actor, taskID, func(task *models.Task) {
		task.Completed = completed
	})
}

// SetProgress sets the completion percentage of a task
func (s *TaskService) SetProgress(ctx context.Context, actor *models.User, taskID string, percent int) (*models.Task, error) {
	if err := validateProgress(percent); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, taskID, func(task *models.Task) {
		task.Progress = percent
	})
}

// GetTaskAnalytics reports the accumulated time and progress of a task
func (s *TaskService) GetTaskAnalytics(ctx context.Context, actor *models.User, taskID string) (*TaskAnalytics, error) {
	task, err := findAccessibleTask(ctx, s.store, actor, taskID)
	if err != nil {
		return nil, err
	}
	return taskAnalytics(task), nil
}

// SetTimeSpent overwrites the accumulated time of a task. The difference to
// the previous total is appended to the ledger.
func (s *TaskService) SetTimeSpent(ctx context.Context, actor *models.User, taskID string, seconds int64) (*TaskAnalytics, error) {
	total, err := secondsToDuration(seconds)
	if err != nil {
		return nil, err
	}

	var updated *models.Task
	err = s.store.WithinTx(ctx, func(tx *repository.Store) error {
		task, err := findAccessibleTask(ctx, tx, actor, taskID)
		if err != nil {
			return err
		}
		if _, err := recordTime(ctx, tx, task, total-task.TotalTimeSpent); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return taskAnalytics(updated), nil
}

func (s *TaskService) mutate(ctx context.Context, actor *models.User, taskID string, apply func(*models.Task)) (*models.Task, error) {
	var updated *models.Task
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		task, err := findAccessibleTask(ctx, tx, actor, taskID)
		if err != nil {
			return err
		}

		apply(task)
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (p TaskPatch) validate() error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return invalidField("title", "title cannot be empty")
		}
		if len(title) > constants.MaxTitleLength {
			return invalidField("title", "title must be at most %d characters", constants.MaxTitleLength)
		}
	}
	if p.Priority != nil {
		if _, err := models.ParsePriority(*p.Priority); err != nil {
			return invalidField("priority", "Invalid priority. Must be one of low, medium, high")
		}
	}
	if p.Progress != nil {
		return validateProgress(*p.Progress)
	}
	return nil
}

func validateProgress(percent int) error {
	if percent < constants.MinProgress || percent > constants.MaxProgress {
		return invalidField("progress", "progress must be between %d and %d", constants.MinProgress, constants.MaxProgress)
	}
	return nil
}

func taskAnalytics(task *models.Task) *TaskAnalytics {
	return &TaskAnalytics{
		TotalTimeSpent: task.TotalTimeSpent,
		Progress:       task.Progress,
		Completed:      task.Completed,
	}
}

// findAccessibleTask loads a task and applies the ownership policy: a missing
// task is reported before a foreign one.
func findAccessibleTask(ctx context.Context, store *repository.Store, actor *models.User, taskID string) (*models.Task, error) {
	task, err := store.Tasks().FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !authz.CanAccess(actor, task.UserID) {
		return nil, ErrForbidden
	}
	return task, nil
}
