package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/timewise-api/internal/authz"
	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/repository"
	"gorm.io/gorm"
)

// ProgressService tracks work sessions on tasks. A task has at most one
// open session at a time.
type ProgressService struct {
	store *repository.Store
	now   func() time.Time
}

func NewProgressService(store *repository.Store) *ProgressService {
	return &ProgressService{
		store: store,
		now:   time.Now,
	}
}

// WithClock returns a copy of the service stamping sessions with now.
func (s *ProgressService) WithClock(now func() time.Time) *ProgressService {
	clone := *s
	clone.now = now
	return &clone
}

// StartProgressInput represents input for opening a session
type StartProgressInput struct {
	TaskID      string
	Description string
	Status      string
}

// Start opens a new session on a task the actor may access.
func (s *ProgressService) Start(ctx context.Context, actor *models.User, input StartProgressInput) (*models.Progress, error) {
	switch {
	case input.TaskID == "":
		return nil, missingField("task_id")
	case strings.TrimSpace(input.Description) == "":
		return nil, missingField("description")
	case strings.TrimSpace(input.Status) == "":
		return nil, missingField("status")
	}

	var session *models.Progress
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		task, err := findAccessibleTask(ctx, tx, actor, input.TaskID)
		if err != nil {
			return err
		}

		_, err = tx.Progress().FindOpenByTaskID(ctx, task.ID)
		switch {
		case err == nil:
			return ErrProgressSessionOpen
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to check open session: %w", err)
		}

		session = &models.Progress{
			UserID:      task.UserID,
			TaskID:      task.ID,
			Description: strings.TrimSpace(input.Description),
			Status:      strings.TrimSpace(input.Status),
			StartTime:   s.now().UTC(),
		}
		if err := tx.Progress().Create(ctx, session); err != nil {
			return fmt.Errorf("failed to create progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// List returns the sessions of one task when taskID is set, otherwise every
// session of the actor.
func (s *ProgressService) List(ctx context.Context, actor *models.User, taskID string) ([]models.Progress, error) {
	filter := repository.ProgressFilter{UserID: actor.ID}
	if taskID != "" {
		task, err := findAccessibleTask(ctx, s.store, actor, taskID)
		if err != nil {
			return nil, err
		}
		filter = repository.ProgressFilter{TaskID: task.ID}
	}

	sessions, err := s.store.Progress().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return sessions, nil
}

// Get returns a session the actor may access.
func (s *ProgressService) Get(ctx context.Context, actor *models.User, id string) (*models.Progress, error) {
	return findAccessibleProgress(ctx, s.store, actor, id)
}

// Stop closes an open session and records its duration against the task.
func (s *ProgressService) Stop(ctx context.Context, actor *models.User, id string) (*models.Progress, error) {
	var session *models.Progress
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		var err error
		session, err = findAccessibleProgress(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !session.IsOpen() {
			return ErrProgressSessionStopped
		}

		end := s.now().UTC()
		duration := end.Sub(session.StartTime)
		if duration < 0 {
			duration = 0
		}
		session.EndTime = &end
		session.Duration = &duration

		if err := tx.Progress().Update(ctx, session); err != nil {
			return fmt.Errorf("failed to stop progress: %w", err)
		}
		task, err := tx.Tasks().FindByID(ctx, session.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}
		_, err = recordTime(ctx, tx, task, duration)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func findAccessibleProgress(ctx context.Context, store *repository.Store, actor *models.User, id string) (*models.Progress, error) {
	session, err := store.Progress().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to find progress: %w", err)
	}

	if !authz.CanAccess(actor, session.UserID) {
		return nil, ErrForbidden
	}
	return session, nil
}
