package repository

import (
	"context"
	"time"

	"github.com/yukikurage/timewise-api/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// CreateWithSettings creates a user together with their default settings
	CreateWithSettings(ctx context.Context, user *models.User, settings *models.UserSettings) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// ExistsByEmailOrUsername reports which of the two identifiers is taken,
	// ignoring the user with excludeID
	ExistsByEmailOrUsername(ctx context.Context, email, username, excludeID string) (emailTaken, usernameTaken bool, err error)

	// List retrieves users ordered by creation time
	List(ctx context.Context, page, pageSize int) ([]models.User, int64, error)

	// Update saves every column of the user
	Update(ctx context.Context, user *models.User) error

	// Delete removes a user and everything they own
	Delete(ctx context.Context, id string) error
}

// SettingsRepository defines the interface for user settings data access
type SettingsRepository interface {
	// FindByUserID finds the settings row of a user
	FindByUserID(ctx context.Context, userID string) (*models.UserSettings, error)

	// Create creates a settings row
	Create(ctx context.Context, settings *models.UserSettings) error

	// Update saves every column of the settings row
	Update(ctx context.Context, settings *models.UserSettings) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Summarize aggregates the tasks of a user
	Summarize(ctx context.Context, userID string) (TaskSummary, error)

	// Update saves every column of the task
	Update(ctx context.Context, task *models.Task) error

	// AddTimeSpent atomically increments the accumulated time of a task
	AddTimeSpent(ctx context.Context, id string, d time.Duration) error

	// Delete removes a task with its progress sessions and ledger entries
	Delete(ctx context.Context, id string) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	UserID    string
	Completed *bool
	Priority  *models.TaskPriority
	Page      int
	PageSize  int
}

// TaskSummary is the rollup of a user's tasks
type TaskSummary struct {
	TotalTasks     int64
	CompletedTasks int64
	TotalTimeSpent time.Duration
}

// ProgressRepository defines the interface for progress session data access
type ProgressRepository interface {
	// Create creates a new session
	Create(ctx context.Context, progress *models.Progress) error

	// FindByID finds a session by ID
	FindByID(ctx context.Context, id string) (*models.Progress, error)

	// FindOpenByTaskID finds the most recent open session of a task
	FindOpenByTaskID(ctx context.Context, taskID string) (*models.Progress, error)

	// List retrieves sessions matching the filter, most recent first
	List(ctx context.Context, filter ProgressFilter) ([]models.Progress, error)

	// Update saves every column of the session
	Update(ctx context.Context, progress *models.Progress) error
}

// ProgressFilter holds filtering options for listing sessions
type ProgressFilter struct {
	UserID string
	TaskID string
}

// AnalyticsRepository defines the interface for the time ledger
type AnalyticsRepository interface {
	// Create appends a ledger entry
	Create(ctx context.Context, entry *models.Analytics) error

	// ListByUserID lists the ledger entries of a user, most recent first
	ListByUserID(ctx context.Context, userID string) ([]models.Analytics, error)
}

// Store groups the repositories over one database handle. A Store created
// inside WithinTx shares the transaction across all of its repositories.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store over db
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithinTx runs fn inside a single transaction. The transaction is committed
// when fn returns nil and rolled back otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Ping checks connectivity of the underlying connection pool
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Users() UserRepository {
	return &GormUserRepository{db: s.db}
}

func (s *Store) Settings() SettingsRepository {
	return &GormSettingsRepository{db: s.db}
}

func (s *Store) Tasks() TaskRepository {
	return &GormTaskRepository{db: s.db}
}

func (s *Store) Progress() ProgressRepository {
	return &GormProgressRepository{db: s.db}
}

func (s *Store) Analytics() AnalyticsRepository {
	return &GormAnalyticsRepository{db: s.db}
}
