package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/repository"
	"github.com/yukikurage/timewise-api/internal/testutil"
	"github.com/yukikurage/timewise-api/internal/token"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	store     *repository.Store
	tokens    *token.Service
	mail      *testutil.Recorder
	auth      *AuthService
	settings  *SettingsService
	tasks     *TaskService
	progress  *ProgressService
	analytics *AnalyticsService
	admin     *AdminService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	tokens := token.NewService("test-secret", "timewise-test")
	rec := &testutil.Recorder{}

	return &testEnv{
		db:     db,
		store:  store,
		tokens: tokens,
		mail:   rec,
		auth: NewAuthService(store, tokens, rec, AuthConfig{
			PasswordResetTTL:     15 * time.Minute,
			EmailVerificationTTL: time.Hour,
			FrontendURL:          "http://app.test",
		}, nil),
		settings:  NewSettingsService(store),
		tasks:     NewTaskService(store),
		progress:  NewProgressService(store),
		analytics: NewAnalyticsService(store),
		admin:     NewAdminService(store, nil),
	}
}

// createUser registers a user through the service and optionally promotes it.
func (e *testEnv) createUser(t *testing.T, username string, role models.UserRole) *models.User {
	t.Helper()

	user, _, err := e.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@x.com",
		Password: "pw123",
	})
	require.NoError(t, err)

	if role == models.RoleAdmin {
		user, err = e.admin.UpdateRole(context.Background(), user.ID, string(models.RoleAdmin))
		require.NoError(t, err)
	}
	return user
}

func (e *testEnv) createTask(t *testing.T, owner *models.User, title string) *models.Task {
	t.Helper()

	task, err := e.tasks.CreateTask(context.Background(), CreateTaskInput{
		Title:       title,
		Description: title + " details",
		OwnerID:     owner.ID,
	})
	require.NoError(t, err)
	return task
}

// ledgerTotal sums the analytics rows recorded against a task.
func (e *testEnv) ledgerTotal(t *testing.T, taskID string) time.Duration {
	t.Helper()

	var total int64
	require.NoError(t, e.db.Model(&models.Analytics{}).
		Where("task_id = ?", taskID).
		Select("COALESCE(SUM(total_time_spent), 0)").
		Scan(&total).Error)
	return time.Duration(total)
}

// assertLedgerMatchesTask checks that a task's ledger rows add up to its total.
func (e *testEnv) assertLedgerMatchesTask(t *testing.T, owner *models.User, taskID string) {
	t.Helper()

	task, err := e.tasks.GetTask(context.Background(), owner, taskID)
	require.NoError(t, err)
	require.Equal(t, task.TotalTimeSpent, e.ledgerTotal(t, taskID))
}
