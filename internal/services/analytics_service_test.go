package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timewise-api/internal/constants"
	"github.com/yukikurage/timewise-api/internal/models"
)

func TestAnalyticsService_SummaryWithoutTasks(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice", models.RoleUser)

	summary, err := env.analytics.Summary(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalTasks)
	assert.Zero(t, summary.CompletedTasks)
	assert.Zero(t, summary.TotalTimeSpent)
}

func TestAnalyticsService_RecordAndSummary(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", models.RoleUser)
	bob := env.createUser(t, "bob", models.RoleUser)

	first := env.createTask(t, alice, "one")
	env.createTask(t, alice, "two")
	env.createTask(t, bob, "bob's")
	_, err := env.tasks.SetCompleted(ctx, alice, first.ID, true)
	require.NoError(t, err)

	entry, err := env.analytics.Record(ctx, alice.ID, RecordTimeInput{TaskID: first.ID, Seconds: 90})
	require.NoError(t, err)
	require.NotNil(t, entry.TaskID)
	assert.Equal(t, first.ID, *entry.TaskID)
	assert.Equal(t, 90*time.Second, entry.TotalTimeSpent)

	_, err = env.analytics.Record(ctx, alice.ID, RecordTimeInput{TaskID: first.ID, Seconds: 30})
	require.NoError(t, err)

	summary, err := env.analytics.Summary(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.TotalTasks)
	assert.EqualValues(t, 1, summary.CompletedTasks)
	assert.Equal(t, 2*time.Minute, summary.TotalTimeSpent)

	entries, err := env.analytics.Entries(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAnalyticsService_RecordForeignTaskIsNotFound(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", models.RoleUser)
	bob := env.createUser(t, "bob", models.RoleUser)
	task := env.createTask(t, bob, "bob's")

	_, err := env.analytics.Record(ctx, alice.ID, RecordTimeInput{TaskID: task.ID, Seconds: 10})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = env.analytics.Record(ctx, alice.ID, RecordTimeInput{TaskID: "missing", Seconds: 10})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	reloaded, err := env.tasks.GetTask(ctx, bob, task.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.TotalTimeSpent)

	entries, err := env.analytics.Entries(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAnalyticsService_RecordRejectsOutOfRangeSeconds(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", models.RoleUser)
	task := env.createTask(t, alice, "Long haul")

	for _, seconds := range []int64{-1, 10_000_000_000, maxTimeSpentSeconds + 1} {
		_, err := env.analytics.Record(ctx, alice.ID, RecordTimeInput{TaskID: task.ID, Seconds: seconds})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "seconds %d", seconds)
		assert.Equal(t, "total_time_spent", verr.Field)
	}

	_, err := env.analytics.Record(ctx, alice.ID, RecordTimeInput{TaskID: task.ID, Seconds: maxTimeSpentSeconds})
	require.NoError(t, err)

	_, err = env.analytics.Record(ctx, alice.ID, RecordTimeInput{TaskID: task.ID, Seconds: 1})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	summary, err := env.analytics.Summary(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.MaxTimeSpent, summary.TotalTimeSpent)
}

func TestAnalyticsService_LedgerMatchesTaskTotals(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", models.RoleUser)
	task := env.createTask(t, alice, "Tracked")

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := start
	progress := env.progress.WithClock(func() time.Time { return clock })

	_, err := env.analytics.Record(ctx, alice.ID, RecordTimeInput{TaskID: task.ID, Seconds: 600})
	require.NoError(t, err)
	env.assertLedgerMatchesTask(t, alice, task.ID)

	session, err := progress.Start(ctx, alice, StartProgressInput{TaskID: task.ID, Description: "d", Status: "s"})
	require.NoError(t, err)
	clock = start.Add(15 * time.Minute)
	_, err = progress.Stop(ctx, alice, session.ID)
	require.NoError(t, err)
	env.assertLedgerMatchesTask(t, alice, task.ID)

	_, err = env.tasks.SetTimeSpent(ctx, alice, task.ID, 300)
	require.NoError(t, err)
	env.assertLedgerMatchesTask(t, alice, task.ID)

	_, err = env.tasks.SetTimeSpent(ctx, alice, task.ID, 300)
	require.NoError(t, err)
	env.assertLedgerMatchesTask(t, alice, task.ID)

	entries, err := env.analytics.Entries(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, 5*time.Minute, env.ledgerTotal(t, task.ID))
}
