package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timewise-api/internal/models"
)

func TestSettingsService_GetAndUpdate(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", models.RoleUser)

	settings, err := env.settings.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "system", settings.Theme)
	assert.True(t, settings.StickyHeader)

	theme := "dark"
	off := false
	start := "23:30"
	updated, err := env.settings.Update(ctx, alice.ID, SettingsPatch{
		Theme:            &theme,
		EnableAnimations: &off,
		DNDStartTime:     &start,
	})
	require.NoError(t, err)
	assert.Equal(t, "dark", updated.Theme)
	assert.False(t, updated.EnableAnimations)
	assert.Equal(t, "23:30", updated.DNDStartTime)

	reloaded, err := env.settings.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.EnableAnimations)
}

func TestSettingsService_CreatesMissingRow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", models.RoleUser)
	require.NoError(t, env.db.Where("user_id = ?", alice.ID).Delete(&models.UserSettings{}).Error)

	settings, err := env.settings.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, settings.UserID)
	assert.True(t, settings.EmailNotifications)

	_, err = env.settings.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSettingsService_Validation(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice", models.RoleUser)

	badTheme := "neon"
	badClock := "25:00"
	for _, patch := range []SettingsPatch{{Theme: &badTheme}, {DNDEndTime: &badClock}} {
		_, err := env.settings.Update(context.Background(), alice.ID, patch)
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
	}
}
