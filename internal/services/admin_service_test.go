package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timewise-api/internal/models"
)

func TestAdminService_UpdateRole(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", models.RoleUser)

	updated, err := env.admin.UpdateRole(ctx, alice.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	reloaded, err := env.admin.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, reloaded.Role)

	_, err = env.admin.UpdateRole(ctx, alice.ID, "superuser")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Invalid role. Must be one of USER, ADMIN", verr.Message)

	_, err = env.admin.UpdateRole(ctx, "missing", "USER")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminService_UpdateUser(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", models.RoleUser)
	env.createUser(t, "bob", models.RoleUser)

	name := "Alice A."
	verified := true
	updated, err := env.admin.UpdateUser(ctx, alice.ID, AdminUserPatch{Name: &name, EmailVerified: &verified})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.True(t, updated.EmailVerified)

	taken := "bob@x.com"
	_, err = env.admin.UpdateUser(ctx, alice.ID, AdminUserPatch{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	takenUsername := "bob"
	_, err = env.admin.UpdateUser(ctx, alice.ID, AdminUserPatch{Username: &takenUsername})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	own := "alice@x.com"
	_, err = env.admin.UpdateUser(ctx, alice.ID, AdminUserPatch{Email: &own})
	assert.NoError(t, err)
}

func TestAdminService_UpdateUserValidatesProfileFields(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", models.RoleUser)

	blank := "   "
	mars := "Mars/Olympus"
	empty := ""
	tests := []struct {
		name  string
		patch AdminUserPatch
		field string
	}{
		{"whitespace name", AdminUserPatch{Name: &blank}, "name"},
		{"unknown timezone", AdminUserPatch{Timezone: &mars}, "timezone"},
		{"empty timezone", AdminUserPatch{Timezone: &empty}, "timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.admin.UpdateUser(ctx, alice.ID, tt.patch)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	reloaded, err := env.admin.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Name, reloaded.Name)
	assert.Equal(t, alice.Timezone, reloaded.Timezone)

	padded := "  Alice A.  "
	tz := "Asia/Tokyo"
	updated, err := env.admin.UpdateUser(ctx, alice.ID, AdminUserPatch{Name: &padded, Timezone: &tz})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.Name)
	assert.Equal(t, tz, updated.Timezone)
}

func TestAdminService_ListAndDelete(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice", models.RoleUser)
	env.createUser(t, "bob", models.RoleUser)
	env.createUser(t, "carol", models.RoleUser)

	users, total, err := env.admin.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 2)

	require.NoError(t, env.admin.DeleteUser(ctx, alice.ID))
	assert.ErrorIs(t, env.admin.DeleteUser(ctx, alice.ID), ErrUserNotFound)

	_, total, err = env.admin.ListUsers(ctx, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
