package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminService implements user management for administrators
type AdminService struct {
	store  *repository.Store
	logger *zap.Logger
}

// NewAdminService creates a new AdminService
func NewAdminService(store *repository.Store, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{store: store, logger: logger}
}

// AdminUserPatch lists the account fields an administrator may change.
// Role changes go through UpdateRole.
type AdminUserPatch struct {
	Name          *string
	Username      *string
	Email         *string
	Timezone      *string
	Language      *string
	ProfileImage  *string
	Bio           *string
	EmailVerified *bool
}

// ListUsers returns a page of users
func (s *AdminService) ListUsers(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	users, total, err := s.store.Users().List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// GetUser returns a single user
func (s *AdminService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return findUser(ctx, s.store, id)
}

// UpdateUser applies patch to the user with id
func (s *AdminService) UpdateUser(ctx context.Context, id string, patch AdminUserPatch) (*models.User, error) {
	var updated *models.User
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		user, err := findUser(ctx, tx, id)
		if err != nil {
			return err
		}

		var email, username, name string
		if patch.Name != nil {
			if name, err = validateName(*patch.Name); err != nil {
				return err
			}
		}
		if patch.Timezone != nil {
			if err := validateTimezone(*patch.Timezone); err != nil {
				return err
			}
		}
		if patch.Email != nil {
			email = normalizeEmail(*patch.Email)
			if email == "" {
				return invalidField("email", "email cannot be empty")
			}
		}
		if patch.Username != nil {
			username = strings.TrimSpace(*patch.Username)
			if username == "" {
				return invalidField("username", "username cannot be empty")
			}
		}

		emailTaken, usernameTaken, err := tx.Users().ExistsByEmailOrUsername(ctx, email, username, user.ID)
		if err != nil {
			return fmt.Errorf("failed to check existing users: %w", err)
		}
		if emailTaken {
			return ErrEmailTaken
		}
		if usernameTaken {
			return ErrUsernameTaken
		}

		if email != "" {
			user.Email = email
		}
		if username != "" {
			user.Username = username
		}
		if patch.Name != nil {
			user.Name = name
		}
		if patch.Timezone != nil {
			user.Timezone = *patch.Timezone
		}
		if patch.Language != nil {
			user.Language = *patch.Language
		}
		if patch.ProfileImage != nil {
			user.ProfileImage = *patch.ProfileImage
		}
		if patch.Bio != nil {
			user.Bio = *patch.Bio
		}
		if patch.EmailVerified != nil {
			user.EmailVerified = *patch.EmailVerified
		}

		if err := tx.Users().Update(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAccountConflict
			}
			return fmt.Errorf("failed to update user: %w", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes a user and everything they own
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	if err := s.store.Users().Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info("user deleted by admin", zap.String("user_id", id))
	return nil
}

// UpdateRole sets the role of a user. The role is parsed from its name.
func (s *AdminService) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	if strings.TrimSpace(role) == "" {
		return nil, missingField("role")
	}
	parsed, err := models.ParseRole(role)
	if err != nil {
		return nil, invalidField("role", "Invalid role. Must be one of %s", joinRoles(models.Roles))
	}

	var updated *models.User
	err = s.store.WithinTx(ctx, func(tx *repository.Store) error {
		user, err := findUser(ctx, tx, id)
		if err != nil {
			return err
		}

		user.Role = parsed
		if err := tx.Users().Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user role updated", zap.String("user_id", id), zap.String("role", string(parsed)))
	return updated, nil
}

func findUser(ctx context.Context, store *repository.Store, id string) (*models.User, error) {
	user, err := store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func joinRoles(roles []models.UserRole) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
