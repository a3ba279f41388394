package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/timewise-api/internal/database"
	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/utils"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside the registration transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateSettings is returned when creating the settings row fails inside the registration transaction.
	ErrCreateSettings = errors.New("user repository: create settings failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// CreateWithSettings creates a user and their settings atomically.
func (r *GormUserRepository) CreateWithSettings(ctx context.Context, user *models.User, settings *models.UserSettings) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateUser, err)
		}

		settings.UserID = user.ID
		if err := tx.Create(settings).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateSettings, err)
		}

		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmailOrUsername reports whether email or username already belong to another user
func (r *GormUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username, excludeID string) (bool, bool, error) {
	count := func(column, value string) (int64, error) {
		if value == "" {
			return 0, nil
		}
		var n int64
		query := r.db.WithContext(ctx).Model(&models.User{}).Where(column+" = ?", value)
		if excludeID != "" {
			query = query.Where("id <> ?", excludeID)
		}
		err := query.Count(&n).Error
		return n, err
	}

	emails, err := count("email", email)
	if err != nil {
		return false, false, err
	}
	usernames, err := count("username", username)
	if err != nil {
		return false, false, err
	}
	return emails > 0, usernames > 0, nil
}

// List retrieves users ordered by creation time
func (r *GormUserRepository) List(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && pageSize > 0 {
		query = query.Scopes(database.Paginate(utils.NewPaginationParams(page, pageSize)))
	}
	if err := query.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update updates a user
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes a user, their tasks, sessions, ledger entries and settings in a transaction
func (r *GormUserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownedTasks := tx.Model(&models.Task{}).Select("id").Where("user_id = ?", id)

		if err := tx.Where("user_id = ? OR task_id IN (?)", id, ownedTasks).Delete(&models.Progress{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ? OR task_id IN (?)", id, ownedTasks).Delete(&models.Analytics{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.UserSettings{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
