package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/repository"
	"gorm.io/gorm"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var (
	validThemes            = []string{"light", "dark", "system"}
	validFontSizes         = []string{"small", "medium", "large"}
	validReminderFrequency = []string{"never", "daily", "weekly"}
	validWeekdays          = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
)

// DefaultSettings returns the settings every new account starts with.
func DefaultSettings() *models.UserSettings {
	return &models.UserSettings{
		Theme:                 "system",
		FontSize:              "medium",
		EnableAnimations:      true,
		StickyHeader:          true,
		EmailNotifications:    true,
		TaskReminderFrequency: "daily",
		WeeklySummaryDay:      "monday",
		DNDStartTime:          "22:00",
		DNDEndTime:            "07:00",
	}
}

// SettingsPatch lists the preference fields a user may change.
type SettingsPatch struct {
	Theme                 *string
	FontSize              *string
	EnableAnimations      *bool
	ReduceMotion          *bool
	CompactSidebar        *bool
	StickyHeader          *bool
	EmailNotifications    *bool
	PushNotifications     *bool
	TaskReminderFrequency *string
	WeeklySummaryDay      *string
	DoNotDisturb          *bool
	DNDStartTime          *string
	DNDEndTime            *string
}

// SettingsService manages per-user preferences.
type SettingsService struct {
	store *repository.Store
}

func NewSettingsService(store *repository.Store) *SettingsService {
	return &SettingsService{store: store}
}

// Get returns the settings of userID, creating the defaults for accounts
// that predate settings.
func (s *SettingsService) Get(ctx context.Context, userID string) (*models.UserSettings, error) {
	var settings *models.UserSettings
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		var err error
		settings, err = findOrCreateSettings(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Update applies patch to the settings of userID.
func (s *SettingsService) Update(ctx context.Context, userID string, patch SettingsPatch) (*models.UserSettings, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var settings *models.UserSettings
	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		var err error
		settings, err = findOrCreateSettings(ctx, tx, userID)
		if err != nil {
			return err
		}

		patch.apply(settings)
		if err := tx.Settings().Update(ctx, settings); err != nil {
			return fmt.Errorf("failed to update settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func findOrCreateSettings(ctx context.Context, tx *repository.Store, userID string) (*models.UserSettings, error) {
	settings, err := tx.Settings().FindByUserID(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find settings: %w", err)
	}

	if _, err := tx.Users().FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	settings = DefaultSettings()
	settings.UserID = userID
	if err := tx.Settings().Create(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to create settings: %w", err)
	}
	return settings, nil
}

func (p SettingsPatch) validate() error {
	checks := []struct {
		field   string
		value   *string
		allowed []string
	}{
		{"theme", p.Theme, validThemes},
		{"font_size", p.FontSize, validFontSizes},
		{"task_reminder_frequency", p.TaskReminderFrequency, validReminderFrequency},
		{"weekly_summary_day", p.WeeklySummaryDay, validWeekdays},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if !slices.Contains(c.allowed, *c.value) {
			return invalidField(c.field, "Invalid %s. Must be one of %v", c.field, c.allowed)
		}
	}

	if p.DNDStartTime != nil && !clockPattern.MatchString(*p.DNDStartTime) {
		return invalidField("dnd_start_time", "dnd_start_time must be in HH:MM format")
	}
	if p.DNDEndTime != nil && !clockPattern.MatchString(*p.DNDEndTime) {
		return invalidField("dnd_end_time", "dnd_end_time must be in HH:MM format")
	}
	return nil
}

func (p SettingsPatch) apply(s *models.UserSettings) {
	setString(&s.Theme, p.Theme)
	setString(&s.FontSize, p.FontSize)
	setBool(&s.EnableAnimations, p.EnableAnimations)
	setBool(&s.ReduceMotion, p.ReduceMotion)
	setBool(&s.CompactSidebar, p.CompactSidebar)
	setBool(&s.StickyHeader, p.StickyHeader)
	setBool(&s.EmailNotifications, p.EmailNotifications)
	setBool(&s.PushNotifications, p.PushNotifications)
	setString(&s.TaskReminderFrequency, p.TaskReminderFrequency)
	setString(&s.WeeklySummaryDay, p.WeeklySummaryDay)
	setBool(&s.DoNotDisturb, p.DoNotDisturb)
	setString(&s.DNDStartTime, p.DNDStartTime)
	setString(&s.DNDEndTime, p.DNDEndTime)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
