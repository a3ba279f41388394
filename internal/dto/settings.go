package dto

import "github.com/yukikurage/timewise-api/internal/models"

// SettingsDTO represents user preferences in API responses and doubles as
// the allow-list for PUT /auth/settings.
type SettingsDTO struct {
	Theme                 *string `json:"theme"`
	FontSize              *string `json:"font_size"`
	EnableAnimations      *bool   `json:"enable_animations"`
	ReduceMotion          *bool   `json:"reduce_motion"`
	CompactSidebar        *bool   `json:"compact_sidebar"`
	StickyHeader          *bool   `json:"sticky_header"`
	EmailNotifications    *bool   `json:"email_notifications"`
	PushNotifications     *bool   `json:"push_notifications"`
	TaskReminderFrequency *string `json:"task_reminder_frequency"`
	WeeklySummaryDay      *string `json:"weekly_summary_day"`
	DoNotDisturb          *bool   `json:"do_not_disturb"`
	DNDStartTime          *string `json:"dnd_start_time"`
	DNDEndTime            *string `json:"dnd_end_time"`
}

// ToSettingsDTO converts a UserSettings model to SettingsDTO
func ToSettingsDTO(s models.UserSettings) SettingsDTO {
	return SettingsDTO{
		Theme:                 &s.Theme,
		FontSize:              &s.FontSize,
		EnableAnimations:      &s.EnableAnimations,
		ReduceMotion:          &s.ReduceMotion,
		CompactSidebar:        &s.CompactSidebar,
		StickyHeader:          &s.StickyHeader,
		EmailNotifications:    &s.EmailNotifications,
		PushNotifications:     &s.PushNotifications,
		TaskReminderFrequency: &s.TaskReminderFrequency,
		WeeklySummaryDay:      &s.WeeklySummaryDay,
		DoNotDisturb:          &s.DoNotDisturb,
		DNDStartTime:          &s.DNDStartTime,
		DNDEndTime:            &s.DNDEndTime,
	}
}
