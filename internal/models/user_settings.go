package models

type UserSettings struct {
	Base
	UserID                string `gorm:"type:char(36);uniqueIndex;not null" json:"user_id"`
	Theme                 string `gorm:"type:varchar(20);not null;default:'system'" json:"theme"`
	FontSize              string `gorm:"type:varchar(20);not null;default:'medium'" json:"font_size"`
	EnableAnimations      bool   `gorm:"not null;default:true" json:"enable_animations"`
	ReduceMotion          bool   `gorm:"not null;default:false" json:"reduce_motion"`
	CompactSidebar        bool   `gorm:"not null;default:false" json:"compact_sidebar"`
	StickyHeader          bool   `gorm:"not null;default:true" json:"sticky_header"`
	EmailNotifications    bool   `gorm:"not null;default:true" json:"email_notifications"`
	PushNotifications     bool   `gorm:"not null;default:false" json:"push_notifications"`
	TaskReminderFrequency string `gorm:"type:varchar(20);not null;default:'daily'" json:"task_reminder_frequency"`
	WeeklySummaryDay      string `gorm:"type:varchar(10);not null;default:'monday'" json:"weekly_summary_day"`
	DoNotDisturb          bool   `gorm:"not null;default:false" json:"do_not_disturb"`
	DNDStartTime          string `gorm:"type:varchar(5);not null;default:'22:00'" json:"dnd_start_time"`
	DNDEndTime            string `gorm:"type:varchar(5);not null;default:'07:00'" json:"dnd_end_time"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}
