package models

import "time"

// Analytics is an append-only ledger entry recording time spent by a user,
// optionally against one of their tasks.
type Analytics struct {
	Base
	UserID         string        `gorm:"type:char(36);not null;index" json:"user_id"`
	TaskID         *string       `gorm:"type:char(36);index" json:"task_id"`
	TotalTimeSpent time.Duration `gorm:"not null;default:0" json:"total_time_spent"`
}

func (Analytics) TableName() string {
	return "analytics"
}
