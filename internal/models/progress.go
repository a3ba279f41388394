package models

import "time"

// Progress is a single time-tracking session on a task. A session is open
// while EndTime is nil.
type Progress struct {
	Base
	UserID      string         `gorm:"type:char(36);not null;index" json:"user_id"`
	TaskID      string         `gorm:"type:char(36);not null;index" json:"task_id"`
	Description string         `gorm:"type:varchar(500);not null" json:"description"`
	Status      string         `gorm:"type:varchar(50);not null" json:"status"`
	StartTime   time.Time      `gorm:"not null" json:"start_time"`
	EndTime     *time.Time     `json:"end_time"`
	Duration    *time.Duration `json:"duration"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
}

func (Progress) TableName() string {
	return "progress"
}

// IsOpen reports whether the session is still running.
func (p *Progress) IsOpen() bool {
	return p.EndTime == nil
}
