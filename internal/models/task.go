package models

import (
	"fmt"
	"strings"
	"time"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// ParsePriority converts user input into a TaskPriority.
func ParsePriority(s string) (TaskPriority, error) {
	switch p := TaskPriority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("invalid priority %q", s)
	}
}

type Task struct {
	Base
	Title          string        `gorm:"type:varchar(255);not null" json:"title"`
	Description    string        `gorm:"type:varchar(500)" json:"description"`
	Priority       TaskPriority  `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Deadline       *time.Time    `json:"deadline"`
	Completed      bool          `gorm:"not null;default:false" json:"completed"`
	TotalTimeSpent time.Duration `gorm:"not null;default:0" json:"total_time_spent"`
	Progress       int           `gorm:"not null;default:0" json:"progress"`
	UserID         string        `gorm:"type:char(36);not null;index" json:"user_id"`

	// Relations
	User     User       `gorm:"foreignKey:UserID" json:"-"`
	Sessions []Progress `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}
