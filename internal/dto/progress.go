package dto

import (
	"time"

	"github.com/yukikurage/timewise-api/internal/models"
)

// ProgressDTO represents a work session in API responses
type ProgressDTO struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TaskID      string     `json:"task_id"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Duration    *string    `json:"duration"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToProgressDTO converts a Progress model to ProgressDTO
func ToProgressDTO(p models.Progress) ProgressDTO {
	return ProgressDTO{
		ID:          p.ID,
		UserID:      p.UserID,
		TaskID:      p.TaskID,
		Description: p.Description,
		Status:      p.Status,
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		Duration:    FormatDurationPtr(p.Duration),
		CreatedAt:   p.CreatedAt,
	}
}

// ToProgressDTOs converts a slice of sessions
func ToProgressDTOs(sessions []models.Progress) []ProgressDTO {
	items := make([]ProgressDTO, len(sessions))
	for i, p := range sessions {
		items[i] = ToProgressDTO(p)
	}
	return items
}
