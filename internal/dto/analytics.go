package dto

import (
	"time"

	"github.com/yukikurage/timewise-api/internal/models"
)

// AnalyticsSummaryDTO is the rollup of a user's tasks
type AnalyticsSummaryDTO struct {
	TotalTasks     int64  `json:"total_tasks"`
	CompletedTasks int64  `json:"completed_tasks"`
	TotalTimeSpent string `json:"total_time_spent"`
}

// AnalyticsEntryDTO is one ledger row
type AnalyticsEntryDTO struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	TaskID         *string   `json:"task_id"`
	TotalTimeSpent string    `json:"total_time_spent"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToAnalyticsSummaryDTO(totalTasks, completedTasks int64, spent time.Duration) AnalyticsSummaryDTO {
	return AnalyticsSummaryDTO{
		TotalTasks:     totalTasks,
		CompletedTasks: completedTasks,
		TotalTimeSpent: FormatDuration(spent),
	}
}

func ToAnalyticsEntryDTO(entry models.Analytics) AnalyticsEntryDTO {
	return AnalyticsEntryDTO{
		ID:             entry.ID,
		UserID:         entry.UserID,
		TaskID:         entry.TaskID,
		TotalTimeSpent: FormatDuration(entry.TotalTimeSpent),
		CreatedAt:      entry.CreatedAt,
	}
}

func ToAnalyticsEntryDTOs(entries []models.Analytics) []AnalyticsEntryDTO {
	items := make([]AnalyticsEntryDTO, len(entries))
	for i, e := range entries {
		items[i] = ToAnalyticsEntryDTO(e)
	}
	return items
}
