package dto

import (
	"time"

	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Priority       models.TaskPriority `json:"priority"`
	Deadline       *time.Time          `json:"deadline"`
	Completed      bool                `json:"completed"`
	TotalTimeSpent string              `json:"total_time_spent"`
	Progress       int                 `json:"progress"`
	UserID         string              `json:"user_id"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// TaskPatchRequest lists the fields accepted by PUT /tasks/:id
type TaskPatchRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	Completed   *bool      `json:"completed"`
	Progress    *int       `json:"progress"`
}

// TaskAnalyticsDTO is the per-task time report
type TaskAnalyticsDTO struct {
	TaskID         string `json:"task_id"`
	TotalTimeSpent string `json:"total_time_spent"`
	Progress       int    `json:"progress"`
	Completed      bool   `json:"completed"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Priority:       task.Priority,
		Deadline:       task.Deadline,
		Completed:      task.Completed,
		TotalTimeSpent: FormatDuration(task.TotalTimeSpent),
		Progress:       task.Progress,
		UserID:         task.UserID,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, total int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return TaskListResponse{
		Tasks:      items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}

// ToTaskAnalyticsDTO builds the per-task report
func ToTaskAnalyticsDTO(taskID string, spent time.Duration, progress int, completed bool) TaskAnalyticsDTO {
	return TaskAnalyticsDTO{
		TaskID:         taskID,
		TotalTimeSpent: FormatDuration(spent),
		Progress:       progress,
		Completed:      completed,
	}
}
