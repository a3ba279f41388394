package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timewise-api/internal/dto"
	apierrors "github.com/yukikurage/timewise-api/internal/errors"
	"github.com/yukikurage/timewise-api/internal/middleware"
	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/services"
	"github.com/yukikurage/timewise-api/internal/utils"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService     *services.TaskService
	progressService *services.ProgressService
	logger          *zap.Logger
}

func NewTaskHandler(taskService *services.TaskService, progressService *services.ProgressService, logger *zap.Logger) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{
		taskService:     taskService,
		progressService: progressService,
		logger:          logger,
	}
}

// ListTasks returns the current user's tasks.
// Optional filters: completed=true|false, priority=low|medium|high
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	input := services.ListTasksInput{OwnerID: actor.ID}

	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid completed filter")
			return
		}
		input.Completed = &completed
	}
	if raw := c.Query("priority"); raw != "" {
		priority, err := models.ParsePriority(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid priority. Must be one of low, medium, high")
			return
		}
		input.Priority = &priority
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, "tasks.list", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns a specific task.
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task owned by the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description" binding:"required,max=500"`
		Priority    string     `json:"priority"`
		Deadline    *time.Time `json:"deadline"`
	}

	var req CreateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, "tasks.create", err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		OwnerID:     actor.ID,
	})
	if err != nil {
		respondError(c, h.logger, "tasks.create", err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates an existing task. Only allow-listed fields are accepted;
// "deadline": null clears the deadline.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.TaskPatchRequest
	fields, err := decodePatch(c, &req)
	if err != nil {
		respondError(c, h.logger, "tasks.update", err)
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), actor, c.Param("id"), services.TaskPatch{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		Deadline:      req.Deadline,
		ClearDeadline: fields.Has("deadline") && req.Deadline == nil,
		Completed:     req.Completed,
		Progress:      req.Progress,
	})
	if err != nil {
		respondError(c, h.logger, "tasks.update", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task with its sessions and analytics entries
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, h.logger, "tasks.delete", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// CompleteTask marks a task completed
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	h.setCompleted(c, true)
}

// UncompleteTask marks a task not completed
func (h *TaskHandler) UncompleteTask(c *gin.Context) {
	h.setCompleted(c, false)
}

func (h *TaskHandler) setCompleted(c *gin.Context, completed bool) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	task, err := h.taskService.SetCompleted(c.Request.Context(), actor, c.Param("id"), completed)
	if err != nil {
		respondError(c, h.logger, "tasks.set_completed", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// SetProgress sets the completion percentage of a task
func (h *TaskHandler) SetProgress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type SetProgressRequest struct {
		Progress *int `json:"progress" binding:"required"`
	}

	var req SetProgressRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, "tasks.set_progress", err)
		return
	}

	task, err := h.taskService.SetProgress(c.Request.Context(), actor, c.Param("id"), *req.Progress)
	if err != nil {
		respondError(c, h.logger, "tasks.set_progress", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ListTaskProgress lists the work sessions of a task
func (h *TaskHandler) ListTaskProgress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	sessions, err := h.progressService.List(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "tasks.list_progress", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProgressDTOs(sessions))
}

// GetTaskAnalytics reports the accumulated time of a task
func (h *TaskHandler) GetTaskAnalytics(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	report, err := h.taskService.GetTaskAnalytics(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "tasks.get_analytics", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskAnalyticsDTO(c.Param("id"), report.TotalTimeSpent, report.Progress, report.Completed))
}

// SetTaskTimeSpent overwrites the accumulated time of a task, in seconds
func (h *TaskHandler) SetTaskTimeSpent(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type SetTimeSpentRequest struct {
		TotalTimeSpent *int64 `json:"total_time_spent" binding:"required"`
	}

	var req SetTimeSpentRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, "tasks.set_time_spent", err)
		return
	}

	report, err := h.taskService.SetTimeSpent(c.Request.Context(), actor, c.Param("id"), *req.TotalTimeSpent)
	if err != nil {
		respondError(c, h.logger, "tasks.set_time_spent", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskAnalyticsDTO(c.Param("id"), report.TotalTimeSpent, report.Progress, report.Completed))
}
