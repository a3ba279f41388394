package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timewise-api/internal/dto"
	apierrors "github.com/yukikurage/timewise-api/internal/errors"
	"github.com/yukikurage/timewise-api/internal/middleware"
	"github.com/yukikurage/timewise-api/internal/services"
	"go.uber.org/zap"
)

type ProgressHandler struct {
	progressService *services.ProgressService
	logger          *zap.Logger
}

func NewProgressHandler(progressService *services.ProgressService, logger *zap.Logger) *ProgressHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressHandler{
		progressService: progressService,
		logger:          logger,
	}
}

// ListProgress returns the current user's sessions, optionally for one task (?task_id=)
func (h *ProgressHandler) ListProgress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	sessions, err := h.progressService.List(c.Request.Context(), actor, c.Query("task_id"))
	if err != nil {
		respondError(c, h.logger, "progress.list", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProgressDTOs(sessions))
}

// StartProgress opens a session on a task
func (h *ProgressHandler) StartProgress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type StartProgressRequest struct {
		TaskID      string `json:"task_id" binding:"required"`
		Description string `json:"description" binding:"required,max=500"`
		Status      string `json:"status" binding:"required,max=50"`
	}

	var req StartProgressRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, "progress.start", err)
		return
	}

	session, err := h.progressService.Start(c.Request.Context(), actor, services.StartProgressInput{
		TaskID:      req.TaskID,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, h.logger, "progress.start", err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProgressDTO(*session))
}

// GetProgress returns one session.
// Session is already loaded by RequireProgressAccess middleware
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	session, ok := middleware.GetProgress(c)
	if !ok {
		apierrors.InternalError(c, "Progress not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToProgressDTO(*session))
}

// StopProgress closes an open session
func (h *ProgressHandler) StopProgress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	session, err := h.progressService.Stop(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "progress.stop", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProgressDTO(*session))
}
