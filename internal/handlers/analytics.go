package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timewise-api/internal/dto"
	"github.com/yukikurage/timewise-api/internal/services"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
	logger           *zap.Logger
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// GetSummary returns task counts and total time spent for the current user
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	summary, err := h.analyticsService.Summary(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.logger, "analytics.summary", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAnalyticsSummaryDTO(summary.TotalTasks, summary.CompletedTasks, summary.TotalTimeSpent))
}

// RecordTime logs time spent on one of the current user's tasks
func (h *AnalyticsHandler) RecordTime(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type RecordTimeRequest struct {
		TaskID         string `json:"task_id" binding:"required"`
		TotalTimeSpent *int64 `json:"total_time_spent" binding:"required"`
	}

	var req RecordTimeRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.logger, "analytics.record", err)
		return
	}

	entry, err := h.analyticsService.Record(c.Request.Context(), actor.ID, services.RecordTimeInput{
		TaskID:  req.TaskID,
		Seconds: *req.TotalTimeSpent,
	})
	if err != nil {
		respondError(c, h.logger, "analytics.record", err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAnalyticsEntryDTO(*entry))
}

// ListEntries returns the current user's time ledger
func (h *AnalyticsHandler) ListEntries(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	entries, err := h.analyticsService.Entries(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.logger, "analytics.entries", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAnalyticsEntryDTOs(entries))
}
