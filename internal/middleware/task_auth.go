package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timewise-api/internal/constants"
	apierrors "github.com/yukikurage/timewise-api/internal/errors"
	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/services"
	"go.uber.org/zap"
)

// RequireTaskAccess loads the task named by the :id parameter and stores it in
// the context. A missing task yields 404; a task the actor may not access
// yields 403. Must run after ResolveActor.
func RequireTaskAccess(tasks *services.TaskService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		task, err := tasks.GetTask(c.Request.Context(), actor, c.Param("id"))
		switch {
		case err == nil:
		case errors.Is(err, services.ErrTaskNotFound):
			apierrors.NotFound(c, "Task not found")
			return
		case errors.Is(err, services.ErrForbidden):
			logger.Warn("task access denied",
				zap.String("user_id", actor.ID),
				zap.String("task_id", c.Param("id")),
				zap.String("path", c.FullPath()),
			)
			apierrors.Forbidden(c, "You do not have permission to access this task")
			return
		default:
			logger.Error("failed to load task", zap.String("task_id", c.Param("id")), zap.Error(err))
			apierrors.InternalError(c, "")
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTaskAccess
func GetTask(c *gin.Context) (*models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := v.(*models.Task)
	return task, ok
}
