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

// RequireProgressAccess loads the session named by the :id parameter. It
// mirrors RequireTaskAccess: 404 when missing, 403 when foreign.
func RequireProgressAccess(progress *services.ProgressService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		session, err := progress.Get(c.Request.Context(), actor, c.Param("id"))
		switch {
		case err == nil:
		case errors.Is(err, services.ErrProgressNotFound):
			apierrors.NotFound(c, "Progress not found")
			return
		case errors.Is(err, services.ErrForbidden):
			logger.Warn("progress access denied",
				zap.String("user_id", actor.ID),
				zap.String("progress_id", c.Param("id")),
				zap.String("path", c.FullPath()),
			)
			apierrors.Forbidden(c, "You do not have permission to access this progress")
			return
		default:
			logger.Error("failed to load progress",
				zap.String("progress_id", c.Param("id")),
				zap.String("user_id", actor.ID),
				zap.Error(err),
			)
			apierrors.InternalError(c, "")
			return
		}

		c.Set(constants.ContextKeyProgress, session)
		c.Next()
	}
}

// GetProgress retrieves the session loaded by RequireProgressAccess
func GetProgress(c *gin.Context) (*models.Progress, bool) {
	v, exists := c.Get(constants.ContextKeyProgress)
	if !exists {
		return nil, false
	}
	session, ok := v.(*models.Progress)
	return session, ok
}
