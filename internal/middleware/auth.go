package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timewise-api/internal/constants"
	apierrors "github.com/yukikurage/timewise-api/internal/errors"
	"github.com/yukikurage/timewise-api/internal/models"
	"github.com/yukikurage/timewise-api/internal/repository"
	"github.com/yukikurage/timewise-api/internal/token"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Guard authenticates bearer tokens and resolves the calling user.
type Guard struct {
	tokens *token.Service
	users  repository.UserRepository
	logger *zap.Logger
}

// NewGuard creates a Guard
func NewGuard(tokens *token.Service, users repository.UserRepository, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{tokens: tokens, users: users, logger: logger}
}

// RequireAuth checks for a valid access token and stores its subject in the context
func (g *Guard) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(constants.HeaderAuthorization)
		if !strings.HasPrefix(header, constants.BearerPrefix) {
			g.deny(c, "", "missing bearer token")
			apierrors.Unauthorized(c, "Authentication credentials were not provided")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix))
		userID, err := g.tokens.Verify(raw, token.PurposeAccess)
		if err != nil {
			reason := "invalid token"
			if errors.Is(err, token.ErrExpired) {
				reason = "expired token"
			}
			g.deny(c, "", reason)
			apierrors.Unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// ResolveActor loads the authenticated user. A token whose subject no longer
// exists yields 404.
func (g *Guard) ResolveActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := g.loadActor(c)
		if !ok {
			if !c.IsAborted() {
				apierrors.NotFound(c, "User not found")
			}
			return
		}

		c.Set(constants.ContextKeyActor, actor)
		c.Next()
	}
}

// RequireAdmin admits only users holding the ADMIN role. A missing user is
// treated as forbidden.
func (g *Guard) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := g.loadActor(c)
		if !ok {
			if !c.IsAborted() {
				apierrors.Forbidden(c, "You do not have permission to perform this action")
			}
			return
		}
		if !actor.IsAdmin() {
			g.deny(c, actor.ID, "admin role required")
			apierrors.Forbidden(c, "You do not have permission to perform this action")
			return
		}

		c.Set(constants.ContextKeyActor, actor)
		c.Next()
	}
}

func (g *Guard) loadActor(c *gin.Context) (*models.User, bool) {
	if actor, ok := GetActor(c); ok {
		return actor, true
	}

	userID, ok := GetUserID(c)
	if !ok {
		g.deny(c, "", "no authenticated subject")
		apierrors.Unauthorized(c, "")
		return nil, false
	}

	actor, err := g.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			g.deny(c, userID, "user not found")
			return nil, false
		}
		g.logger.Error("failed to load user",
			zap.String("user_id", userID),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		apierrors.InternalError(c, "")
		return nil, false
	}
	return actor, true
}

func (g *Guard) deny(c *gin.Context, userID, reason string) {
	g.logger.Warn("request denied",
		zap.String("user_id", userID),
		zap.String("reason", reason),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("request_id", GetRequestID(c)),
	)
}

// GetUserID retrieves the authenticated user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// GetActor retrieves the resolved user from context
func GetActor(c *gin.Context) (*models.User, bool) {
	actor, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return nil, false
	}
	user, ok := actor.(*models.User)
	return user, ok && user != nil
}
