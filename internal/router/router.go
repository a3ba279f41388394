// Package router wires handlers and guard middleware onto a gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timewise-api/internal/handlers"
	"github.com/yukikurage/timewise-api/internal/middleware"
	"github.com/yukikurage/timewise-api/internal/repository"
	"github.com/yukikurage/timewise-api/internal/services"
	"github.com/yukikurage/timewise-api/internal/token"
	"go.uber.org/zap"
)

// Services bundles the business services exposed over HTTP.
type Services struct {
	Auth      *services.AuthService
	Settings  *services.SettingsService
	Tasks     *services.TaskService
	Progress  *services.ProgressService
	Analytics *services.AnalyticsService
	Admin     *services.AdminService
}

// New builds the HTTP router.
func New(store *repository.Store, tokens *token.Service, svc Services, logger *zap.Logger) *gin.Engine {
	handlers.RegisterJSONFieldNames()

	r := gin.New()
	r.Use(middleware.RequestLogger(logger), middleware.Recovery(logger))

	guard := middleware.NewGuard(tokens, store.Users(), logger)
	requireAuth := guard.RequireAuth()
	resolveActor := guard.ResolveActor()
	taskAccess := middleware.RequireTaskAccess(svc.Tasks, logger)
	progressAccess := middleware.RequireProgressAccess(svc.Progress, logger)

	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Settings, logger)
	taskHandler := handlers.NewTaskHandler(svc.Tasks, svc.Progress, logger)
	progressHandler := handlers.NewProgressHandler(svc.Progress, logger)
	analyticsHandler := handlers.NewAnalyticsHandler(svc.Analytics, logger)
	adminHandler := handlers.NewAdminHandler(svc.Admin, logger)
	healthHandler := handlers.NewHealthHandler(store, logger)

	// Health check endpoint
	r.GET("/health", healthHandler.Health)

	api := r.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/password-reset-request", authHandler.RequestPasswordReset)
			auth.POST("/password-reset", authHandler.ResetPassword)
			auth.POST("/email-verification", authHandler.VerifyEmail)
			auth.GET("/logout", authHandler.LogoutMethodNotAllowed)

			account := auth.Group("")
			account.Use(requireAuth, resolveActor)
			{
				account.POST("/logout", authHandler.Logout)
				account.GET("/profile", authHandler.GetProfile)
				account.PUT("/profile", authHandler.UpdateProfile)
				account.GET("/settings", authHandler.GetSettings)
				account.PUT("/settings", authHandler.UpdateSettings)
				account.POST("/email-verification-request", authHandler.RequestEmailVerification)
				account.DELETE("/delete", authHandler.DeleteAccount)
			}
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth, resolveActor)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskAccess, taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/complete", taskHandler.CompleteTask)
			tasks.POST("/:id/uncomplete", taskHandler.UncompleteTask)
			tasks.POST("/:id/progress", taskHandler.SetProgress)
			tasks.GET("/:id/progress", taskHandler.ListTaskProgress)
			tasks.GET("/:id/analytics", taskHandler.GetTaskAnalytics)
			tasks.POST("/:id/analytics", taskHandler.SetTaskTimeSpent)
		}

		// Progress routes (protected)
		progress := api.Group("/progress")
		progress.Use(requireAuth, resolveActor)
		{
			progress.GET("", progressHandler.ListProgress)
			progress.POST("", progressHandler.StartProgress)
			progress.GET("/:id", progressAccess, progressHandler.GetProgress)
			progress.POST("/:id/stop", progressHandler.StopProgress)
		}

		// Analytics routes (protected)
		analytics := api.Group("/analytics")
		analytics.Use(requireAuth, resolveActor)
		{
			analytics.GET("", analyticsHandler.GetSummary)
			analytics.POST("", analyticsHandler.RecordTime)
			analytics.GET("/entries", analyticsHandler.ListEntries)
		}

		// Admin routes (protected, ADMIN only)
		admin := api.Group("/admin")
		admin.Use(requireAuth, guard.RequireAdmin())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id", adminHandler.GetUser)
			admin.PUT("/users/:id", adminHandler.UpdateUser)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.PUT("/users/:id/role", adminHandler.UpdateRole)
		}
	}

	return r
}
