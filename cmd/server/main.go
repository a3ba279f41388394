package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timewise-api/internal/config"
	"github.com/yukikurage/timewise-api/internal/database"
	"github.com/yukikurage/timewise-api/internal/logger"
	"github.com/yukikurage/timewise-api/internal/mailer"
	"github.com/yukikurage/timewise-api/internal/repository"
	"github.com/yukikurage/timewise-api/internal/router"
	"github.com/yukikurage/timewise-api/internal/services"
	"github.com/yukikurage/timewise-api/internal/token"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
	})
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		return err
	}

	// Run migrations
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	store := repository.NewStore(db)
	tokens := token.NewService(cfg.JWT.Secret, cfg.JWT.Issuer)

	var m mailer.Mailer
	if cfg.Mail.SMTPHost != "" {
		m = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
			From:     cfg.Mail.From,
		})
	} else {
		log.Warn("SMTP_HOST not set, outgoing mail will only be logged")
		m = mailer.NewLogMailer(log)
	}

	svc := router.Services{
		Auth: services.NewAuthService(store, tokens, m, services.AuthConfig{
			AccessTokenTTL:       cfg.JWT.AccessTTL,
			PasswordResetTTL:     cfg.JWT.PasswordResetTTL,
			EmailVerificationTTL: cfg.JWT.EmailVerificationTTL,
			FrontendURL:          cfg.FrontendURL,
		}, log),
		Settings:  services.NewSettingsService(store),
		Tasks:     services.NewTaskService(store),
		Progress:  services.NewProgressService(store),
		Analytics: services.NewAnalyticsService(store),
		Admin:     services.NewAdminService(store, log),
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router.New(store, tokens, svc, log),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
	return nil
}
