package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua31324324/user-management/idm"
	"github.com/joshua31324324/user-management/internal/config"
	"github.com/joshua31324324/user-management/internal/notification"
	"github.com/joshua31324324/user-management/internal/observability"
	"github.com/joshua31324324/user-management/pkg/auth"
	"github.com/joshua31324324/user-management/pkg/repository"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := observability.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		logger.Warn("failed to initialize sentry", zap.Error(err))
	}
	defer observability.FlushSentry()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		observability.FlushSentry()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	idmConfig := idm.Config{
		JWTSecret:        cfg.JWTSecret,
		JWTIssuer:        cfg.JWTIssuer,
		AccessTokenTTL:   cfg.AccessTokenTTL,
		MaxLoginAttempts: cfg.MaxLoginAttempts,
		PasswordPolicy:   auth.NewPasswordPolicy(cfg.PasswordPolicy),
		EmailRules: auth.EmailRules{
			Strict:          cfg.Validation.StrictEmailValidation,
			BlockDisposable: cfg.Validation.BlockDisposableEmail,
		},
		Logger:          logger,
		RateLimit:       cfg.RateLimit,
		SecurityHeaders: cfg.SecurityHeaders,
		Validation:      cfg.Validation,
		CookieSecure:    cfg.IsProduction(),
	}

	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, accounts are lost on restart")
		idmConfig.Store = repository.NewMemoryStore()
	default:
		db, err := repository.NewDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return err
		}
		defer db.Close()
		logger.Info("connected to database")

		if err := repository.Migrate(ctx, db); err != nil {
			return err
		}
		idmConfig.DB = db
	}

	if cfg.Email.Enabled() {
		idmConfig.Notifier = notification.NewEmailService(cfg.Email, cfg.AppBaseURL, logger)
		logger.Info("email service enabled", zap.String("smtp_host", cfg.Email.Host))
	} else {
		idmConfig.Notifier = notification.NewLogNotifier(cfg.AppBaseURL, logger)
	}

	svc, err := idm.New(idmConfig)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      svc.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", addr), zap.String("storage", cfg.Storage))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
