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

	"pocketledger/internal/config"
	"pocketledger/internal/handlers"
	"pocketledger/internal/ledger"
	"pocketledger/internal/log"
	"pocketledger/internal/middleware"
	"pocketledger/internal/report"
	"pocketledger/internal/storage"
)

func main() {
	config.LoadEnvFile()
	cfg := config.Load()

	logger := log.New(log.Config{
		Level:  log.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})
	log.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	svc := ledger.NewService(db,
		ledger.WithSessionDuration(cfg.SessionDuration),
		ledger.WithDefaultCurrency(cfg.Currency()),
		ledger.WithLogger(logger),
	)

	ctx := context.Background()
	if n, err := svc.CleanExpiredSessions(ctx); err != nil {
		logger.Warn("Failed to clean expired sessions", log.FieldError, err)
	} else if n > 0 {
		logger.Info("Cleaned expired sessions", "count", n)
	}
	if err := bootstrapAdmin(ctx, svc, cfg, logger); err != nil {
		return err
	}

	exporter := report.NewExporter(svc, report.NewPDFRenderer(report.DefaultStyle()), logger)
	h, err := handlers.NewHandlers(svc, exporter, cfg.SecureCookie)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(h, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	// Graceful shutdown handling
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	}()

	logger.Info("Starting server", "port", cfg.Port, "db_path", cfg.DBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}

// setupRouter wraps the application routes with the shared middleware.
func setupRouter(h *handlers.Handlers, logger *log.Logger) http.Handler {
	return middleware.Chain(h.Routes(),
		middleware.Trace(logger),
		middleware.Recover,
		middleware.SecurityHeaders(middleware.DefaultHeadersConfig()),
	)
}

// bootstrapAdmin creates the configured admin account when the database
// has no accounts yet.
func bootstrapAdmin(ctx context.Context, svc *ledger.Service, cfg *config.Config, logger *log.Logger) error {
	if cfg.AdminUser == "" {
		return nil
	}
	n, err := svc.AccountCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count accounts: %w", err)
	}
	if n > 0 {
		return nil
	}
	account, err := svc.Register(ctx, cfg.AdminUser, cfg.AdminPassword, "")
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	logger.Info("Created admin account", "username", account.Username, log.FieldAccountID, account.ID)
	return nil
}
