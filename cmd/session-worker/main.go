package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"buyer-portal/buyer-portal-backend/internal/config"
	"buyer-portal/buyer-portal-backend/internal/sessions"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := sessions.Open(cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Connected to database")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	janitor := sessions.NewJanitor(
		sessions.NewGormStore(db),
		cfg.Sessions.Retention.Std(),
		cfg.Sessions.PurgeSchedule,
		logger,
	)

	// Purge once on boot
	if _, err := janitor.RunOnce(ctx); err != nil {
		logger.Error("Initial purge failed", zap.Error(err))
	}
	if err := janitor.Start(ctx); err != nil {
		logger.Fatal("Failed to start session janitor", zap.Error(err))
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutdown signal received")

	cancel()
	janitor.Stop()
	logger.Info("Session worker stopped")
}
