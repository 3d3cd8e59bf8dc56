package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/markdave123-py/Redacta/internal/app"
	"github.com/markdave123-py/Redacta/internal/config"
	"github.com/markdave123-py/Redacta/internal/logger"
)

func main() {
	// Handle SIGINT/SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.LoadConfig()
	log, err := logger.NewLogger(logger.Options{Env: cfg.AppEnv, Level: cfg.LogLevel, Component: "api"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	defer application.Close()

	log.Info("Redacta is running; DB connected and bootstrapped.")
	if err := application.Run(ctx); err != nil {
		log.Error("server stopped", zap.Error(err))
	}
	log.Info("shutting down")
}
