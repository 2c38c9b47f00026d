package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/markdave123-py/pdfcsv/internal/app"
	"github.com/markdave123-py/pdfcsv/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.LoadConfig()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	logger.Info("pdfcsv is running", "port", cfg.Port, "workers", cfg.Workers)
	if err := application.Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		application.Close()
		os.Exit(1)
	}
	logger.Info("shutting down...")
}
