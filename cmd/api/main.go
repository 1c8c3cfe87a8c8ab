package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "pharmaproc/api/swagger" // swagger docs
	"pharmaproc/internal/app"
	"pharmaproc/internal/config"

	"go.uber.org/zap"
)

// @title           Procurement API
// @version         1.0
// @description     Purchase orders, QC inspection and goods receipts for pharmaceutical procurement.
// @host            localhost:8080
// @BasePath        /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := initLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to start", zap.Error(err))
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Server exited")
}

func initLogger(level, format string) (*zap.Logger, error) {
	var zapCfg zap.Config

	if format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}
