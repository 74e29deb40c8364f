package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/app"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/config"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/logger"
)

func main() {
	// Optional in every environment except local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("bootstrap failed", zap.Error(err))
	}

	if err := application.Run(ctx); err != nil {
		zapLogger.Fatal("service exited with error", zap.Error(err))
	}
}
