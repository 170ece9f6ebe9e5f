package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/svodka-hq/svodka-news-bot/internal/app"
	"github.com/svodka-hq/svodka-news-bot/internal/config"
	"github.com/svodka-hq/svodka-news-bot/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if _, err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Close()

	application, err := app.New(cfg)
	if err != nil {
		logger.S.Fatalw("failed to assemble pipeline", "error", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.S.Infow("starting", "app", cfg.AppName, "env", cfg.Env)
	if err := application.Run(ctx); err != nil {
		logger.S.Errorw("pipeline exited with error", "error", err)
		os.Exit(1)
	}
	logger.S.Info("shutdown complete")
}
