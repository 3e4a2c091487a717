package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivanoskov/keloladuit/internal/app"
	"github.com/ivanoskov/keloladuit/internal/bot"
	"github.com/ivanoskov/keloladuit/internal/config"
	"github.com/ivanoskov/keloladuit/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.New(logger.DefaultConfig()).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: logger.ParseLevel(cfg.LogLevel), Component: "bot"})
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.TelegramToken == "" {
		log.Error("TELEGRAM_TOKEN is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize", "error", err)
		a.Close()
		os.Exit(1)
	}
	defer a.Close()

	b, err := bot.NewBot(cfg.TelegramToken, a.Tracker, log)
	if err != nil {
		log.Error("failed to start bot", "error", err)
		os.Exit(1)
	}

	if err := b.Start(ctx); err != nil {
		log.Error("bot stopped", "error", err)
		os.Exit(1)
	}
}
