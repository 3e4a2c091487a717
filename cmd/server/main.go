package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivanoskov/keloladuit/internal/api"
	"github.com/ivanoskov/keloladuit/internal/app"
	"github.com/ivanoskov/keloladuit/internal/config"
	"github.com/ivanoskov/keloladuit/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.New(logger.DefaultConfig()).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: logger.ParseLevel(cfg.LogLevel), Component: "server"})
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("configuration validation failed", "error", err)
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

	deps := api.Deps{
		Tracker:  a.Tracker,
		Auth:     a.Auth,
		DevUser:  a.DevUser,
		Gatherer: a.Registry,
		Logger:   log,
	}
	if a.Local != nil {
		deps.SignIn = a.Local.SignIn
	}

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: api.NewRouter(deps, api.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
			RequestTimeout: cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	}()

	log.Info("starting server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}
