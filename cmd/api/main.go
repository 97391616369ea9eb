// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

// Command api runs the Lumen storefront HTTP server.
//
// Startup order: configuration, logging, migrations, connection pools,
// domain wiring, then the HTTP listener. Any failure before the listener
// is fatal; a half-configured server must not accept traffic.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lumenmarket/lumen/internal/api"
	"github.com/lumenmarket/lumen/internal/catalog/product"
	"github.com/lumenmarket/lumen/internal/orders"
	"github.com/lumenmarket/lumen/internal/platform/config"
	"github.com/lumenmarket/lumen/internal/platform/constants"
	"github.com/lumenmarket/lumen/internal/platform/metrics"
	"github.com/lumenmarket/lumen/internal/platform/migration"
	"github.com/lumenmarket/lumen/internal/platform/postgres"
	"github.com/lumenmarket/lumen/internal/platform/redis"
	"github.com/lumenmarket/lumen/internal/platform/sec"
	"github.com/lumenmarket/lumen/internal/users/account"
	"github.com/lumenmarket/lumen/internal/users/auth"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting",
		"service", constants.AppName,
		"version", constants.AppVersion,
		"environment", cfg.Environment,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	hasher, err := sec.NewHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}

	tokens, err := sec.NewTokenService(
		cfg.JWTAccessSecret, cfg.JWTRefreshSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
	)
	if err != nil {
		return err
	}

	m := metrics.New()

	userRepo := auth.NewUserRepository(pool)
	sessionRepo := auth.NewSessionRepository(pool)
	productRepo := product.NewRepository(pool)
	orderRepo := orders.NewRepository(pool)

	authService := auth.NewService(userRepo, sessionRepo, hasher, tokens, auth.NewLogMailer(logger), m)
	accountService := account.NewService(userRepo, sessionRepo)
	productService := product.NewService(productRepo, product.NewRedisCache(redisClient), m)
	orderService := orders.NewService(orderRepo, m)

	router := api.NewRouter(ctx, api.Deps{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
		Pool:    pool,
		Redis:   redisClient,

		AuthService:    authService,
		TokenVerifier:  tokens,
		AuthHandler:    auth.NewHandler(authService),
		AccountHandler: account.NewHandler(accountService, authService),
		ProductHandler: product.NewHandler(productService),
		OrderHandler:   orders.NewHandler(orderService),
	})

	server := api.NewServer(":"+cfg.ServerPort, router)

	errs := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("stopped")
	return nil
}

// newLogger builds the process-wide structured logger. Development gets
// human-readable text; everything else ships JSON for the log pipeline.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
