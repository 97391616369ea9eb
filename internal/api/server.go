// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

/*
Package api assembles the HTTP surface of the Lumen storefront.

It composes the middleware chain, mounts every domain router under /api/v1,
and exposes the operational endpoints (health, readiness, metrics) outside
the versioned prefix.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lumenmarket/lumen/internal/catalog/product"
	"github.com/lumenmarket/lumen/internal/orders"
	"github.com/lumenmarket/lumen/internal/platform/config"
	"github.com/lumenmarket/lumen/internal/platform/constants"
	"github.com/lumenmarket/lumen/internal/platform/metrics"
	"github.com/lumenmarket/lumen/internal/platform/middleware"
	"github.com/lumenmarket/lumen/internal/users/account"
	"github.com/lumenmarket/lumen/internal/users/auth"
)

// AuthRateLimitRPS throttles the credential endpoints harder than the rest
// of the API; they are the primary brute-force target.
const (
	AuthRateLimitRPS   = 5.0
	AuthRateLimitBurst = 10
)

// Deps carries everything the router needs. All fields are required except
// where noted on the domain constructors.
type Deps struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Pool    *pgxpool.Pool
	Redis   *redis.Client

	AuthService    *auth.Service
	TokenVerifier  middleware.TokenVerifier
	AuthHandler    *auth.Handler
	AccountHandler *account.Handler
	ProductHandler *product.Handler
	OrderHandler   *orders.Handler
}

// NewRouter builds the fully wired chi router.
//
// Middleware order matters: the request ID must exist before logging, the
// logger before anything that reports errors, and authentication last so
// every earlier layer also covers anonymous traffic.
func NewRouter(ctx context.Context, deps Deps) chi.Router {
	router := chi.NewRouter()

	router.Use(chimiddleware.CleanPath)
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(deps.Logger))
	router.Use(middleware.Metrics(deps.Metrics))
	router.Use(chimiddleware.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.RateLimit(ctx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst))
	router.Use(middleware.PanicRecovery(deps.Logger))
	router.Use(middleware.CORS(deps.Config, deps.Config.ExtraOrigins))
	router.Use(middleware.Authenticate(deps.TokenVerifier, deps.AuthService))

	router.Get("/healthz", Health())
	router.Get("/readyz", Readiness(deps.Pool, deps.Redis))
	router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimit(ctx, AuthRateLimitRPS, AuthRateLimitBurst))
			r.Mount("/", deps.AuthHandler.Routes())
		})
		api.Mount("/account", deps.AccountHandler.Routes())
		api.Mount("/products", deps.ProductHandler.Routes())
		api.Mount("/orders", deps.OrderHandler.Routes())
	})

	return router
}

// NewServer wraps the router in an [http.Server] with the standard timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       constants.DefaultReadTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
	}
}
