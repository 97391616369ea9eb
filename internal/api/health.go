// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/lumenmarket/lumen/internal/platform/constants"
	"github.com/lumenmarket/lumen/internal/platform/postgres"
	"github.com/lumenmarket/lumen/internal/platform/redis"
	"github.com/lumenmarket/lumen/internal/platform/respond"
)

// probeTimeout bounds each dependency check so a hung backend cannot stall
// the orchestrator's probe.
const probeTimeout = 2 * time.Second

type healthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type readinessStatus struct {
	Status   string `json:"status"`
	Postgres string `json:"postgres"`
	Redis    string `json:"redis"`
}

// Health reports process liveness. It never touches dependencies; a wedged
// database must not get the process restarted.
func Health() http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respond.JSON(writer, http.StatusOK, healthStatus{
			Status:  "ok",
			Service: constants.AppName,
			Version: constants.AppVersion,
		})
	}
}

// Readiness reports whether the process can serve traffic: both PostgreSQL
// and Redis must answer a ping.
func Readiness(pool *pgxpool.Pool, client *goredis.Client) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		ctx, cancel := context.WithTimeout(request.Context(), probeTimeout)
		defer cancel()

		status := readinessStatus{Status: "ready", Postgres: "ok", Redis: "ok"}
		httpStatus := http.StatusOK

		if err := postgres.Ping(ctx, pool); err != nil {
			status.Status = "degraded"
			status.Postgres = "unreachable"
			httpStatus = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx, client); err != nil {
			status.Status = "degraded"
			status.Redis = "unreachable"
			httpStatus = http.StatusServiceUnavailable
		}

		respond.JSON(writer, httpStatus, status)
	}
}
