// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

// Package metrics defines the Prometheus instrumentation for the API.
//
// # Architecture
//
// All metrics hang off a single [Metrics] struct registered against an
// explicit registry. No promauto globals; tests construct their own registry
// and never fight over default-registry state.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector the API exports.
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequestsTotal counts completed requests by route pattern, method
	// and status class.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes request latency in seconds by route pattern.
	HTTPRequestDuration *prometheus.HistogramVec

	// AuthAttemptsTotal counts authentication outcomes by operation and result
	// (e.g. login/success, login/locked, refresh/invalid).
	AuthAttemptsTotal *prometheus.CounterVec

	// CacheOpsTotal counts catalog cache hits and misses.
	CacheOpsTotal *prometheus.CounterVec

	// OrdersPlacedTotal counts successfully placed orders.
	OrdersPlacedTotal prometheus.Counter
}

// New constructs and registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumen",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Completed HTTP requests.",
		}, []string{"route", "method", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lumen",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),

		AuthAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumen",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Authentication attempts by operation and outcome.",
		}, []string{"operation", "outcome"}),

		CacheOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumen",
			Subsystem: "cache",
			Name:      "ops_total",
			Help:      "Catalog cache operations by result.",
		}, []string{"result"}),

		OrdersPlacedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lumen",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders successfully placed.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthAttemptsTotal,
		m.CacheOpsTotal,
		m.OrdersPlacedTotal,
	)

	return m
}

// Handler returns the /metrics scrape endpoint backed by this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordAuthAttempt increments the auth outcome counter.
func (m *Metrics) RecordAuthAttempt(operation, outcome string) {
	m.AuthAttemptsTotal.WithLabelValues(operation, outcome).Inc()
}
