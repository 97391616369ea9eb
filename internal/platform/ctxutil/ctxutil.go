// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

// Package ctxutil provides typed accessors for request-scoped context values.
//
// It pairs with [ctxkey] to hide the raw context plumbing behind small
// functions, so handlers never touch context keys directly.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/lumenmarket/lumen/internal/platform/ctxkey"
	"github.com/lumenmarket/lumen/internal/platform/sec"
)

// WithRequestID stores the correlation ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, requestID)
}

// GetRequestID retrieves the correlation ID, or "" when absent.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxkey.KeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithLogger stores the per-request logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the per-request logger.
//
// It falls back to [slog.Default] when the middleware has not run, so call
// sites never need a nil check.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithAuthUser stores the verified token claims in the context.
func WithAuthUser(ctx context.Context, claims *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, claims)
}

// GetAuthUser retrieves the verified token claims.
//
// The boolean is false for anonymous requests.
func GetAuthUser(ctx context.Context) (*sec.AuthClaims, bool) {
	claims, ok := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}

// GetAuthUserID retrieves the authenticated user's ID, or "" for anonymous
// requests. Handlers behind the auth guard can use this without re-checking
// the boolean.
func GetAuthUserID(ctx context.Context) string {
	if claims, ok := GetAuthUser(ctx); ok {
		return claims.UserID
	}
	return ""
}
