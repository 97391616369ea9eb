// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package auth

import (
	"context"
	"log/slog"
)

// LogMailer is the development [Mailer]: it logs delivery instead of sending.
//
// Tokens are logged at debug level only; production deployments replace this
// with a real delivery provider and keep tokens out of log storage.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a [LogMailer].
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendVerification logs a verification email hand-off.
func (m *LogMailer) SendVerification(ctx context.Context, email, token string) error {
	m.logger.InfoContext(ctx, "verification_email_queued", slog.String("email", email))
	m.logger.DebugContext(ctx, "verification_token_issued", slog.String("token", token))
	return nil
}

// SendPasswordReset logs a password-reset email hand-off.
func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.logger.InfoContext(ctx, "password_reset_email_queued", slog.String("email", email))
	m.logger.DebugContext(ctx, "password_reset_token_issued", slog.String("token", token))
	return nil
}
