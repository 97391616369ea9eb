// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

// Package account exposes the authenticated user's own profile: identity,
// profile edits, password changes and the active session list.
//
// It builds on the auth package's repositories; there is no separate account
// table.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lumenmarket/lumen/internal/platform/apperr"
	"github.com/lumenmarket/lumen/internal/platform/dberr"
	"github.com/lumenmarket/lumen/internal/platform/validate"
	"github.com/lumenmarket/lumen/internal/users/auth"
)

// Service implements the account operations for an authenticated user.
type Service struct {
	users    auth.UserRepository
	sessions auth.SessionRepository
	now      func() time.Time
}

// NewService wires the account service.
func NewService(users auth.UserRepository, sessions auth.SessionRepository) *Service {
	return &Service{users: users, sessions: sessions, now: time.Now}
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone"`
}

// Me returns the caller's public profile.
func (s *Service) Me(ctx context.Context, userID string) (*auth.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.Unauthorized("Authentication required")
		}
		return nil, apperr.Internal(err)
	}

	public := user.Public()
	return &public, nil
}

// UpdateProfile edits the caller's display fields.
func (s *Service) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*auth.PublicUser, error) {
	v := &validate.Validator{}
	v.Required("first_name", input.FirstName).MaxLen("first_name", input.FirstName, 50)
	v.Required("last_name", input.LastName).MaxLen("last_name", input.LastName, 50)
	if input.Phone != nil && *input.Phone != "" {
		v.Phone("phone", *input.Phone)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.Unauthorized("Authentication required")
		}
		return nil, apperr.Internal(err)
	}

	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.Phone = input.Phone

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, apperr.Internal(err)
	}

	public := user.Public()
	return &public, nil
}

// Sessions lists the caller's active sessions, newest first.
func (s *Service) Sessions(ctx context.Context, userID string) ([]auth.PublicSession, error) {
	sessions, err := s.sessions.ListActiveForUser(ctx, userID, s.now())
	if err != nil {
		return nil, apperr.Internal(err)
	}

	out := make([]auth.PublicSession, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessions[i].Public())
	}
	return out, nil
}

// RevokeSession deactivates one of the caller's sessions. Idempotent, and
// scoped by user ID so nobody can revoke someone else's session.
func (s *Service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	v := &validate.Validator{}
	v.Required("session_id", sessionID).UUID("session_id", sessionID)
	if err := v.Err(); err != nil {
		return err
	}

	if err := s.sessions.DeactivateByID(ctx, userID, sessionID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
