// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lumenmarket/lumen/internal/platform/dberr"
)

// DB is the subset of [pgxpool.Pool] the repositories use.
//
// Accepting the interface instead of the concrete pool lets tests drive the
// repositories with pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// userColumns is the canonical select list; every scan uses the same order.
const userColumns = `
	id, email, password_hash, first_name, last_name, phone,
	email_verified, email_verification_token,
	password_reset_token, password_reset_expires,
	login_attempts, locked_until, last_login,
	two_factor_enabled, two_factor_secret,
	created_at, updated_at`

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	db DB
}

// NewUserRepository creates the PostgreSQL implementation of [UserRepository].
func NewUserRepository(db DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.EmailVerified,
		&user.EmailVerificationToken,
		&user.PasswordResetToken,
		&user.PasswordResetExpires,
		&user.LoginAttempts,
		&user.LockedUntil,
		&user.LastLogin,
		&user.TwoFactorEnabled,
		&user.TwoFactorSecret,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID retrieves an account by primary key.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

// FindByEmail retrieves an account by its normalized email.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(repository.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

// Exists reports whether an account with the given ID is present.
func (repository *PostgresUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := repository.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("user_repo_exists_failed: %w", err)
	}

	return exists, nil
}

// Create persists a new account row.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, phone,
			email_verified, email_verification_token,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.EmailVerified,
		user.EmailVerificationToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("user_repo_create_failed: %w", err)
	}

	return nil
}

// RecordLoginFailure advances the failure counter in one conditional write.
//
// The increment and the threshold comparison both run inside the UPDATE, so
// concurrent failures serialize on the row instead of clobbering each other
// with stale absolute counters. A row that is already locked matches nothing
// and reads back as [dberr.ErrNotFound].
func (repository *PostgresUserRepository) RecordLoginFailure(ctx context.Context, id string, now time.Time) (FailureOutcome, error) {
	const query = `
		UPDATE users
		SET login_attempts = login_attempts + 1,
		    locked_until = CASE WHEN login_attempts + 1 >= $2 THEN $3 END,
		    updated_at = NOW()
		WHERE id = $1 AND (locked_until IS NULL OR locked_until <= $4)
		RETURNING login_attempts, locked_until`

	outcome := FailureOutcome{}
	err := repository.db.QueryRow(ctx, query, id, LockoutThreshold, now.Add(LockoutDuration), now).
		Scan(&outcome.Attempts, &outcome.LockedUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return outcome, dberr.ErrNotFound
		}
		return outcome, fmt.Errorf("user_repo_record_failure_failed: %w", err)
	}

	return outcome, nil
}

// RecordLoginSuccess clears failure state and stamps last_login.
func (repository *PostgresUserRepository) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	const query = `
		UPDATE users
		SET login_attempts = 0, locked_until = NULL, last_login = $2, updated_at = NOW()
		WHERE id = $1`

	_, err := repository.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("user_repo_record_success_failed: %w", err)
	}

	return nil
}

// ConsumeVerificationToken verifies the account holding the token.
//
// The WHERE clause is the whole race-protection story: a second caller with
// the same token matches zero rows and gets [dberr.ErrNotFound].
func (repository *PostgresUserRepository) ConsumeVerificationToken(ctx context.Context, token string) (*User, error) {
	query := `
		UPDATE users
		SET email_verified = TRUE, email_verification_token = NULL, updated_at = NOW()
		WHERE email_verification_token = $1
		RETURNING` + userColumns

	user, err := scanUser(repository.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("user_repo_consume_verification_failed: %w", err)
	}

	return user, nil
}

// SetResetToken stores a reset token and expiry on the matching account.
func (repository *PostgresUserRepository) SetResetToken(ctx context.Context, email, token string, expires time.Time) (bool, error) {
	const query = `
		UPDATE users
		SET password_reset_token = $2, password_reset_expires = $3, updated_at = NOW()
		WHERE email = $1`

	tag, err := repository.db.Exec(ctx, query, email, token, expires)
	if err != nil {
		return false, fmt.Errorf("user_repo_set_reset_token_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ConsumeResetToken completes a password reset in one conditional write.
//
// Matching requires the token to be unexpired; the update clears the token,
// the expiry and all lock state alongside the new hash.
func (repository *PostgresUserRepository) ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (*User, error) {
	query := `
		UPDATE users
		SET password_hash = $2,
		    password_reset_token = NULL,
		    password_reset_expires = NULL,
		    login_attempts = 0,
		    locked_until = NULL,
		    updated_at = NOW()
		WHERE password_reset_token = $1 AND password_reset_expires > $3
		RETURNING` + userColumns

	user, err := scanUser(repository.db.QueryRow(ctx, query, token, newHash, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("user_repo_consume_reset_failed: %w", err)
	}

	return user, nil
}

// UpdatePassword replaces only the password hash.
func (repository *PostgresUserRepository) UpdatePassword(ctx context.Context, id, newHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	_, err := repository.db.Exec(ctx, query, id, newHash)
	if err != nil {
		return fmt.Errorf("user_repo_update_password_failed: %w", err)
	}

	return nil
}

// UpdateProfile persists mutable profile fields.
func (repository *PostgresUserRepository) UpdateProfile(ctx context.Context, user *User) error {
	const query = `
		UPDATE users
		SET first_name = $2, last_name = $3, phone = $4, updated_at = NOW()
		WHERE id = $1`

	_, err := repository.db.Exec(ctx, query, user.ID, user.FirstName, user.LastName, user.Phone)
	if err != nil {
		return fmt.Errorf("user_repo_update_profile_failed: %w", err)
	}

	return nil
}

// # Session Repository

// sessionColumns is the canonical select list for session scans.
const sessionColumns = `
	id, user_id, token_digest, user_agent, ip,
	expires_at, is_active, created_at, updated_at`

// PostgresSessionRepository implements [SessionRepository] using pgx.
type PostgresSessionRepository struct {
	db DB
}

// NewSessionRepository creates the PostgreSQL implementation of [SessionRepository].
func NewSessionRepository(db DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func scanSession(row pgx.Row) (*Session, error) {
	session := &Session{}
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.TokenDigest,
		&session.UserAgent,
		&session.IP,
		&session.ExpiresAt,
		&session.IsActive,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Create persists a new active session row.
func (repository *PostgresSessionRepository) Create(ctx context.Context, session *Session) error {
	const query = `
		INSERT INTO user_sessions (
			id, user_id, token_digest, user_agent, ip,
			expires_at, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err := repository.db.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.TokenDigest,
		session.UserAgent,
		session.IP,
		session.ExpiresAt,
		session.IsActive,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("session_repo_create_failed: %w", err)
	}

	return nil
}

// Rotate swaps the digest of a live session in one conditional write.
func (repository *PostgresSessionRepository) Rotate(ctx context.Context, oldDigest, newDigest string, expires, now time.Time) (*Session, error) {
	query := `
		UPDATE user_sessions
		SET token_digest = $2, expires_at = $3, updated_at = NOW()
		WHERE token_digest = $1 AND is_active = TRUE AND expires_at > $4
		RETURNING` + sessionColumns

	session, err := scanSession(repository.db.QueryRow(ctx, query, oldDigest, newDigest, expires, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("session_repo_rotate_failed: %w", err)
	}

	return session, nil
}

// Deactivate marks the session holding the digest inactive.
func (repository *PostgresSessionRepository) Deactivate(ctx context.Context, digest string) error {
	const query = `
		UPDATE user_sessions
		SET is_active = FALSE, updated_at = NOW()
		WHERE token_digest = $1 AND is_active = TRUE`

	_, err := repository.db.Exec(ctx, query, digest)
	if err != nil {
		return fmt.Errorf("session_repo_deactivate_failed: %w", err)
	}

	return nil
}

// DeactivateByID marks one of the user's sessions inactive.
func (repository *PostgresSessionRepository) DeactivateByID(ctx context.Context, userID, sessionID string) error {
	const query = `
		UPDATE user_sessions
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $2 AND user_id = $1 AND is_active = TRUE`

	_, err := repository.db.Exec(ctx, query, userID, sessionID)
	if err != nil {
		return fmt.Errorf("session_repo_deactivate_by_id_failed: %w", err)
	}

	return nil
}

// DeactivateAllForUser marks every session of the user inactive.
func (repository *PostgresSessionRepository) DeactivateAllForUser(ctx context.Context, userID string) error {
	const query = `
		UPDATE user_sessions
		SET is_active = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND is_active = TRUE`

	_, err := repository.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("session_repo_deactivate_all_failed: %w", err)
	}

	return nil
}

// ListActiveForUser returns the user's live sessions, newest first.
func (repository *PostgresSessionRepository) ListActiveForUser(ctx context.Context, userID string, now time.Time) ([]Session, error) {
	query := `
		SELECT` + sessionColumns + `
		FROM user_sessions
		WHERE user_id = $1 AND is_active = TRUE AND expires_at > $2
		ORDER BY created_at DESC`

	rows, err := repository.db.Query(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("session_repo_list_active_failed: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session := Session{}
		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.TokenDigest,
			&session.UserAgent,
			&session.IP,
			&session.ExpiresAt,
			&session.IsActive,
			&session.CreatedAt,
			&session.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("session_repo_list_scan_failed: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session_repo_list_rows_failed: %w", err)
	}

	return sessions, nil
}
