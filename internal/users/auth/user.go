// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

/*
Package auth implements account registration, login, session lifecycle and
credential recovery for the Lumen storefront.

Architecture:

  - Service: orchestrates hashing, token issuance, lockout and persistence.
  - UserRepository / SessionRepository: storage contracts, implemented on
    PostgreSQL with single conditional writes for every state transition.
  - Handler: the HTTP surface mounted under /api/v1/auth.

Every mutation of auth state (token consumption, lockout bookkeeping,
session rotation) is one conditional UPDATE so concurrent requests can never
both win; the loser observes zero affected rows.
*/
package auth

import "time"

// User is the account record as stored in PostgreSQL.
//
// # Security
//
// PasswordHash and the recovery token columns never leave the service layer.
// HTTP responses are built from [User.Public].
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string

	EmailVerified          bool
	EmailVerificationToken *string

	PasswordResetToken   *string
	PasswordResetExpires *time.Time

	LoginAttempts int
	LockedUntil   *time.Time
	LastLogin     *time.Time

	TwoFactorEnabled bool
	TwoFactorSecret  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicUser is the client-safe projection of a [User].
type PublicUser struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Phone         *string    `json:"phone,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Public projects the record down to its client-safe fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Phone:         u.Phone,
		EmailVerified: u.EmailVerified,
		LastLogin:     u.LastLogin,
		CreatedAt:     u.CreatedAt,
	}
}

// IsLocked reports whether the account is under login lockout at the given
// instant.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Session is one active refresh credential for a user.
//
// The refresh token itself is never stored; TokenDigest holds its SHA-256 so
// a database leak cannot be replayed as a live credential.
type Session struct {
	ID          string
	UserID      string
	TokenDigest string
	UserAgent   string
	IP          string
	ExpiresAt   time.Time
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PublicSession is the client-safe projection shown in the account's active
// session list.
type PublicSession struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Public projects the session down to its client-safe fields.
func (s *Session) Public() PublicSession {
	return PublicSession{
		ID:        s.ID,
		UserAgent: s.UserAgent,
		IP:        s.IP,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}
