// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Every mutation that consumes a token or advances lock state is expressed
// as a single conditional write; implementations report "no row matched" via
// dberr.ErrNotFound so two racing callers cannot both succeed.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given normalized email.

		Parameters:
		  - context: context.Context
		  - email: string (lower-cased by the caller)

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Exists reports whether an account with the given ID is present.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - bool: Presence flag
		  - error: Database retrieval failures
	*/
	Exists(context context.Context, id string) (bool, error)

	/*
		Create persists a brand-new user account.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures, including unique-email violations
	*/
	Create(context context.Context, user *User) error

	/*
		RecordLoginFailure advances the failure counter and engages the lock
		when the increment crosses the threshold. The increment and the
		threshold comparison happen inside one conditional write, so racing
		failures serialize on the row and none are lost.

		Parameters:
		  - context: context.Context
		  - id: string
		  - now: time.Time (lock comparison and lock start)

		Returns:
		  - FailureOutcome: The counter and lock state after this failure
		  - error: dberr.ErrNotFound when the row is absent or already locked
		    (a concurrent failure engaged the lock first)
	*/
	RecordLoginFailure(context context.Context, id string, now time.Time) (FailureOutcome, error)

	/*
		RecordLoginSuccess resets the failure counter, clears any lock and
		stamps last_login.

		Parameters:
		  - context: context.Context
		  - id: string
		  - at: time.Time

		Returns:
		  - error: Persistence failures
	*/
	RecordLoginSuccess(context context.Context, id string, at time.Time) error

	/*
		ConsumeVerificationToken marks the matching account verified and
		clears the token in one conditional write.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *User: The updated account
		  - error: dberr.ErrNotFound when no unconsumed token matched
	*/
	ConsumeVerificationToken(context context.Context, token string) (*User, error)

	/*
		SetResetToken stores a reset token and its expiry on the account with
		the given email.

		Parameters:
		  - context: context.Context
		  - email: string (lower-cased by the caller)
		  - token: string
		  - expires: time.Time

		Returns:
		  - bool: Whether an account matched (callers must not leak this)
		  - error: Persistence failures
	*/
	SetResetToken(context context.Context, email, token string, expires time.Time) (bool, error)

	/*
		ConsumeResetToken replaces the password hash where the token matches
		and has not expired, clearing the token and all lock state in the
		same conditional write.

		Parameters:
		  - context: context.Context
		  - token: string
		  - newHash: string
		  - now: time.Time (expiry comparison point)

		Returns:
		  - *User: The updated account
		  - error: dberr.ErrNotFound when the token was absent or expired
	*/
	ConsumeResetToken(context context.Context, token, newHash string, now time.Time) (*User, error)

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - id: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, id, newHash string) error

	/*
		UpdateProfile persists mutable profile fields (names, phone).

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	UpdateProfile(context context.Context, user *User) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh sessions.
type SessionRepository interface {

	/*
		Create persists a new active session.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		Rotate swaps the digest and expiry of an active, unexpired session in
		one conditional write. The old digest is unusable afterwards.

		Parameters:
		  - context: context.Context
		  - oldDigest: string
		  - newDigest: string
		  - expires: time.Time (new expiry)
		  - now: time.Time (liveness comparison point)

		Returns:
		  - *Session: The rotated session
		  - error: dberr.ErrNotFound when no live session held oldDigest
	*/
	Rotate(context context.Context, oldDigest, newDigest string, expires, now time.Time) (*Session, error)

	/*
		Deactivate marks the session holding the digest inactive. Idempotent.

		Parameters:
		  - context: context.Context
		  - digest: string

		Returns:
		  - error: Persistence failures
	*/
	Deactivate(context context.Context, digest string) error

	/*
		DeactivateByID marks one of the user's sessions inactive. Idempotent.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - sessionID: string

		Returns:
		  - error: Persistence failures
	*/
	DeactivateByID(context context.Context, userID, sessionID string) error

	/*
		DeactivateAllForUser marks every session of the user inactive.
		Idempotent.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	DeactivateAllForUser(context context.Context, userID string) error

	/*
		ListActiveForUser returns the user's active, unexpired sessions.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - now: time.Time (expiry comparison point)

		Returns:
		  - []Session: Active sessions, newest first
		  - error: Database retrieval failures
	*/
	ListActiveForUser(context context.Context, userID string, now time.Time) ([]Session, error)
}
