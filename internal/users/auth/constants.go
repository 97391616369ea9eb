// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package auth

import "time"

const (
	// LockoutThreshold is the number of consecutive failed logins that
	// triggers a temporary lock.
	LockoutThreshold = 5

	// LockoutDuration is how long a locked account rejects logins.
	LockoutDuration = 30 * time.Minute

	// ResetTokenTTL is the lifetime of a password reset token.
	ResetTokenTTL = 1 * time.Hour
)

// Error codes owned by the auth API contract.
const (
	CodeMissingFields       = "MISSING_FIELDS"
	CodeInvalidEmail        = "INVALID_EMAIL"
	CodeWeakPassword        = "WEAK_PASSWORD"
	CodeUserExists          = "USER_EXISTS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeAccountLocked       = "ACCOUNT_LOCKED"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
)
