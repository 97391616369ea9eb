// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package auth

import (
	"math"
	"time"
)

// FailureOutcome is the computed next state after a wrong-password attempt.
type FailureOutcome struct {
	// Attempts is the new failed-attempt counter to persist.
	Attempts int
	// LockedUntil is non-nil when this failure crossed the threshold.
	LockedUntil *time.Time
}

// Locked reports whether this failure triggered a lockout.
func (o FailureOutcome) Locked() bool { return o.LockedUntil != nil }

// ApplyFailure computes the counter and lock state after one more failed
// password verification. This is the reference form of the arithmetic the
// PostgreSQL repository performs inside its conditional UPDATE.
//
// Attempts only ever advance here; resets happen on successful login or
// completed password reset.
func ApplyFailure(currentAttempts int, now time.Time) FailureOutcome {
	outcome := FailureOutcome{Attempts: currentAttempts + 1}
	if outcome.Attempts >= LockoutThreshold {
		until := now.Add(LockoutDuration)
		outcome.LockedUntil = &until
	}
	return outcome
}

// RemainingLockMinutes returns the whole minutes left on a lock, rounded up
// so the client never sees "0 minutes" on a still-locked account.
func RemainingLockMinutes(lockedUntil, now time.Time) int {
	remaining := lockedUntil.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Minutes()))
}
