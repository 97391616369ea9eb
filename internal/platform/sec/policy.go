// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package sec

import (
	"strings"
	"unicode"
)

// MinPasswordLength is the minimum number of characters a password must have.
const MinPasswordLength = 8

// specialChars is the accepted set of special characters for password strength.
const specialChars = `!@#$%^&*(),.?":{}|<>`

// ValidatePassword checks a candidate password against the storefront policy
// and returns every rule it violates.
//
// Rules:
//
//   - at least [MinPasswordLength] characters
//   - at least one uppercase letter
//   - at least one lowercase letter
//   - at least one digit
//   - at least one special character from the accepted set
//
// An empty slice means the password is acceptable. Violations are returned
// all at once so the client can render the complete checklist rather than
// fixing one rule per round trip.
func ValidatePassword(password string) []string {
	var violations []string

	if len(password) < MinPasswordLength {
		violations = append(violations, "Password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "Password must contain at least one number")
	}
	if !strings.ContainsAny(password, specialChars) {
		violations = append(violations, "Password must contain at least one special character")
	}

	return violations
}
