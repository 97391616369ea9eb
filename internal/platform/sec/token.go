// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// OpaqueTokenBytes is the entropy of single-use tokens (email verification,
// password reset) before hex encoding. 32 bytes yields a 64-character token.
const OpaqueTokenBytes = 32

// NewOpaqueToken generates a cryptographically random, URL-safe token for
// email verification and password reset flows.
//
// The token is sent to the user out of band (email link); only the value on
// the user row authorizes consumption, never a guessable identifier.
func NewOpaqueToken() (string, error) {
	buf := make([]byte, OpaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to generate opaque token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Digest returns the hex-encoded SHA-256 of the given value.
//
// Session storage keys rows by the digest of the refresh token so a database
// leak does not hand out live credentials.
func Digest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
