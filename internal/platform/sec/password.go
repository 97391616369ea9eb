// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing, opaque
// token generation) from the domain logic. It acts as an Infrastructure
// service injected into the Application layer via narrow interfaces.
package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher performs one-way password hashing with a configurable work factor.
//
// # Cost
//
// The cost is fixed at construction. Raising it makes every subsequent hash
// slower (and safer); existing hashes remain verifiable because bcrypt embeds
// the cost in the hash string.
type Hasher struct {
	cost int
}

// NewHasher constructs a [Hasher] with the given bcrypt cost factor.
//
// The cost must fall within bcrypt's supported range; a cost of 0 selects
// the library default. The storefront deploys with cost 12.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("sec: bcrypt cost %d outside supported range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// Hash hashes a plain-text password using the bcrypt algorithm.
//
// The plaintext never appears in the returned error.
func (h *Hasher) Hash(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), h.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify compares a plain-text password with its hashed version.
//
// The comparison is constant-time inside bcrypt; the boolean result is the
// only output, never the reason for a mismatch.
func (h *Hasher) Verify(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
