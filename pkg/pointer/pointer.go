// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

// Package pointer provides small generic helpers for working with pointers.
//
// Nullable columns (phone numbers, lock timestamps, token expiries) surface
// as pointers throughout the storefront domain; these helpers remove the
// boilerplate of taking addresses and nil-guarding dereferences.
package pointer

// To returns a pointer to the provided value.
// It is useful when a struct field or query argument expects a pointer
// (e.g. pointer.To(time.Now())).
func To[T any](v T) *T {
	return &v
}

// Val safely dereferences a pointer.
// If the pointer is nil, it returns the zero value of the underlying type.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Fallback safely dereferences a pointer.
// If the pointer is nil, it returns the provided fallback value instead.
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
