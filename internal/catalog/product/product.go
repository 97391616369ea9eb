// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

/*
Package product implements the storefront catalog read path.

Products are authored out of band (merchandising tooling writes directly to
PostgreSQL); this package serves them to shoppers with a Redis read-through
cache in front of the database.
*/
package product

import "time"

// Product is a catalog item.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	PriceCents  int64   `json:"price_cents"`
	Currency    string  `json:"currency"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    bool    `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InStock reports whether the requested quantity can currently be fulfilled.
func (p *Product) InStock(quantity int) bool {
	return p.IsActive && quantity > 0 && p.Stock >= quantity
}
