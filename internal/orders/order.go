// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

/*
Package orders implements order placement and retrieval.

Placing an order is a single PostgreSQL transaction: stock is decremented
with a conditional update, the order row is inserted, and one item row per
line captures the product name and unit price at purchase time. Snapshotting
keeps order history stable when the catalog changes afterwards.
*/
package orders

import "time"

// Order statuses. An order starts as [StatusPending]; fulfillment tooling
// advances it out of band.
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Order is one placed order.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Status     string      `json:"status"`
	TotalCents int64       `json:"total_cents"`
	Currency   string      `json:"currency"`
	Items      []OrderItem `json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem is one line of an order with the catalog data snapshotted at
// purchase time.
type OrderItem struct {
	ID             string `json:"id"`
	OrderID        string `json:"-"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}
