// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package orders

import (
	"context"
	"errors"

	"github.com/lumenmarket/lumen/pkg/pagination"
)

// ErrStockConflict is returned by [Repository.Place] when a requested product
// is missing, inactive, or short on stock at commit time.
var ErrStockConflict = errors.New("orders: product unavailable or insufficient stock")

// ErrCurrencyMismatch is returned by [Repository.Place] when the requested
// lines do not share a single currency. An order carries one total in one
// currency.
var ErrCurrencyMismatch = errors.New("orders: order lines span multiple currencies")

// Line is one requested order line before pricing.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Repository defines the order data access contract.
type Repository interface {

	/*
		Place atomically decrements stock and records the order.

		Each line's stock decrement is a conditional update; if any line
		cannot be satisfied the whole transaction rolls back. Product names
		and unit prices are snapshotted from the catalog inside the same
		transaction.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - lines: []Line (validated, quantities > 0)

		Returns:
		  - *Order: The placed order with items and total
		  - error: ErrStockConflict, ErrCurrencyMismatch, or database failures
	*/
	Place(context context.Context, userID string, lines []Line) (*Order, error)

	/*
		ListForUser returns one page of the user's orders, newest first,
		without item lines.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - params: pagination.Params

		Returns:
		  - []Order: The page
		  - int: Total orders for the user
		  - error: Database retrieval failures
	*/
	ListForUser(context context.Context, userID string, params pagination.Params) ([]Order, int, error)

	/*
		FindForUser returns one of the user's orders with its item lines.
		The user scope is part of the query; another user's order reads as
		absent.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - orderID: string

		Returns:
		  - *Order: Hydrated entity with items
		  - error: dberr.ErrNotFound or database failures
	*/
	FindForUser(context context.Context, userID string, orderID string) (*Order, error)
}
