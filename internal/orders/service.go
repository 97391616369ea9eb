// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package orders

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lumenmarket/lumen/internal/platform/apperr"
	"github.com/lumenmarket/lumen/internal/platform/dberr"
	"github.com/lumenmarket/lumen/internal/platform/metrics"
	"github.com/lumenmarket/lumen/internal/platform/validate"
	"github.com/lumenmarket/lumen/pkg/pagination"
)

// MaxOrderLines caps the number of distinct products per order.
const MaxOrderLines = 50

// Service implements the order operations.
type Service struct {
	repo    Repository
	metrics *metrics.Metrics
}

// NewService creates the order service. m may be nil.
func NewService(repo Repository, m *metrics.Metrics) *Service {
	return &Service{repo: repo, metrics: m}
}

// ListResult is one page of orders plus its pagination metadata.
type ListResult struct {
	Orders []Order
	Meta   pagination.Meta
}

/*
Place validates the requested lines and records the order.

Stock is checked and decremented inside the storage transaction, so two
shoppers racing for the last unit cannot both succeed.

Parameters:
  - ctx: context.Context
  - userID: string
  - lines: []Line

Returns:
  - *Order: The placed order with snapshotted prices
  - error: Validation failures, INSUFFICIENT_STOCK, CURRENCY_MISMATCH, or
    database failures
*/
func (s *Service) Place(ctx context.Context, userID string, lines []Line) (*Order, error) {
	if len(lines) == 0 {
		return nil, apperr.ValidationError("Order must contain at least one item")
	}
	if len(lines) > MaxOrderLines {
		return nil, apperr.ValidationError(fmt.Sprintf("Order cannot contain more than %d items", MaxOrderLines))
	}

	validator := &validate.Validator{}
	seen := make(map[string]bool, len(lines))
	for i, line := range lines {
		field := fmt.Sprintf("items[%d]", i)
		validator.UUID(field+".product_id", line.ProductID)
		validator.Positive(field+".quantity", int64(line.Quantity))
		validator.Custom(field+".product_id", seen[line.ProductID], "Duplicate product in order")
		seen[line.ProductID] = true
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	order, err := s.repo.Place(ctx, userID, lines)
	if err != nil {
		if errors.Is(err, ErrStockConflict) {
			return nil, apperr.New(http.StatusConflict, "INSUFFICIENT_STOCK",
				"One or more items are unavailable in the requested quantity")
		}
		if errors.Is(err, ErrCurrencyMismatch) {
			return nil, apperr.New(http.StatusConflict, "CURRENCY_MISMATCH",
				"Order items must share a single currency")
		}
		return nil, apperr.Internal(err)
	}

	if s.metrics != nil {
		s.metrics.OrdersPlacedTotal.Inc()
	}

	return order, nil
}

// List returns one page of the user's orders, newest first.
func (s *Service) List(ctx context.Context, userID string, params pagination.Params) (*ListResult, error) {
	listed, total, err := s.repo.ListForUser(ctx, userID, params)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &ListResult{
		Orders: listed,
		Meta:   pagination.NewMeta(params.Page, params.Limit, total),
	}, nil
}

// Get returns one of the user's orders with its item lines. Another user's
// order reads as absent.
func (s *Service) Get(ctx context.Context, userID string, orderID string) (*Order, error) {
	v := &validate.Validator{}
	if err := v.UUID("order_id", orderID).Err(); err != nil {
		return nil, err
	}

	order, err := s.repo.FindForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Order")
		}
		return nil, apperr.Internal(err)
	}

	return order, nil
}
