// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenmarket/lumen/internal/platform/apperr"
	"github.com/lumenmarket/lumen/internal/platform/dberr"
	"github.com/lumenmarket/lumen/pkg/pagination"
	"github.com/lumenmarket/lumen/pkg/uuidv7"
)

type stockedProduct struct {
	name       string
	priceCents int64
	currency   string
	stock      int
}

type fakeOrderRepo struct {
	stock  map[string]*stockedProduct
	placed []*Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{stock: map[string]*stockedProduct{}}
}

func (r *fakeOrderRepo) Place(_ context.Context, userID string, lines []Line) (*Order, error) {
	currency := ""
	for _, line := range lines {
		product, ok := r.stock[line.ProductID]
		if !ok || product.stock < line.Quantity {
			return nil, ErrStockConflict
		}
		if currency == "" {
			currency = product.currency
		} else if product.currency != currency {
			return nil, ErrCurrencyMismatch
		}
	}

	order := &Order{
		ID:        uuidv7.New(),
		UserID:    userID,
		Status:    StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	order.Currency = currency
	for _, line := range lines {
		product := r.stock[line.ProductID]
		product.stock -= line.Quantity
		order.TotalCents += product.priceCents * int64(line.Quantity)
		order.Items = append(order.Items, OrderItem{
			ID:             uuidv7.New(),
			OrderID:        order.ID,
			ProductID:      line.ProductID,
			ProductName:    product.name,
			UnitPriceCents: product.priceCents,
			Quantity:       line.Quantity,
		})
	}

	r.placed = append(r.placed, order)
	return order, nil
}

func (r *fakeOrderRepo) ListForUser(_ context.Context, userID string, params pagination.Params) ([]Order, int, error) {
	var mine []Order
	for _, order := range r.placed {
		if order.UserID == userID {
			mine = append(mine, *order)
		}
	}

	total := len(mine)
	offset := params.Offset()
	if offset > total {
		offset = total
	}
	end := offset + params.Limit
	if end > total {
		end = total
	}

	return mine[offset:end], total, nil
}

func (r *fakeOrderRepo) FindForUser(_ context.Context, userID string, orderID string) (*Order, error) {
	for _, order := range r.placed {
		if order.ID == orderID && order.UserID == userID {
			clone := *order
			return &clone, nil
		}
	}
	return nil, dberr.ErrNotFound
}

const (
	deskOrganizerID = "0195a2e4-7c1d-7a2b-9e3f-000000000001"
	pourOverSetID   = "0195a2e4-7c1d-7a2b-9e3f-000000000002"
	throwBlanketID  = "0195a2e4-7c1d-7a2b-9e3f-000000000003"
)

func newOrderEnv() (*Service, *fakeOrderRepo) {
	repo := newFakeOrderRepo()
	repo.stock[deskOrganizerID] = &stockedProduct{name: "Walnut Desk Organizer", priceCents: 4500, currency: "USD", stock: 10}
	repo.stock[pourOverSetID] = &stockedProduct{name: "Ceramic Pour-Over Set", priceCents: 6800, currency: "USD", stock: 2}
	repo.stock[throwBlanketID] = &stockedProduct{name: "Linen Throw Blanket", priceCents: 9200, currency: "EUR", stock: 5}
	return NewService(repo, nil), repo
}

func TestPlace(t *testing.T) {
	t.Parallel()

	t.Run("snapshots prices and totals the lines", func(t *testing.T) {
		t.Parallel()

		service, repo := newOrderEnv()

		order, err := service.Place(context.Background(), "u1", []Line{
			{ProductID: deskOrganizerID, Quantity: 2},
			{ProductID: pourOverSetID, Quantity: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, order.Status)
		assert.Equal(t, "USD", order.Currency)
		assert.Equal(t, int64(2*4500+6800), order.TotalCents)
		require.Len(t, order.Items, 2)
		assert.Equal(t, "Walnut Desk Organizer", order.Items[0].ProductName)
		assert.Equal(t, 8, repo.stock[deskOrganizerID].stock)
	})

	t.Run("rejects an empty order", func(t *testing.T) {
		t.Parallel()

		service, repo := newOrderEnv()

		_, err := service.Place(context.Background(), "u1", nil)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
		assert.Empty(t, repo.placed)
	})

	t.Run("rejects malformed ids, zero quantities and duplicates", func(t *testing.T) {
		t.Parallel()

		service, repo := newOrderEnv()

		_, err := service.Place(context.Background(), "u1", []Line{
			{ProductID: "not-a-uuid", Quantity: 0},
			{ProductID: deskOrganizerID, Quantity: 1},
			{ProductID: deskOrganizerID, Quantity: 1},
		})
		require.Error(t, err)
		appError := apperr.As(err)
		assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		assert.Len(t, appError.Details, 3)
		assert.Empty(t, repo.placed)
	})

	t.Run("mixed currencies read as a conflict", func(t *testing.T) {
		t.Parallel()

		service, repo := newOrderEnv()

		_, err := service.Place(context.Background(), "u1", []Line{
			{ProductID: deskOrganizerID, Quantity: 1},
			{ProductID: throwBlanketID, Quantity: 1},
		})
		require.Error(t, err)
		appError := apperr.As(err)
		assert.Equal(t, "CURRENCY_MISMATCH", appError.Code)
		assert.Equal(t, 409, appError.HTTPStatus)
		assert.Equal(t, 10, repo.stock[deskOrganizerID].stock, "failed order must not consume stock")
	})

	t.Run("insufficient stock reads as a conflict", func(t *testing.T) {
		t.Parallel()

		service, repo := newOrderEnv()

		_, err := service.Place(context.Background(), "u1", []Line{
			{ProductID: pourOverSetID, Quantity: 3},
		})
		require.Error(t, err)
		appError := apperr.As(err)
		assert.Equal(t, "INSUFFICIENT_STOCK", appError.Code)
		assert.Equal(t, 409, appError.HTTPStatus)
		assert.Equal(t, 2, repo.stock[pourOverSetID].stock, "failed order must not consume stock")
	})
}

func TestListOrders(t *testing.T) {
	t.Parallel()

	service, _ := newOrderEnv()

	for range 3 {
		_, err := service.Place(context.Background(), "u1", []Line{{ProductID: deskOrganizerID, Quantity: 1}})
		require.NoError(t, err)
	}
	_, err := service.Place(context.Background(), "u2", []Line{{ProductID: deskOrganizerID, Quantity: 1}})
	require.NoError(t, err)

	result, err := service.List(context.Background(), "u1", pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Orders, 2)
	assert.Equal(t, 3, result.Meta.Total)
	assert.Equal(t, 2, result.Meta.TotalPages)
}

func TestGetOrder(t *testing.T) {
	t.Parallel()

	service, _ := newOrderEnv()

	placed, err := service.Place(context.Background(), "u1", []Line{{ProductID: deskOrganizerID, Quantity: 1}})
	require.NoError(t, err)

	t.Run("owner reads the order with items", func(t *testing.T) {
		t.Parallel()

		order, err := service.Get(context.Background(), "u1", placed.ID)
		require.NoError(t, err)
		require.Len(t, order.Items, 1)
	})

	t.Run("someone else's order reads as absent", func(t *testing.T) {
		t.Parallel()

		_, err := service.Get(context.Background(), "u2", placed.ID)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("malformed id is rejected before storage", func(t *testing.T) {
		t.Parallel()

		_, err := service.Get(context.Background(), "u1", "not-a-uuid")
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}
