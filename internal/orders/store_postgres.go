// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lumenmarket/lumen/internal/platform/dberr"
	"github.com/lumenmarket/lumen/pkg/pagination"
	"github.com/lumenmarket/lumen/pkg/uuidv7"
)

// DB is the subset of [pgxpool.Pool] the repository uses; pgxmock satisfies
// it in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db DB
}

// NewRepository creates the PostgreSQL implementation of [Repository].
func NewRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const orderColumns = `id, user_id, status, total_cents, currency, created_at, updated_at`

// Place runs the order transaction: conditional stock decrements, the order
// row, then one item row per line. Any failed decrement rolls back the lot.
func (repository *PostgresRepository) Place(ctx context.Context, userID string, lines []Line) (*Order, error) {
	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("order_repo_begin_failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	decrement := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE AND stock >= $2
		RETURNING name, price_cents, currency`

	order := &Order{
		ID:     uuidv7.New(),
		UserID: userID,
		Status: StatusPending,
	}

	for _, line := range lines {
		item := OrderItem{
			ID:        uuidv7.New(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}

		var currency string
		err := tx.QueryRow(ctx, decrement, line.ProductID, line.Quantity).
			Scan(&item.ProductName, &item.UnitPriceCents, &currency)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrStockConflict
			}
			return nil, fmt.Errorf("order_repo_stock_decrement_failed: %w", err)
		}

		// The order currency is pinned by the first line; a later line in
		// another currency would make the summed total meaningless.
		if order.Currency == "" {
			order.Currency = currency
		} else if currency != order.Currency {
			return nil, ErrCurrencyMismatch
		}
		order.TotalCents += item.UnitPriceCents * int64(line.Quantity)
		order.Items = append(order.Items, item)
	}

	insertOrder := `
		INSERT INTO orders (id, user_id, status, total_cents, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err = tx.QueryRow(ctx, insertOrder,
		order.ID, order.UserID, order.Status, order.TotalCents, order.Currency,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("order_repo_insert_failed: %w", err)
	}

	insertItem := `
		INSERT INTO order_items (id, order_id, product_id, product_name, unit_price_cents, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, item := range order.Items {
		_, err := tx.Exec(ctx, insertItem,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.UnitPriceCents, item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("order_repo_insert_item_failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("order_repo_commit_failed: %w", err)
	}

	return order, nil
}

// ListForUser returns one page of the user's orders, newest first.
func (repository *PostgresRepository) ListForUser(ctx context.Context, userID string, params pagination.Params) ([]Order, int, error) {
	var total int
	err := repository.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("order_repo_count_failed: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := repository.db.Query(ctx, query, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("order_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var listed []Order
	for rows.Next() {
		o := Order{}
		err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.Currency, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("order_repo_list_scan_failed: %w", err)
		}
		listed = append(listed, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("order_repo_list_rows_failed: %w", err)
	}

	return listed, total, nil
}

// FindForUser returns one owner-scoped order with its item lines.
func (repository *PostgresRepository) FindForUser(ctx context.Context, userID string, orderID string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`

	o := &Order{}
	err := repository.db.QueryRow(ctx, query, orderID, userID).
		Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.Currency, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("order_repo_find_failed: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, product_name, unit_price_cents, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := repository.db.Query(ctx, itemsQuery, o.ID)
	if err != nil {
		return nil, fmt.Errorf("order_repo_items_failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := OrderItem{}
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.UnitPriceCents, &item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("order_repo_items_scan_failed: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order_repo_items_rows_failed: %w", err)
	}

	return o, nil
}
