// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lumenmarket/lumen/internal/platform/dberr"
	"github.com/lumenmarket/lumen/pkg/pagination"
)

// DB is the subset of [pgxpool.Pool] the repository uses; pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const productColumns = `
	id, name, slug, description, price_cents, currency, stock,
	category, image_url, is_active, created_at, updated_at`

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db DB
}

// NewRepository creates the PostgreSQL implementation of [Repository].
func NewRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.PriceCents,
		&p.Currency,
		&p.Stock,
		&p.Category,
		&p.ImageURL,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns one page of active products matching the filter, newest first.
func (repository *PostgresRepository) List(ctx context.Context, params pagination.Params, filter Filter) ([]Product, int, error) {
	countQuery := `
		SELECT COUNT(*) FROM products
		WHERE is_active = TRUE
		  AND ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')`

	var total int
	if err := repository.db.QueryRow(ctx, countQuery, filter.Category, filter.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("product_repo_count_failed: %w", err)
	}

	query := `
		SELECT` + productColumns + `
		FROM products
		WHERE is_active = TRUE
		  AND ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := repository.db.Query(ctx, query, filter.Category, filter.Search, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("product_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p := Product{}
		err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Description, &p.PriceCents, &p.Currency,
			&p.Stock, &p.Category, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("product_repo_list_scan_failed: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("product_repo_list_rows_failed: %w", err)
	}

	return products, total, nil
}

// FindByID returns the active product with the given ID.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Product, error) {
	query := `SELECT` + productColumns + ` FROM products WHERE id = $1 AND is_active = TRUE`

	p, err := scanProduct(repository.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("product_repo_find_by_id_failed: %w", err)
	}

	return p, nil
}

// FindBySlug returns the active product with the given URL slug.
func (repository *PostgresRepository) FindBySlug(ctx context.Context, slug string) (*Product, error) {
	query := `SELECT` + productColumns + ` FROM products WHERE slug = $1 AND is_active = TRUE`

	p, err := scanProduct(repository.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dberr.ErrNotFound
		}
		return nil, fmt.Errorf("product_repo_find_by_slug_failed: %w", err)
	}

	return p, nil
}
