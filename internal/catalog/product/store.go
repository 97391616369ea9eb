// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package product

import (
	"context"

	"github.com/lumenmarket/lumen/pkg/pagination"
)

// Filter narrows a catalog listing. Zero values mean no filtering.
type Filter struct {
	// Category restricts to one category when non-empty.
	Category string
	// Search is a case-insensitive substring match on the product name.
	Search string
}

// Repository defines the catalog data access contract.
type Repository interface {

	/*
		List returns one page of active products matching the filter, plus
		the total match count for pagination metadata.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params
		  - filter: Filter

		Returns:
		  - []Product: The page, newest first
		  - int: Total matching products
		  - error: Database retrieval failures
	*/
	List(context context.Context, params pagination.Params, filter Filter) ([]Product, int, error)

	/*
		FindByID returns the active product with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Product: Hydrated entity
		  - error: dberr.ErrNotFound or database failures
	*/
	FindByID(context context.Context, id string) (*Product, error)

	/*
		FindBySlug returns the active product with the given URL slug.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Product: Hydrated entity
		  - error: dberr.ErrNotFound or database failures
	*/
	FindBySlug(context context.Context, slug string) (*Product, error)
}

// Cache is the read-through cache in front of [Repository].
//
// A miss returns (nil, nil); cache failures degrade to the database rather
// than failing the request.
type Cache interface {
	GetProduct(context context.Context, key string) (*Product, error)
	SetProduct(context context.Context, key string, product *Product) error
	GetList(context context.Context, key string) ([]Product, int, bool, error)
	SetList(context context.Context, key string, products []Product, total int) error
}
