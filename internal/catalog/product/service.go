// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lumenmarket/lumen/internal/platform/apperr"
	"github.com/lumenmarket/lumen/internal/platform/ctxutil"
	"github.com/lumenmarket/lumen/internal/platform/dberr"
	"github.com/lumenmarket/lumen/internal/platform/metrics"
	"github.com/lumenmarket/lumen/pkg/pagination"
	"github.com/lumenmarket/lumen/pkg/slug"
)

// Service serves catalog reads through the cache.
type Service struct {
	repo    Repository
	cache   Cache
	metrics *metrics.Metrics
}

// NewService creates the catalog service. cache and m may be nil; both
// degrade to plain database reads.
func NewService(repo Repository, cache Cache, m *metrics.Metrics) *Service {
	return &Service{repo: repo, cache: cache, metrics: m}
}

// ListResult is one page of catalog items plus its pagination metadata.
type ListResult struct {
	Products []Product
	Meta     pagination.Meta
}

/*
List returns one page of active products.

The page is served from Redis when present; otherwise it is read from
PostgreSQL and cached. Cache failures are logged and the database answers.

Parameters:
  - ctx: context.Context
  - params: pagination.Params
  - filter: Filter

Returns:
  - *ListResult: The page and its metadata
  - error: Database retrieval failures
*/
func (s *Service) List(ctx context.Context, params pagination.Params, filter Filter) (*ListResult, error) {
	key := listCacheKey(params, filter)

	if s.cache != nil {
		products, total, hit, err := s.cache.GetList(ctx, key)
		if err != nil {
			ctxutil.GetLogger(ctx).Warn("catalog cache read failed", "error", err)
		} else if hit {
			s.recordCache("hit")
			return &ListResult{
				Products: products,
				Meta:     pagination.NewMeta(params.Page, params.Limit, total),
			}, nil
		} else {
			s.recordCache("miss")
		}
	}

	products, total, err := s.repo.List(ctx, params, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if s.cache != nil {
		if err := s.cache.SetList(ctx, key, products, total); err != nil {
			ctxutil.GetLogger(ctx).Warn("catalog cache write failed", "error", err)
		}
	}

	return &ListResult{
		Products: products,
		Meta:     pagination.NewMeta(params.Page, params.Limit, total),
	}, nil
}

/*
Get returns a single active product by ID or URL slug.

Storefront links use slugs; internal references use UUIDs. The identifier is
dispatched on shape so the endpoint serves both.

Parameters:
  - ctx: context.Context
  - idOrSlug: string

Returns:
  - *Product: Hydrated entity
  - error: dberr.ErrNotFound or database failures
*/
func (s *Service) Get(ctx context.Context, idOrSlug string) (*Product, error) {
	if s.cache != nil {
		cached, err := s.cache.GetProduct(ctx, idOrSlug)
		if err != nil {
			ctxutil.GetLogger(ctx).Warn("catalog cache read failed", "error", err)
		} else if cached != nil {
			s.recordCache("hit")
			return cached, nil
		} else {
			s.recordCache("miss")
		}
	}

	var (
		found *Product
		err   error
	)
	if _, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		found, err = s.repo.FindByID(ctx, idOrSlug)
	} else {
		// Tolerate case and encoding noise in shared links.
		found, err = s.repo.FindBySlug(ctx, slug.From(idOrSlug))
	}
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.NotFound("Product")
		}
		return nil, apperr.Internal(err)
	}

	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, idOrSlug, found); err != nil {
			ctxutil.GetLogger(ctx).Warn("catalog cache write failed", "error", err)
		}
	}

	return found, nil
}

func (s *Service) recordCache(result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.CacheOpsTotal.WithLabelValues(result).Inc()
}

func listCacheKey(params pagination.Params, filter Filter) string {
	category := filter.Category
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("%s:%s:%d:%d", category, filter.Search, params.Page, params.Limit)
}
