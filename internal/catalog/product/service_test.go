// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package product

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenmarket/lumen/internal/platform/apperr"
	"github.com/lumenmarket/lumen/internal/platform/dberr"
	"github.com/lumenmarket/lumen/pkg/pagination"
)

type fakeRepo struct {
	products []Product

	listCalls int
	findCalls int
}

func (r *fakeRepo) List(_ context.Context, params pagination.Params, filter Filter) ([]Product, int, error) {
	r.listCalls++

	var matching []Product
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		matching = append(matching, p)
	}

	total := len(matching)
	offset := params.Offset()
	if offset > total {
		offset = total
	}
	end := offset + params.Limit
	if end > total {
		end = total
	}

	return matching[offset:end], total, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*Product, error) {
	r.findCalls++
	for i := range r.products {
		if r.products[i].ID == id {
			return &r.products[i], nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (r *fakeRepo) FindBySlug(_ context.Context, slug string) (*Product, error) {
	r.findCalls++
	for i := range r.products {
		if r.products[i].Slug == slug {
			return &r.products[i], nil
		}
	}
	return nil, dberr.ErrNotFound
}

type fakeCache struct {
	products map[string]*Product
	lists    map[string]cachedList

	failing bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		products: map[string]*Product{},
		lists:    map[string]cachedList{},
	}
}

func (c *fakeCache) GetProduct(_ context.Context, key string) (*Product, error) {
	if c.failing {
		return nil, errors.New("connection refused")
	}
	return c.products[key], nil
}

func (c *fakeCache) SetProduct(_ context.Context, key string, product *Product) error {
	if c.failing {
		return errors.New("connection refused")
	}
	c.products[key] = product
	return nil
}

func (c *fakeCache) GetList(_ context.Context, key string) ([]Product, int, bool, error) {
	if c.failing {
		return nil, 0, false, errors.New("connection refused")
	}
	entry, ok := c.lists[key]
	if !ok {
		return nil, 0, false, nil
	}
	return entry.Products, entry.Total, true, nil
}

func (c *fakeCache) SetList(_ context.Context, key string, products []Product, total int) error {
	if c.failing {
		return errors.New("connection refused")
	}
	c.lists[key] = cachedList{Products: products, Total: total}
	return nil
}

func catalogFixture() []Product {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	return []Product{
		{
			ID: "0195a2e4-7c1d-7a2b-9e3f-000000000001", Name: "Walnut Desk Organizer",
			Slug: "walnut-desk-organizer", PriceCents: 4500, Currency: "USD",
			Stock: 12, Category: "office", IsActive: true, CreatedAt: now,
		},
		{
			ID: "0195a2e4-7c1d-7a2b-9e3f-000000000002", Name: "Ceramic Pour-Over Set",
			Slug: "ceramic-pour-over-set", PriceCents: 6800, Currency: "USD",
			Stock: 4, Category: "kitchen", IsActive: true, CreatedAt: now,
		},
		{
			ID: "0195a2e4-7c1d-7a2b-9e3f-000000000003", Name: "Linen Throw Blanket",
			Slug: "linen-throw-blanket", PriceCents: 9200, Currency: "USD",
			Stock: 0, Category: "home", IsActive: true, CreatedAt: now,
		},
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	t.Run("second read comes from cache", func(t *testing.T) {
		t.Parallel()

		repo := &fakeRepo{products: catalogFixture()}
		cache := newFakeCache()
		service := NewService(repo, cache, nil)
		params := pagination.Params{Page: 1, Limit: 20}

		first, err := service.List(context.Background(), params, Filter{})
		require.NoError(t, err)
		assert.Len(t, first.Products, 3)
		assert.Equal(t, 3, first.Meta.Total)
		assert.Equal(t, 1, repo.listCalls)

		second, err := service.List(context.Background(), params, Filter{})
		require.NoError(t, err)
		assert.Len(t, second.Products, 3)
		assert.Equal(t, 1, repo.listCalls, "cached page should not touch the database")
	})

	t.Run("category filter narrows results", func(t *testing.T) {
		t.Parallel()

		service := NewService(&fakeRepo{products: catalogFixture()}, newFakeCache(), nil)

		result, err := service.List(context.Background(), pagination.Params{Page: 1, Limit: 20}, Filter{Category: "kitchen"})
		require.NoError(t, err)
		require.Len(t, result.Products, 1)
		assert.Equal(t, "ceramic-pour-over-set", result.Products[0].Slug)
		assert.Equal(t, 1, result.Meta.Total)
	})

	t.Run("search matches the name case-insensitively", func(t *testing.T) {
		t.Parallel()

		service := NewService(&fakeRepo{products: catalogFixture()}, newFakeCache(), nil)

		result, err := service.List(context.Background(), pagination.Params{Page: 1, Limit: 20}, Filter{Search: "ceramic"})
		require.NoError(t, err)
		require.Len(t, result.Products, 1)
		assert.Equal(t, "Ceramic Pour-Over Set", result.Products[0].Name)
	})

	t.Run("distinct pages use distinct cache entries", func(t *testing.T) {
		t.Parallel()

		repo := &fakeRepo{products: catalogFixture()}
		service := NewService(repo, newFakeCache(), nil)

		pageOne, err := service.List(context.Background(), pagination.Params{Page: 1, Limit: 2}, Filter{})
		require.NoError(t, err)
		require.Len(t, pageOne.Products, 2)
		assert.Equal(t, 2, pageOne.Meta.TotalPages)

		pageTwo, err := service.List(context.Background(), pagination.Params{Page: 2, Limit: 2}, Filter{})
		require.NoError(t, err)
		require.Len(t, pageTwo.Products, 1)
		assert.Equal(t, 2, repo.listCalls)
	})

	t.Run("cache outage degrades to the database", func(t *testing.T) {
		t.Parallel()

		repo := &fakeRepo{products: catalogFixture()}
		cache := newFakeCache()
		cache.failing = true
		service := NewService(repo, cache, nil)

		result, err := service.List(context.Background(), pagination.Params{Page: 1, Limit: 20}, Filter{})
		require.NoError(t, err)
		assert.Len(t, result.Products, 3)
	})

	t.Run("works without a cache", func(t *testing.T) {
		t.Parallel()

		service := NewService(&fakeRepo{products: catalogFixture()}, nil, nil)

		result, err := service.List(context.Background(), pagination.Params{Page: 1, Limit: 20}, Filter{})
		require.NoError(t, err)
		assert.Len(t, result.Products, 3)
	})
}

func TestGet(t *testing.T) {
	t.Parallel()

	t.Run("resolves a UUID as an ID", func(t *testing.T) {
		t.Parallel()

		repo := &fakeRepo{products: catalogFixture()}
		service := NewService(repo, newFakeCache(), nil)

		found, err := service.Get(context.Background(), "0195a2e4-7c1d-7a2b-9e3f-000000000002")
		require.NoError(t, err)
		assert.Equal(t, "ceramic-pour-over-set", found.Slug)
	})

	t.Run("resolves anything else as a slug", func(t *testing.T) {
		t.Parallel()

		repo := &fakeRepo{products: catalogFixture()}
		service := NewService(repo, newFakeCache(), nil)

		found, err := service.Get(context.Background(), "walnut-desk-organizer")
		require.NoError(t, err)
		assert.Equal(t, "Walnut Desk Organizer", found.Name)
	})

	t.Run("normalizes noisy slugs", func(t *testing.T) {
		t.Parallel()

		service := NewService(&fakeRepo{products: catalogFixture()}, newFakeCache(), nil)

		found, err := service.Get(context.Background(), "Walnut-Desk-Organizer")
		require.NoError(t, err)
		assert.Equal(t, "walnut-desk-organizer", found.Slug)
	})

	t.Run("second read comes from cache", func(t *testing.T) {
		t.Parallel()

		repo := &fakeRepo{products: catalogFixture()}
		service := NewService(repo, newFakeCache(), nil)

		_, err := service.Get(context.Background(), "walnut-desk-organizer")
		require.NoError(t, err)
		assert.Equal(t, 1, repo.findCalls)

		_, err = service.Get(context.Background(), "walnut-desk-organizer")
		require.NoError(t, err)
		assert.Equal(t, 1, repo.findCalls, "cached product should not touch the database")
	})

	t.Run("unknown product stays not found", func(t *testing.T) {
		t.Parallel()

		service := NewService(&fakeRepo{products: catalogFixture()}, newFakeCache(), nil)

		_, err := service.Get(context.Background(), "no-such-item")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

func TestInStock(t *testing.T) {
	t.Parallel()

	available := Product{Stock: 3, IsActive: true}
	assert.True(t, available.InStock(3))
	assert.False(t, available.InStock(4))
	assert.False(t, available.InStock(0))

	inactive := Product{Stock: 3, IsActive: false}
	assert.False(t, inactive.InStock(1))
}
