package cache

import (
	"context"
	"time"

	"ba9alino/backend/internal/domain"
)

// ProductSnapshot bundles a product with its variants, the unit the
// terminal needs to price and add a line.
type ProductSnapshot struct {
	Product  domain.Product          `json:"product"`
	Variants []domain.ProductVariant `json:"variants"`
}

type ProductCache interface {
	Get(ctx context.Context, key string) (*ProductSnapshot, bool, error)
	Set(ctx context.Context, key string, value *ProductSnapshot, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

type NoopProductCache struct{}

func (NoopProductCache) Get(_ context.Context, _ string) (*ProductSnapshot, bool, error) {
	return nil, false, nil
}

func (NoopProductCache) Set(_ context.Context, _ string, _ *ProductSnapshot, _ time.Duration) error {
	return nil
}

func (NoopProductCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
