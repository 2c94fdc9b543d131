package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Set(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NoopCache is used when no Redis address is configured; every read misses.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*domain.Cart, error) {
	return nil, ErrCacheMiss
}

func (NoopCache) Set(context.Context, string, *domain.Cart) error { return nil }

func (NoopCache) Delete(context.Context, string) error { return nil }
