package cache

import (
	"context"
	"errors"

	"github.com/storekit/storefront/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, tenantDomain, userID string) (*domain.Cart, error)
	Set(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, tenantDomain, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
