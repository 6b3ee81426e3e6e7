package repository

import (
	"context"
	"errors"

	"github.com/storekit/storefront/internal/domain"
)

var (
	ErrCartNotFound           = errors.New("cart not found")
	ErrSessionNotFound        = errors.New("payment session not found")
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
)

// CartRepository defines the interface for session-cart persistence.
// Consumers define this interface, not the MongoDB implementation.
// Line-identity merging is read-modify-write in the cart service, so the
// repository only needs whole-cart operations.
type CartRepository interface {
	GetCart(ctx context.Context, tenantDomain, userID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, tenantDomain, userID string) error
}

// Indexer is implemented by repositories that manage their own MongoDB
// indexes, called once at startup.
type Indexer interface {
	CreateIndexes(ctx context.Context) error
}

// PaymentSessionRepository stores gateway transactions for the duration of
// the init/verify handshake, keyed for idempotent initialization.
type PaymentSessionRepository interface {
	InsertSession(ctx context.Context, session *domain.PaymentSession) error
	GetSession(ctx context.Context, id string) (*domain.PaymentSession, error)
	GetSessionByIdempotencyKey(ctx context.Context, key string) (*domain.PaymentSession, error)
	UpdateSessionStatus(ctx context.Context, id string, status domain.PaymentStatus, gatewayPaymentID string) error
}
