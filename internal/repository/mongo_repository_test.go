package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/storekit/storefront/internal/domain"
)

func setupTestDB(t *testing.T) (CartRepository, PaymentSessionRepository, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	// Start MongoDB container
	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	carts := NewMongoCartRepository(db)
	require.NoError(t, carts.(*mongoCartRepository).CreateIndexes(ctx))
	sessions := NewMongoPaymentRepository(db)
	require.NoError(t, sessions.(*mongoPaymentRepository).CreateIndexes(ctx))

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return carts, sessions, cleanup
}

func TestGetCart_NotFound(t *testing.T) {
	carts, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cart, err := carts.GetCart(ctx, "shop.example.com", "nonexistent")

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestUpsertCart_RoundTrip(t *testing.T) {
	carts, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cart := &domain.Cart{
		UserID: "user123",
		Domain: "shop.example.com",
		Items: []domain.CartLineItem{
			{CartItemID: "line-1", ProductID: "p1", Name: "Mug", UnitPrice: 600, Quantity: 2},
		},
		AppliedCoupon: "WELCOME",
		LastAddedID:   "line-1",
	}
	require.NoError(t, carts.UpsertCart(ctx, cart))

	got, err := carts.GetCart(ctx, "shop.example.com", "user123")
	require.NoError(t, err)
	assert.Equal(t, "user123", got.UserID)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, "line-1", got.Items[0].CartItemID)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, "WELCOME", got.AppliedCoupon)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestUpsertCart_SecondWriteReplaces(t *testing.T) {
	carts, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cart := &domain.Cart{
		UserID: "user123",
		Domain: "shop.example.com",
		Items:  []domain.CartLineItem{{CartItemID: "line-1", ProductID: "p1", Quantity: 1}},
	}
	require.NoError(t, carts.UpsertCart(ctx, cart))

	cart.Items[0].Quantity = 5
	require.NoError(t, carts.UpsertCart(ctx, cart))

	got, err := carts.GetCart(ctx, "shop.example.com", "user123")
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, 5, got.Items[0].Quantity)
}

func TestCartsAreTenantScoped(t *testing.T) {
	carts, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, carts.UpsertCart(ctx, &domain.Cart{
		UserID: "user123",
		Domain: "a.example.com",
		Items:  []domain.CartLineItem{{CartItemID: "line-1", ProductID: "p1", Quantity: 1}},
	}))

	_, err := carts.GetCart(ctx, "b.example.com", "user123")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestDeleteCart(t *testing.T) {
	carts, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, carts.UpsertCart(ctx, &domain.Cart{
		UserID: "user123",
		Domain: "shop.example.com",
		Items:  []domain.CartLineItem{{CartItemID: "line-1", ProductID: "p1", Quantity: 1}},
	}))

	require.NoError(t, carts.DeleteCart(ctx, "shop.example.com", "user123"))

	_, err := carts.GetCart(ctx, "shop.example.com", "user123")
	assert.ErrorIs(t, err, ErrCartNotFound)

	err = carts.DeleteCart(ctx, "shop.example.com", "user123")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestPaymentSession_RoundTrip(t *testing.T) {
	_, sessions, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	session := &domain.PaymentSession{
		ID:             "sess-1",
		UserID:         "user123",
		Domain:         "shop.example.com",
		IdempotencyKey: "idem-1",
		Status:         domain.PaymentStatusPending,
		Amount:         590,
		Currency:       "INR",
		GatewayOrderID: "order_abc",
	}
	require.NoError(t, sessions.InsertSession(ctx, session))

	got, err := sessions.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, got.Status)
	assert.Equal(t, 590.0, got.Amount)

	byKey, err := sessions.GetSessionByIdempotencyKey(ctx, "idem-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", byKey.ID)
}

func TestPaymentSession_UpdateStatus(t *testing.T) {
	_, sessions, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, sessions.InsertSession(ctx, &domain.PaymentSession{
		ID:     "sess-1",
		UserID: "user123",
		Domain: "shop.example.com",
		Status: domain.PaymentStatusPending,
	}))

	require.NoError(t, sessions.UpdateSessionStatus(ctx, "sess-1", domain.PaymentStatusCompleted, "pay_xyz"))

	got, err := sessions.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, got.Status)
	assert.Equal(t, "pay_xyz", got.GatewayPaymentID)
}

func TestPaymentSession_NotFound(t *testing.T) {
	_, sessions, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, err := sessions.GetSession(ctx, "ghost")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = sessions.GetSessionByIdempotencyKey(ctx, "ghost")
	assert.ErrorIs(t, err, ErrIdempotencyKeyNotFound)
}

func TestContextCancellation(t *testing.T) {
	carts, _, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()

	time.Sleep(10 * time.Millisecond) // Ensure context is cancelled

	_, err := carts.GetCart(ctx, "shop.example.com", "user123")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}
