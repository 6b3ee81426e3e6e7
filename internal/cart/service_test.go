package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/storekit/storefront/internal/cache"
	"github.com/storekit/storefront/internal/domain"
	"github.com/storekit/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	m     sync.RWMutex
	carts map[string]*domain.Cart
	err   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{carts: make(map[string]*domain.Cart)}
}

func (m *mockRepository) key(tenantDomain, userID string) string {
	return tenantDomain + ":" + userID
}

func (m *mockRepository) GetCart(_ context.Context, tenantDomain, userID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[m.key(tenantDomain, userID)]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	clone := *c
	clone.Items = append([]domain.CartLineItem(nil), c.Items...)
	return &clone, nil
}

func (m *mockRepository) UpsertCart(_ context.Context, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	clone := *c
	clone.Items = append([]domain.CartLineItem(nil), c.Items...)
	m.carts[m.key(c.Domain, c.UserID)] = &clone
	return nil
}

func (m *mockRepository) DeleteCart(_ context.Context, tenantDomain, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.carts[m.key(tenantDomain, userID)]; !ok {
		return repository.ErrCartNotFound
	}
	delete(m.carts, m.key(tenantDomain, userID))
	return nil
}

type mockCache struct {
	m     sync.RWMutex
	carts map[string]*domain.Cart
}

func newMockCache() *mockCache {
	return &mockCache{carts: make(map[string]*domain.Cart)}
}

func (m *mockCache) Get(_ context.Context, tenantDomain, userID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	c, ok := m.carts[tenantDomain+":"+userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return c, nil
}

func (m *mockCache) Set(_ context.Context, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[c.Domain+":"+c.UserID] = c
	return nil
}

func (m *mockCache) Delete(_ context.Context, tenantDomain, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, tenantDomain+":"+userID)
	return nil
}

func newTestService() *Service {
	return NewService(newMockRepository(), newMockCache())
}

func catalogProduct() *domain.Product {
	return &domain.Product{
		ID:     "p1",
		Name:   "Filter Coffee Powder",
		Price:  500,
		Status: domain.StatusActive,
		PricingOptions: []domain.PricingOption{
			{ID: "opt-500", QuantityLabel: "500g", Price: 500, Status: domain.StatusActive,
				SizeColours: []domain.SizeColour{
					{ID: "sc-red", Name: "Red", Price: 30, Status: domain.StatusActive},
					{ID: "sc-blue", Name: "Blue", Price: 0, Status: domain.StatusActive},
				}},
			{ID: "opt-1000", QuantityLabel: "1kg", Price: 950, Status: domain.StatusActive},
		},
		Addons: []domain.Addon{
			{ID: "ad-1", Name: "Gift Wrap", Price: 40},
		},
	}
}

const (
	testDomain = "acme.example"
	testUser   = "cust-1"
)

func TestAddToCart_IdenticalSelectionMergesIntoOneLine(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p := catalogProduct()
	sel := Selection{
		Variants:        map[string]string{"Quantity": "500g"},
		PricingOptionID: "opt-500",
	}

	_, err := svc.AddToCart(ctx, testDomain, testUser, p, sel)
	require.NoError(t, err)
	c, err := svc.AddToCart(ctx, testDomain, testUser, p, sel)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 2, c.ItemsCount())
}

func TestAddToCart_PriceSnapshotKeptOnMerge(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p := catalogProduct()
	sel := Selection{PricingOptionID: "opt-500"}

	_, err := svc.AddToCart(ctx, testDomain, testUser, p, sel)
	require.NoError(t, err)

	// the catalog price moves, but the line keeps its add-time snapshot
	p.PricingOptions[0].Price = 600
	c, err := svc.AddToCart(ctx, testDomain, testUser, p, sel)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 500.0, c.Items[0].UnitPrice)
}

func TestAddToCart_DistinctSelectionsAreIsolated(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p := catalogProduct()

	_, err := svc.AddToCart(ctx, testDomain, testUser, p, Selection{PricingOptionID: "opt-500", SizeColourID: "sc-red"})
	require.NoError(t, err)
	c, err := svc.AddToCart(ctx, testDomain, testUser, p, Selection{PricingOptionID: "opt-500", SizeColourID: "sc-blue"})
	require.NoError(t, err)
	require.Len(t, c.Items, 2)

	// removing one line must not touch the other
	c, err = svc.RemoveItem(ctx, testDomain, testUser, c.Items[0].CartItemID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "sc-blue", c.Items[0].ProductSizeColourID)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestAddToCart_OutOfStockRejected(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p := catalogProduct()
	p.PricingOptions[0].Status = domain.StatusOutOfStock

	_, err := svc.AddToCart(ctx, testDomain, testUser, p, Selection{PricingOptionID: "opt-500"})
	assert.ErrorIs(t, err, ErrOutOfStock)

	c, err := svc.GetCart(ctx, testDomain, testUser)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestAddToCart_MarksLastAdded(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	c, err := svc.AddToCart(ctx, testDomain, testUser, catalogProduct(), Selection{PricingOptionID: "opt-1000"})
	require.NoError(t, err)
	assert.Equal(t, c.Items[0].CartItemID, c.LastAddedID)
}

func TestAddToCart_AddonPricesSnapshotted(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	c, err := svc.AddToCart(ctx, testDomain, testUser, catalogProduct(), Selection{
		PricingOptionID: "opt-500",
		AddonIDs:        []string{"ad-1", "ad-unknown"},
	})
	require.NoError(t, err)

	require.Len(t, c.Items[0].SelectedAddons, 1)
	assert.Equal(t, 40.0, c.Items[0].SelectedAddons[0].Price)
	// (500 + 40) x 1
	assert.Equal(t, 540.0, c.Subtotal())
}

func TestUpdateQuantity_FloorsAtOne(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	c, err := svc.AddToCart(ctx, testDomain, testUser, catalogProduct(), Selection{PricingOptionID: "opt-500"})
	require.NoError(t, err)
	id := c.Items[0].CartItemID

	for _, q := range []int{0, -3} {
		c, err = svc.UpdateQuantity(ctx, testDomain, testUser, id, q)
		require.NoError(t, err)
		require.Len(t, c.Items, 1)
		assert.Equal(t, 1, c.Items[0].Quantity)
	}

	c, err = svc.UpdateQuantity(ctx, testDomain, testUser, id, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Items[0].Quantity)
}

func TestUpdateQuantity_UnknownItem(t *testing.T) {
	svc := newTestService()

	_, err := svc.UpdateQuantity(context.Background(), testDomain, testUser, "nope", 2)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestClearCart(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, testDomain, testUser, catalogProduct(), Selection{PricingOptionID: "opt-500"})
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, testDomain, testUser))

	c, err := svc.GetCart(ctx, testDomain, testUser)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	// clearing an already-empty cart is fine
	require.NoError(t, svc.ClearCart(ctx, testDomain, testUser))
}

func TestReplaceItems_Atomic(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	c, err := svc.AddToCart(ctx, testDomain, testUser, catalogProduct(), Selection{PricingOptionID: "opt-500"})
	require.NoError(t, err)

	corrected := append([]domain.CartLineItem(nil), c.Items...)
	corrected[0].UnitPrice = 520

	c, err = svc.ReplaceItems(ctx, testDomain, testUser, corrected)
	require.NoError(t, err)
	assert.Equal(t, 520.0, c.Items[0].UnitPrice)

	c, err = svc.GetCart(ctx, testDomain, testUser)
	require.NoError(t, err)
	assert.Equal(t, 520.0, c.Items[0].UnitPrice)
}

func TestGetCart_EmptyForUnknownUser(t *testing.T) {
	svc := newTestService()

	c, err := svc.GetCart(context.Background(), testDomain, "new-user")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, 0, c.ItemsCount())
	assert.Equal(t, 0.0, c.Subtotal())
}

func TestCartTotals(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p := catalogProduct()

	c, err := svc.AddToCart(ctx, testDomain, testUser, p, Selection{PricingOptionID: "opt-500", AddonIDs: []string{"ad-1"}})
	require.NoError(t, err)
	c, err = svc.UpdateQuantity(ctx, testDomain, testUser, c.Items[0].CartItemID, 2)
	require.NoError(t, err)
	c, err = svc.AddToCart(ctx, testDomain, testUser, p, Selection{PricingOptionID: "opt-1000"})
	require.NoError(t, err)

	// (500+40)x2 + 950x1
	assert.Equal(t, 2030.0, c.Subtotal())
	assert.Equal(t, 3, c.ItemsCount())
}
