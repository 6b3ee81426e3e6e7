package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storekit/storefront/internal/backend"
	"github.com/storekit/storefront/internal/cart"
	"github.com/storekit/storefront/internal/checkout"
	"github.com/storekit/storefront/internal/domain"
)

type cartServiceMock struct {
	cart *domain.Cart
	err  error

	lastQuantity  int
	appliedCoupon string
	cleared       bool
}

func (m *cartServiceMock) GetCart(ctx context.Context, tenantDomain, userID string) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) AddToCart(ctx context.Context, tenantDomain, userID string, product *domain.Product, sel cart.Selection) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) UpdateQuantity(ctx context.Context, tenantDomain, userID, cartItemID string, quantity int) (*domain.Cart, error) {
	m.lastQuantity = quantity
	return m.cart, m.err
}

func (m *cartServiceMock) RemoveItem(ctx context.Context, tenantDomain, userID, cartItemID string) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) ClearCart(ctx context.Context, tenantDomain, userID string) error {
	m.cleared = true
	return m.err
}

func (m *cartServiceMock) SetAppliedCoupon(ctx context.Context, tenantDomain, userID, code string) error {
	m.appliedCoupon = code
	return nil
}

type companyProviderMock struct {
	company *domain.CompanyDetails
	err     error
}

func (m *companyProviderMock) Company(ctx context.Context, tenantDomain string) (*domain.CompanyDetails, error) {
	return m.company, m.err
}

type productProviderMock struct {
	product *domain.Product
	err     error
}

func (m *productProviderMock) GetProduct(ctx context.Context, tenantDomain, productID string) (*domain.Product, error) {
	return m.product, m.err
}

type validatorMock struct {
	result *checkout.ValidationResult
	err    error
}

func (m *validatorMock) Validate(ctx context.Context, c *domain.Cart, contact domain.Contact) (*checkout.ValidationResult, error) {
	return m.result, m.err
}

type flowMock struct {
	initResult   *checkout.InitResult
	verifyResult *checkout.VerifyResult
	err          error

	gotAddress *domain.Address
	gotIdemKey string
}

func (m *flowMock) Initiate(ctx context.Context, company *domain.CompanyDetails, c *domain.Cart, address *domain.Address, contact domain.Contact, idempotencyKey string) (*checkout.InitResult, error) {
	m.gotAddress = address
	m.gotIdemKey = idempotencyKey
	if m.err != nil {
		return nil, m.err
	}
	if address == nil {
		return nil, checkout.ErrNoAddress
	}
	return m.initResult, nil
}

func (m *flowMock) Verify(ctx context.Context, sessionID string, req *backend.PaymentVerifyRequest) (*checkout.VerifyResult, error) {
	return m.verifyResult, m.err
}

type addressBookMock struct {
	addrs   []domain.Address
	err     error
	created *domain.Address
	updated *domain.Address
}

func (m *addressBookMock) ListAddresses(ctx context.Context, customerID string) ([]domain.Address, error) {
	return m.addrs, m.err
}

func (m *addressBookMock) CreateAddress(ctx context.Context, customerID string, addr *domain.Address) error {
	m.created = addr
	return m.err
}

func (m *addressBookMock) UpdateAddress(ctx context.Context, customerID string, addr *domain.Address) error {
	m.updated = addr
	return m.err
}

// withIdentity stamps tenant and customer onto the request the way the
// middleware does in production.
func withIdentity(r *http.Request, tenantDomain, customerID string) *http.Request {
	ctx := context.WithValue(r.Context(), tenantDomainKey, tenantDomain)
	if customerID != "" {
		ctx = context.WithValue(ctx, customerIDKey, customerID)
	}
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
