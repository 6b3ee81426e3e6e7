package checkout

import (
	"context"
	"sync"

	"github.com/storekit/storefront/internal/backend"
	"github.com/storekit/storefront/internal/domain"
	"github.com/storekit/storefront/internal/events"
	"github.com/storekit/storefront/internal/repository"
)

type mockBackend struct {
	m sync.Mutex

	validateResp *backend.ValidationResponse
	validateErr  error
	validateReqs []*backend.ValidationRequest

	initResp *backend.PaymentInitResponse
	initErr  error
	initReqs []*backend.PaymentInitRequest

	verifyResp *backend.PaymentVerifyResponse
	verifyErr  error
}

func (b *mockBackend) ValidateCart(_ context.Context, req *backend.ValidationRequest) (*backend.ValidationResponse, error) {
	b.m.Lock()
	defer b.m.Unlock()
	b.validateReqs = append(b.validateReqs, req)
	if b.validateErr != nil {
		return nil, b.validateErr
	}
	return b.validateResp, nil
}

func (b *mockBackend) InitiatePayment(_ context.Context, req *backend.PaymentInitRequest) (*backend.PaymentInitResponse, error) {
	b.m.Lock()
	defer b.m.Unlock()
	b.initReqs = append(b.initReqs, req)
	if b.initErr != nil {
		return nil, b.initErr
	}
	return b.initResp, nil
}

func (b *mockBackend) VerifyPayment(_ context.Context, _ *backend.PaymentVerifyRequest) (*backend.PaymentVerifyResponse, error) {
	b.m.Lock()
	defer b.m.Unlock()
	if b.verifyErr != nil {
		return nil, b.verifyErr
	}
	return b.verifyResp, nil
}

type mockProducts struct {
	products map[string]*domain.Product
	err      error
	calls    int
}

func (p *mockProducts) GetProduct(_ context.Context, _ string, productID string) (*domain.Product, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.products[productID], nil
}

type mockCarts struct {
	m        sync.Mutex
	replaced []domain.CartLineItem
	cleared  bool
	err      error
}

func (c *mockCarts) ReplaceItems(_ context.Context, tenantDomain, userID string, items []domain.CartLineItem) (*domain.Cart, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	c.replaced = items
	return &domain.Cart{Domain: tenantDomain, UserID: userID, Items: items}, nil
}

func (c *mockCarts) ClearCart(_ context.Context, _, _ string) error {
	c.m.Lock()
	defer c.m.Unlock()
	if c.err != nil {
		return c.err
	}
	c.cleared = true
	return nil
}

type mockSessions struct {
	m        sync.Mutex
	sessions map[string]*domain.PaymentSession
}

func newMockSessions() *mockSessions {
	return &mockSessions{sessions: make(map[string]*domain.PaymentSession)}
}

func (s *mockSessions) InsertSession(_ context.Context, session *domain.PaymentSession) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *mockSessions) GetSession(_ context.Context, id string) (*domain.PaymentSession, error) {
	s.m.Lock()
	defer s.m.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return session, nil
}

func (s *mockSessions) GetSessionByIdempotencyKey(_ context.Context, key string) (*domain.PaymentSession, error) {
	s.m.Lock()
	defer s.m.Unlock()
	for _, session := range s.sessions {
		if session.IdempotencyKey == key {
			return session, nil
		}
	}
	return nil, repository.ErrIdempotencyKeyNotFound
}

func (s *mockSessions) UpdateSessionStatus(_ context.Context, id string, status domain.PaymentStatus, gatewayPaymentID string) error {
	s.m.Lock()
	defer s.m.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return repository.ErrSessionNotFound
	}
	session.Status = status
	if gatewayPaymentID != "" {
		session.GatewayPaymentID = gatewayPaymentID
	}
	return nil
}

type mockPublisher struct {
	m      sync.Mutex
	events []*events.OrderConfirmed
	err    error
}

func (p *mockPublisher) OrderConfirmed(_ context.Context, ev *events.OrderConfirmed) error {
	p.m.Lock()
	defer p.m.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}
