package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/storekit/storefront/internal/backend"
	"github.com/storekit/storefront/internal/coupon"
	"github.com/storekit/storefront/internal/domain"
	"github.com/storekit/storefront/internal/events"
	"github.com/storekit/storefront/internal/keylock"
	"github.com/storekit/storefront/internal/repository"
)

// PaymentBackend covers the two gateway round-trips.
type PaymentBackend interface {
	InitiatePayment(ctx context.Context, req *backend.PaymentInitRequest) (*backend.PaymentInitResponse, error)
	VerifyPayment(ctx context.Context, req *backend.PaymentVerifyRequest) (*backend.PaymentVerifyResponse, error)
}

// CartClearer clears the cart after a confirmed order. Nothing else in the
// payment flow may touch cart contents.
type CartClearer interface {
	ClearCart(ctx context.Context, tenantDomain, userID string) error
}

// InitResult is what the UI needs to open the gateway's client widget.
type InitResult struct {
	SessionID      string         `json:"session_id"`
	GatewayOrderID string         `json:"gateway_order_id"`
	GatewayKeyID   string         `json:"gateway_key_id"`
	AmountInPaise  int64          `json:"amount_in_paise"`
	Currency       string         `json:"currency"`
	Subtotal       float64        `json:"subtotal"`
	ShippingCost   float64        `json:"shipping_cost"`
	Discount       float64        `json:"discount"`
	CouponCode     string         `json:"coupon_code,omitempty"`
	Total          float64        `json:"total"`
	Contact        domain.Contact `json:"contact"`
}

// VerifyResult confirms a completed order.
type VerifyResult struct {
	OrderID string `json:"order_id"`
	Message string `json:"message,omitempty"`
}

// Flow drives a payment session from initialization through verification.
// Initiation runs behind a per-user lock: the idempotency guard is a
// find-existing-or-insert sequence that must never interleave, or two
// submissions of the same key would both initialize the gateway.
type Flow struct {
	backend  PaymentBackend
	products ProductGetter
	carts    CartClearer
	sessions repository.PaymentSessionRepository
	events   events.Publisher
	locks    *keylock.KeyLock
}

func NewFlow(b PaymentBackend, products ProductGetter, carts CartClearer, sessions repository.PaymentSessionRepository, publisher events.Publisher) *Flow {
	return &Flow{
		backend:  b,
		products: products,
		carts:    carts,
		sessions: sessions,
		events:   publisher,
		locks:    keylock.New(),
	}
}

// ShippingCost is zero once the subtotal crosses the tenant's free-delivery
// threshold (when one is configured); otherwise the tenant's delivery cost,
// or the default when unset.
func ShippingCost(company *domain.CompanyDetails, subtotal float64) float64 {
	if company.FreeDeliveryThreshold > 0 && subtotal >= company.FreeDeliveryThreshold {
		return 0
	}
	if company.DeliveryCost > 0 {
		return company.DeliveryCost
	}
	return domain.DefaultDeliveryCost
}

// PayableTotal never goes negative, whatever the discount.
func PayableTotal(subtotal, shipping, discount float64) float64 {
	return math.Max(0, subtotal+shipping-discount)
}

// Initiate checks preconditions, computes the cost breakdown, submits the
// payment-initialization request and records the session. A repeated
// idempotency key returns the already-created session instead of initializing
// the gateway twice.
func (f *Flow) Initiate(ctx context.Context, company *domain.CompanyDetails, cart *domain.Cart, address *domain.Address, contact domain.Contact, idempotencyKey string) (*InitResult, error) {
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if address == nil {
		return nil, ErrNoAddress
	}
	if contact.Name == "" || contact.Phone == "" || contact.Email == "" {
		return nil, ErrMissingContact
	}

	key := cart.Domain + ":" + cart.UserID
	f.locks.Lock(key)
	defer f.locks.Unlock(key)

	if idempotencyKey != "" {
		existing, err := f.sessions.GetSessionByIdempotencyKey(ctx, idempotencyKey)
		if err != nil && !errors.Is(err, repository.ErrIdempotencyKeyNotFound) {
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
		if existing != nil {
			log.Printf("duplicate payment init for idempotency_key=%s, returning session %s (%s)", idempotencyKey, existing.ID, existing.Status)
			return resultFromSession(existing, contact), nil
		}
	}

	subtotal := cart.Subtotal()
	best := coupon.Best(subtotal, company.Coupons)
	discount := coupon.Discount(subtotal, best)
	shipping := ShippingCost(company, subtotal)
	total := PayableTotal(subtotal, shipping, discount)

	items := make([]backend.PaymentItem, len(cart.Items))
	for i := range cart.Items {
		pricingID, err := pricingIDForLine(ctx, f.products, cart.Domain, &cart.Items[i])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve pricing option for %s: %w", cart.Items[i].ProductID, err)
		}
		items[i] = backend.PaymentItem{
			ProductID:       cart.Items[i].ProductID,
			PricingID:       pricingID,
			ProductAddonIDs: joinAddonIDs(cart.Items[i].SelectedAddons),
			Quantity:        cart.Items[i].Quantity,
		}
	}

	req := &backend.PaymentInitRequest{
		DomainName:        cart.Domain,
		CustomerID:        cart.UserID,
		CustomerName:      contact.Name,
		PhoneNumber:       contact.Phone,
		Email:             contact.Email,
		Address:           addressPayload(address),
		Subtotal:          subtotal,
		ShippingCost:      shipping,
		Discount:          discount,
		TotalAmount:       total,
		Items:             items,
		RazorpayKeyID:     company.RazorpayKeyID,
		RazorpayKeySecret: company.RazorpayKeySecret,
	}
	if best != nil {
		req.CouponCode = best.Code
	}

	resp, err := f.backend.InitiatePayment(ctx, req)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot cart: %w", err)
	}

	session := &domain.PaymentSession{
		ID:             uuid.NewString(),
		UserID:         cart.UserID,
		Domain:         cart.Domain,
		IdempotencyKey: idempotencyKey,
		Status:         domain.PaymentStatusPending,
		Amount:         total,
		Subtotal:       subtotal,
		ShippingCost:   shipping,
		Discount:       discount,
		CouponCode:     req.CouponCode,
		Currency:       resp.Currency,
		GatewayOrderID: resp.RazorpayOrderID,
		GatewayKeyID:   resp.RazorpayKeyID,
		CartSnapshot:   snapshot,
	}
	if err := f.sessions.InsertSession(ctx, session); err != nil {
		return nil, err
	}

	return &InitResult{
		SessionID:      session.ID,
		GatewayOrderID: resp.RazorpayOrderID,
		GatewayKeyID:   resp.RazorpayKeyID,
		AmountInPaise:  resp.AmountInPaise,
		Currency:       resp.Currency,
		Subtotal:       subtotal,
		ShippingCost:   shipping,
		Discount:       discount,
		CouponCode:     req.CouponCode,
		Total:          total,
		Contact:        contact,
	}, nil
}

// Verify submits the gateway's completion callback for verification. Only a
// verified success clears the cart and publishes the order event; every
// other outcome leaves the cart exactly as it was.
func (f *Flow) Verify(ctx context.Context, sessionID string, req *backend.PaymentVerifyRequest) (*VerifyResult, error) {
	session, err := f.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp, err := f.backend.VerifyPayment(ctx, req)
	if err != nil {
		// transport failure: session and cart untouched, caller retries
		return nil, err
	}

	if resp.Status != "success" {
		if domain.CanTransitionTo(session.Status, domain.PaymentStatusFailed) {
			if errUpd := f.sessions.UpdateSessionStatus(ctx, session.ID, domain.PaymentStatusFailed, req.PaymentID); errUpd != nil {
				log.Printf("failed to mark session %s failed: %v", session.ID, errUpd)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrVerificationFailed, resp.Message)
	}

	if !domain.CanTransitionTo(session.Status, domain.PaymentStatusCompleted) {
		return nil, ErrIllegalTransition
	}
	if err := f.sessions.UpdateSessionStatus(ctx, session.ID, domain.PaymentStatusCompleted, req.PaymentID); err != nil {
		return nil, err
	}

	if err := f.carts.ClearCart(ctx, session.Domain, session.UserID); err != nil {
		// The order is confirmed either way; an uncleared cart self-heals on
		// the next mutation.
		log.Printf("failed to clear cart for %s/%s after order %s: %v", session.Domain, session.UserID, resp.OrderID, err)
	}

	f.publishOrderConfirmed(ctx, session, resp.OrderID)

	return &VerifyResult{OrderID: resp.OrderID, Message: resp.Message}, nil
}

func (f *Flow) publishOrderConfirmed(ctx context.Context, session *domain.PaymentSession, orderID string) {
	var cart domain.Cart
	if err := json.Unmarshal(session.CartSnapshot, &cart); err != nil {
		log.Printf("failed to unmarshal cart snapshot for session %s: %v", session.ID, err)
		return
	}

	ev := &events.OrderConfirmed{
		SessionID:   session.ID,
		UserID:      session.UserID,
		Domain:      session.Domain,
		OrderID:     orderID,
		TotalAmount: session.Amount,
		Currency:    session.Currency,
		ConfirmedAt: time.Now(),
	}
	for _, li := range cart.Items {
		ev.Items = append(ev.Items, events.OrderItem{
			ProductID: li.ProductID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
		})
	}

	if err := f.events.OrderConfirmed(ctx, ev); err != nil {
		log.Printf("failed to publish order event for session %s: %v", session.ID, err)
	}
}

// resultFromSession rebuilds the original initiation response from the
// persisted session, so an idempotent replay answers exactly like the first
// attempt.
func resultFromSession(s *domain.PaymentSession, contact domain.Contact) *InitResult {
	return &InitResult{
		SessionID:      s.ID,
		GatewayOrderID: s.GatewayOrderID,
		GatewayKeyID:   s.GatewayKeyID,
		AmountInPaise:  int64(math.Round(s.Amount * 100)),
		Currency:       s.Currency,
		Subtotal:       s.Subtotal,
		ShippingCost:   s.ShippingCost,
		Discount:       s.Discount,
		CouponCode:     s.CouponCode,
		Total:          s.Amount,
		Contact:        contact,
	}
}

func addressPayload(a *domain.Address) backend.AddressDTO {
	return backend.AddressDTO{
		ID:         a.ID,
		Label:      a.Label,
		DoorNumber: a.DoorNumber,
		Road:       a.Road,
		City:       a.City,
		State:      a.State,
		Pincode:    a.Pincode,
		Country:    a.Country,
	}
}
