package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/storekit/storefront/internal/backend"
	"github.com/storekit/storefront/internal/checkout"
	"github.com/storekit/storefront/internal/domain"
)

// CheckoutValidator runs the pre-payment cart reconciliation.
type CheckoutValidator interface {
	Validate(ctx context.Context, cart *domain.Cart, contact domain.Contact) (*checkout.ValidationResult, error)
}

// PaymentFlow drives payment sessions.
type PaymentFlow interface {
	Initiate(ctx context.Context, company *domain.CompanyDetails, cart *domain.Cart, address *domain.Address, contact domain.Contact, idempotencyKey string) (*checkout.InitResult, error)
	Verify(ctx context.Context, sessionID string, req *backend.PaymentVerifyRequest) (*checkout.VerifyResult, error)
}

// AddressClient is the backend's address book.
type AddressClient interface {
	ListAddresses(ctx context.Context, customerID string) ([]domain.Address, error)
}

type CheckoutHandler struct {
	carts     CartService
	tenants   CompanyProvider
	validator CheckoutValidator
	flow      PaymentFlow
	addresses AddressClient
}

func NewCheckoutHandler(carts CartService, tenants CompanyProvider, validator CheckoutValidator, flow PaymentFlow, addresses AddressClient) *CheckoutHandler {
	return &CheckoutHandler{
		carts:     carts,
		tenants:   tenants,
		validator: validator,
		flow:      flow,
		addresses: addresses,
	}
}

type validateRequest struct {
	Contact domain.Contact `json:"contact"`
}

type initiatePaymentRequest struct {
	AddressID      string         `json:"address_id"`
	Contact        domain.Contact `json:"contact"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
}

type verifyPaymentRequest struct {
	SessionID         string `json:"session_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// Validate reconciles the cart against the live catalogue. A response with
// requires_ack set means corrections were applied and the client must show
// them before letting the customer continue to address selection.
func (h *CheckoutHandler) Validate(w http.ResponseWriter, r *http.Request) {
	customer, ok := requireCustomer(w, r)
	if !ok {
		return
	}
	tenant := tenantFromContext(r.Context())

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	c, err := h.carts.GetCart(r.Context(), tenant, customer)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result, err := h.validator.Validate(r.Context(), c, req.Contact)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *CheckoutHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	customer, ok := requireCustomer(w, r)
	if !ok {
		return
	}
	tenant := tenantFromContext(r.Context())

	var req initiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	company, err := h.tenants.Company(r.Context(), tenant)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	c, err := h.carts.GetCart(r.Context(), tenant, customer)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	address, err := h.resolveAddress(r.Context(), customer, req.AddressID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result, err := h.flow.Initiate(r.Context(), company, c, address, req.Contact, req.IdempotencyKey)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (h *CheckoutHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCustomer(w, r); !ok {
		return
	}

	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.SessionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_body", "session_id is required")
		return
	}

	result, err := h.flow.Verify(r.Context(), req.SessionID, &backend.PaymentVerifyRequest{
		OrderID:   req.RazorpayOrderID,
		PaymentID: req.RazorpayPaymentID,
		Signature: req.RazorpaySignature,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// resolveAddress looks the selected address up in the customer's address
// book. An empty or unknown id resolves to nil and the flow rejects it as
// a missing address.
func (h *CheckoutHandler) resolveAddress(ctx context.Context, customerID, addressID string) (*domain.Address, error) {
	if addressID == "" {
		return nil, nil
	}
	addrs, err := h.addresses.ListAddresses(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for i := range addrs {
		if addrs[i].ID == addressID {
			return &addrs[i], nil
		}
	}
	return nil, nil
}
