package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storekit/storefront/internal/cart"
	"github.com/storekit/storefront/internal/checkout"
	"github.com/storekit/storefront/internal/coupon"
	"github.com/storekit/storefront/internal/domain"
)

// CartService is the slice of the cart engine the HTTP layer drives.
type CartService interface {
	GetCart(ctx context.Context, tenantDomain, userID string) (*domain.Cart, error)
	AddToCart(ctx context.Context, tenantDomain, userID string, product *domain.Product, sel cart.Selection) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, tenantDomain, userID, cartItemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, tenantDomain, userID, cartItemID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, tenantDomain, userID string) error
	SetAppliedCoupon(ctx context.Context, tenantDomain, userID, code string) error
}

// CompanyProvider serves cached tenant configuration.
type CompanyProvider interface {
	Company(ctx context.Context, tenantDomain string) (*domain.CompanyDetails, error)
}

// ProductProvider fetches product snapshots from the backend.
type ProductProvider interface {
	GetProduct(ctx context.Context, tenantDomain, productID string) (*domain.Product, error)
}

// CouponView is the currently applied coupon as rendered to the client.
type CouponView struct {
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discount_percent"`
	Discount        float64 `json:"discount"`
}

// CartView decorates the raw cart with the derived totals the client
// renders: subtotal, best coupon, shipping preview and payable total.
// CouponChanged is set only on the render where the applied coupon actually
// changed, never on the first render of a session.
type CartView struct {
	Cart          *domain.Cart `json:"cart"`
	Subtotal      float64      `json:"subtotal"`
	ItemsCount    int          `json:"items_count"`
	Coupon        *CouponView  `json:"coupon,omitempty"`
	CouponChanged bool         `json:"coupon_changed"`
	ShippingCost  float64      `json:"shipping_cost"`
	FreeDelivery  bool         `json:"free_delivery"`
	Total         float64      `json:"total"`
}

type CartHandler struct {
	carts    CartService
	tenants  CompanyProvider
	products ProductProvider
	coupons  *coupon.Registry
}

func NewCartHandler(carts CartService, tenants CompanyProvider, products ProductProvider, coupons *coupon.Registry) *CartHandler {
	return &CartHandler{
		carts:    carts,
		tenants:  tenants,
		products: products,
		coupons:  coupons,
	}
}

type addItemRequest struct {
	ProductID       string            `json:"product_id"`
	PricingOptionID string            `json:"pricing_option_id,omitempty"`
	SizeColourID    string            `json:"size_colour_id,omitempty"`
	Colour          string            `json:"colour,omitempty"`
	Variants        map[string]string `json:"variants,omitempty"`
	AddonIDs        []string          `json:"addon_ids,omitempty"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	customer, ok := requireCustomer(w, r)
	if !ok {
		return
	}
	tenant := tenantFromContext(r.Context())

	c, err := h.carts.GetCart(r.Context(), tenant, customer)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartView(r.Context(), tenant, customer, c))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	customer, ok := requireCustomer(w, r)
	if !ok {
		return
	}
	tenant := tenantFromContext(r.Context())

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_body", "product_id is required")
		return
	}

	product, err := h.products.GetProduct(r.Context(), tenant, req.ProductID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	c, err := h.carts.AddToCart(r.Context(), tenant, customer, product, cart.Selection{
		Variants:        req.Variants,
		AddonIDs:        req.AddonIDs,
		PricingOptionID: req.PricingOptionID,
		SizeColourID:    req.SizeColourID,
		ColourName:      req.Colour,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.cartView(r.Context(), tenant, customer, c))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	customer, ok := requireCustomer(w, r)
	if !ok {
		return
	}
	tenant := tenantFromContext(r.Context())
	itemID := chi.URLParam(r, "itemID")

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	c, err := h.carts.UpdateQuantity(r.Context(), tenant, customer, itemID, req.Quantity)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartView(r.Context(), tenant, customer, c))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	customer, ok := requireCustomer(w, r)
	if !ok {
		return
	}
	tenant := tenantFromContext(r.Context())
	itemID := chi.URLParam(r, "itemID")

	c, err := h.carts.RemoveItem(r.Context(), tenant, customer, itemID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartView(r.Context(), tenant, customer, c))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	customer, ok := requireCustomer(w, r)
	if !ok {
		return
	}
	tenant := tenantFromContext(r.Context())

	if err := h.carts.ClearCart(r.Context(), tenant, customer); err != nil {
		handleDomainError(w, err)
		return
	}
	h.coupons.Drop(tenant + ":" + customer)
	w.WriteHeader(http.StatusNoContent)
}

// cartView recomputes the derived totals for every render. Coupon
// eligibility is re-evaluated here, so quantity changes and removals move
// the applied coupon without any extra client work.
func (h *CartHandler) cartView(ctx context.Context, tenantDomain, userID string, c *domain.Cart) *CartView {
	view := &CartView{
		Cart:       c,
		Subtotal:   c.Subtotal(),
		ItemsCount: c.ItemsCount(),
	}

	company, err := h.tenants.Company(ctx, tenantDomain)
	if err != nil {
		// Serve the cart without derived pricing rather than failing the
		// whole request.
		log.Printf("failed to load company for %s: %v", tenantDomain, err)
		return view
	}

	best := coupon.Best(view.Subtotal, company.Coupons)
	code := ""
	var codePtr *string
	if best != nil {
		code = best.Code
		codePtr = &code
		view.Coupon = &CouponView{
			Code:            best.Code,
			DiscountPercent: best.DiscountPercent,
			Discount:        coupon.Discount(view.Subtotal, best),
		}
	}
	view.CouponChanged = h.coupons.For(tenantDomain + ":" + userID).Observe(codePtr)

	if c.AppliedCoupon != code {
		if err := h.carts.SetAppliedCoupon(ctx, tenantDomain, userID, code); err != nil {
			log.Printf("failed to persist coupon %q for %s/%s: %v", code, tenantDomain, userID, err)
		} else {
			c.AppliedCoupon = code
		}
	}

	discount := 0.0
	if view.Coupon != nil {
		discount = view.Coupon.Discount
	}
	if len(c.Items) > 0 {
		view.ShippingCost = checkout.ShippingCost(company, view.Subtotal)
		view.FreeDelivery = view.ShippingCost == 0
		view.Total = checkout.PayableTotal(view.Subtotal, view.ShippingCost, discount)
	}
	return view
}
