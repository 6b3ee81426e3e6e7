package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/storekit/storefront/internal/backend"
	"github.com/storekit/storefront/internal/domain"
)

// CartValidator is the backend call the validator drives.
type CartValidator interface {
	ValidateCart(ctx context.Context, req *backend.ValidationRequest) (*backend.ValidationResponse, error)
}

// CartMutator applies validation corrections atomically.
type CartMutator interface {
	ReplaceItems(ctx context.Context, tenantDomain, userID string, items []domain.CartLineItem) (*domain.Cart, error)
}

// ChangeNote is one human-readable correction from checkout validation.
type ChangeNote struct {
	CartItemID string `json:"cart_item_id"`
	Message    string `json:"message"`
}

// ValidationResult carries the reconciled cart. When RequiresAck is set the
// caller must surface Changes and block address selection until the user
// acknowledges.
type ValidationResult struct {
	Cart        *domain.Cart `json:"cart"`
	Changes     []ChangeNote `json:"changes,omitempty"`
	RequiresAck bool         `json:"requires_ack"`
}

// Validator reconciles cached line-item prices and availability against a
// fresh server snapshot immediately before the address/payment steps.
type Validator struct {
	backend  CartValidator
	products ProductGetter
	carts    CartMutator
}

func NewValidator(b CartValidator, products ProductGetter, carts CartMutator) *Validator {
	return &Validator{backend: b, products: products, carts: carts}
}

// Validate performs the one-shot reconciliation. The response is matched
// positionally against the submitted lines; a count mismatch aborts the
// whole attempt rather than guessing which line a snapshot belongs to.
// Corrections are applied in a single cart write or not at all.
func (v *Validator) Validate(ctx context.Context, cart *domain.Cart, contact domain.Contact) (*ValidationResult, error) {
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]backend.ValidationItem, len(cart.Items))
	for i := range cart.Items {
		pricingID, err := pricingIDForLine(ctx, v.products, cart.Domain, &cart.Items[i])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve pricing option for %s: %w", cart.Items[i].ProductID, err)
		}
		items[i] = backend.ValidationItem{
			ProductID:       cart.Items[i].ProductID,
			PricingID:       pricingID,
			ProductAddonIDs: joinAddonIDs(cart.Items[i].SelectedAddons),
		}
	}

	resp, err := v.backend.ValidateCart(ctx, &backend.ValidationRequest{
		CustomerName: contact.Name,
		PhoneNumber:  contact.Phone,
		DomainName:   cart.Domain,
		Items:        items,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.ProductDetails) != len(cart.Items) {
		return nil, fmt.Errorf("validation response has %d entries for %d items", len(resp.ProductDetails), len(cart.Items))
	}

	var changes []ChangeNote
	corrected := make([]domain.CartLineItem, 0, len(cart.Items))
	for i, snap := range resp.ProductDetails {
		line := cart.Items[i]

		if snap.ProductStatus != string(domain.StatusActive) {
			changes = append(changes, ChangeNote{
				CartItemID: line.CartItemID,
				Message:    fmt.Sprintf("%s is no longer available and was removed from your cart", line.Name),
			})
			continue
		}

		if snap.ProductPrice != line.UnitPrice {
			changes = append(changes, ChangeNote{
				CartItemID: line.CartItemID,
				Message:    fmt.Sprintf("price of %s changed from %.2f to %.2f", line.Name, line.UnitPrice, snap.ProductPrice),
			})
			line.UnitPrice = snap.ProductPrice
		}

		serverAddons := parseAddonPrices(snap.AddonAndAddonPrice)
		for j := range line.SelectedAddons {
			a := &line.SelectedAddons[j]
			price, ok := serverAddons[a.ID]
			if !ok || price == a.Price {
				continue
			}
			changes = append(changes, ChangeNote{
				CartItemID: line.CartItemID,
				Message:    fmt.Sprintf("price of %s (%s) changed from %.2f to %.2f", a.Name, line.Name, a.Price, price),
			})
			a.Price = price
		}

		corrected = append(corrected, line)
	}

	if len(changes) == 0 {
		return &ValidationResult{Cart: cart}, nil
	}

	updated, err := v.carts.ReplaceItems(ctx, cart.Domain, cart.UserID, corrected)
	if err != nil {
		return nil, fmt.Errorf("failed to apply validation corrections: %w", err)
	}

	return &ValidationResult{Cart: updated, Changes: changes, RequiresAck: true}, nil
}

// parseAddonPrices decodes the backend's "addonId:price" pairs; malformed
// entries are skipped.
func parseAddonPrices(pairs []string) map[string]float64 {
	prices := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		id, raw, ok := strings.Cut(pair, ":")
		if !ok || id == "" {
			continue
		}
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		prices[id] = price
	}
	return prices
}
