package checkout

import (
	"context"
	"log"
	"strings"

	"github.com/storekit/storefront/internal/domain"
)

// ProductGetter is the slice of the backend client the checkout steps need
// for resolving pricing-option ids.
type ProductGetter interface {
	GetProduct(ctx context.Context, tenantDomain, productID string) (*domain.Product, error)
}

// pricingIDForLine resolves the pricing-option id submitted for a line. The
// stored size id wins when present; otherwise the line's "Quantity" variant
// label is matched against the product's options, falling back to the first
// option. The fallback is a compatibility behavior of the backend contract,
// kept explicit and logged rather than silent.
func pricingIDForLine(ctx context.Context, products ProductGetter, tenantDomain string, line *domain.CartLineItem) (string, error) {
	if line.ProductSizeID != "" {
		return line.ProductSizeID, nil
	}

	p, err := products.GetProduct(ctx, tenantDomain, line.ProductID)
	if err != nil {
		return "", err
	}
	if len(p.PricingOptions) == 0 {
		return "", nil
	}

	label := line.SelectedVariants["Quantity"]
	if opt := p.OptionByLabel(label); opt != nil {
		return opt.ID, nil
	}

	log.Printf("no pricing option labeled %q on product %s, falling back to first option", label, line.ProductID)
	return p.PricingOptions[0].ID, nil
}

// joinAddonIDs serializes selected add-on ids with the backend's triple
// delimiter; empty string when there are none.
func joinAddonIDs(addons []domain.Addon) string {
	if len(addons) == 0 {
		return ""
	}
	ids := make([]string, len(addons))
	for i, a := range addons {
		ids[i] = a.ID
	}
	return strings.Join(ids, domain.FieldSep)
}
