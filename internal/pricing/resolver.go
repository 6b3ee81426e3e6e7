// Package pricing computes the price to show and the price to charge for
// one product under one selection state.
package pricing

import (
	"math"
	"strconv"

	"github.com/storekit/storefront/internal/domain"
)

// Selection identifies the currently chosen pricing option, size-colour and
// colour variant. Empty fields mean "not selected".
type Selection struct {
	PricingOptionID string
	SizeColourID    string
	ColourName      string
}

// Quote is the resolved price for one unit of a product under a selection.
type Quote struct {
	EffectiveUnitPrice float64
	OriginalUnitPrice  float64
	DiscountPercent    int
	OutOfStock         bool
}

// Resolve applies the discount precedence rules: a flat product offer wins
// only while the selected option price equals the product's own base price;
// otherwise an option-level discounted price wins; a product-level
// discounted price applies only when no option is selected. The size-colour
// delta is added after discounting and is itself never discounted.
func Resolve(p *domain.Product, sel Selection) Quote {
	opt := p.OptionByID(sel.PricingOptionID)

	base := p.Price
	if opt != nil {
		base = opt.Price
	}

	q := Quote{EffectiveUnitPrice: base, OriginalUnitPrice: base}

	offer := offerPercent(p)
	switch {
	case offer > 0 && base == p.Price:
		q.EffectiveUnitPrice = math.Round(base * (100 - offer) / 100)
		q.DiscountPercent = int(math.Round(offer))
	case opt != nil && opt.DiscountedPrice > 0 && opt.DiscountedPrice < opt.Price:
		q.EffectiveUnitPrice = opt.DiscountedPrice
		q.DiscountPercent = int(math.Round((opt.Price - opt.DiscountedPrice) / opt.Price * 100))
	case opt == nil && p.DiscountedPrice > 0 && p.DiscountedPrice < p.Price:
		q.EffectiveUnitPrice = p.DiscountedPrice
		q.DiscountPercent = int(math.Round((p.Price - p.DiscountedPrice) / p.Price * 100))
	}

	if opt != nil {
		if sc := opt.SizeColourByID(sel.SizeColourID); sc != nil {
			q.EffectiveUnitPrice += sc.Price
			q.OriginalUnitPrice += sc.Price
		}
	}

	q.OutOfStock = outOfStock(p, opt, sel)
	return q
}

// AllOptionPricesEqual reports whether every pricing option carries the same
// price, so callers can suppress the redundant per-option "+price" label.
func AllOptionPricesEqual(p *domain.Product) bool {
	if len(p.PricingOptions) < 2 {
		return true
	}
	first := p.PricingOptions[0].Price
	for _, opt := range p.PricingOptions[1:] {
		if opt.Price != first {
			return false
		}
	}
	return true
}

func offerPercent(p *domain.Product) float64 {
	if p.ProductOffer == "" {
		return 0
	}
	pct, err := strconv.ParseFloat(p.ProductOffer, 64)
	if err != nil || pct <= 0 {
		return 0
	}
	return pct
}

func outOfStock(p *domain.Product, opt *domain.PricingOption, sel Selection) bool {
	if p.Status == domain.StatusOutOfStock || p.Status == domain.StatusInactive {
		return true
	}
	if opt != nil {
		if opt.Status == domain.StatusOutOfStock {
			return true
		}
		if sc := opt.SizeColourByID(sel.SizeColourID); sc != nil && sc.Status == domain.StatusOutOfStock {
			return true
		}
	}
	if sel.ColourName != "" {
		for _, c := range p.Colours {
			if c.Name == sel.ColourName {
				if c.Status == domain.StatusOutOfStock || c.Status == domain.StatusInactive {
					return true
				}
				break
			}
		}
	}
	return false
}
