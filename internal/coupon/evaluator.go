// Package coupon parses the tenant's delimited coupon list and keeps exactly
// one best-eligible coupon active per cart.
package coupon

import (
	"math"
	"strconv"
	"strings"

	"github.com/storekit/storefront/internal/domain"
)

// ParseList parses the backend's CODE&&&PERCENT&&&MIN_ORDER format, with
// multiple coupons comma-separated. Malformed entries (missing code) are
// skipped, not fatal; unparseable numbers degrade to zero.
func ParseList(raw string) []domain.Coupon {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var coupons []domain.Coupon
	for _, entry := range strings.Split(raw, ",") {
		fields := strings.Split(strings.TrimSpace(entry), domain.FieldSep)
		code := strings.TrimSpace(fields[0])
		if code == "" {
			continue
		}
		c := domain.Coupon{Code: code}
		if len(fields) > 1 {
			c.DiscountPercent, _ = strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		}
		if len(fields) > 2 {
			c.MinimumOrderAmount, _ = strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		}
		coupons = append(coupons, c)
	}
	return coupons
}

// Best returns the eligible coupon with the highest discount percent, ties
// broken by listing order. Nil when the subtotal is below every minimum.
func Best(subtotal float64, coupons []domain.Coupon) *domain.Coupon {
	var best *domain.Coupon
	for i := range coupons {
		c := &coupons[i]
		if subtotal < c.MinimumOrderAmount {
			continue
		}
		if best == nil || c.DiscountPercent > best.DiscountPercent {
			best = c
		}
	}
	return best
}

// Discount is the coupon's discount amount on a subtotal, rounded to two
// decimals. Zero for a nil coupon.
func Discount(subtotal float64, c *domain.Coupon) float64 {
	if c == nil {
		return 0
	}
	return math.Round(subtotal*c.DiscountPercent) / 100
}
