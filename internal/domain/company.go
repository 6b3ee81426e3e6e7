package domain

// Coupon is one parsed entry of the tenant's coupon list. At most one coupon
// is active for a cart at any time.
type Coupon struct {
	Code               string  `json:"code"`
	DiscountPercent    float64 `json:"discount_percent"`
	MinimumOrderAmount float64 `json:"minimum_order_amount"`
}

// CompanyDetails is the active tenant's commercial configuration, injected
// once per tenant session and treated as read-only reference data.
type CompanyDetails struct {
	Domain                string
	Name                  string
	CouponList            string // raw CODE&&&PERCENT&&&MIN entries, comma separated
	Coupons               []Coupon
	MinimumOrderAmount    float64
	FreeDeliveryThreshold float64
	DeliveryCost          float64
	Currency              string
	RazorpayKeyID         string
	RazorpayKeySecret     string
}

// DefaultDeliveryCost applies when a tenant has no delivery cost configured.
const DefaultDeliveryCost = 50
