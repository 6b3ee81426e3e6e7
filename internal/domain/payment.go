package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PAYMENT_PENDING"
	PaymentStatusCompleted PaymentStatus = "PAYMENT_COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// String representation (for logging)
func (s PaymentStatus) String() string {
	return string(s)
}

// CanTransitionTo guards the payment session status machine. Terminal
// states never transition.
func CanTransitionTo(from, to PaymentStatus) bool {
	switch from {
	case PaymentStatusPending:
		return to == PaymentStatusCompleted || to == PaymentStatusFailed
	default:
		return false
	}
}

// PaymentSession tracks one gateway transaction from initialization to
// verification. Sessions exist only for the transaction lifetime; the
// idempotency key guards against duplicate initialization.
type PaymentSession struct {
	ID               string        `bson:"_id"`
	UserID           string        `bson:"user_id"`
	Domain           string        `bson:"domain"`
	IdempotencyKey   string        `bson:"idempotency_key"`
	Status           PaymentStatus `bson:"status"`
	Amount           float64       `bson:"amount"`
	Subtotal         float64       `bson:"subtotal"`
	ShippingCost     float64       `bson:"shipping_cost"`
	Discount         float64       `bson:"discount"`
	CouponCode       string        `bson:"coupon_code,omitempty"`
	Currency         string        `bson:"currency"`
	GatewayOrderID   string        `bson:"gateway_order_id,omitempty"`
	GatewayKeyID     string        `bson:"gateway_key_id,omitempty"`
	GatewayPaymentID string        `bson:"gateway_payment_id,omitempty"`
	CartSnapshot     []byte        `bson:"cart_snapshot,omitempty"`
	CreatedAt        time.Time     `bson:"created_at"`
	UpdatedAt        time.Time     `bson:"updated_at"`
}
