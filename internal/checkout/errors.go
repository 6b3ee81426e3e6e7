package checkout

import "errors"

var (
	ErrEmptyCart      = errors.New("cart is empty, nothing to checkout")
	ErrNoAddress      = errors.New("no delivery address selected")
	ErrMissingContact = errors.New("contact name, phone and email are required")

	// ErrVerificationFailed is deliberately distinct from initialization
	// failures: the gateway may have taken payment while local state says
	// otherwise, so the cart must stay intact and the user directed to
	// support.
	ErrVerificationFailed = errors.New("payment verification failed")

	ErrIllegalTransition = errors.New("illegal transition of payment session status")
)
