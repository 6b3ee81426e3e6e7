package cart

import "errors"

var (
	// ErrOutOfStock rejects add-to-cart for an unavailable selection. It is
	// an availability rejection, distinct from input validation errors.
	ErrOutOfStock = errors.New("selected product or option is out of stock")

	ErrItemNotFound = errors.New("item not found in cart")
)
