// Package httpapi exposes the cart and checkout engine over HTTP for the
// storefront web client.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/storekit/storefront/internal/cart"
	"github.com/storekit/storefront/internal/checkout"
	"github.com/storekit/storefront/internal/repository"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleDomainError translates engine errors into HTTP responses. Anything
// unrecognized is treated as a backend/transport failure the user can retry.
func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrOutOfStock):
		respondError(w, http.StatusConflict, "out_of_stock", err.Error())
	case errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, repository.ErrCartNotFound),
		errors.Is(err, repository.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrNoAddress):
		respondError(w, http.StatusBadRequest, "no_address", err.Error())
	case errors.Is(err, checkout.ErrMissingContact):
		respondError(w, http.StatusBadRequest, "missing_contact", err.Error())
	case errors.Is(err, checkout.ErrVerificationFailed):
		respondError(w, http.StatusPaymentRequired, "verification_failed",
			"payment verification failed; your cart is unchanged. If money was deducted, contact support.")
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_state", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "the request timed out, please try again")
	default:
		respondError(w, http.StatusBadGateway, "backend_error", "something went wrong, please try again")
	}
}
