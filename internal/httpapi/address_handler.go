package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/storekit/storefront/internal/domain"
)

// AddressBook is the backend's address CRUD surface. Mutations return no
// body; the handler refetches the list so the client always renders the
// server's view.
type AddressBook interface {
	ListAddresses(ctx context.Context, customerID string) ([]domain.Address, error)
	CreateAddress(ctx context.Context, customerID string, addr *domain.Address) error
	UpdateAddress(ctx context.Context, customerID string, addr *domain.Address) error
}

type AddressHandler struct {
	addresses AddressBook
}

func NewAddressHandler(addresses AddressBook) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

type addressListResponse struct {
	Addresses []domain.Address `json:"addresses"`
}

func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	customer, ok := requireCustomer(w, r)
	if !ok {
		return
	}

	addrs, err := h.addresses.ListAddresses(r.Context(), customer)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, addressListResponse{Addresses: addrs})
}

func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	customer, ok := requireCustomer(w, r)
	if !ok {
		return
	}

	var addr domain.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if addr.City == "" || addr.Pincode == "" {
		respondError(w, http.StatusBadRequest, "invalid_body", "city and pincode are required")
		return
	}

	if err := h.addresses.CreateAddress(r.Context(), customer, &addr); err != nil {
		handleDomainError(w, err)
		return
	}

	addrs, err := h.addresses.ListAddresses(r.Context(), customer)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, addressListResponse{Addresses: addrs})
}

func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	customer, ok := requireCustomer(w, r)
	if !ok {
		return
	}

	var addr domain.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	addr.ID = chi.URLParam(r, "addressID")
	if addr.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_body", "address id is required")
		return
	}

	if err := h.addresses.UpdateAddress(r.Context(), customer, &addr); err != nil {
		handleDomainError(w, err)
		return
	}

	addrs, err := h.addresses.ListAddresses(r.Context(), customer)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, addressListResponse{Addresses: addrs})
}
