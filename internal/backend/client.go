// Package backend is the typed REST client for the remote storefront
// backend, which owns all persistent state.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/storekit/storefront/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// statusError is a non-2xx backend reply. It carries the status so the
// circuit breaker can tell client errors from backend outages.
type statusError struct {
	status int
	msg    string
}

func (e *statusError) Error() string { return e.msg }

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:    "backend",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// 4xx responses are the caller's problem, not an outage.
			IsSuccessful: func(err error) bool {
				var se *statusError
				if errors.As(err, &se) {
					return se.status < 500
				}
				return err == nil
			},
		}),
	}
}

func (c *Client) ValidateCart(ctx context.Context, req *ValidationRequest) (*ValidationResponse, error) {
	var resp ValidationResponse
	if err := c.post(ctx, "/api/checkout/validate", req, &resp); err != nil {
		return nil, fmt.Errorf("checkout validation failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) InitiatePayment(ctx context.Context, req *PaymentInitRequest) (*PaymentInitResponse, error) {
	var resp PaymentInitResponse
	if err := c.post(ctx, "/api/payment/initialize", req, &resp); err != nil {
		return nil, fmt.Errorf("payment initialization failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) VerifyPayment(ctx context.Context, req *PaymentVerifyRequest) (*PaymentVerifyResponse, error) {
	var resp PaymentVerifyResponse
	if err := c.post(ctx, "/api/payment/verify", req, &resp); err != nil {
		return nil, fmt.Errorf("payment verification failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) GetCompany(ctx context.Context, tenantDomain string) (*domain.CompanyDetails, error) {
	var dto CompanyDTO
	path := "/api/company?domain=" + url.QueryEscape(tenantDomain)
	if err := c.get(ctx, path, &dto); err != nil {
		return nil, fmt.Errorf("failed to fetch company details: %w", err)
	}
	return &domain.CompanyDetails{
		Domain:                dto.Domain,
		Name:                  dto.Name,
		CouponList:            dto.CouponList,
		MinimumOrderAmount:    dto.MinimumOrderAmount,
		FreeDeliveryThreshold: dto.FreeDeliveryThreshold,
		DeliveryCost:          dto.DeliveryCost,
		Currency:              dto.Currency,
		RazorpayKeyID:         dto.RazorpayKeyID,
		RazorpayKeySecret:     dto.RazorpayKeySecret,
	}, nil
}

func (c *Client) GetProduct(ctx context.Context, tenantDomain, productID string) (*domain.Product, error) {
	var dto ProductDTO
	path := fmt.Sprintf("/api/products/%s?domain=%s", url.PathEscape(productID), url.QueryEscape(tenantDomain))
	if err := c.get(ctx, path, &dto); err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", productID, err)
	}
	return mapProduct(&dto), nil
}

func (c *Client) ListAddresses(ctx context.Context, customerID string) ([]domain.Address, error) {
	var dtos []AddressDTO
	path := "/api/customers/" + url.PathEscape(customerID) + "/addresses"
	if err := c.get(ctx, path, &dtos); err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	addresses := make([]domain.Address, len(dtos))
	for i, d := range dtos {
		addresses[i] = mapAddress(&d)
	}
	return addresses, nil
}

func (c *Client) CreateAddress(ctx context.Context, customerID string, addr *domain.Address) error {
	path := "/api/customers/" + url.PathEscape(customerID) + "/addresses"
	if err := c.post(ctx, path, addressDTO(addr), nil); err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

func (c *Client) UpdateAddress(ctx context.Context, customerID string, addr *domain.Address) error {
	path := fmt.Sprintf("/api/customers/%s/addresses/%s", url.PathEscape(customerID), url.PathEscape(addr.ID))
	if err := c.put(ctx, path, addressDTO(addr)); err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) put(ctx context.Context, path string, in any) error {
	return c.do(ctx, http.MethodPut, path, in, nil)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	respBody, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, payload)
	})
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response for %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{
			status: resp.StatusCode,
			msg:    fmt.Sprintf("backend returned %d: %s", resp.StatusCode, snippet),
		}
	}

	return io.ReadAll(resp.Body)
}

func mapProduct(dto *ProductDTO) *domain.Product {
	p := &domain.Product{
		ID:              dto.ID,
		Name:            dto.Name,
		Images:          dto.Images,
		Price:           dto.Price,
		DiscountedPrice: dto.DiscountedPrice,
		ProductOffer:    dto.ProductOffer,
		Status:          domain.Status(dto.Status),
	}
	for _, opt := range dto.PricingOptions {
		po := domain.PricingOption{
			ID:              opt.ID,
			QuantityLabel:   opt.QuantityLabel,
			Price:           opt.Price,
			DiscountedPrice: opt.DiscountedPrice,
			Status:          domain.Status(opt.Status),
		}
		for _, sc := range opt.SizeColours {
			po.SizeColours = append(po.SizeColours, domain.SizeColour{
				ID: sc.ID, Name: sc.Name, Price: sc.Price, Status: domain.Status(sc.Status),
			})
		}
		p.PricingOptions = append(p.PricingOptions, po)
	}
	for _, a := range dto.Addons {
		p.Addons = append(p.Addons, domain.Addon{ID: a.ID, Name: a.Name, Price: a.Price})
	}
	for _, col := range dto.Colours {
		p.Colours = append(p.Colours, domain.Colour{Name: col.Name, Status: domain.Status(col.Status)})
	}
	return p
}

func mapAddress(d *AddressDTO) domain.Address {
	return domain.Address{
		ID:         d.ID,
		Label:      d.Label,
		DoorNumber: d.DoorNumber,
		Road:       d.Road,
		City:       d.City,
		State:      d.State,
		Pincode:    d.Pincode,
		Country:    d.Country,
	}
}

func addressDTO(a *domain.Address) *AddressDTO {
	return &AddressDTO{
		ID:         a.ID,
		Label:      a.Label,
		DoorNumber: a.DoorNumber,
		Road:       a.Road,
		City:       a.City,
		State:      a.State,
		Pincode:    a.Pincode,
		Country:    a.Country,
	}
}
