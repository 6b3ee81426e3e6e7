package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type contextKey string

const (
	customerIDKey   contextKey = "customer_id"
	tenantDomainKey contextKey = "tenant_domain"
	requestIDKey    contextKey = "request_id"
)

// RequestIDMiddleware echoes the caller's request id or mints one, so log
// lines can be correlated across the backend hop.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantMiddleware extracts the tenant domain and customer identity from the
// request headers. Every storefront request is scoped to a tenant; cart
// endpoints additionally require a customer.
func TenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant := r.Header.Get("X-Tenant-Domain")
		if tenant == "" {
			respondError(w, http.StatusBadRequest, "missing_tenant", "X-Tenant-Domain header is required")
			return
		}

		ctx := context.WithValue(r.Context(), tenantDomainKey, tenant)
		if customer := r.Header.Get("X-Customer-ID"); customer != "" {
			ctx = context.WithValue(ctx, customerIDKey, customer)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tenantFromContext(ctx context.Context) string {
	v, _ := ctx.Value(tenantDomainKey).(string)
	return v
}

func customerFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(customerIDKey).(string)
	return v, ok && v != ""
}

// requireCustomer writes a 401 and returns false when no customer identity is
// present on the request.
func requireCustomer(w http.ResponseWriter, r *http.Request) (string, bool) {
	customer, ok := customerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "X-Customer-ID header is required")
		return "", false
	}
	return customer, true
}
