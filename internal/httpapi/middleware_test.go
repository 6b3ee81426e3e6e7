package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDMiddleware_EchoesCallerID(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(requestIDKey).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Request-ID", "upstream-42")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen != "upstream-42" {
		t.Errorf("expected context request id upstream-42, got %q", seen)
	}
	if got := rr.Header().Get("X-Request-ID"); got != "upstream-42" {
		t.Errorf("expected response header upstream-42, got %q", got)
	}
}

func TestRequestIDMiddleware_MintsSingleID(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(requestIDKey).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen == "" {
		t.Error("expected a minted request id in context")
	}
	if got := rr.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("response header %q does not match context id %q", got, seen)
	}
}

func TestTenantMiddleware_RejectsMissingTenant(t *testing.T) {
	h := TenantMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a tenant")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}
