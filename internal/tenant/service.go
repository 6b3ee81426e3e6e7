// Package tenant loads and caches per-tenant commercial configuration. The
// raw coupon string is parsed exactly once, at load time.
package tenant

import (
	"context"
	"sync"
	"time"

	"github.com/storekit/storefront/internal/coupon"
	"github.com/storekit/storefront/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CompanyFetcher is the slice of the backend client this service needs.
type CompanyFetcher interface {
	GetCompany(ctx context.Context, tenantDomain string) (*domain.CompanyDetails, error)
}

type entry struct {
	company   *domain.CompanyDetails
	fetchedAt time.Time
}

type Service struct {
	fetcher CompanyFetcher
	ttl     time.Duration
	sfg     singleflight.Group // Dedup concurrent fetches per tenant

	mu     sync.RWMutex
	cached map[string]entry
}

func NewService(fetcher CompanyFetcher, ttl time.Duration) *Service {
	return &Service{
		fetcher: fetcher,
		ttl:     ttl,
		cached:  make(map[string]entry),
	}
}

// Company returns the tenant's configuration with coupons parsed. Cached
// copies are served until the TTL elapses.
func (s *Service) Company(ctx context.Context, tenantDomain string) (*domain.CompanyDetails, error) {
	s.mu.RLock()
	e, ok := s.cached[tenantDomain]
	s.mu.RUnlock()
	if ok && time.Since(e.fetchedAt) < s.ttl {
		return e.company, nil
	}

	v, err, _ := s.sfg.Do(tenantDomain, func() (interface{}, error) {
		company, errFetch := s.fetcher.GetCompany(ctx, tenantDomain)
		if errFetch != nil {
			return nil, errFetch
		}
		company.Coupons = coupon.ParseList(company.CouponList)

		s.mu.Lock()
		s.cached[tenantDomain] = entry{company: company, fetchedAt: time.Now()}
		s.mu.Unlock()

		return company, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.CompanyDetails), nil
}
