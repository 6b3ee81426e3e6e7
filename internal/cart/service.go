package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/storekit/storefront/internal/cache"
	"github.com/storekit/storefront/internal/domain"
	"github.com/storekit/storefront/internal/keylock"
	"github.com/storekit/storefront/internal/pricing"
	"github.com/storekit/storefront/internal/repository"
	"golang.org/x/sync/singleflight"
)

// Selection is everything the customer picked on the product page.
type Selection struct {
	Variants        map[string]string
	AddonIDs        []string
	PricingOptionID string
	SizeColourID    string
	ColourName      string
}

// Service is the single source of truth for cart mutations. Every mutation
// of a given cart runs behind that cart's lock: AddToCart's
// find-existing-or-insert is a check-then-act sequence that must never
// interleave.
type Service struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede
	locks *keylock.KeyLock
}

func NewService(repo repository.CartRepository, cache cache.CartCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		locks: keylock.New(),
	}
}

func cartKey(tenantDomain, userID string) string {
	return tenantDomain + ":" + userID
}

// GetCart reads through the cache; a missing cart materializes as an empty
// one rather than an error.
func (s *Service) GetCart(ctx context.Context, tenantDomain, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(cartKey(tenantDomain, userID), func() (interface{}, error) {

		c, err := s.cache.Get(ctx, tenantDomain, userID)
		if err == nil {
			return c, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		c, errGet := s.repo.GetCart(ctx, tenantDomain, userID)
		if errGet != nil && errors.Is(errGet, repository.ErrCartNotFound) {
			return emptyCart(tenantDomain, userID), nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			if errSet := s.cache.Set(context.Background(), c); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return c, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddToCart resolves the selection's price, rejects out-of-stock selections
// outright, and merges into an existing line when the derived identity
// matches: quantity goes up by one and the original price snapshot is kept.
func (s *Service) AddToCart(ctx context.Context, tenantDomain, userID string, product *domain.Product, sel Selection) (*domain.Cart, error) {
	quote := pricing.Resolve(product, pricing.Selection{
		PricingOptionID: sel.PricingOptionID,
		SizeColourID:    sel.SizeColourID,
		ColourName:      sel.ColourName,
	})
	if quote.OutOfStock {
		return nil, ErrOutOfStock
	}

	addons := make([]domain.Addon, 0, len(sel.AddonIDs))
	for _, id := range sel.AddonIDs {
		a := product.AddonByID(id)
		if a == nil {
			log.Printf("unknown addon %q for product %s, skipping", id, product.ID)
			continue
		}
		addons = append(addons, *a)
	}

	lineID := domain.LineItemID(product.ID, sel.Variants, addons, sel.PricingOptionID, sel.SizeColourID)

	key := cartKey(tenantDomain, userID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	c, err := s.loadForWrite(ctx, tenantDomain, userID)
	if err != nil {
		return nil, err
	}

	if existing := c.FindItem(lineID); existing != nil {
		existing.Quantity++
	} else {
		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		c.Items = append(c.Items, domain.CartLineItem{
			CartItemID:          lineID,
			ProductID:           product.ID,
			Name:                product.Name,
			Image:               image,
			UnitPrice:           quote.EffectiveUnitPrice,
			OriginalPrice:       quote.OriginalUnitPrice,
			Quantity:            1,
			SelectedVariants:    sel.Variants,
			SelectedAddons:      addons,
			ProductSizeID:       sel.PricingOptionID,
			ProductSizeColourID: sel.SizeColourID,
			AddedAt:             time.Now(),
		})
	}
	c.LastAddedID = lineID

	return s.store(ctx, c)
}

// UpdateQuantity clamps to a floor of one. Dropping to zero is not removal;
// removal is an explicit separate action.
func (s *Service) UpdateQuantity(ctx context.Context, tenantDomain, userID, cartItemID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	key := cartKey(tenantDomain, userID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	c, err := s.loadForWrite(ctx, tenantDomain, userID)
	if err != nil {
		return nil, err
	}

	item := c.FindItem(cartItemID)
	if item == nil {
		return nil, ErrItemNotFound
	}
	item.Quantity = quantity

	return s.store(ctx, c)
}

func (s *Service) RemoveItem(ctx context.Context, tenantDomain, userID, cartItemID string) (*domain.Cart, error) {
	key := cartKey(tenantDomain, userID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	c, err := s.loadForWrite(ctx, tenantDomain, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i, item := range c.Items {
		if item.CartItemID == cartItemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return nil, ErrItemNotFound
	}
	if c.LastAddedID == cartItemID {
		c.LastAddedID = ""
	}

	return s.store(ctx, c)
}

// ClearCart empties the cart, called only after a confirmed successful order.
func (s *Service) ClearCart(ctx context.Context, tenantDomain, userID string) error {
	key := cartKey(tenantDomain, userID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	err := s.repo.DeleteCart(ctx, tenantDomain, userID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		log.Printf("repo delete cart error: %v", err)
		return err
	}

	s.invalidateCache(tenantDomain, userID)
	return nil
}

// ReplaceItems swaps the cart's whole line set in one write. Checkout
// validation uses it so price and availability corrections land atomically.
func (s *Service) ReplaceItems(ctx context.Context, tenantDomain, userID string, items []domain.CartLineItem) (*domain.Cart, error) {
	key := cartKey(tenantDomain, userID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	c, err := s.loadForWrite(ctx, tenantDomain, userID)
	if err != nil {
		return nil, err
	}

	c.Items = items
	return s.store(ctx, c)
}

// SetAppliedCoupon persists the active coupon code on the cart document.
func (s *Service) SetAppliedCoupon(ctx context.Context, tenantDomain, userID, code string) error {
	key := cartKey(tenantDomain, userID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	c, err := s.loadForWrite(ctx, tenantDomain, userID)
	if err != nil {
		return err
	}
	if c.AppliedCoupon == code {
		return nil
	}
	c.AppliedCoupon = code

	_, err = s.store(ctx, c)
	return err
}

// loadForWrite always reads the repository, never the cache; callers hold
// the cart lock.
func (s *Service) loadForWrite(ctx context.Context, tenantDomain, userID string) (*domain.Cart, error) {
	c, err := s.repo.GetCart(ctx, tenantDomain, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return emptyCart(tenantDomain, userID), nil
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) store(ctx context.Context, c *domain.Cart) (*domain.Cart, error) {
	if err := s.repo.UpsertCart(ctx, c); err != nil {
		log.Printf("repo upsert cart error: %v", err)
		return nil, err
	}
	s.invalidateCache(c.Domain, c.UserID)
	return c, nil
}

func (s *Service) invalidateCache(tenantDomain, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, tenantDomain, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

func emptyCart(tenantDomain, userID string) *domain.Cart {
	return &domain.Cart{
		UserID:    userID,
		Domain:    tenantDomain,
		Items:     nil,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
