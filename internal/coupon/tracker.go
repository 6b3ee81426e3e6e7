package coupon

import (
	"sync"
	"time"
)

// Tracker signals coupon transitions for one cart. The first observation
// primes silently (no celebration on cold eligibility); afterwards each
// change of applied code, including to none, signals exactly once.
type Tracker struct {
	mu      sync.Mutex
	current string
	primed  bool
}

// Observe records the newly computed best coupon and reports whether the
// applied code changed since the previous observation.
func (t *Tracker) Observe(best *string) bool {
	code := ""
	if best != nil {
		code = *best
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.primed {
		t.primed = true
		t.current = code
		return false
	}
	if t.current == code {
		return false
	}
	t.current = code
	return true
}

type trackerEntry struct {
	tracker  *Tracker
	lastSeen time.Time
}

// Registry keys trackers by cart session, one per tenant+customer. Idle
// entries are swept; losing a tracker is safe because the next observation
// primes silently again.
type Registry struct {
	mu       sync.Mutex
	trackers map[string]*trackerEntry
}

func NewRegistry() *Registry {
	return &Registry{trackers: make(map[string]*trackerEntry)}
}

func (r *Registry) For(key string) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.trackers[key]
	if !ok {
		e = &trackerEntry{tracker: &Tracker{}}
		r.trackers[key] = e
	}
	e.lastSeen = time.Now()
	return e.tracker
}

// Drop forgets a cart's tracker, used after the cart is cleared.
func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.trackers, key)
}

// Sweep removes trackers not seen within maxIdle, bounding the registry to
// recently active carts.
func (r *Registry) Sweep(maxIdle time.Duration) {
	cutoff := time.Now().Add(-maxIdle)
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, e := range r.trackers {
		if e.lastSeen.Before(cutoff) {
			delete(r.trackers, key)
		}
	}
}
