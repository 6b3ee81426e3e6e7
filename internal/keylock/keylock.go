// Package keylock provides per-key mutual exclusion. Idle keys hold no
// memory: an entry lives only while a caller holds or waits on it.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyLock serializes callers per key.
type KeyLock struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *KeyLock {
	return &KeyLock{entries: make(map[string]*entry)}
}

// Lock blocks until the key is exclusively held.
func (k *KeyLock) Lock(key string) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the key. The entry is dropped once no caller holds or
// waits on it; a later Lock on the same key starts fresh.
func (k *KeyLock) Unlock(key string) {
	k.mu.Lock()
	e := k.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}

func (k *KeyLock) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
