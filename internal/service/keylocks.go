package service

import "sync"

// KeyLocks hands out one mutex per string key. Ingestion uses it to make
// "candidate lookup → decide → write" exclusive per (student, test) pair, and
// recompute uses it per attempt. Locks are never evicted; the key space is
// bounded by the ingested corpus.
type KeyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyLocks() *KeyLocks {
	return &KeyLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use, and returns the
// matching unlock function.
func (k *KeyLocks) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
