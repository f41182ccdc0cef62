// Package keylock provides per-key mutual exclusion with fail-fast acquisition.
package keylock

import "sync"

// KeyLock serializes mutating operations per key. TryAcquire never blocks:
// under contention the losing caller is rejected immediately rather than
// queued, which bounds latency under adversarial load.
type KeyLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// New creates an empty KeyLock.
func New() *KeyLock {
	return &KeyLock{held: make(map[string]struct{})}
}

// TryAcquire attempts to take the lock for key. It returns false without
// blocking if another caller holds it.
func (l *KeyLock) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return false
	}
	l.held[key] = struct{}{}
	return true
}

// Release frees the lock for key. Releasing an unheld key is a no-op.
func (l *KeyLock) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.held, key)
}
