// Package lock provides keyed locking so actions against the same game
// session are serialized while sessions never block each other.
package lock

import "sync"

// keyedMutex wraps a mutex stored per key.
type keyedMutex struct {
	mu sync.Mutex
}

// KeyedLock hands out one mutex per string key. Used by the session
// manager with the session token as the key.
type KeyedLock struct {
	locks sync.Map // map[string]*keyedMutex
	pool  sync.Pool
}

// NewKeyedLock creates a new KeyedLock instance.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{
		pool: sync.Pool{
			New: func() any {
				return &keyedMutex{}
			},
		},
	}
}

// getLock retrieves or creates the mutex for the given key.
func (kl *KeyedLock) getLock(key string) *keyedMutex {
	if v, ok := kl.locks.Load(key); ok {
		return v.(*keyedMutex)
	}

	newLock := kl.pool.Get().(*keyedMutex)
	actual, loaded := kl.locks.LoadOrStore(key, newLock)
	if loaded {
		// Another goroutine created the lock first; return ours to the pool.
		kl.pool.Put(newLock)
	}
	return actual.(*keyedMutex)
}

// Lock acquires the lock for a key and returns its release func. The
// release is bound to the mutex that was locked, not to the map entry,
// so a concurrent Forget cannot strand the holder or its waiters.
func (kl *KeyedLock) Lock(key string) (release func()) {
	m := kl.getLock(key)
	m.mu.Lock()
	return m.mu.Unlock
}

// WithLock executes fn while holding the key's lock.
func (kl *KeyedLock) WithLock(key string, fn func() error) error {
	release := kl.Lock(key)
	defer release()
	return fn()
}

// Forget drops the mutex for a key once its session is gone, bounding
// the map to live sessions. The mutex is not returned to the pool: a
// late dispatch may still hold it, and its waiters drain through the
// release handles they got from Lock.
func (kl *KeyedLock) Forget(key string) {
	kl.locks.Delete(key)
}
