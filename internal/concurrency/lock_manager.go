package concurrency

import (
	"strconv"
	"sync"
)

// LockManager handles named locks
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns a mutex for the given key
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// TryLock acquires the named lock without waiting.
// It returns false when another holder owns the key.
func (lm *LockManager) TryLock(key string) bool {
	return lm.GetLock(key).TryLock()
}

// Unlock releases a lock taken with TryLock or GetLock().Lock
func (lm *LockManager) Unlock(key string) {
	lm.GetLock(key).Unlock()
}

// ItemKey is the lock name of an item row
func ItemKey(id int64) string {
	return "item:" + strconv.FormatInt(id, 10)
}

// WalletKey is the lock name of a wallet
func WalletKey(owner string) string {
	return "wallet:" + owner
}
