package repository

import (
	"sync"

	"github.com/moby/locker"
)

// KeyLocks serializes read-modify-write sequences per storage key. Entries
// are dropped once no goroutine holds or waits on them.
type KeyLocks struct {
	l *locker.Locker
}

func NewKeyLocks() *KeyLocks {
	return &KeyLocks{l: locker.New()}
}

// Lock blocks until key is free and returns the matching unlock func.
// Calling unlock more than once is a no-op.
func (k *KeyLocks) Lock(key string) (unlock func()) {
	k.l.Lock(key)
	var once sync.Once
	return func() {
		once.Do(func() {
			// Only fails for a key that is not held, which once rules out.
			_ = k.l.Unlock(key)
		})
	}
}
