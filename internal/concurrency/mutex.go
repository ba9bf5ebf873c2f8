package concurrency

import (
	"errors"
	"sync"
)

var ErrNilFunction = errors.New("nil function")

// WithLock runs fn while holding lock and returns its error.
func WithLock(lock sync.Locker, fn func() error) error {
	if fn == nil {
		return ErrNilFunction
	}
	lock.Lock()
	defer lock.Unlock()
	return fn()
}
