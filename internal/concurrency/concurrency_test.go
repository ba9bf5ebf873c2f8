package concurrency

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSemaphore(t *testing.T) {
	semaphore := NewSemaphore(2)

	assert.True(t, semaphore.TryAcquire())
	assert.True(t, semaphore.TryAcquire())
	assert.False(t, semaphore.TryAcquire())
	assert.Equal(t, 2, semaphore.InUse())

	semaphore.Release()
	assert.Equal(t, 1, semaphore.InUse())
	assert.True(t, semaphore.TryAcquire())

	semaphore.Release()
	semaphore.Release()
	semaphore.Release()
	assert.Equal(t, 0, semaphore.InUse())
}

func TestSemaphore_Nil(t *testing.T) {
	var semaphore *Semaphore

	assert.False(t, semaphore.TryAcquire())
	assert.Equal(t, 0, semaphore.InUse())
	semaphore.Release()
}

func TestWithLock(t *testing.T) {
	var mutex sync.Mutex
	boom := errors.New("boom")

	assert.ErrorIs(t, WithLock(&mutex, func() error { return boom }), boom)
	assert.ErrorIs(t, WithLock(&mutex, nil), ErrNilFunction)

	counter := 0
	var wg sync.WaitGroup
	for _i := 0; _i < 50; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = WithLock(&mutex, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}
