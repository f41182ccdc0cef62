package keylock

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLock_TryAcquire(t *testing.T) {
	t.Run("acquire and release", func(t *testing.T) {
		l := New()

		assert.True(t, l.TryAcquire("acct-1"))
		assert.False(t, l.TryAcquire("acct-1"))

		l.Release("acct-1")
		assert.True(t, l.TryAcquire("acct-1"))
	})

	t.Run("independent keys do not contend", func(t *testing.T) {
		l := New()

		assert.True(t, l.TryAcquire("acct-1"))
		assert.True(t, l.TryAcquire("acct-2"))
	})

	t.Run("release of unheld key is a no-op", func(t *testing.T) {
		l := New()

		l.Release("acct-1")
		assert.True(t, l.TryAcquire("acct-1"))
	})
}

func TestKeyLock_Concurrent(t *testing.T) {
	l := New()

	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.TryAcquire("acct-1") {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins, "exactly one caller should win the lock")
}
