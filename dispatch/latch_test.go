package dispatch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatchFiresExactlyOnceAtLastWorker(t *testing.T) {
	var fired int
	var mu sync.Mutex
	l := NewLatch(3, func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Check(true, true)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, fired)
}

func TestLatchCloseFiresIfNeverReached(t *testing.T) {
	var fired int
	l := NewLatch(4, func() { fired++ })
	l.Check(true, true)
	l.Check(true, true)
	l.Close()
	assert.Equal(t, 1, fired)
	l.Close()
	assert.Equal(t, 1, fired) // idempotent
}

func TestLatchSkipsWorkersFailingCondition(t *testing.T) {
	var fired int
	l := NewLatch(2, func() { fired++ })
	l.Check(true, false) // doesn't count
	l.Check(true, true)
	assert.Equal(t, 0, fired)
	l.Check(true, true)
	assert.Equal(t, 1, fired)
}
