package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicClock_StartsAtZero(t *testing.T) {
	c := NewDeterministicClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
}

func TestDeterministicClock_StartsAtOffset(t *testing.T) {
	c := NewDeterministicClockAt(40)
	assert.Equal(t, int64(41), c.Next())

	c.Next()
	c.Reset()
	assert.Equal(t, int64(40), c.Current(), "reset rewinds to the start value")
	assert.Equal(t, int64(41), c.Next())
}

func TestDeterministicClock_Reset(t *testing.T) {
	c := NewDeterministicClock()
	for i := 0; i < 5; i++ {
		c.Next()
	}
	c.Reset()
	assert.Equal(t, int64(1), c.Next())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	c := NewDeterministicClock()
	const goroutines, calls = 20, 50

	var mu sync.Mutex
	seen := make(map[int64]bool)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				seq := c.Next()
				mu.Lock()
				seen[seq] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*calls)
	assert.Equal(t, int64(goroutines*calls), c.Current())
}
