package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedRunGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedRunGenerator("test-run-123")

	assert.Equal(t, "test-run-123", gen.Generate())
	assert.Equal(t, "test-run-123", gen.Generate())
}

func TestFixedRunGenerator_EmptyIDDefault(t *testing.T) {
	assert.Equal(t, DefaultRunID, NewFixedRunGenerator("").Generate())
}

func TestFixedRunGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedRunGenerator("shared")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "shared", gen.Generate())
			}
		}()
	}
	wg.Wait()
}
