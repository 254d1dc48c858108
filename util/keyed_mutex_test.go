package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("conv-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, counter)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()
	unlock1 := km.Lock("conv-1")
	// a different key must not block
	unlock2 := km.Lock("conv-2")
	unlock2()
	unlock1()
}

func TestKeyedMutexCleansUpReleasedKeys(t *testing.T) {
	km := NewKeyedMutex()
	unlock := km.Lock("conv-1")
	unlock()
	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks)
}
