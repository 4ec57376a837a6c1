package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMissingKey(t *testing.T) {
	c := New[string, int]()

	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestPutAndGet(t *testing.T) {
	c := New[string, string]()

	c.Put("u1", "alice")
	v, ok := c.Get("u1")
	assert.True(t, ok)
	assert.Equal(t, "alice", v)
}

func TestPutOverwrites(t *testing.T) {
	c := New[string, string]()

	c.Put("u1", "alice")
	c.Put("u1", "bob")
	v, _ := c.Get("u1")
	assert.Equal(t, "bob", v)
	assert.Equal(t, 1, c.Len())
}

func TestInvalidate(t *testing.T) {
	c := New[string, int]()

	c.Put("u1", 1)
	c.Invalidate("u1")
	_, ok := c.Get("u1")
	assert.False(t, ok)

	// Invalidating a missing key is a no-op
	c.Invalidate("u2")
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int, int]()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Put(i%10, i)
			c.Get(i % 10)
			if i%3 == 0 {
				c.Invalidate(i % 10)
			}
		}(i)
	}
	wg.Wait()
}
