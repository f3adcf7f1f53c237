// SPDX-License-Identifier: Apache-2.0

package objectcache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyTreeHashResolvesWithoutPut(t *testing.T) {
	c := New()
	children, ok := c.Get(EmptyTreeHash)
	assert.True(t, ok)
	assert.Empty(t, children)
}

func TestPutGetRoundTrip(t *testing.T) {
	c := New()
	c.Put("deadbeef", map[string]Entry{"a.txt": {Mode: "100644", Type: "blob", Hash: "abc"}})

	children, ok := c.Get("deadbeef")
	assert.True(t, ok)
	assert.Equal(t, "abc", children["a.txt"].Hash)
}

func TestConcurrentIdenticalWritesAreBenign(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Put("samehash", map[string]Entry{"x": {Hash: "x"}})
		}()
	}
	wg.Wait()

	children, ok := c.Get("samehash")
	assert.True(t, ok)
	assert.Equal(t, "x", children["x"].Hash)
}

func TestMissingHashNotFound(t *testing.T) {
	c := New()
	_, ok := c.Get("nope")
	assert.False(t, ok)
}
