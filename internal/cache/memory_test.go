package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "vaultgate:v1:pending:vault-1:alice", Key("pending", "vault-1", "alice"))
	assert.NotEqual(t, Key("pending", "a:b", "c"), Key("pending", "a", "b:c"))
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(0, time.Minute)

	c.Set("a", 1, 0)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestMemoryCache_AddRejectsExisting(t *testing.T) {
	c := NewMemoryCache(0, time.Minute)

	require.NoError(t, c.Add("k", "first", 0))
	err := c.Add("k", "second", 0)
	assert.ErrorIs(t, err, ErrExists)

	v, _ := c.Get("k")
	assert.Equal(t, "first", v)
}

func TestMemoryCache_AddAfterExpiry(t *testing.T) {
	c := NewMemoryCache(0, time.Minute)

	require.NoError(t, c.Add("k", 1, 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	assert.NoError(t, c.Add("k", 2, 0))
}

func TestMemoryCache_AddIsAtomic(t *testing.T) {
	c := NewMemoryCache(0, time.Minute)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Add("guard", struct{}{}, 0) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestMemoryCache_KeysByPrefix(t *testing.T) {
	c := NewMemoryCache(0, time.Minute)
	c.Set(Key("pending", "v1", "b"), 1, 0)
	c.Set(Key("pending", "v1", "a"), 1, 0)
	c.Set(Key("inflight", "v1", "a"), 1, 0)

	assert.Equal(t, []string{
		"vaultgate:v1:pending:v1:a",
		"vaultgate:v1:pending:v1:b",
	}, c.Keys(Key("pending", "v1")))

	c.Clear()
	assert.Empty(t, c.Keys(""))
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_NoExpirationOutlivesDefault(t *testing.T) {
	c := NewMemoryCache(20*time.Millisecond, time.Minute)

	require.NoError(t, c.Add("guard", "owner", NoExpiration))
	c.Set("short", 1, 0)
	time.Sleep(60 * time.Millisecond)

	_, ok := c.Get("short")
	assert.False(t, ok)
	v, ok := c.Get("guard")
	require.True(t, ok)
	assert.Equal(t, "owner", v)
	assert.ErrorIs(t, c.Add("guard", "other", NoExpiration), ErrExists)
}
