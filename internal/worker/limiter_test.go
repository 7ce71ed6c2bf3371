package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	assert.Equal(t, 5, limiter.defaultBurst)

	l2 := NewLimiter(10, -1)
	assert.Equal(t, 5, l2.defaultBurst, "default burst for negative input")
}

func TestLimiter_AllowPerKey(t *testing.T) {
	limiter := NewLimiter(1, 2) // one per hour, burst 2

	assert.True(t, limiter.Allow("alice"))
	assert.True(t, limiter.Allow("alice"))
	assert.False(t, limiter.Allow("alice"), "burst exhausted")

	assert.True(t, limiter.Allow("bob"), "keys are independent")
}

func TestLimiter_ZeroRateIsUnlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		require.True(t, limiter.Allow("alice"))
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(1, 1)
	limiter.SetRate("service", 0, 0)

	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow("service"))
	}
	assert.True(t, limiter.Allow("alice"))
	assert.False(t, limiter.Allow("alice"))
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	limiter := NewLimiter(1, 1)
	require.NoError(t, limiter.Wait(context.Background(), "alice"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, limiter.Wait(ctx, "alice"))
}
