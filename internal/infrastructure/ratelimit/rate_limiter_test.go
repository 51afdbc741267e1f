package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowStopsAfterBurst(t *testing.T) {
	rl := NewRateLimiter(3)

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("10.0.0.1", ActionLogin)
		assert.True(t, ok, "attempt %d", i+1)
	}

	ok, wait := rl.Allow("10.0.0.1", ActionLogin)
	assert.False(t, ok)
	assert.Greater(t, wait.Seconds(), 0.0)
}

func TestBucketsAreIsolatedPerKeyAndAction(t *testing.T) {
	rl := NewRateLimiter(1)

	ok, _ := rl.Allow("a", ActionLogin)
	assert.True(t, ok)
	ok, _ = rl.Allow("a", ActionLogin)
	assert.False(t, ok)

	ok, _ = rl.Allow("b", ActionLogin)
	assert.True(t, ok)
	ok, _ = rl.Allow("a", ActionPlaceOrder)
	assert.True(t, ok)

	assert.Equal(t, 3, rl.Size())
}
