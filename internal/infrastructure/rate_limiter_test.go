package infrastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedRateLimiterBurst(t *testing.T) {
	rl := NewKeyedRateLimiter(0.001, 2)
	defer rl.Close()

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.Greater(t, rl.RetryAfter("a"), time.Duration(0))

	// keys are independent
	assert.True(t, rl.Allow("b"))
	assert.Equal(t, 2, rl.Len())
}

func TestKeyedRateLimiterSweep(t *testing.T) {
	rl := NewKeyedRateLimiter(1, 1)
	defer rl.Close()

	rl.Allow("old")
	rl.sweep(time.Now().Add(time.Hour))
	assert.Equal(t, 0, rl.Len())
	assert.Equal(t, time.Duration(0), rl.RetryAfter("old"))
}
