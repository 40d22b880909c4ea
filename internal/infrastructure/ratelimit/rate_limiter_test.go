package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowConsumesBurst(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		allowed, _ := rl.Allow("user-1", "create_transaction")
		assert.True(t, allowed, "request %d within burst", i)
	}

	allowed, retryAfter := rl.Allow("user-1", "create_transaction")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestAllowIsPerUser(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		rl.Allow("user-1", "create_transaction")
	}

	allowed, _ := rl.Allow("user-2", "create_transaction")
	assert.True(t, allowed)
}

func TestAllowIsPerAction(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		rl.Allow("user-1", "create_transaction")
	}

	allowed, _ := rl.Allow("user-1", "post_message")
	assert.True(t, allowed)
}
