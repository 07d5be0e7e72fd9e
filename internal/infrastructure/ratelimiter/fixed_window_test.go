package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFixedWindowEnforcesLimit(t *testing.T) {
	rl := NewFixedWindowRateLimiter(3, time.Hour)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("conn-1")
		require.True(t, ok, "event %d should be allowed", i)
	}

	ok, retryAfter := rl.Allow("conn-1")
	require.False(t, ok)
	require.Greater(t, retryAfter, time.Duration(0))
}

func TestFixedWindowKeysAreIndependent(t *testing.T) {
	rl := NewFixedWindowRateLimiter(1, time.Hour)
	defer rl.Close()

	ok, _ := rl.Allow("conn-1")
	require.True(t, ok)

	ok, _ = rl.Allow("conn-1")
	require.False(t, ok)

	ok, _ = rl.Allow("conn-2")
	require.True(t, ok)
}

func TestFixedWindowResets(t *testing.T) {
	rl := NewFixedWindowRateLimiter(1, 50*time.Millisecond)
	defer rl.Close()

	ok, _ := rl.Allow("conn-1")
	require.True(t, ok)

	ok, _ = rl.Allow("conn-1")
	require.False(t, ok)

	time.Sleep(60 * time.Millisecond)

	ok, _ = rl.Allow("conn-1")
	require.True(t, ok)
}
