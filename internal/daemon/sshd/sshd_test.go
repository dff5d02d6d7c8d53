package sshd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsLoopback(t *testing.T) {
	assert.True(t, isLoopback("127.0.0.1"))
	assert.True(t, isLoopback("::1"))
	assert.False(t, isLoopback("8.8.8.8"))
	assert.False(t, isLoopback("not-an-ip"))
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "8.8.8.8", hostOf("8.8.8.8:51234"))
	assert.Equal(t, "no-port", hostOf("no-port"))
}

func TestDelay_ZeroThenAtLeastOneSecond(t *testing.T) {
	first := true

	start := time.Now()
	delay(&first)
	assert.Less(t, time.Since(start), 100*time.Millisecond, "initial delay must be ~0s")
	assert.False(t, first)

	start = time.Now()
	delay(&first)
	assert.GreaterOrEqual(t, time.Since(start), time.Second, "subsequent delay must be >=1s")
}
