package auth_test

import (
	"testing"
	"time"

	auth "github.com/eventrack/go-auth"
	"github.com/stretchr/testify/assert"
)

func TestBeforeInSeconds(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("earlier second is before", func(t *testing.T) {
		assert.True(t, auth.BeforeInSeconds(base, base.Add(time.Second)))
	})

	t.Run("same second is not before", func(t *testing.T) {
		assert.False(t, auth.BeforeInSeconds(base, base.Add(900*time.Millisecond)))
	})

	t.Run("sub second precision is truncated", func(t *testing.T) {
		a := base.Add(100 * time.Millisecond)
		b := base.Add(800 * time.Millisecond)
		assert.False(t, auth.BeforeInSeconds(a, b))
	})

	t.Run("later second is not before", func(t *testing.T) {
		assert.False(t, auth.BeforeInSeconds(base.Add(time.Second), base))
	})
}

func TestSecondsUntil(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(3600), auth.SecondsUntil(now.Add(time.Hour), now))
	assert.Equal(t, int64(-60), auth.SecondsUntil(now.Add(-time.Minute), now))
	assert.Equal(t, int64(0), auth.SecondsUntil(now, now))
}

func TestRenewalDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	window := 30 * time.Minute

	t.Run("inside the window", func(t *testing.T) {
		assert.True(t, auth.RenewalDue(now.Add(10*time.Minute), now, window))
	})

	t.Run("outside the window", func(t *testing.T) {
		assert.False(t, auth.RenewalDue(now.Add(2*time.Hour), now, window))
	})

	t.Run("at the exact boundary it is not due", func(t *testing.T) {
		assert.False(t, auth.RenewalDue(now.Add(window), now, window))
	})

	t.Run("already expired still counts as due", func(t *testing.T) {
		assert.True(t, auth.RenewalDue(now.Add(-time.Minute), now, window))
	})

	t.Run("zero window disables renewal", func(t *testing.T) {
		assert.False(t, auth.RenewalDue(now.Add(time.Second), now, 0))
	})
}
