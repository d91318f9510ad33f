package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hallcrawl/internal/game/combat"
)

func TestCountdown_Expires(t *testing.T) {
	c := combat.NewCountdown(0.5)
	assert.False(t, c.Advance(0.2))
	assert.InDelta(t, 0.3, c.Remaining(), 1e-9)
	assert.False(t, c.Advance(0.2))
	assert.True(t, c.Advance(0.2))
	assert.True(t, c.Expired())
	assert.Zero(t, c.Remaining())
}

func TestCountdown_ZeroDurationExpiresImmediately(t *testing.T) {
	c := combat.NewCountdown(0)
	assert.True(t, c.Expired())
	assert.True(t, c.Advance(0))
}

// Property: the countdown expires exactly when accumulated time reaches the duration.
func TestCountdown_Accumulates_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := rapid.Float64Range(0.01, 5).Draw(rt, "duration")
		c := combat.NewCountdown(d)
		elapsed := 0.0
		for !c.Expired() {
			step := rapid.Float64Range(0.001, 0.1).Draw(rt, "step")
			c.Advance(step)
			elapsed += step
		}
		assert.GreaterOrEqual(rt, elapsed+1e-9, d)
		assert.Less(rt, elapsed, d+0.1+1e-9)
	})
}
