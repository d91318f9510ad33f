package keys_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hallcrawl/internal/frontend/keys"
	"github.com/cory-johannsen/hallcrawl/internal/game/input"
)

func TestDecode_Letters(t *testing.T) {
	d := keys.Decode([]byte("adrq \r"))
	assert.Equal(t, []input.Action{
		input.TurnLeft, input.TurnRight, input.Reset, input.Quit, input.MoveConfirm, input.MoveConfirm,
	}, d.Actions)
	assert.Zero(t, d.FastForwardToggles)
}

func TestDecode_Arrows(t *testing.T) {
	d := keys.Decode([]byte("\x1b[D\x1b[C\x1bOD\x1b[A\x1b[B"))
	assert.Equal(t, []input.Action{
		input.TurnLeft, input.TurnRight, input.TurnLeft, input.MoveConfirm,
	}, d.Actions)
}

func TestDecode_CtrlCQuits(t *testing.T) {
	assert.Equal(t, []input.Action{input.Quit}, keys.Decode([]byte{0x03}).Actions)
}

func TestDecode_FastForward(t *testing.T) {
	assert.Equal(t, 2, keys.Decode([]byte("fF")).FastForwardToggles)
}

func TestDecode_TruncatedEscapeIgnored(t *testing.T) {
	assert.Empty(t, keys.Decode([]byte{0x1b, '['}).Actions)
}

// Property: Decode never panics and yields at most one action per byte.
func TestDecode_Bounded_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		data := rapid.SliceOf(rapid.Byte()).Draw(rt, "data")
		d := keys.Decode(data)
		assert.LessOrEqual(rt, len(d.Actions)+d.FastForwardToggles, len(data))
	})
}

func TestTracker_PressReportedOnce(t *testing.T) {
	tr := keys.NewTracker(100 * time.Millisecond)
	now := time.Unix(0, 0)
	tr.Feed(keys.Decode([]byte("\r")), now)

	first := tr.Sample(now)
	assert.True(t, first.WasPressed(input.MoveConfirm))
	assert.True(t, first.IsHeld(input.MoveConfirm))

	second := tr.Sample(now.Add(10 * time.Millisecond))
	assert.False(t, second.WasPressed(input.MoveConfirm))
	assert.True(t, second.IsHeld(input.MoveConfirm))
}

func TestTracker_HoldExpires(t *testing.T) {
	tr := keys.NewTracker(100 * time.Millisecond)
	now := time.Unix(0, 0)
	tr.Feed(keys.Decode([]byte("a")), now)
	tr.Sample(now)

	assert.True(t, tr.Sample(now.Add(100*time.Millisecond)).IsHeld(input.TurnLeft))
	assert.False(t, tr.Sample(now.Add(101*time.Millisecond)).IsHeld(input.TurnLeft))
}

func TestTracker_RepeatExtendsHold(t *testing.T) {
	tr := keys.NewTracker(100 * time.Millisecond)
	now := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		tr.Feed(keys.Decode([]byte("d")), now.Add(time.Duration(i)*80*time.Millisecond))
	}
	assert.True(t, tr.Sample(now.Add(400*time.Millisecond)).IsHeld(input.TurnRight))
}

func TestTracker_FastForwardToggle(t *testing.T) {
	tr := keys.NewTracker(time.Second)
	now := time.Unix(0, 0)
	assert.False(t, tr.FastForward())
	tr.Feed(keys.Decode([]byte("f")), now)
	assert.True(t, tr.FastForward())
	tr.Feed(keys.Decode([]byte("ff")), now)
	assert.True(t, tr.FastForward())
	tr.Feed(keys.Decode([]byte("f")), now)
	assert.False(t, tr.FastForward())
}
