package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot(t *testing.T) {
	assert.False(t, None.IsHeld(TurnLeft))
	assert.False(t, None.WasPressed(MoveConfirm))

	s := Pressed(MoveConfirm)
	assert.True(t, s.WasPressed(MoveConfirm))
	assert.True(t, s.IsHeld(MoveConfirm))
	assert.False(t, s.WasPressed(TurnLeft))

	h := Held(TurnLeft, TurnRight)
	assert.True(t, h.IsHeld(TurnLeft))
	assert.True(t, h.IsHeld(TurnRight))
	assert.False(t, h.WasPressed(TurnLeft))

	assert.False(t, None.IsHeld(Action(99)))
	assert.False(t, None.WasPressed(Action(-1)))
}

func TestActions(t *testing.T) {
	assert.Equal(t, []Action{MoveConfirm, TurnLeft, TurnRight, Reset, Quit}, Actions())
	for _, a := range Actions() {
		assert.NotEqual(t, "unknown", a.String())
	}
}
