package web

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/hallcrawl/internal/frontend/view"
	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
	"github.com/cory-johannsen/hallcrawl/internal/game/dungeon"
)

func TestEncodeFrame(t *testing.T) {
	f := view.Frame{
		Banner:  "TREASURE",
		Tone:    view.ToneGood,
		Body:    []string{"a", "b"},
		Message: "You found something.",
	}
	msg := EncodeFrame(f, []crawler.CueEvent{
		{Cue: crawler.CueItemPickup, Item: dungeon.ItemSpeedBoots},
		{Cue: crawler.CueHit},
	})

	assert.Equal(t, TypeFrame, msg.Type)
	require.NotNil(t, msg.Frame)
	assert.Equal(t, "good", msg.Frame.Tone)
	assert.Equal(t, []string{"a", "b"}, msg.Frame.Body)
	require.Len(t, msg.Cues, 2)
	assert.Equal(t, CueJSON{Cue: "item_pickup", Item: dungeon.ItemSpeedBoots.String()}, msg.Cues[0])
	assert.Equal(t, CueJSON{Cue: "hit"}, msg.Cues[1])
}

func TestEncodeFrame_Wire(t *testing.T) {
	data, err := json.Marshal(EncodeFrame(view.Frame{Tone: view.ToneDanger}, nil))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"frame"`)
	assert.Contains(t, string(data), `"tone":"danger"`)
	assert.NotContains(t, string(data), `"cues"`)

	bye, err := json.Marshal(Message{Type: TypeBye, Text: "Farewell."})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"bye","text":"Farewell."}`, string(bye))
}

func TestToneName(t *testing.T) {
	assert.Equal(t, "normal", toneName(view.ToneNormal))
	assert.Equal(t, "muted", toneName(view.ToneMuted))
}
