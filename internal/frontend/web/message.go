package web

import (
	"github.com/cory-johannsen/hallcrawl/internal/frontend/view"
	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
)

// Message types sent to the browser.
const (
	TypeFrame = "frame"
	TypeBye   = "bye"
)

// Message is one server-to-browser JSON message.
type Message struct {
	Type  string     `json:"type"`
	Frame *FrameJSON `json:"frame,omitempty"`
	Cues  []CueJSON  `json:"cues,omitempty"`
	Text  string     `json:"text,omitempty"`
}

// FrameJSON is the browser encoding of a view.Frame.
type FrameJSON struct {
	Banner    string   `json:"banner"`
	Tone      string   `json:"tone"`
	Status    string   `json:"status"`
	Inventory string   `json:"inventory"`
	Body      []string `json:"body"`
	Message   string   `json:"message"`
	Hint      string   `json:"hint"`
}

// CueJSON is one cue the browser should play. Item is set for pickups.
type CueJSON struct {
	Cue  string `json:"cue"`
	Item string `json:"item,omitempty"`
}

func toneName(t view.Tone) string {
	switch t {
	case view.ToneGood:
		return "good"
	case view.ToneDanger:
		return "danger"
	case view.ToneMuted:
		return "muted"
	default:
		return "normal"
	}
}

// EncodeFrame builds the frame message for f and the cues drained since the
// previous frame.
func EncodeFrame(f view.Frame, cues []crawler.CueEvent) Message {
	msg := Message{
		Type: TypeFrame,
		Frame: &FrameJSON{
			Banner:    f.Banner,
			Tone:      toneName(f.Tone),
			Status:    f.Status,
			Inventory: f.Inventory,
			Body:      f.Body,
			Message:   f.Message,
			Hint:      f.Hint,
		},
	}
	for _, ev := range cues {
		c := CueJSON{Cue: ev.Cue.String()}
		if ev.Cue == crawler.CueItemPickup {
			c.Item = ev.Item.String()
		}
		msg.Cues = append(msg.Cues, c)
	}
	return msg
}
