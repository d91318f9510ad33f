package handlers

import (
	"github.com/cory-johannsen/hallcrawl/internal/frontend/telnet"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/view"
	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
)

// toneColor maps a frame tone to its banner colour.
func toneColor(t view.Tone) string {
	switch t {
	case view.ToneGood:
		return telnet.BrightYellow
	case view.ToneDanger:
		return telnet.BrightRed
	case view.ToneMuted:
		return telnet.BrightBlack
	default:
		return telnet.BrightCyan
	}
}

// RenderFrame formats f as ANSI-coloured lines for a Telnet screen.
func RenderFrame(f view.Frame) []string {
	lines := []string{
		telnet.Colorize(telnet.Bold+toneColor(f.Tone), f.Banner),
		telnet.Colorize(telnet.Red, f.Status),
		telnet.Colorize(telnet.Cyan, f.Inventory),
		"",
	}
	for _, l := range f.Body {
		lines = append(lines, telnet.Colorize(telnet.White, l))
	}
	lines = append(lines,
		"",
		telnet.Colorize(telnet.BrightWhite, f.Message),
		telnet.Colorize(telnet.Dim, f.Hint),
	)
	return lines
}

// RenderCue returns the terminal effect for an audio cue. Misses are silent.
func RenderCue(ev crawler.CueEvent) string {
	switch ev.Cue {
	case crawler.CueItemPickup:
		return telnet.Bell
	case crawler.CueHit:
		return telnet.Bell + telnet.Flash
	default:
		return ""
	}
}
