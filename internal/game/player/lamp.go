package player

import "github.com/cory-johannsen/hallcrawl/internal/game/dice"

// LampConfig holds the lamp's base radii and flicker behaviour.
type LampConfig struct {
	BrightRadius float64
	DimRadius    float64
	// PerLightSource is added to both radii for each light source held.
	PerLightSource float64
	// FlickerInterval is the simulation time between flicker redraws.
	FlickerInterval float64
	// FlickerAmplitude bounds each flicker offset to [-amp, amp].
	FlickerAmplitude float64
}

// DefaultLampConfig returns the lamp of the original game: 2.5/3.0 radii,
// ±0.05 flicker every 0.1s, +0.5 per light source.
func DefaultLampConfig() LampConfig {
	return LampConfig{
		BrightRadius:     2.5,
		DimRadius:        3.0,
		PerLightSource:   0.5,
		FlickerInterval:  0.1,
		FlickerAmplitude: 0.05,
	}
}

// Lamp is the player's light. Flicker draws from its own source so that
// gameplay draws are unaffected by frame timing.
type Lamp struct {
	cfg           LampConfig
	src           dice.Source
	brightFlicker float64
	dimFlicker    float64
	timer         float64
}

// NewLamp creates a lamp. A nil src disables flicker.
func NewLamp(cfg LampConfig, src dice.Source) *Lamp {
	return &Lamp{cfg: cfg, src: src}
}

// Flicker advances the flicker timer by dt seconds, redrawing the offsets
// whenever the interval elapses.
func (l *Lamp) Flicker(dt float64) {
	if l.src == nil {
		return
	}
	l.timer += dt
	if l.timer >= l.cfg.FlickerInterval {
		amp := l.cfg.FlickerAmplitude
		l.brightFlicker = (l.src.Float64()*2 - 1) * amp
		l.dimFlicker = (l.src.Float64()*2 - 1) * amp
		l.timer = 0
	}
}

// Radii returns the bright and dim light radii for a player holding
// lightSources light sources, including the current flicker.
func (l *Lamp) Radii(lightSources int) (bright, dim float64) {
	bonus := float64(lightSources) * l.cfg.PerLightSource
	return l.cfg.BrightRadius + bonus + l.brightFlicker, l.cfg.DimRadius + bonus + l.dimFlicker
}
