package crawler

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/hallcrawl/internal/game/combat"
	"github.com/cory-johannsen/hallcrawl/internal/game/dungeon"
	"github.com/cory-johannsen/hallcrawl/internal/game/player"
)

// SegmentLength is the length in world units of one hallway segment.
const SegmentLength = 2.0

// Config holds every tuning value of a playthrough.
type Config struct {
	// BaseSpeed is the corridor speed without boots and the fixed turning speed.
	BaseSpeed float64
	// TurnDegreesPerUnit converts turning speed into degrees per second.
	TurnDegreesPerUnit float64
	// TurnAngle is the yaw at which a junction turn completes.
	TurnAngle float64
	// TreasureReveal, TreasureDisplay, BattleWin and Lose are state timers in seconds.
	TreasureReveal  float64
	TreasureDisplay float64
	BattleWin       float64
	Lose            float64
	// FollowUpTreasureOdds is n in the 1-in-n chance of treasure after an ordinary foe.
	FollowUpTreasureOdds int
	StartHealth          int
	StartDifficulty      int
	// RenderDepth is how many junction levels below the current node Scene exposes.
	RenderDepth int

	Combat combat.Config
	Lamp   player.LampConfig
	Policy dungeon.Policy
}

// DefaultConfig returns the standard game tuning.
func DefaultConfig() Config {
	return Config{
		BaseSpeed:            3.0,
		TurnDegreesPerUnit:   30,
		TurnAngle:            60,
		TreasureReveal:       1.0,
		TreasureDisplay:      1.5,
		BattleWin:            1.0,
		Lose:                 2.0,
		FollowUpTreasureOdds: 4,
		StartHealth:          3,
		StartDifficulty:      1,
		RenderDepth:          2,
		Combat:               combat.DefaultConfig(),
		Lamp:                 player.DefaultLampConfig(),
		Policy:               dungeon.DefaultPolicy(),
	}
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if the configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	if c.BaseSpeed <= 0 {
		errs = append(errs, fmt.Sprintf("base_speed must be > 0, got %v", c.BaseSpeed))
	}
	if c.TurnDegreesPerUnit <= 0 {
		errs = append(errs, fmt.Sprintf("turn_degrees_per_unit must be > 0, got %v", c.TurnDegreesPerUnit))
	}
	if c.TurnAngle <= 0 || c.TurnAngle > 180 {
		errs = append(errs, fmt.Sprintf("turn_angle must be in (0, 180], got %v", c.TurnAngle))
	}
	timers := []struct {
		name string
		v    float64
	}{
		{"treasure_reveal", c.TreasureReveal},
		{"treasure_display", c.TreasureDisplay},
		{"battle_win", c.BattleWin},
		{"lose", c.Lose},
	}
	for _, tm := range timers {
		if tm.v < 0 {
			errs = append(errs, fmt.Sprintf("timers.%s must not be negative, got %v", tm.name, tm.v))
		}
	}
	if c.FollowUpTreasureOdds < 1 {
		errs = append(errs, fmt.Sprintf("follow_up_treasure_odds must be >= 1, got %d", c.FollowUpTreasureOdds))
	}
	if c.StartHealth < 1 {
		errs = append(errs, fmt.Sprintf("start_health must be >= 1, got %d", c.StartHealth))
	}
	if c.StartDifficulty < 1 {
		errs = append(errs, fmt.Sprintf("start_difficulty must be >= 1, got %d", c.StartDifficulty))
	}
	if c.RenderDepth < 0 {
		errs = append(errs, fmt.Sprintf("render_depth must be >= 0, got %d", c.RenderDepth))
	}
	if c.Lamp.BrightRadius <= 0 || c.Lamp.DimRadius < c.Lamp.BrightRadius {
		errs = append(errs, "lamp radii must be positive with dim >= bright")
	}
	if c.Lamp.FlickerInterval <= 0 || c.Lamp.FlickerAmplitude < 0 {
		errs = append(errs, "lamp flicker interval must be > 0 and amplitude >= 0")
	}
	if err := c.Combat.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Policy.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("crawler configuration invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}
