// Package autopilot plays the crawler without a human: a Pilot turns each
// Scene into the input a player would give, and Run drives a Machine with it.
package autopilot

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
	"github.com/cory-johannsen/hallcrawl/internal/game/dungeon"
	"github.com/cory-johannsen/hallcrawl/internal/game/input"
)

// Strategy selects how the pilot chooses junctions.
type Strategy int

const (
	// StrategyCautious prefers visible treasure, then empty hallways, then foes.
	StrategyCautious Strategy = iota
	// StrategyRandom picks a side uniformly.
	StrategyRandom
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyCautious:
		return "cautious"
	case StrategyRandom:
		return "random"
	default:
		return "unknown"
	}
}

// ParseStrategy returns the Strategy named s.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "cautious":
		return StrategyCautious, nil
	case "random":
		return StrategyRandom, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", s)
	}
}

// threatWidth is the lateral distance inside which a falling bullet is dodged.
const threatWidth = 0.4

// Pilot produces one input snapshot per frame.
//
// Invariant: src must not be nil.
type Pilot struct {
	strategy Strategy
	src      dice.Source
	// side is the junction choice held until the turn begins.
	side input.Action
	// chosen is set while a junction choice is pending.
	chosen bool
}

// New creates a Pilot.
//
// Precondition: src must not be nil.
func New(strategy Strategy, src dice.Source) *Pilot {
	if src == nil {
		panic("autopilot.New: src must not be nil")
	}
	return &Pilot{strategy: strategy, src: src}
}

// Next returns the input for the frame described by s.
func (p *Pilot) Next(s crawler.Scene) input.Snapshot {
	switch s.State {
	case crawler.StateTitle:
		return input.Pressed(input.MoveConfirm)
	case crawler.StateWhichWay:
		if !p.chosen {
			p.side = p.chooseSide(s.Hallway)
			p.chosen = true
		}
		return input.Held(p.side)
	case crawler.StateBaddy:
		return dodge(s.Combat)
	default:
		p.chosen = false
		return input.None
	}
}

func (p *Pilot) chooseSide(v *dungeon.View) input.Action {
	if p.strategy == StrategyCautious && v != nil && v.Left != nil && v.Right != nil {
		l, r := score(v.Left.Inhabitant), score(v.Right.Inhabitant)
		switch {
		case l > r:
			return input.TurnLeft
		case r > l:
			return input.TurnRight
		}
	}
	if p.src.Intn(2) == 0 {
		return input.TurnLeft
	}
	return input.TurnRight
}

// score ranks an apparent inhabitant by desirability.
func score(inh dungeon.Inhabitant) int {
	switch inh.Kind {
	case dungeon.KindTreasure:
		return 2
	case dungeon.KindEmpty:
		return 1
	default:
		return 0
	}
}

// dodge steps away from the lowest bullet still above the player that is
// within threatWidth, staying inside the lateral bound.
func dodge(c *crawler.CombatView) input.Snapshot {
	if c == nil || !c.Armed {
		return input.None
	}
	threat := -1
	for i, b := range c.Bullets {
		if b.Y < 0 || math.Abs(b.X-c.PlayerX) > threatWidth {
			continue
		}
		if threat < 0 || b.Y < c.Bullets[threat].Y {
			threat = i
		}
	}
	if threat < 0 {
		return input.None
	}
	b := c.Bullets[threat]
	goLeft := b.X >= c.PlayerX
	const edge = 0.05
	if goLeft && c.PlayerX <= -c.LateralBound+edge {
		goLeft = false
	} else if !goLeft && c.PlayerX >= c.LateralBound-edge {
		goLeft = true
	}
	if goLeft {
		return input.Held(input.TurnLeft)
	}
	return input.Held(input.TurnRight)
}
