// Package combat implements the bullet-dodge encounter sub-simulation.
package combat

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
)

// Config holds the tuning of an encounter. All distances are in arena units
// where the player dodges along y == 0.
type Config struct {
	// ArmingDelay is the simulation time before bullets move and the player can dodge.
	ArmingDelay float64
	// PlayerSpeed is the lateral dodge speed.
	PlayerSpeed float64
	// LateralBound clamps the player and bullet spawn x to [-LateralBound, LateralBound].
	LateralBound float64
	// HitRadius is the bullet/player distance that counts as a hit.
	HitRadius float64
	// SpawnTop is the starting height of the first bullet.
	SpawnTop float64
	// SpawnStagger is the extra starting height added per bullet.
	SpawnStagger float64
	// BottomBound is the height below which a bullet has missed.
	BottomBound float64
	// FallBase and FallPerDifficulty give fall speed = FallBase + FallPerDifficulty*difficulty.
	FallBase          float64
	FallPerDifficulty float64
	// BulletsBase and BulletsPerDifficulty give count = BulletsPerDifficulty*difficulty + BulletsBase.
	BulletsBase          int
	BulletsPerDifficulty int
}

// DefaultConfig returns the standard encounter tuning.
func DefaultConfig() Config {
	return Config{
		ArmingDelay:          0.5,
		PlayerSpeed:          2.0,
		LateralBound:         1.0,
		HitRadius:            0.15,
		SpawnTop:             2.0,
		SpawnStagger:         0.6,
		BottomBound:          -0.5,
		FallBase:             1.0,
		FallPerDifficulty:    0.25,
		BulletsBase:          1,
		BulletsPerDifficulty: 3,
	}
}

// Validate checks the encounter tuning.
//
// Postcondition: Returns nil if cfg is usable, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	if c.ArmingDelay < 0 {
		errs = append(errs, "arming_delay must not be negative")
	}
	if c.PlayerSpeed <= 0 {
		errs = append(errs, "player_speed must be > 0")
	}
	if c.LateralBound <= 0 {
		errs = append(errs, "lateral_bound must be > 0")
	}
	if c.HitRadius <= 0 {
		errs = append(errs, "hit_radius must be > 0")
	}
	if c.BottomBound >= 0 {
		errs = append(errs, "bottom_bound must be below the player line")
	}
	if c.SpawnTop <= c.HitRadius {
		errs = append(errs, "spawn_top must be above the hit radius")
	}
	if c.SpawnStagger < 0 {
		errs = append(errs, "spawn_stagger must not be negative")
	}
	if c.FallBase <= 0 || c.FallPerDifficulty < 0 {
		errs = append(errs, "fall speed must be positive and non-decreasing in difficulty")
	}
	if c.BulletsBase < 0 || c.BulletsPerDifficulty < 0 || c.BulletsBase+c.BulletsPerDifficulty < 1 {
		errs = append(errs, "bullet count must be at least one")
	}
	if len(errs) > 0 {
		return fmt.Errorf("combat config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// BulletCount returns the number of bullets spawned at difficulty.
func (c Config) BulletCount(difficulty int) int {
	return c.BulletsPerDifficulty*difficulty + c.BulletsBase
}

// FallSpeed returns the bullet fall speed at difficulty.
func (c Config) FallSpeed(difficulty int) float64 {
	return c.FallBase + c.FallPerDifficulty*float64(difficulty)
}

// Bullet is one falling projectile.
type Bullet struct {
	X, Y  float64
	Speed float64
	Alive bool
}

// StepResult reports what happened during one Step.
type StepResult struct {
	Hits   int
	Misses int
}

// Encounter is one bullet-dodge fight.
//
// Invariant: Bullets() holds only live bullets after every Step; a bullet's
// speed never changes after spawn.
type Encounter struct {
	cfg     Config
	arming  Countdown
	bullets []Bullet
	playerX float64
	hits    int
	misses  int
}

// NewEncounter spawns a wave for difficulty, drawing horizontal offsets from src.
//
// Precondition: cfg is valid; difficulty >= 1; src non-nil.
// Postcondition: len(Bullets()) == cfg.BulletCount(difficulty); the encounter is arming.
func NewEncounter(cfg Config, difficulty int, src dice.Source) *Encounter {
	n := cfg.BulletCount(difficulty)
	speed := cfg.FallSpeed(difficulty)
	bullets := make([]Bullet, n)
	for i := range bullets {
		bullets[i] = Bullet{
			X:     (src.Float64()*2 - 1) * cfg.LateralBound,
			Y:     cfg.SpawnTop + float64(i)*cfg.SpawnStagger,
			Speed: speed,
			Alive: true,
		}
	}
	return &Encounter{
		cfg:     cfg,
		arming:  NewCountdown(cfg.ArmingDelay),
		bullets: bullets,
	}
}

// Armed reports whether the arming delay has elapsed.
func (e *Encounter) Armed() bool { return e.arming.Expired() }

// PlayerX returns the player's lateral dodge position.
func (e *Encounter) PlayerX() float64 { return e.playerX }

// Bullets returns a copy of the live bullets.
func (e *Encounter) Bullets() []Bullet {
	out := make([]Bullet, len(e.bullets))
	copy(out, e.bullets)
	return out
}

// Live returns the number of live bullets.
func (e *Encounter) Live() int { return len(e.bullets) }

// Totals returns the hits and misses so far.
func (e *Encounter) Totals() (hits, misses int) { return e.hits, e.misses }

// Cleared reports whether the wave is over: armed and no live bullets left.
func (e *Encounter) Cleared() bool { return e.Armed() && len(e.bullets) == 0 }

// Step advances the encounter by dt seconds with the player holding dir
// (-1 left, +1 right, 0 still). While arming nothing moves.
//
// Postcondition: every bullet that hit or fell below BottomBound this step is removed.
func (e *Encounter) Step(dt float64, dir int) StepResult {
	if !e.arming.Expired() {
		e.arming.Advance(dt)
		return StepResult{}
	}

	e.playerX += float64(sign(dir)) * e.cfg.PlayerSpeed * dt
	e.playerX = math.Max(-e.cfg.LateralBound, math.Min(e.cfg.LateralBound, e.playerX))

	var res StepResult
	for i := range e.bullets {
		b := &e.bullets[i]
		b.Y -= b.Speed * dt
		switch {
		case math.Hypot(b.X-e.playerX, b.Y) <= e.cfg.HitRadius:
			b.Alive = false
			res.Hits++
		case b.Y < e.cfg.BottomBound:
			b.Alive = false
			res.Misses++
		}
	}

	live := e.bullets[:0]
	for _, b := range e.bullets {
		if b.Alive {
			live = append(live, b)
		}
	}
	e.bullets = live
	e.hits += res.Hits
	e.misses += res.Misses
	return res
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
