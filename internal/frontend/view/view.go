// Package view turns a crawler Scene into a frontend-neutral text frame that
// the telnet and terminal frontends style and draw.
package view

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
	"github.com/cory-johannsen/hallcrawl/internal/game/dungeon"
	"github.com/cory-johannsen/hallcrawl/internal/records"
)

// Tone selects the accent colour of a frame.
type Tone int

const (
	ToneNormal Tone = iota
	ToneGood
	ToneDanger
	ToneMuted
)

// Frame is one rendered screen.
type Frame struct {
	Banner    string
	Tone      Tone
	Status    string
	Inventory string
	// Body is the corridor map or the combat arena.
	Body    []string
	Message string
	Hint    string
}

// Lines flattens f into plain text lines.
func (f Frame) Lines() []string {
	out := []string{f.Banner, f.Status, f.Inventory, ""}
	out = append(out, f.Body...)
	out = append(out, "", f.Message, f.Hint)
	return out
}

// Arena geometry in characters.
const (
	ArenaWidth  = 21
	ArenaHeight = 10
	arenaTop    = 3.0
)

// Build renders s.
func Build(s crawler.Scene) Frame {
	f := Frame{
		Banner:    banner(s.State),
		Tone:      tone(s.State),
		Status:    status(s),
		Inventory: inventory(s),
		Hint:      hint(s.State),
	}
	switch s.State {
	case crawler.StateTitle:
		f.Body = titleArt()
		f.Message = "Press enter to descend."
	case crawler.StateBaddy, crawler.StateBattleWin:
		f.Body = Arena(s.Combat)
		f.Message = combatMessage(s)
	case crawler.StateLose, crawler.StateGameOver:
		f.Body = corridor(s)
		f.Message = fmt.Sprintf("You fell after %d junctions at difficulty %d.", s.Stats.Junctions, s.Difficulty)
	default:
		f.Body = corridor(s)
		f.Message = announcement(s)
	}
	return f
}

// WithLeaderboard appends the leaderboard to a GameOver frame. Other frames
// and an empty leaderboard are returned unchanged.
func WithLeaderboard(f Frame, s crawler.Scene, top []records.Run) Frame {
	if s.State != crawler.StateGameOver || len(top) == 0 {
		return f
	}
	f.Body = append(slices.Clip(f.Body), "")
	f.Body = append(f.Body, Leaderboard(top, s.PlaythroughID)...)
	return f
}

// Leaderboard formats ranked runs, marking the run with id current.
func Leaderboard(top []records.Run, current string) []string {
	lines := []string{"  DEEPEST DESCENTS"}
	for i, r := range top {
		mark := " "
		if r.PlaythroughID == current {
			mark = "*"
		}
		lines = append(lines, fmt.Sprintf("%s %d. %3d junctions  diff %-3d %6.1fs  %s",
			mark, i+1, r.Junctions, r.Difficulty, r.Elapsed, r.FinishedAt.Format("2006-01-02")))
	}
	return lines
}

func banner(st crawler.State) string {
	switch st {
	case crawler.StateTitle:
		return "H A L L C R A W L"
	case crawler.StateTreasure, crawler.StateTreasureGet:
		return "TREASURE"
	case crawler.StateBaddy:
		return "AMBUSH"
	case crawler.StateBattleWin:
		return "VICTORY"
	case crawler.StateLose:
		return "YOU HAVE FALLEN"
	case crawler.StateGameOver:
		return "GAME OVER"
	case crawler.StateWhichWay:
		return "JUNCTION"
	default:
		return "HALLWAY"
	}
}

func tone(st crawler.State) Tone {
	switch st {
	case crawler.StateTreasure, crawler.StateTreasureGet, crawler.StateBattleWin:
		return ToneGood
	case crawler.StateBaddy, crawler.StateLose:
		return ToneDanger
	case crawler.StateGameOver, crawler.StateTitle:
		return ToneMuted
	default:
		return ToneNormal
	}
}

func status(s crawler.Scene) string {
	hearts := strings.Repeat("♥", max(s.Health, 0))
	return fmt.Sprintf("HP %-6s DEPTH %-3d DIFF %-3d SPEED %.0f  LAMP %.1f", hearts, s.Stats.Junctions, s.Difficulty, s.Speed, s.DimRadius)
}

func inventory(s crawler.Scene) string {
	if len(s.Inventory) == 0 {
		return "Pack: empty"
	}
	parts := make([]string, 0, len(s.Inventory))
	for _, ic := range s.Inventory {
		parts = append(parts, fmt.Sprintf("%s x%d", itemName(ic.Item), ic.Count))
	}
	return "Pack: " + strings.Join(parts, ", ")
}

func hint(st crawler.State) string {
	switch st {
	case crawler.StateTitle:
		return "[enter] start  [q] quit"
	case crawler.StateWhichWay:
		return "[a/←] left  [d/→] right  [r] restart  [q] quit"
	case crawler.StateBaddy:
		return "hold [a/←] or [d/→] to dodge"
	case crawler.StateGameOver:
		return "[r] try again  [q] quit"
	default:
		return "[f] fast-forward  [r] restart  [q] quit"
	}
}

func itemName(item dungeon.Item) string {
	switch item {
	case dungeon.ItemLightSource:
		return "Lantern Oil"
	case dungeon.ItemSpeedBoots:
		return "Swift Boots"
	case dungeon.ItemHealthPotion:
		return "Healing Draught"
	case dungeon.ItemDisguisedFoeTrap:
		return "Glittering Chest"
	default:
		return item.String()
	}
}

func announcement(s crawler.Scene) string {
	a := s.Announcement
	if a == nil {
		if s.State == crawler.StateWhichWay {
			return "The hallway splits."
		}
		return ""
	}
	if !a.Revealed {
		return "Something glints ahead..."
	}
	if a.Decoy {
		return "The chest grows teeth!"
	}
	return fmt.Sprintf("You found %s!", itemName(a.Item))
}

func combatMessage(s crawler.Scene) string {
	c := s.Combat
	if c == nil {
		return ""
	}
	if s.State == crawler.StateBattleWin {
		return fmt.Sprintf("The foe retreats. %d dodged, %d hit.", c.Misses, c.Hits)
	}
	if !c.Armed {
		if c.Disguised {
			return "It was a mimic!"
		}
		return "A foe blocks the way!"
	}
	return fmt.Sprintf("%d incoming", len(c.Bullets))
}

// visibility describes what the lamp reveals at a distance.
func visibility(s crawler.Scene, distance float64, inh dungeon.Inhabitant) string {
	switch {
	case distance <= s.BrightRadius:
		return describe(inh)
	case distance <= s.DimRadius:
		return "a shape"
	default:
		return "darkness"
	}
}

func describe(inh dungeon.Inhabitant) string {
	switch inh.Kind {
	case dungeon.KindTreasure:
		return "treasure"
	case dungeon.KindFoe:
		return "a foe"
	default:
		return "empty"
	}
}

// corridor draws the current hallway as a vertical strip with the junction
// and its two branches at the top.
func corridor(s crawler.Scene) []string {
	h := s.Hallway
	if h == nil {
		return nil
	}
	toJunction := s.JunctionDistance - s.Position.Z

	left, right := "?", "?"
	if h.Left != nil {
		left = visibility(s, toJunction, h.Left.Inhabitant)
	}
	if h.Right != nil {
		right = visibility(s, toJunction, h.Right.Inhabitant)
	}

	lines := []string{
		fmt.Sprintf("%18s   %-18s", "◄ "+left, right+" ►"),
		fmt.Sprintf("%20s%s%s", "═════════╗", yawMarker(s.Yaw), "╔═════════"),
	}

	rows := int(math.Round(s.JunctionDistance / crawler.SegmentLength * 2))
	if rows < 1 {
		rows = 1
	}
	playerRow := int(math.Round((1 - s.Position.Z/s.JunctionDistance) * float64(rows)))
	encounterRow := int(math.Round((1 - s.PreJunctionDistance/s.JunctionDistance) * float64(rows)))
	for r := 0; r <= rows; r++ {
		mid := " "
		switch {
		case r == playerRow:
			mid = "@"
		case r == encounterRow && !h.Inhabitant.IsEmpty():
			mid = glyph(visibility(s, s.PreJunctionDistance-s.Position.Z, h.Inhabitant))
		}
		lines = append(lines, fmt.Sprintf("%19s %s %s", "║", mid, "║"))
	}
	return lines
}

func yawMarker(yaw float64) string {
	switch {
	case yaw > 1:
		return "◄"
	case yaw < -1:
		return "►"
	default:
		return "^"
	}
}

func glyph(seen string) string {
	switch seen {
	case "treasure":
		return "$"
	case "a foe":
		return "&"
	case "a shape":
		return "?"
	default:
		return " "
	}
}

func titleArt() []string {
	return []string{
		`      ║     ║      `,
		`   ═══╝     ╚═══   `,
		`                   `,
		`   ═══╗     ╔═══   `,
		`      ║  @  ║      `,
		`      ║     ║      `,
	}
}

// Arena draws the bullet-dodge field: bullets as '*', the player as 'A' on
// the bottom row.
func Arena(c *crawler.CombatView) []string {
	if c == nil {
		return nil
	}
	grid := make([][]rune, ArenaHeight)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", ArenaWidth))
	}
	col := func(x float64) int {
		bound := c.LateralBound
		if bound <= 0 {
			bound = 1
		}
		n := int(math.Round((x + bound) / (2 * bound) * float64(ArenaWidth-1)))
		return min(max(n, 0), ArenaWidth-1)
	}
	for _, b := range c.Bullets {
		if b.Y > arenaTop || b.Y < 0 {
			continue
		}
		r := int(math.Round((arenaTop - b.Y) / arenaTop * float64(ArenaHeight-1)))
		grid[r][col(b.X)] = '*'
	}
	grid[ArenaHeight-1][col(c.PlayerX)] = 'A'

	lines := make([]string, 0, ArenaHeight+2)
	lines = append(lines, "┌"+strings.Repeat("─", ArenaWidth)+"┐")
	for _, row := range grid {
		lines = append(lines, "│"+string(row)+"│")
	}
	lines = append(lines, "└"+strings.Repeat("─", ArenaWidth)+"┘")
	return lines
}
