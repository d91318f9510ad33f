// Package dungeon implements the lazily materialized branching hallway graph
// and the random content generator that populates it.
package dungeon

// Item is a treasure item.
type Item int

const (
	ItemLightSource Item = iota
	ItemSpeedBoots
	ItemHealthPotion
	// ItemDisguisedFoeTrap is the decoy reveal of a disguised foe. It is never
	// drawn from the treasure table and never enters an inventory.
	ItemDisguisedFoeTrap
)

// String returns the display name of the item.
func (i Item) String() string {
	switch i {
	case ItemLightSource:
		return "light source"
	case ItemSpeedBoots:
		return "speed boots"
	case ItemHealthPotion:
		return "health potion"
	case ItemDisguisedFoeTrap:
		return "trap"
	default:
		return "unknown"
	}
}

// FoeKind distinguishes ordinary foes from foes disguised as treasure.
type FoeKind int

const (
	FoeOrdinary FoeKind = iota
	FoeDisguised
)

// String returns a human-readable foe kind label.
func (k FoeKind) String() string {
	if k == FoeDisguised {
		return "disguised"
	}
	return "ordinary"
}

// Kind is the tag of the Inhabitant variant.
type Kind int

const (
	KindEmpty Kind = iota
	KindTreasure
	KindFoe
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindTreasure:
		return "treasure"
	case KindFoe:
		return "foe"
	default:
		return "unknown"
	}
}

// Inhabitant is the closed variant {Empty, Treasure{Item}, Foe{FoeKind}}.
// Only the payload matching Kind is meaningful.
type Inhabitant struct {
	Kind Kind
	// Item is the payload of KindTreasure.
	Item Item
	// Foe is the payload of KindFoe.
	Foe FoeKind
	// Revealed is set on a disguised foe once its decoy reveal has been shown.
	Revealed bool
}

// Empty returns the Empty inhabitant.
func Empty() Inhabitant { return Inhabitant{Kind: KindEmpty} }

// Treasure returns a Treasure inhabitant holding item.
func Treasure(item Item) Inhabitant { return Inhabitant{Kind: KindTreasure, Item: item} }

// Foe returns a Foe inhabitant of the given kind.
func Foe(kind FoeKind) Inhabitant { return Inhabitant{Kind: KindFoe, Foe: kind} }

// IsEmpty reports whether the inhabitant is Empty.
func (i Inhabitant) IsEmpty() bool { return i.Kind == KindEmpty }

// Disguised reports whether the inhabitant is a foe that still looks like treasure.
func (i Inhabitant) Disguised() bool {
	return i.Kind == KindFoe && i.Foe == FoeDisguised && !i.Revealed
}

// Apparent returns what an observer sees: an unrevealed disguised foe shows as
// the decoy treasure, everything else shows as itself.
func (i Inhabitant) Apparent() Inhabitant {
	if i.Disguised() {
		return Treasure(ItemDisguisedFoeTrap)
	}
	return i
}

// String returns a compact label such as "treasure(speed boots)".
func (i Inhabitant) String() string {
	switch i.Kind {
	case KindTreasure:
		return "treasure(" + i.Item.String() + ")"
	case KindFoe:
		return "foe(" + i.Foe.String() + ")"
	default:
		return i.Kind.String()
	}
}

// Side identifies a junction branch.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

// String returns "none", "left" or "right".
func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "none"
	}
}
