package dungeon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
	"github.com/cory-johannsen/hallcrawl/internal/game/dungeon"
)

// fixedContent hands out a preset sequence of inhabitants and records the
// difficulties it was asked for.
type fixedContent struct {
	length       int
	inhabitants  []dungeon.Inhabitant
	difficulties []int
}

func (f *fixedContent) HallwayLength(d int) int {
	f.difficulties = append(f.difficulties, d)
	return f.length
}

func (f *fixedContent) NextInhabitant() dungeon.Inhabitant {
	if len(f.inhabitants) == 0 {
		return dungeon.Empty()
	}
	next := f.inhabitants[0]
	f.inhabitants = f.inhabitants[1:]
	return next
}

func TestNewTree_Root(t *testing.T) {
	tree := dungeon.NewTree()
	root := tree.Node(tree.Root())
	assert.Equal(t, 1, tree.Len())
	assert.Equal(t, dungeon.RootLength, root.Length)
	assert.True(t, root.Inhabitant.IsEmpty())
	assert.Equal(t, dungeon.SideNone, root.EnteredFrom)
	assert.Equal(t, dungeon.NoNode, root.Left)
	assert.Equal(t, dungeon.NoNode, root.Right)
}

func TestMaterializeChildren_TagsSides(t *testing.T) {
	tree := dungeon.NewTree()
	content := &fixedContent{length: 2, inhabitants: []dungeon.Inhabitant{
		dungeon.Foe(dungeon.FoeOrdinary), dungeon.Treasure(dungeon.ItemSpeedBoots),
	}}
	l, r := tree.MaterializeChildren(tree.Root(), content, 4)

	left, right := tree.Node(l), tree.Node(r)
	assert.Equal(t, dungeon.SideLeft, left.EnteredFrom)
	assert.Equal(t, dungeon.SideRight, right.EnteredFrom)
	assert.Equal(t, dungeon.KindFoe, left.Inhabitant.Kind)
	assert.Equal(t, dungeon.Treasure(dungeon.ItemSpeedBoots), right.Inhabitant)
	assert.Equal(t, 1, left.Depth)
	assert.Equal(t, []int{4, 4}, content.difficulties)
	assert.Equal(t, l, tree.Child(tree.Root(), dungeon.SideLeft))
	assert.Equal(t, r, tree.Child(tree.Root(), dungeon.SideRight))
}

// Property: materializing twice yields the same handles and draws nothing new.
func TestMaterializeChildren_Idempotent_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tree := dungeon.NewTree()
		content := &fixedContent{length: 1}
		cur := tree.Root()
		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			l1, r1 := tree.MaterializeChildren(cur, content, i+1)
			size := tree.Len()
			draws := len(content.difficulties)
			l2, r2 := tree.MaterializeChildren(cur, content, i+1)
			assert.Equal(rt, l1, l2)
			assert.Equal(rt, r1, r2)
			assert.Equal(rt, size, tree.Len())
			assert.Equal(rt, draws, len(content.difficulties))
			if rapid.Bool().Draw(rt, "left") {
				cur = l1
			} else {
				cur = r1
			}
		}
		assert.Equal(rt, 1+2*steps, tree.Len())
	})
}

func TestMaterializeChildren_ClampsLength(t *testing.T) {
	tree := dungeon.NewTree()
	l, _ := tree.MaterializeChildren(tree.Root(), &fixedContent{length: 0}, 1)
	assert.Equal(t, 1, tree.Node(l).Length)
}

func TestClearInhabitant(t *testing.T) {
	tree := dungeon.NewTree()
	l, _ := tree.MaterializeChildren(tree.Root(), &fixedContent{length: 1, inhabitants: []dungeon.Inhabitant{
		dungeon.Treasure(dungeon.ItemHealthPotion),
	}}, 1)
	assert.Equal(t, dungeon.KindTreasure, tree.Inhabitant(l).Kind)
	assert.True(t, tree.ClearInhabitant(l))
	assert.True(t, tree.Inhabitant(l).IsEmpty())
	assert.False(t, tree.ClearInhabitant(l))
}

func TestRevealInhabitant(t *testing.T) {
	tree := dungeon.NewTree()
	l, r := tree.MaterializeChildren(tree.Root(), &fixedContent{length: 1, inhabitants: []dungeon.Inhabitant{
		dungeon.Foe(dungeon.FoeDisguised), dungeon.Foe(dungeon.FoeOrdinary),
	}}, 1)
	assert.Equal(t, dungeon.Treasure(dungeon.ItemDisguisedFoeTrap), tree.Inhabitant(l).Apparent())
	assert.True(t, tree.RevealInhabitant(l))
	assert.False(t, tree.RevealInhabitant(l))
	assert.Equal(t, dungeon.KindFoe, tree.Inhabitant(l).Apparent().Kind)
	assert.False(t, tree.RevealInhabitant(r))
}

func TestView_Depth(t *testing.T) {
	tree := dungeon.NewTree()
	content := &fixedContent{length: 2, inhabitants: []dungeon.Inhabitant{dungeon.Foe(dungeon.FoeDisguised)}}
	l, _ := tree.MaterializeChildren(tree.Root(), content, 1)
	tree.MaterializeChildren(l, content, 2)

	v := tree.View(tree.Root(), 1)
	require.NotNil(t, v.Left)
	require.NotNil(t, v.Right)
	assert.Nil(t, v.Left.Left, "depth 1 must stop below the children")
	assert.Equal(t, dungeon.KindTreasure, v.Left.Inhabitant.Kind, "disguised foe shows as treasure")

	deep := tree.View(tree.Root(), 2)
	require.NotNil(t, deep.Left.Left)
	assert.Nil(t, deep.Right.Left, "unmaterialized children stay nil")
}

func TestNode_PanicsOnBadHandle(t *testing.T) {
	tree := dungeon.NewTree()
	assert.Panics(t, func() { tree.Node(5) })
	assert.Panics(t, func() { tree.Child(tree.Root(), dungeon.SideNone) })
}

func TestTree_WithGenerator(t *testing.T) {
	tree := dungeon.NewTree()
	gen := newGenerator(dice.NewSeededSource(3))
	cur := tree.Root()
	for d := 1; d <= 50; d++ {
		l, _ := tree.MaterializeChildren(cur, gen, d)
		n := tree.Node(l)
		assert.GreaterOrEqual(t, n.Length, 1+d/10)
		assert.LessOrEqual(t, n.Length, 3+d/10)
		cur = l
	}
}
