package dungeon

import "fmt"

// NodeID is a stable handle to a node in a Tree.
type NodeID int32

// NoNode marks an absent child.
const NoNode NodeID = -1

// RootLength is the length of the hallway every playthrough starts in.
const RootLength = 3

// Content supplies the length and inhabitant of newly materialized hallways.
// *Generator satisfies it.
type Content interface {
	HallwayLength(difficulty int) int
	NextInhabitant() Inhabitant
}

// Node is one hallway segment run ending in a junction.
type Node struct {
	Length     int
	Inhabitant Inhabitant
	Left       NodeID
	Right      NodeID
	// EnteredFrom records which branch of the parent junction leads here. It is
	// set at creation and never changes.
	EnteredFrom Side
	// Depth is the number of junctions between the root and this node.
	Depth int
}

// Tree is an append-only binary tree of hallways stored in an arena.
// Children are only ever added, never replaced or pruned; dropping the Tree
// discards the whole dungeon.
//
// A Tree is owned by one playthrough and is not safe for concurrent use.
type Tree struct {
	nodes []Node
}

// NewTree creates a tree holding only the root hallway: length RootLength,
// Empty, entered from nowhere.
//
// Postcondition: Len() == 1 and Root() is valid.
func NewTree() *Tree {
	return &Tree{nodes: []Node{{
		Length:      RootLength,
		Inhabitant:  Empty(),
		Left:        NoNode,
		Right:       NoNode,
		EnteredFrom: SideNone,
	}}}
}

// Root returns the root node handle.
func (t *Tree) Root() NodeID { return 0 }

// Len returns the number of materialized nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns a copy of the node with the given handle.
//
// Precondition: id must be a handle returned by this tree.
func (t *Tree) Node(id NodeID) Node {
	return *t.node(id)
}

func (t *Tree) node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		panic(fmt.Sprintf("dungeon: invalid node handle %d", id))
	}
	return &t.nodes[id]
}

// Child returns the child on side, or NoNode if it has not been materialized.
//
// Precondition: side is SideLeft or SideRight.
func (t *Tree) Child(id NodeID, side Side) NodeID {
	n := t.node(id)
	switch side {
	case SideLeft:
		return n.Left
	case SideRight:
		return n.Right
	default:
		panic("dungeon: Child called with SideNone")
	}
}

// MaterializeChildren creates whichever children of id are absent, drawing
// each one's length and inhabitant from content at difficulty. Existing
// children are kept, so repeated calls return the same handles.
//
// Postcondition: both returned handles are valid and stable.
func (t *Tree) MaterializeChildren(id NodeID, content Content, difficulty int) (left, right NodeID) {
	if t.node(id).Left == NoNode {
		child := t.spawn(id, SideLeft, content, difficulty)
		t.node(id).Left = child
	}
	if t.node(id).Right == NoNode {
		child := t.spawn(id, SideRight, content, difficulty)
		t.node(id).Right = child
	}
	n := t.node(id)
	return n.Left, n.Right
}

// spawn appends a new child node. It re-reads the parent through the arena
// afterwards because append may move the backing array.
func (t *Tree) spawn(parent NodeID, side Side, content Content, difficulty int) NodeID {
	depth := t.node(parent).Depth + 1
	length := content.HallwayLength(difficulty)
	if length < 1 {
		length = 1
	}
	t.nodes = append(t.nodes, Node{
		Length:      length,
		Inhabitant:  content.NextInhabitant(),
		Left:        NoNode,
		Right:       NoNode,
		EnteredFrom: side,
		Depth:       depth,
	})
	return NodeID(len(t.nodes) - 1)
}

// Inhabitant returns the inhabitant of id without changing it.
func (t *Tree) Inhabitant(id NodeID) Inhabitant {
	return t.node(id).Inhabitant
}

// ClearInhabitant sets the inhabitant of id to Empty. It reports whether the
// node had anything to clear.
func (t *Tree) ClearInhabitant(id NodeID) bool {
	n := t.node(id)
	if n.Inhabitant.IsEmpty() {
		return false
	}
	n.Inhabitant = Empty()
	return true
}

// RevealInhabitant marks a disguised foe at id as revealed. It reports whether
// anything changed.
func (t *Tree) RevealInhabitant(id NodeID) bool {
	n := t.node(id)
	if !n.Inhabitant.Disguised() {
		return false
	}
	n.Inhabitant.Revealed = true
	return true
}

// View is a read-only snapshot of a subtree for renderers.
type View struct {
	ID          NodeID
	Length      int
	Inhabitant  Inhabitant // apparent inhabitant
	EnteredFrom Side
	Depth       int
	// Left and Right are nil when the child is absent or beyond the requested depth.
	Left  *View
	Right *View
}

// View snapshots id and its materialized descendants down to depth levels
// below it. depth 0 yields only id itself.
func (t *Tree) View(id NodeID, depth int) *View {
	n := t.node(id)
	v := &View{
		ID:          id,
		Length:      n.Length,
		Inhabitant:  n.Inhabitant.Apparent(),
		EnteredFrom: n.EnteredFrom,
		Depth:       n.Depth,
	}
	if depth > 0 {
		if n.Left != NoNode {
			v.Left = t.View(n.Left, depth-1)
		}
		if n.Right != NoNode {
			v.Right = t.View(n.Right, depth-1)
		}
	}
	return v
}
