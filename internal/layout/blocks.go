package layout

import "github.com/emberhall/ember/internal/chatcore"

// Focus is the sub-range of a block's rows that should be considered
// "the interesting part" for visibility corrections, e.g. the single
// line an editor's text cursor sits on within a taller, wrapped box.
// Both ends are 0-based, relative to the block's own top.
type Focus struct {
	Start int
	End   int // exclusive
}

// Block is one rendered item in a TreeBlocks listing: a stable id, its
// height in screen rows, its absolute top line within the current
// layout pass's coordinate space (which may be negative or beyond the
// viewport — clamping happens later), and its focus range.
type Block struct {
	ID      BlockID
	Height  int
	TopLine int
	Focus   Focus
}

func (b Block) bottomLine() int { return b.TopLine + b.Height - 1 }

// RootKind discriminates whether a TreeBlocks edge touches the
// locked-to-viewport bottom marker or a specific message tree.
type RootKind int

const (
	RootBottom RootKind = iota
	RootTree
)

// Root identifies one edge (top or bottom) of a TreeBlocks listing.
type Root struct {
	Kind   RootKind
	TreeID chatcore.MessageID // valid iff Kind == RootTree
}

func treeRoot(id chatcore.MessageID) Root { return Root{Kind: RootTree, TreeID: id} }

// TreeBlocks is a doubly-extendable ordered list of blocks, covering a
// contiguous run of screen lines, tagged with the logical root (a
// message tree, or the bottom-of-room marker) at each end. Expanding up
// or down prepends/appends a whole tree's worth of blocks at a time
// (§4.5's "expand to top"/"expand to bottom").
type TreeBlocks struct {
	topRoot    Root
	bottomRoot Root
	blocks     []Block
}

// NewTreeBlocks creates an empty listing tagged with the given root at
// both ends (the common case: one tree or the bottom marker, not yet
// expanded in either direction).
func NewTreeBlocks(root Root) *TreeBlocks {
	return &TreeBlocks{topRoot: root, bottomRoot: root}
}

// Blocks returns the listing's blocks in top-to-bottom order.
func (tb *TreeBlocks) Blocks() []Block { return tb.blocks }

func (tb *TreeBlocks) TopRoot() Root    { return tb.topRoot }
func (tb *TreeBlocks) BottomRoot() Root { return tb.bottomRoot }

// TopLine returns the first block's top line, or 0 for an empty listing.
func (tb *TreeBlocks) TopLine() int {
	if len(tb.blocks) == 0 {
		return 0
	}
	return tb.blocks[0].TopLine
}

// BottomLine returns the last block's bottom line, or -1 for an empty
// listing (one line above an empty viewport's first line).
func (tb *TreeBlocks) BottomLine() int {
	if len(tb.blocks) == 0 {
		return -1
	}
	return tb.blocks[len(tb.blocks)-1].bottomLine()
}

// Push appends a block directly below the current last block, used
// while building a single tree's or the bottom marker's blocks from
// scratch (layoutTree/layoutBottom), not for splicing whole listings
// together — see Append/Prepend for that.
func (tb *TreeBlocks) Push(id BlockID, height int, focus Focus) {
	top := 0
	if len(tb.blocks) > 0 {
		last := tb.blocks[len(tb.blocks)-1]
		top = last.TopLine + last.Height
	}
	tb.blocks = append(tb.blocks, Block{ID: id, Height: height, TopLine: top, Focus: focus})
}

// Find returns the block with the given id, if present.
func (tb *TreeBlocks) Find(id BlockID) (Block, bool) {
	for _, b := range tb.blocks {
		if b.ID == id {
			return b, true
		}
	}
	return Block{}, false
}

// Offset shifts every block's top line by delta.
func (tb *TreeBlocks) Offset(delta int) {
	if delta == 0 {
		return
	}
	for i := range tb.blocks {
		tb.blocks[i].TopLine += delta
	}
}

// SetTopLine shifts the whole listing so its first block's top line
// becomes line.
func (tb *TreeBlocks) SetTopLine(line int) {
	if len(tb.blocks) == 0 {
		return
	}
	tb.Offset(line - tb.blocks[0].TopLine)
}

// SetBottomLine shifts the whole listing so its last block's bottom
// line becomes line.
func (tb *TreeBlocks) SetBottomLine(line int) {
	if len(tb.blocks) == 0 {
		return
	}
	tb.Offset(line - tb.BottomLine())
}

// RecalculateOffsets shifts the whole listing so the block identified
// by id has the given top line.
func (tb *TreeBlocks) RecalculateOffsets(id BlockID, line int) {
	block, ok := tb.Find(id)
	if !ok {
		return
	}
	tb.Offset(line - block.TopLine)
}

// Append splices other's blocks immediately below this listing's last
// block, and adopts other's bottom root as the combined listing's new
// bottom root. other is assumed freshly built (its own first block's
// top line is 0).
func (tb *TreeBlocks) Append(other *TreeBlocks) {
	shift := 0
	if len(tb.blocks) > 0 {
		last := tb.blocks[len(tb.blocks)-1]
		shift = last.TopLine + last.Height
	}
	for _, b := range other.blocks {
		b.TopLine += shift
		tb.blocks = append(tb.blocks, b)
	}
	tb.bottomRoot = other.bottomRoot
}

// Prepend splices other's blocks immediately above this listing's first
// block, and adopts other's top root as the combined listing's new top
// root. other is assumed freshly built (its own first block's top line
// is 0).
func (tb *TreeBlocks) Prepend(other *TreeBlocks) {
	if len(other.blocks) == 0 {
		tb.topRoot = other.topRoot
		return
	}
	otherLast := other.blocks[len(other.blocks)-1]
	otherHeight := otherLast.TopLine + otherLast.Height

	existingTop := 0
	if len(tb.blocks) > 0 {
		existingTop = tb.blocks[0].TopLine
	}
	shift := existingTop - otherHeight

	shifted := make([]Block, len(other.blocks))
	for i, b := range other.blocks {
		b.TopLine += shift
		shifted[i] = b
	}
	tb.blocks = append(shifted, tb.blocks...)
	tb.topRoot = other.topRoot
}
