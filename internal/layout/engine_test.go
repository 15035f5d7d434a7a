package layout

import (
	"testing"

	"github.com/emberhall/ember/internal/chatcore"
	"github.com/emberhall/ember/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(t uint64, parent *chatcore.MessageID, content string) chatcore.Message {
	return chatcore.Message{Time: t, Parent: parent, Content: content, Nick: "n", Identity: chatcore.IdentityOf("n")}
}

func independentTrees(n int) []chatcore.Message {
	msgs := make([]chatcore.Message, n)
	for i := 0; i < n; i++ {
		msgs[i] = msg(uint64(i+1), nil, "m")
	}
	return msgs
}

// TestRelayoutCentersCursorOnSelectedMessage mirrors spec.md's worked
// scenario S6: with a viewport exactly as tall as the room's history
// and the cursor jumped to a message already mid-list, a CenterCursor
// pass must place that message's block at (H-height)/2.
func TestRelayoutCentersCursorOnSelectedMessage(t *testing.T) {
	msgs := independentTrees(10)
	mem := store.NewMemory(msgs)
	state := NewState(mem, LineRenderer{}, 80)

	const h = 10
	_, err := state.Relayout(h) // settle at the bottom first, as a freshly opened room would

	require.NoError(t, err)

	target := msgs[5].ID()
	state.SetCursor(Cursor{Kind: CursorMsg, MsgID: target})
	state.RequestCorrection(CorrectionCenterCursor)

	layout, err := state.Relayout(h)
	require.NoError(t, err)

	block, ok := findBlock(layout.Blocks, MsgBlockID(target))
	require.True(t, ok)
	assert.Equal(t, (h-block.Height)/2, block.TopLine)
	assert.Equal(t, block.TopLine, layout.CursorLine)
	assert.Contains(t, state.LastVisibleMsgs(), target)
}

// TestRelayoutMovesCursorOffScreenMessageIntoView mirrors S7: a cursor
// sitting on a message within the scrolloff margin (simulating a
// resize that narrowed the margin out from under it) is snapped
// forward to the nearest message that actually lands inside the
// visible range instead of staying in the margin.
func TestRelayoutMovesCursorOffScreenMessageIntoView(t *testing.T) {
	msgs := independentTrees(40)
	mem := store.NewMemory(msgs)
	state := NewState(mem, LineRenderer{}, 80)

	const h = 20 // scrolloff(20) == 2, giving a real margin to violate
	require.Equal(t, 2, scrolloff(h))

	_, err := state.Relayout(h) // settle at the bottom: shows the most recent messages
	require.NoError(t, err)

	anchor := msgs[21].ID()
	state.SetCursor(Cursor{Kind: CursorMsg, MsgID: anchor})
	state.RequestCorrection(CorrectionNone)
	_, err = state.Relayout(h) // cursor now sits at top_line 0, inside the margin
	require.NoError(t, err)

	state.RequestCorrection(CorrectionMoveCursorToVisibleArea)
	layout, err := state.Relayout(h)
	require.NoError(t, err)

	want := msgs[23].ID()
	cur := state.Cursor()
	require.Equal(t, CursorMsg, cur.Kind)
	assert.Equal(t, want, cur.MsgID)

	block, ok := findBlock(layout.Blocks, MsgBlockID(want))
	require.True(t, ok)
	off := scrolloff(h)
	assert.GreaterOrEqual(t, block.TopLine, off)
	assert.LessOrEqual(t, block.bottomLine(), h-1-off)
}

func TestRelayoutIsStableAcrossRepeatedPasses(t *testing.T) {
	mem := store.NewMemory(independentTrees(1))
	state := NewState(mem, LineRenderer{}, 80)

	const h = 10
	first, err := state.Relayout(h)
	require.NoError(t, err)

	second, err := state.Relayout(h)
	require.NoError(t, err)

	assert.Equal(t, first.Blocks, second.Blocks, "relaying out again with no input change must not move anything")
}

// TestRelayoutFoldHidesDescendants mirrors spec.md testable property
// #12: folding a message hides its entire subtree from the visible
// block list, not just collapses its own height.
func TestRelayoutFoldHidesDescendants(t *testing.T) {
	root := msg(1, nil, "root")
	rootID := root.ID()
	child := msg(2, &rootID, "child")
	childID := child.ID()
	grandchild := msg(3, &childID, "grandchild")

	mem := store.NewMemory([]chatcore.Message{root, child, grandchild})
	state := NewState(mem, LineRenderer{}, 80)

	const h = 10
	layout, err := state.Relayout(h)
	require.NoError(t, err)

	_, ok := findBlock(layout.Blocks, MsgBlockID(childID))
	require.True(t, ok, "child is visible before folding")
	_, ok = findBlock(layout.Blocks, MsgBlockID(grandchild.ID()))
	require.True(t, ok, "grandchild is visible before folding")

	state.Fold(rootID)
	layout, err = state.Relayout(h)
	require.NoError(t, err)

	_, ok = findBlock(layout.Blocks, MsgBlockID(rootID))
	assert.True(t, ok, "the folded message itself stays visible")
	_, ok = findBlock(layout.Blocks, MsgBlockID(childID))
	assert.False(t, ok, "child is hidden once its parent is folded")
	_, ok = findBlock(layout.Blocks, MsgBlockID(grandchild.ID()))
	assert.False(t, ok, "grandchild is hidden once its ancestor is folded")

	assert.NotContains(t, state.LastVisibleMsgs(), childID)
	assert.NotContains(t, state.LastVisibleMsgs(), grandchild.ID())
}

func findBlock(blocks []Block, id BlockID) (Block, bool) {
	for _, b := range blocks {
		if b.ID == id {
			return b, true
		}
	}
	return Block{}, false
}
