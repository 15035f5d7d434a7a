package store

import (
	"testing"

	"github.com/emberhall/ember/internal/chatcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(t uint64, parent *chatcore.MessageID, content string) chatcore.Message {
	return chatcore.Message{Time: t, Parent: parent, Content: content, Nick: "n", Identity: chatcore.IdentityOf("n")}
}

func TestMemoryBuildsTreesFromFlatMessages(t *testing.T) {
	root1 := msg(1, nil, "root1")
	root1ID := root1.ID()
	child1 := msg(2, &root1ID, "child1")
	child1ID := child1.ID()
	grandchild := msg(3, &child1ID, "grandchild")

	root2 := msg(4, nil, "root2")

	m := NewMemory([]chatcore.Message{root1, child1, grandchild, root2})

	last, ok := m.LastTreeID()
	require.True(t, ok)
	assert.Equal(t, root2.ID(), last)

	prev, ok := m.PrevTreeID(root2.ID())
	require.True(t, ok)
	assert.Equal(t, root1ID, prev)

	_, ok = m.PrevTreeID(root1ID)
	assert.False(t, ok)

	tree, err := m.Tree(root1ID)
	require.NoError(t, err)
	assert.Equal(t, root1ID, tree.Root())
	kids := tree.Children(root1ID)
	require.Len(t, kids, 1)
	assert.Equal(t, child1ID, kids[0])
	assert.Equal(t, 2, tree.SubtreeSize(root1ID))

	path, err := m.Path(grandchild.ID())
	require.NoError(t, err)
	assert.Equal(t, 3, path.Len())
	assert.Equal(t, root1ID, path.First())
	assert.Equal(t, grandchild.ID(), path.Last())
}

func TestMemoryTreeNotFound(t *testing.T) {
	m := NewMemory(nil)
	_, err := m.Tree(chatcore.MessageID{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPathOrderingSentinelSortsLast(t *testing.T) {
	a := chatcore.MessageID{1}
	b := chatcore.MessageID{2}
	last := chatcore.LastPossibleMessageID()

	p1 := NewPath([]chatcore.MessageID{a, b})
	p2 := NewPath([]chatcore.MessageID{a, last})

	assert.True(t, p1.Less(p2))
	assert.False(t, p2.Less(p1))
}

func TestPathPrefixSortsBeforeLonger(t *testing.T) {
	a := chatcore.MessageID{1}
	b := chatcore.MessageID{2}

	parent := NewPath([]chatcore.MessageID{a})
	child := NewPath([]chatcore.MessageID{a, b})

	assert.True(t, parent.Less(child))
	assert.Equal(t, parent, child.ParentSegments())
}

func TestPathEqual(t *testing.T) {
	a := chatcore.MessageID{1}
	p1 := NewPath([]chatcore.MessageID{a})
	p2 := NewPath([]chatcore.MessageID{a})
	assert.True(t, p1.Equal(p2))
}
