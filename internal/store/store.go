// Package store defines the abstract, lazy message-tree source the
// layout engine consumes (§4.4), and a deterministic in-memory
// implementation used by tests and by the vault's read path.
package store

import (
	"fmt"
	"sort"

	"github.com/emberhall/ember/internal/chatcore"
)

// Tree is an immutable snapshot of one root message and its descendants,
// obtained from a Store per layout pass and never mutated during it.
type Tree struct {
	root     chatcore.MessageID
	messages map[chatcore.MessageID]chatcore.Message
	children map[chatcore.MessageID][]chatcore.MessageID
}

// Root returns the tree's root message id.
func (t Tree) Root() chatcore.MessageID { return t.root }

// Msg returns the message with the given id. The second return value is
// false if id is not part of this tree.
func (t Tree) Msg(id chatcore.MessageID) (chatcore.Message, bool) {
	m, ok := t.messages[id]
	return m, ok
}

// Children returns id's direct children in send order (by Time, the
// order they joined the hash chain).
func (t Tree) Children(id chatcore.MessageID) []chatcore.MessageID {
	return t.children[id]
}

// SubtreeSize returns the number of descendants of id, not counting id
// itself — used for a fold's "+N hidden" indicator.
func (t Tree) SubtreeSize(id chatcore.MessageID) int {
	total := 0
	for _, child := range t.children[id] {
		total += 1 + t.SubtreeSize(child)
	}
	return total
}

// Store is the abstract source of tree snapshots the layout engine
// consumes. A concrete store is free to fetch lazily (e.g. from the
// vault, paging from disk); the layout engine never assumes the whole
// history is resident.
type Store interface {
	// Tree returns the snapshot containing the given root id.
	Tree(root chatcore.MessageID) (Tree, error)
	// PrevTreeID and NextTreeID enumerate sibling root trees in
	// timestamp order; ok is false at either end of history.
	PrevTreeID(root chatcore.MessageID) (id chatcore.MessageID, ok bool)
	NextTreeID(root chatcore.MessageID) (id chatcore.MessageID, ok bool)
	// LastTreeID returns the most recently started tree's root, or ok
	// false if the store holds no trees at all.
	LastTreeID() (id chatcore.MessageID, ok bool)
	// Path returns the root-to-node path for id.
	Path(id chatcore.MessageID) (Path, error)
}

// ErrNotFound is returned by Store methods for an id the store does not
// know about.
var ErrNotFound = fmt.Errorf("store: message not found")

// Memory is a deterministic, fully-resident in-memory Store, the single
// pluggable implementation spec.md's "Polymorphism" design note calls
// for test and for small rooms that fit comfortably in memory.
type Memory struct {
	roots    []chatcore.MessageID // ordered by Time, oldest first
	messages map[chatcore.MessageID]chatcore.Message
	children map[chatcore.MessageID][]chatcore.MessageID
	rootOf   map[chatcore.MessageID]chatcore.MessageID
}

// NewMemory builds a Memory store from a flat slice of messages,
// reconstructing parent/child edges and root grouping from each
// message's own Parent field and derived ID.
func NewMemory(messages []chatcore.Message) *Memory {
	m := &Memory{
		messages: make(map[chatcore.MessageID]chatcore.Message, len(messages)),
		children: make(map[chatcore.MessageID][]chatcore.MessageID),
		rootOf:   make(map[chatcore.MessageID]chatcore.MessageID),
	}

	ordered := make([]chatcore.Message, len(messages))
	copy(ordered, messages)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Time < ordered[j].Time })

	for _, msg := range ordered {
		id := msg.ID()
		m.messages[id] = msg
		if msg.Parent != nil {
			m.children[*msg.Parent] = append(m.children[*msg.Parent], id)
		}
	}

	for _, msg := range ordered {
		id := msg.ID()
		root := id
		for {
			parent, ok := m.parentOf(root)
			if !ok {
				break
			}
			root = parent
		}
		m.rootOf[id] = root
		if root == id {
			m.roots = append(m.roots, id)
		}
	}

	return m
}

func (m *Memory) parentOf(id chatcore.MessageID) (chatcore.MessageID, bool) {
	msg, ok := m.messages[id]
	if !ok || msg.Parent == nil {
		return chatcore.MessageID{}, false
	}
	return *msg.Parent, true
}

func (m *Memory) Tree(root chatcore.MessageID) (Tree, error) {
	if _, ok := m.messages[root]; !ok {
		return Tree{}, fmt.Errorf("%w: root %s", ErrNotFound, root)
	}

	messages := make(map[chatcore.MessageID]chatcore.Message)
	children := make(map[chatcore.MessageID][]chatcore.MessageID)

	var collect func(id chatcore.MessageID)
	collect = func(id chatcore.MessageID) {
		messages[id] = m.messages[id]
		kids := m.children[id]
		if len(kids) > 0 {
			children[id] = append([]chatcore.MessageID(nil), kids...)
		}
		for _, kid := range kids {
			collect(kid)
		}
	}
	collect(root)

	return Tree{root: root, messages: messages, children: children}, nil
}

func (m *Memory) rootIndex(root chatcore.MessageID) (int, bool) {
	for i, r := range m.roots {
		if r == root {
			return i, true
		}
	}
	return 0, false
}

func (m *Memory) PrevTreeID(root chatcore.MessageID) (chatcore.MessageID, bool) {
	i, ok := m.rootIndex(root)
	if !ok || i == 0 {
		return chatcore.MessageID{}, false
	}
	return m.roots[i-1], true
}

func (m *Memory) NextTreeID(root chatcore.MessageID) (chatcore.MessageID, bool) {
	i, ok := m.rootIndex(root)
	if !ok || i == len(m.roots)-1 {
		return chatcore.MessageID{}, false
	}
	return m.roots[i+1], true
}

func (m *Memory) LastTreeID() (chatcore.MessageID, bool) {
	if len(m.roots) == 0 {
		return chatcore.MessageID{}, false
	}
	return m.roots[len(m.roots)-1], true
}

func (m *Memory) Path(id chatcore.MessageID) (Path, error) {
	if _, ok := m.messages[id]; !ok {
		return Path{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var segments []chatcore.MessageID
	cur := id
	for {
		segments = append([]chatcore.MessageID{cur}, segments...)
		parent, ok := m.parentOf(cur)
		if !ok {
			break
		}
		cur = parent
	}
	return Path{segments: segments}, nil
}
