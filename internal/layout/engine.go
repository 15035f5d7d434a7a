package layout

import (
	"github.com/emberhall/ember/internal/chatcore"
	"github.com/emberhall/ember/internal/store"
)

// scrolloff returns the minimum number of rows kept between the cursor
// and either edge of a viewport H rows tall (§4.5).
func scrolloff(h int) int {
	v := h - 10
	if v < 0 {
		v = 0
	}
	v /= 2
	if v > 2 {
		v = 2
	}
	return v
}

// State holds everything a relayout pass needs carried between passes:
// the cursor position, where it was last pass (purely to anchor
// scrolling so an unrelated cursor move doesn't jump the viewport), the
// accumulated scroll delta, and per-message fold state. It is not safe
// for concurrent use; the chat client's single-threaded event loop owns
// it and must not mutate it while a Relayout call is suspended on the
// Store.
type State struct {
	Store    store.Store
	Renderer Renderer
	Width    int
	Folded   map[chatcore.MessageID]bool

	// PseudoContent is the not-yet-sent preview text rendered when
	// Cursor.Kind is CursorPseudo.
	PseudoContent string

	cursor          Cursor
	lastCursor      Cursor
	lastCursorLine  int
	lastVisibleMsgs []chatcore.MessageID
	scroll          int
	correction      Correction
}

// NewState builds a State with the cursor at the bottom of the room, no
// folds, and no pending scroll or correction — the state a freshly
// opened room starts from.
func NewState(s store.Store, r Renderer, width int) *State {
	return &State{
		Store:    s,
		Renderer: r,
		Width:    width,
		Folded:   make(map[chatcore.MessageID]bool),
		cursor:   Cursor{Kind: CursorBottom},
	}
}

// Cursor returns the current cursor position.
func (s *State) Cursor() Cursor { return s.cursor }

// SetCursor moves the cursor. The next Relayout pass will scroll it into
// place per whatever correction is also requested; SetCursor on its own
// only changes what relayout aims for.
func (s *State) SetCursor(c Cursor) { s.cursor = c }

// Fold marks id's subtree as collapsed.
func (s *State) Fold(id chatcore.MessageID) { s.Folded[id] = true }

// Unfold marks id's subtree as expanded.
func (s *State) Unfold(id chatcore.MessageID) { delete(s.Folded, id) }

// IsFolded reports whether id is currently collapsed.
func (s *State) IsFolded(id chatcore.MessageID) bool { return s.Folded[id] }

// Scroll accumulates a wheel/key scroll delta applied to the next
// relayout pass, then cleared.
func (s *State) Scroll(delta int) { s.scroll += delta }

// RequestCorrection arms a one-shot cursor-visibility fixup for the
// next relayout pass.
func (s *State) RequestCorrection(c Correction) { s.correction = c }

// LastVisibleMsgs returns the message ids visible at the end of the
// most recent relayout pass.
func (s *State) LastVisibleMsgs() []chatcore.MessageID { return s.lastVisibleMsgs }

// Layout is the result of a relayout pass: a block list that exactly
// covers the viewport, plus where the cursor's block ended up (for
// drawing a focus ring, scrollbar, etc).
type Layout struct {
	Blocks     []Block
	Height     int
	Scrolloff  int
	CursorLine int
}

// Relayout runs the full pass algorithm (§4.5) for a viewport height
// rows tall and returns the resulting block list. It may call the
// configured Store any number of times and must not be called
// concurrently with itself or with any other State mutation.
func (s *State) Relayout(height int) (Layout, error) {
	h := height
	off := scrolloff(h)

	cursorPath, err := s.pathOf(s.cursor)
	if err != nil {
		return Layout{}, err
	}
	lastCursorPath, err := s.pathOf(s.lastCursor)
	if err != nil {
		return Layout{}, err
	}
	s.unfoldAncestors(cursorPath)

	tb, err := s.initialSeed(h)
	if err != nil {
		return Layout{}, err
	}
	tb.Offset(s.scroll)

	if err := s.fillScreen(tb, h); err != nil {
		return Layout{}, err
	}

	if _, ok := tb.Find(blockIDFromCursor(s.cursor)); !ok {
		atLine := h - 1
		if cursorPath.Less(lastCursorPath) {
			atLine = 0
		}
		reseeded, err := s.layoutCursorAnchoredSeed(atLine)
		if err != nil {
			return Layout{}, err
		}
		if err := s.fillScreen(reseeded, h); err != nil {
			return Layout{}, err
		}
		tb = reseeded
	}

	if err := s.applyCorrection(tb, h, off); err != nil {
		return Layout{}, err
	}

	cursorLine := 0
	if block, ok := tb.Find(blockIDFromCursor(s.cursor)); ok {
		cursorLine = block.TopLine
	}

	s.lastCursor = s.cursor
	s.lastCursorLine = cursorLine
	s.lastVisibleMsgs = visibleMsgIDs(tb, h)
	s.scroll = 0
	s.correction = CorrectionNone

	return Layout{
		Blocks:     append([]Block(nil), tb.Blocks()...),
		Height:     h,
		Scrolloff:  off,
		CursorLine: cursorLine,
	}, nil
}

// pathOf returns the Path a cursor value identifies, using
// chatcore.LastPossibleMessageID as the sentinel segment for a
// top-level editor/pseudo cursor or the bottom-of-room marker, so every
// cursor kind has a comparable path (step 1 and step 4 both compare
// paths across kinds).
func (s *State) pathOf(c Cursor) (store.Path, error) {
	switch c.Kind {
	case CursorMsg:
		return s.Store.Path(c.MsgID)
	case CursorEditor, CursorPseudo:
		if c.Parent == nil {
			return store.NewPath([]chatcore.MessageID{chatcore.LastPossibleMessageID()}), nil
		}
		parentPath, err := s.Store.Path(*c.Parent)
		if err != nil {
			return store.Path{}, err
		}
		return parentPath.Extend(chatcore.LastPossibleMessageID()), nil
	default: // CursorBottom
		return store.NewPath([]chatcore.MessageID{chatcore.LastPossibleMessageID()}), nil
	}
}

// unfoldAncestors removes every ancestor segment of p from Folded, so
// the node p refers to is guaranteed to actually render this pass.
func (s *State) unfoldAncestors(p store.Path) {
	segments := p.Segments()
	if len(segments) == 0 {
		return
	}
	for _, id := range segments[:len(segments)-1] {
		delete(s.Folded, id)
	}
}

// initialSeed builds the TreeBlocks a pass starts from (§4.5 step 2).
func (s *State) initialSeed(h int) (*TreeBlocks, error) {
	if s.cursor.Kind == CursorBottom {
		return s.layoutCursorAnchoredSeed(h - 1)
	}
	return s.layoutLastCursorAnchoredSeed()
}

// layoutCursorAnchoredSeed builds a seed containing the current cursor
// and recomputes offsets so the cursor's block's top line is atLine.
func (s *State) layoutCursorAnchoredSeed(atLine int) (*TreeBlocks, error) {
	if s.cursor.Kind == CursorBottom || s.cursor.topLevel() {
		tb := s.layoutBottomBlocks()
		tb.RecalculateOffsets(cursorBlockID(), atLine)
		return tb, nil
	}
	path, err := s.pathOf(s.cursor)
	if err != nil {
		return nil, err
	}
	tb, err := s.layoutTree(path.First())
	if err != nil {
		return nil, err
	}
	tb.RecalculateOffsets(blockIDFromCursor(s.cursor), atLine)
	return tb, nil
}

// layoutLastCursorAnchoredSeed builds a seed containing last_cursor's
// ghost block and recomputes offsets so that ghost sits at
// lastCursorLine, preserving scroll position across a pass triggered by
// something other than an explicit cursor jump.
func (s *State) layoutLastCursorAnchoredSeed() (*TreeBlocks, error) {
	if s.lastCursor.Kind == CursorBottom || s.lastCursor.topLevel() {
		tb := s.layoutBottomBlocks()
		tb.RecalculateOffsets(lastCursorBlockID(), s.lastCursorLine)
		return tb, nil
	}
	path, err := s.pathOf(s.lastCursor)
	if err != nil {
		return nil, err
	}
	tb, err := s.layoutTree(path.First())
	if err != nil {
		return nil, err
	}
	tb.RecalculateOffsets(lastCursorBlockID(), s.lastCursorLine)
	return tb, nil
}

// layoutBottomBlocks builds the bottom-marker seed: an optional
// LastCursor ghost, then the cursor's own block if the cursor is
// Bottom or a top-level editor/pseudo.
func (s *State) layoutBottomBlocks() *TreeBlocks {
	tb := NewTreeBlocks(Root{Kind: RootBottom})
	if s.lastCursor.Kind == CursorBottom || s.lastCursor.topLevel() {
		tb.Push(lastCursorBlockID(), 0, Focus{})
	}
	switch {
	case s.cursor.Kind == CursorBottom:
		tb.Push(cursorBlockID(), 0, Focus{})
	case s.cursor.topLevel():
		s.pushCursorBlock(tb)
	}
	return tb
}

// layoutTree lays out an entire message tree rooted at root, using an
// explicit work stack in place of recursion so a pathologically deep
// thread cannot exhaust the goroutine stack.
func (s *State) layoutTree(root chatcore.MessageID) (*TreeBlocks, error) {
	tree, err := s.Store.Tree(root)
	if err != nil {
		return nil, err
	}
	tb := NewTreeBlocks(treeRoot(root))

	type phase int
	const (
		phaseEnter phase = iota
		phaseExit
	)
	type workItem struct {
		id    chatcore.MessageID
		phase phase
	}

	stack := []workItem{{id: root, phase: phaseEnter}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if item.phase == phaseExit {
			if s.lastCursor.RefersToLastChildOf(item.id) {
				tb.Push(lastCursorBlockID(), 0, Focus{})
			}
			if s.cursor.RefersToLastChildOf(item.id) {
				s.pushCursorBlock(tb)
			}
			continue
		}

		if s.lastCursor.RefersTo(item.id) {
			tb.Push(lastCursorBlockID(), 0, Focus{})
		}

		msg, ok := tree.Msg(item.id)
		if !ok {
			continue
		}
		folded := s.Folded[item.id]
		height := s.Renderer.MessageHeight(msg, s.Width, folded)
		tb.Push(MsgBlockID(item.id), height, Focus{Start: 0, End: height})

		stack = append(stack, workItem{id: item.id, phase: phaseExit})
		if !folded {
			children := tree.Children(item.id)
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, workItem{id: children[i], phase: phaseEnter})
			}
		}
	}

	return tb, nil
}

// pushCursorBlock appends the block the live editor or pseudo-message
// preview renders as. Called only where the cursor's position has
// already been confirmed to belong right here.
func (s *State) pushCursorBlock(tb *TreeBlocks) {
	switch s.cursor.Kind {
	case CursorEditor:
		tb.Push(cursorBlockID(), s.Renderer.EditorHeight(s.Width), Focus{})
	case CursorPseudo:
		h := s.Renderer.PseudoHeight(s.PseudoContent, s.Width)
		tb.Push(cursorBlockID(), h, Focus{})
	}
}

// expandToTop prepends one more tree's worth of blocks above tb, if
// one exists above its current top root. ok is false once history is
// exhausted.
func (s *State) expandToTop(tb *TreeBlocks) (ok bool, err error) {
	switch tb.TopRoot().Kind {
	case RootBottom:
		id, found := s.Store.LastTreeID()
		if !found {
			return false, nil
		}
		prev, err := s.layoutTree(id)
		if err != nil {
			return false, err
		}
		tb.Prepend(prev)
		return true, nil
	default: // RootTree
		prevID, found := s.Store.PrevTreeID(tb.TopRoot().TreeID)
		if !found {
			return false, nil
		}
		prev, err := s.layoutTree(prevID)
		if err != nil {
			return false, err
		}
		tb.Prepend(prev)
		return true, nil
	}
}

// expandToBottom appends one more tree's worth of blocks (or the bottom
// marker) below tb. ok is false once tb already ends at the bottom
// marker.
func (s *State) expandToBottom(tb *TreeBlocks) (ok bool, err error) {
	switch tb.BottomRoot().Kind {
	case RootBottom:
		return false, nil
	default: // RootTree
		nextID, found := s.Store.NextTreeID(tb.BottomRoot().TreeID)
		if found {
			next, err := s.layoutTree(nextID)
			if err != nil {
				return false, err
			}
			tb.Append(next)
			return true, nil
		}
		tb.Append(s.layoutBottomBlocks())
		return true, nil
	}
}

// fillScreen expands tb up and down until it covers [0, h-1], clamping
// at either end once history is exhausted (§4.5 step 3).
func (s *State) fillScreen(tb *TreeBlocks, h int) error {
	for tb.TopLine() > 0 {
		expanded, err := s.expandToTop(tb)
		if err != nil {
			return err
		}
		if !expanded {
			break
		}
	}
	if tb.TopLine() > 0 {
		tb.SetTopLine(0)
	}

	for tb.BottomLine() < h-1 {
		expanded, err := s.expandToBottom(tb)
		if err != nil {
			return err
		}
		if !expanded {
			break
		}
	}
	if tb.BottomLine() > h-1 {
		tb.SetBottomLine(h - 1)
	}

	for tb.TopLine() > 0 {
		expanded, err := s.expandToTop(tb)
		if err != nil {
			return err
		}
		if !expanded {
			break
		}
	}
	if tb.TopLine() > 0 {
		tb.SetTopLine(0)
	}
	return nil
}

// applyCorrection runs the one armed cursor-visibility fixup, if any
// (§4.5 step 5).
func (s *State) applyCorrection(tb *TreeBlocks, h, off int) error {
	switch s.correction {
	case CorrectionNone:
		return nil
	case CorrectionMakeCursorVisible:
		block, ok := tb.Find(blockIDFromCursor(s.cursor))
		if !ok {
			return nil
		}
		min := -block.Focus.Start + off
		newMax := h - block.Focus.End - off
		newTop := clampPreferMin(block.TopLine, min, newMax)
		tb.Offset(newTop - block.TopLine)
		return s.fillScreen(tb, h)
	case CorrectionCenterCursor:
		block, ok := tb.Find(blockIDFromCursor(s.cursor))
		if !ok {
			return nil
		}
		min := -block.Focus.Start + off
		newMax := h - block.Focus.End - off
		newTop := clampPreferMin((h-block.Height)/2, min, newMax)
		tb.Offset(newTop - block.TopLine)
		return s.fillScreen(tb, h)
	case CorrectionMoveCursorToVisibleArea:
		return s.applyMoveCursorToVisibleArea(tb, h, off)
	}
	return nil
}

// clampPreferMin clamps top into [min, max] via top.min(max).max(min),
// so that when a block is taller than the window (min > max) the
// block's top, not its bottom, stays anchored in view.
func clampPreferMin(top, min, max int) int {
	v := top
	if v > max {
		v = max
	}
	if v < min {
		v = min
	}
	return v
}

// applyMoveCursorToVisibleArea snaps the cursor itself to the nearest
// message block still on screen, used after e.g. a resize leaves the
// old cursor position off-screen. Only Bottom and Msg cursors move;
// an open editor or pseudo-preview is left alone.
func (s *State) applyMoveCursorToVisibleArea(tb *TreeBlocks, h, off int) error {
	if s.cursor.Kind != CursorBottom && s.cursor.Kind != CursorMsg {
		return nil
	}
	lo, hi := off, h-1-off

	var current *Block
	if s.cursor.Kind == CursorMsg {
		if b, ok := tb.Find(MsgBlockID(s.cursor.MsgID)); ok {
			current = &b
		}
	}
	visible := func(b Block) bool { return b.TopLine <= hi && b.bottomLine() >= lo }

	if current != nil && visible(*current) {
		return nil
	}

	blocks := tb.Blocks()
	var candidates []Block
	switch {
	case current == nil:
		candidates = reverseBlocks(blocks)
	case current.TopLine < lo:
		candidates = blocks
	default:
		candidates = reverseBlocks(blocks)
	}

	for _, b := range candidates {
		id, ok := b.ID.msg()
		if !ok || !visible(b) {
			continue
		}
		s.cursor = Cursor{Kind: CursorMsg, MsgID: id}
		reseeded, err := s.layoutCursorAnchoredSeed(b.TopLine)
		if err != nil {
			return err
		}
		if err := s.fillScreen(reseeded, h); err != nil {
			return err
		}
		*tb = *reseeded
		return nil
	}
	return nil
}

func reverseBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[len(blocks)-1-i] = b
	}
	return out
}

// visibleMsgIDs returns the ids of Msg blocks intersecting [0, h-1].
func visibleMsgIDs(tb *TreeBlocks, h int) []chatcore.MessageID {
	var ids []chatcore.MessageID
	for _, b := range tb.Blocks() {
		id, ok := b.ID.msg()
		if !ok {
			continue
		}
		if b.TopLine <= h-1 && b.bottomLine() >= 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
