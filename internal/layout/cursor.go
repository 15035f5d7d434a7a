// Package layout implements the chat client's threaded-message layout
// algorithm (§4.5): seeding a screen's worth of blocks around a cursor,
// expanding to cover the viewport, and applying one of three cursor
// corrections, all while keeping redraws stable across passes.
//
// Ported line-for-line from original_source's relayout pass, with one
// deliberate change: layoutTree uses an explicit work stack instead
// of Rust's bare recursion, so a pathologically deep thread cannot blow
// the Go goroutine stack (see Non-recursive rendering, §4.5).
package layout

import "github.com/emberhall/ember/internal/chatcore"

// CursorKind discriminates the polymorphic cursor position (§4.3).
type CursorKind int

const (
	// CursorBottom is locked to the viewport's bottom, used when the
	// user has not navigated into history.
	CursorBottom CursorKind = iota
	// CursorMsg refers to an existing message by id.
	CursorMsg
	// CursorEditor is an open compose box, optionally replying to
	// Parent (nil means a new top-level message at the bottom).
	CursorEditor
	// CursorPseudo is a preview of a not-yet-sent message, same parent
	// semantics as CursorEditor.
	CursorPseudo
)

// Cursor is the tagged-variant cursor position. Only the fields that
// apply to Kind are meaningful.
type Cursor struct {
	Kind   CursorKind
	MsgID  chatcore.MessageID  // valid iff Kind == CursorMsg
	Parent *chatcore.MessageID // valid iff Kind is CursorEditor or CursorPseudo
}

// RefersTo reports whether the cursor names this exact message.
func (c Cursor) RefersTo(id chatcore.MessageID) bool {
	return c.Kind == CursorMsg && c.MsgID == id
}

// RefersToLastChildOf reports whether the cursor is an editor/pseudo
// positioned immediately after id's subtree (i.e. composing a reply to
// id, appended after its last existing child).
func (c Cursor) RefersToLastChildOf(id chatcore.MessageID) bool {
	return (c.Kind == CursorEditor || c.Kind == CursorPseudo) && c.Parent != nil && *c.Parent == id
}

// topLevel reports whether an Editor/Pseudo cursor has no parent (a new
// top-level message composed at the very bottom of the room).
func (c Cursor) topLevel() bool {
	return (c.Kind == CursorEditor || c.Kind == CursorPseudo) && c.Parent == nil
}

// Correction is the one-shot cursor-visibility fixup applied at the end
// of a relayout pass (§4.5 step "three corrections").
type Correction int

const (
	// CorrectionNone applies no fixup.
	CorrectionNone Correction = iota
	// CorrectionMakeCursorVisible scrolls the minimum amount needed to
	// bring the cursor back within the scrolloff margins.
	CorrectionMakeCursorVisible
	// CorrectionMoveCursorToVisibleArea snaps the cursor itself to the
	// nearest visible message when it has scrolled off-screen, e.g.
	// after a resize.
	CorrectionMoveCursorToVisibleArea
	// CorrectionCenterCursor centers the cursor's block in the
	// viewport, used right after an explicit jump.
	CorrectionCenterCursor
)

// blockIDKind discriminates BlockID's tagged variants.
type blockIDKind int

const (
	blockKindMsg blockIDKind = iota
	blockKindCursor
	blockKindLastCursor
)

// BlockID identifies one rendered block within a TreeBlocks listing,
// stable across relayout passes for the same logical content.
type BlockID struct {
	kind  blockIDKind
	msgID chatcore.MessageID
}

// MsgBlockID identifies the block rendering message id.
func MsgBlockID(id chatcore.MessageID) BlockID {
	return BlockID{kind: blockKindMsg, msgID: id}
}

// cursorBlockID identifies the single live cursor block (editor,
// pseudo-message preview, or the empty bottom-cursor marker).
func cursorBlockID() BlockID { return BlockID{kind: blockKindCursor} }

// lastCursorBlockID identifies the zero-height ghost block tracking
// where the cursor was before this pass, used purely to anchor a seed's
// offsets so that scrolling position survives an unrelated cursor move.
func lastCursorBlockID() BlockID { return BlockID{kind: blockKindLastCursor} }

// IsCursor reports whether this BlockID is the single live cursor block
// (editor, pseudo-message preview, or empty bottom-cursor marker) rather
// than a specific message or the zero-height last-cursor ghost.
func (b BlockID) IsCursor() bool { return b.kind == blockKindCursor }

// Msg returns the message id a Msg-kind BlockID identifies, so a
// renderer outside this package can tell which message (if any) a given
// Block draws.
func (b BlockID) Msg() (chatcore.MessageID, bool) {
	return b.msg()
}

// msg returns the message id a Msg-kind BlockID identifies.
func (b BlockID) msg() (chatcore.MessageID, bool) {
	if b.kind != blockKindMsg {
		return chatcore.MessageID{}, false
	}
	return b.msgID, true
}

// blockIDFromCursor returns the BlockID a given cursor value renders as.
// Every non-Msg cursor kind shares the single cursorBlockID, since only
// one editor/pseudo/bottom-cursor block is ever live at a time.
func blockIDFromCursor(c Cursor) BlockID {
	if c.Kind == CursorMsg {
		return MsgBlockID(c.MsgID)
	}
	return cursorBlockID()
}
