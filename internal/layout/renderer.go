package layout

import "github.com/emberhall/ember/internal/chatcore"

// Renderer abstracts away how many screen rows a block occupies, so the
// relayout pass can run against a fake in tests without depending on the
// real terminal widget/frame contract (out of scope here, see §4.2 — the
// widget package is the only thing that needs to agree with a Renderer's
// numbers at draw time).
type Renderer interface {
	// MessageHeight returns the number of rows message occupies when
	// laid out at the given width, folded or not. A folded message
	// shows a single summary line.
	MessageHeight(msg chatcore.Message, width int, folded bool) int
	// EditorHeight returns the number of rows the open compose box
	// occupies at the given width.
	EditorHeight(width int) int
	// PseudoHeight returns the number of rows a not-yet-sent preview of
	// content occupies at the given width.
	PseudoHeight(content string, width int) int
}

// LineRenderer is the simplest possible Renderer: every message is
// exactly one line tall, folded or not (a folded message's one line is
// the fold summary itself), and content is never
// wrapped regardless of width. Useful for deterministic layout tests
// and as a placeholder before the real widget measurer is wired in.
type LineRenderer struct {
	// EditorLines is the fixed height of an open editor. Defaults to 1
	// when zero.
	EditorLines int
}

func (r LineRenderer) MessageHeight(_ chatcore.Message, _ int, _ bool) int {
	return 1
}

func (r LineRenderer) EditorHeight(_ int) int {
	if r.EditorLines <= 0 {
		return 1
	}
	return r.EditorLines
}

func (r LineRenderer) PseudoHeight(_ string, _ int) int {
	return 1
}
