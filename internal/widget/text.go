package widget

import runewidth "github.com/mattn/go-runewidth"

// Text renders a single line of styled content, truncating to whatever
// width it's given rather than wrapping — wrapping belongs to a taller
// container (e.g. a message body) composing several Text lines itself.
//
// Ported from original_source's toss::styled::Styled usage in input.rs
// (`Text::new(("jk/↓↑", style))`); cell width uses go-runewidth, already
// pulled in transitively by bubbletea/bubbles, so east-asian wide
// characters and combining marks measure the same in this contract as
// they will on the real terminal.
type Text struct {
	Content string
	Style   Style
}

// NewText wraps content in a Text widget with no styling.
func NewText(content string) Text {
	return Text{Content: content}
}

// NewStyledText wraps content in a Text widget rendered with style.
func NewStyledText(content string, style Style) Text {
	return Text{Content: content, Style: style}
}

// Size implements Widget. Height is always 1; width is the content's
// display width, clamped to maxWidth if given.
func (t Text) Size(_ Frame, maxWidth, _ Bound) Size {
	w := runewidth.StringWidth(t.Content)
	if maxWidth != nil && w > *maxWidth {
		w = *maxWidth
	}
	return Size{Width: w, Height: 1}
}

// Render implements Widget, truncating content to the frame's current
// width.
func (t Text) Render(frame Frame) {
	width := frame.Size().Width
	content := runewidth.Truncate(t.Content, width, "")
	frame.Write(Pos{}, content, t.Style)
}

// Empty is a zero-size no-op widget, used as a placeholder where a
// container needs a Widget value but nothing to draw.
type Empty struct{}

// NewEmpty returns an Empty widget.
func NewEmpty() Empty { return Empty{} }

// Size implements Widget, always returning the zero Size.
func (Empty) Size(_ Frame, _, _ Bound) Size { return Size{} }

// Render implements Widget, drawing nothing.
func (Empty) Render(_ Frame) {}
