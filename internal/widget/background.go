package widget

// Background paints every cell of its rectangle with Style before
// rendering Inner over it, giving Inner an opaque backdrop instead of
// whatever was drawn behind it by an earlier layer.
//
// Ported from original_source's background.rs: size passes through to
// the inner widget unchanged, and render fills the whole frame with a
// single space character in Style first.
type Background struct {
	Inner Widget
	Style Style
}

// NewBackground wraps inner in an opaque default-styled backdrop.
func NewBackground(inner Widget) Background {
	return Background{Inner: inner}
}

// WithStyle returns a copy of b painting its backdrop with style.
func (b Background) WithStyle(style Style) Background {
	b.Style = style
	return b
}

// Size implements Widget.
func (b Background) Size(frame Frame, maxWidth, maxHeight Bound) Size {
	return b.Inner.Size(frame, maxWidth, maxHeight)
}

// Render implements Widget.
func (b Background) Render(frame Frame) {
	size := frame.Size()
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			frame.Write(Pos{X: x, Y: y}, " ", b.Style)
		}
	}
	b.Inner.Render(frame)
}
