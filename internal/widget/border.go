package widget

// Border draws a single-line box-drawing frame around Inner, inset by
// one cell on every side.
//
// Ported from original_source's border.rs: size adds two cells to each
// axis before asking the inner widget to size itself within the
// remainder, and render draws the four corners and edges before pushing
// a one-cell inset rectangle for the inner widget.
type Border struct {
	Inner Widget
	Style Style
}

// NewBorder wraps inner in a default-styled border.
func NewBorder(inner Widget) Border {
	return Border{Inner: inner}
}

// WithStyle returns a copy of b using style for the border glyphs.
func (b Border) WithStyle(style Style) Border {
	b.Style = style
	return b
}

// Size implements Widget.
func (b Border) Size(frame Frame, maxWidth, maxHeight Bound) Size {
	inner := b.Inner.Size(frame, shrinkBound(maxWidth, 2), shrinkBound(maxHeight, 2))
	return inner.Add(Size{Width: 2, Height: 2})
}

// Render implements Widget.
func (b Border) Render(frame Frame) {
	size := frame.Size()
	w, h := size.Width, size.Height
	if w < 2 {
		w = 2
	}
	if h < 2 {
		h = 2
	}
	right, bottom := w-1, h-1

	frame.Write(Pos{X: 0, Y: 0}, "┌", b.Style)
	frame.Write(Pos{X: right, Y: 0}, "┐", b.Style)
	frame.Write(Pos{X: 0, Y: bottom}, "└", b.Style)
	frame.Write(Pos{X: right, Y: bottom}, "┘", b.Style)

	for y := 1; y < bottom; y++ {
		frame.Write(Pos{X: 0, Y: y}, "│", b.Style)
		frame.Write(Pos{X: right, Y: y}, "│", b.Style)
	}
	for x := 1; x < right; x++ {
		frame.Write(Pos{X: x, Y: 0}, "─", b.Style)
		frame.Write(Pos{X: x, Y: bottom}, "─", b.Style)
	}

	frame.Push(Pos{X: 1, Y: 1}, Size{Width: w, Height: h}.Sub(Size{Width: 2, Height: 2}))
	b.Inner.Render(frame)
	frame.Pop()
}
