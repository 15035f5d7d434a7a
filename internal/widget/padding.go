package widget

// Padding insets Inner by a fixed number of blank cells on each side,
// the same symmetric horizontal/vertical margin original_source's
// input.rs applies around key-bindings text (`Padding::new(...).horizontal(1)`).
type Padding struct {
	Inner      Widget
	Horizontal int
	Vertical   int
}

// NewPadding wraps inner with no margin; chain WithHorizontal/WithVertical.
func NewPadding(inner Widget) Padding {
	return Padding{Inner: inner}
}

// WithHorizontal returns a copy of p padded by n cells on the left and right.
func (p Padding) WithHorizontal(n int) Padding {
	p.Horizontal = n
	return p
}

// WithVertical returns a copy of p padded by n cells on the top and bottom.
func (p Padding) WithVertical(n int) Padding {
	p.Vertical = n
	return p
}

// Size implements Widget.
func (p Padding) Size(frame Frame, maxWidth, maxHeight Bound) Size {
	inner := p.Inner.Size(frame, shrinkBound(maxWidth, 2*p.Horizontal), shrinkBound(maxHeight, 2*p.Vertical))
	return inner.Add(Size{Width: 2 * p.Horizontal, Height: 2 * p.Vertical})
}

// Render implements Widget.
func (p Padding) Render(frame Frame) {
	size := frame.Size()
	inner := size.Sub(Size{Width: 2 * p.Horizontal, Height: 2 * p.Vertical})
	frame.Push(Pos{X: p.Horizontal, Y: p.Vertical}, inner)
	p.Inner.Render(frame)
	frame.Pop()
}
