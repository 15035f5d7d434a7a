package widget

// Float claims all available space for itself, then positions Inner
// within it at a fractional anchor: Horizontal/Vertical of 0.0 pins
// Inner to the near edge, 1.0 to the far edge, 0.5 centers it. Used by
// input.rs to center the key-bindings popup (`.horizontal(0.5).vertical(0.5)`)
// and to center its hint line along the popup's top row (`.horizontal(0.5)`
// alone, left at Vertical's zero value to hug the top of its own
// cell — callers needing the opposite edge set Vertical to 1.0).
type Float struct {
	Inner      Widget
	Horizontal float64
	Vertical   float64
}

// NewFloat wraps inner, anchored to the top-left corner by default.
func NewFloat(inner Widget) Float {
	return Float{Inner: inner}
}

// WithHorizontal returns a copy of f anchored at fraction frac along the
// horizontal axis (0.0 left, 1.0 right).
func (f Float) WithHorizontal(frac float64) Float {
	f.Horizontal = frac
	return f
}

// WithVertical returns a copy of f anchored at fraction frac along the
// vertical axis (0.0 top, 1.0 bottom).
func (f Float) WithVertical(frac float64) Float {
	f.Vertical = frac
	return f
}

// Size implements Widget, greedily claiming every cell offered.
func (f Float) Size(frame Frame, maxWidth, maxHeight Bound) Size {
	return Size{
		Width:  boundOr(maxWidth, frame.Size().Width),
		Height: boundOr(maxHeight, frame.Size().Height),
	}
}

// Render implements Widget, sizing Inner to its own preference within
// the full rectangle, then placing it at the fractional anchor.
func (f Float) Render(frame Frame) {
	full := frame.Size()
	inner := f.Inner.Size(frame, Dim(full.Width), Dim(full.Height))

	x := int(f.Horizontal * float64(full.Width-inner.Width))
	y := int(f.Vertical * float64(full.Height-inner.Height))
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	frame.Push(Pos{X: x, Y: y}, inner)
	f.Inner.Render(frame)
	frame.Pop()
}
