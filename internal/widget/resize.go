package widget

// Resize forces Inner's reported size up to at least MinWidth/MinHeight
// cells, without stretching how Inner actually draws itself — any extra
// cells the enclosing container grants simply stay blank. Used the same
// way input.rs does, to reserve a fixed-width column for a key binding
// label regardless of how short the binding text itself is
// (`Resize::new(Text::new(binding)).min_width(16)`).
type Resize struct {
	Inner     Widget
	MinWidth  int
	MinHeight int
}

// NewResize wraps inner with no minimum; chain WithMinWidth/WithMinHeight.
func NewResize(inner Widget) Resize {
	return Resize{Inner: inner}
}

// WithMinWidth returns a copy of r reporting at least w cells wide.
func (r Resize) WithMinWidth(w int) Resize {
	r.MinWidth = w
	return r
}

// WithMinHeight returns a copy of r reporting at least h cells tall.
func (r Resize) WithMinHeight(h int) Resize {
	r.MinHeight = h
	return r
}

// Size implements Widget.
func (r Resize) Size(frame Frame, maxWidth, maxHeight Bound) Size {
	inner := r.Inner.Size(frame, maxWidth, maxHeight)
	if inner.Width < r.MinWidth {
		inner.Width = r.MinWidth
	}
	if inner.Height < r.MinHeight {
		inner.Height = r.MinHeight
	}
	if maxWidth != nil && inner.Width > *maxWidth {
		inner.Width = *maxWidth
	}
	if maxHeight != nil && inner.Height > *maxHeight {
		inner.Height = *maxHeight
	}
	return inner
}

// Render implements Widget, rendering Inner unchanged into whatever
// rectangle the enclosing container already pushed for this Resize's
// reported Size.
func (r Resize) Render(frame Frame) {
	r.Inner.Render(frame)
}
