package widget

// Layer stacks Children on top of one another within the same
// rectangle, drawn back-to-front: earlier children are the backdrop,
// later ones overwrite whatever cells they draw to. Pairing a
// Background-wrapped backdrop with a Float-positioned foreground inside
// one Layer is the standard way original_source composes a popup
// (input.rs's KeyBindingsList: a bordered background layer plus a
// floated hint line on its top row).
type Layer struct {
	Children []Widget
}

// NewLayer returns a Layer stacking children in the given order.
func NewLayer(children ...Widget) Layer {
	return Layer{Children: children}
}

// Size implements Widget: the largest size any child asks for, since
// every child shares the same rectangle.
func (l Layer) Size(frame Frame, maxWidth, maxHeight Bound) Size {
	var total Size
	for _, c := range l.Children {
		s := c.Size(frame, maxWidth, maxHeight)
		if s.Width > total.Width {
			total.Width = s.Width
		}
		if s.Height > total.Height {
			total.Height = s.Height
		}
	}
	return total
}

// Render implements Widget, rendering every child into the same
// rectangle in order.
func (l Layer) Render(frame Frame) {
	for _, c := range l.Children {
		c.Render(frame)
	}
}
