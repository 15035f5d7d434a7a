package widget

// List stacks its Items vertically, each given the list's full width and
// its own preferred height. Used by KeyBindings for the scrollable
// key-bindings help list (input.rs's KeyBindingsList) and by
// cmd/ember-client to stack the chat view's rendered blocks.
type List struct {
	Items []Widget
}

// NewList returns an empty List.
func NewList() *List { return &List{} }

// Add appends w as the next item.
func (l *List) Add(w Widget) { l.Items = append(l.Items, w) }

// Size implements Widget: width is the widest item's width (bounded),
// height is the sum of every item's height.
func (l *List) Size(frame Frame, maxWidth, maxHeight Bound) Size {
	var total Size
	for _, item := range l.Items {
		s := item.Size(frame, maxWidth, nil)
		if s.Width > total.Width {
			total.Width = s.Width
		}
		total.Height += s.Height
	}
	if maxWidth != nil && total.Width > *maxWidth {
		total.Width = *maxWidth
	}
	if maxHeight != nil && total.Height > *maxHeight {
		total.Height = *maxHeight
	}
	return total
}

// Render implements Widget, placing each item below the previous one at
// its own preferred height, clipped to whatever vertical room remains.
func (l *List) Render(frame Frame) {
	size := frame.Size()
	y := 0
	for _, item := range l.Items {
		if y >= size.Height {
			break
		}
		itemWidth := size.Width
		h := item.Size(frame, Dim(itemWidth), nil).Height
		remaining := size.Height - y
		if h > remaining {
			h = remaining
		}
		frame.Push(Pos{X: 0, Y: y}, Size{Width: itemWidth, Height: h})
		item.Render(frame)
		frame.Pop()
		y += h
	}
}
