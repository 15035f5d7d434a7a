package widget

// Segment is one child of an HJoin or VJoin, paired with whether it may
// shrink below its preferred size to let siblings fit (Flex true) or
// must always get its full preferred size (Flex false) — the same
// distinction input.rs draws between a fixed-width key-binding column
// (wrapped in Resize, not flexible) and the description text beside it
// (flexible, since it fills whatever room is left).
type Segment struct {
	Widget Widget
	Flex   bool
}

// NewSegment wraps w as a non-flexible join segment.
func NewSegment(w Widget) Segment {
	return Segment{Widget: w}
}

// WithFlex returns a copy of s allowed to shrink to fit remaining space.
func (s Segment) WithFlex() Segment {
	s.Flex = true
	return s
}

// HJoin lays its segments out left to right, each given its own
// preferred height but sharing the row's total width: non-flex segments
// get their full preferred width first, then any remaining width is
// divided evenly among the flex segments.
type HJoin struct {
	Segments []Segment
}

// NewHJoin returns an HJoin over segments in left-to-right order.
func NewHJoin(segments ...Segment) HJoin {
	return HJoin{Segments: segments}
}

// Size implements Widget: width is the sum of every segment's preferred
// width, height is the tallest segment's height.
func (j HJoin) Size(frame Frame, maxWidth, maxHeight Bound) Size {
	var total Size
	for _, seg := range j.Segments {
		s := seg.Widget.Size(frame, nil, maxHeight)
		total.Width += s.Width
		if s.Height > total.Height {
			total.Height = s.Height
		}
	}
	if maxWidth != nil && total.Width > *maxWidth {
		total.Width = *maxWidth
	}
	return total
}

// Render implements Widget, distributing width per segment as described
// on HJoin and rendering each into its own column.
func (j HJoin) Render(frame Frame) {
	size := frame.Size()
	widths := splitWidths(frame, j.Segments, size.Width, size.Height)

	x := 0
	for i, seg := range j.Segments {
		w := widths[i]
		if x >= size.Width || w <= 0 {
			continue
		}
		if x+w > size.Width {
			w = size.Width - x
		}
		frame.Push(Pos{X: x, Y: 0}, Size{Width: w, Height: size.Height})
		seg.Widget.Render(frame)
		frame.Pop()
		x += w
	}
}

func splitWidths(frame Frame, segments []Segment, total, height int) []int {
	widths := make([]int, len(segments))
	used := 0
	flexIdx := []int{}
	for i, seg := range segments {
		if seg.Flex {
			flexIdx = append(flexIdx, i)
			continue
		}
		w := seg.Widget.Size(frame, nil, Dim(height)).Width
		widths[i] = w
		used += w
	}
	remaining := total - used
	if remaining < 0 {
		remaining = 0
	}
	if len(flexIdx) > 0 {
		each := remaining / len(flexIdx)
		extra := remaining % len(flexIdx)
		for n, i := range flexIdx {
			widths[i] = each
			if n < extra {
				widths[i]++
			}
		}
	}
	return widths
}

// VJoin lays its segments out top to bottom, mirroring HJoin along the
// vertical axis.
type VJoin struct {
	Segments []Segment
}

// NewVJoin returns a VJoin over segments in top-to-bottom order.
func NewVJoin(segments ...Segment) VJoin {
	return VJoin{Segments: segments}
}

// Size implements Widget: height is the sum of every segment's
// preferred height, width is the widest segment's width.
func (j VJoin) Size(frame Frame, maxWidth, maxHeight Bound) Size {
	var total Size
	for _, seg := range j.Segments {
		s := seg.Widget.Size(frame, maxWidth, nil)
		total.Height += s.Height
		if s.Width > total.Width {
			total.Width = s.Width
		}
	}
	if maxHeight != nil && total.Height > *maxHeight {
		total.Height = *maxHeight
	}
	return total
}

// Render implements Widget.
func (j VJoin) Render(frame Frame) {
	size := frame.Size()
	heights := splitHeights(frame, j.Segments, size.Height, size.Width)

	y := 0
	for i, seg := range j.Segments {
		h := heights[i]
		if y >= size.Height || h <= 0 {
			continue
		}
		if y+h > size.Height {
			h = size.Height - y
		}
		frame.Push(Pos{X: 0, Y: y}, Size{Width: size.Width, Height: h})
		seg.Widget.Render(frame)
		frame.Pop()
		y += h
	}
}

func splitHeights(frame Frame, segments []Segment, total, width int) []int {
	heights := make([]int, len(segments))
	used := 0
	flexIdx := []int{}
	for i, seg := range segments {
		if seg.Flex {
			flexIdx = append(flexIdx, i)
			continue
		}
		h := seg.Widget.Size(frame, Dim(width), nil).Height
		heights[i] = h
		used += h
	}
	remaining := total - used
	if remaining < 0 {
		remaining = 0
	}
	if len(flexIdx) > 0 {
		each := remaining / len(flexIdx)
		extra := remaining % len(flexIdx)
		for n, i := range flexIdx {
			heights[i] = each
			if n < extra {
				heights[i]++
			}
		}
	}
	return heights
}
