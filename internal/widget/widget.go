// Package widget implements a minimal, backend-agnostic widget/frame
// contract (§4.6): a Widget reports its own size and renders itself into
// a Frame using relative coordinates, while a Frame owns an absolute
// clipping-rectangle stack that translates those relative coordinates
// for it. A concrete terminal Frame backed by charmbracelet/lipgloss is
// in buffer.go; cmd/ember-client drives it from a bubbletea program.
//
// Ported from original_source's toss::frame contract
// (border.rs/background.rs): size/write/push/pop, translated from Rust's
// boxed-trait-object widgets to Go interfaces.
package widget

// Size is a widget's width and height in terminal cells.
type Size struct {
	Width  int
	Height int
}

// Add returns the component-wise sum of two sizes, used by compositors
// like Border and Padding that wrap an inner widget in a fixed margin.
func (s Size) Add(other Size) Size {
	return Size{Width: s.Width + other.Width, Height: s.Height + other.Height}
}

// Sub returns the component-wise difference of two sizes, clamped at
// zero in each axis (a widget never reports negative space).
func (s Size) Sub(other Size) Size {
	return Size{Width: max0(s.Width - other.Width), Height: max0(s.Height - other.Height)}
}

// shrinkBound reduces a Bound by by in its axis, clamped at zero,
// passing nil (unbounded) through unchanged.
func shrinkBound(b Bound, by int) Bound {
	if b == nil {
		return nil
	}
	return Dim(max0(*b - by))
}

// boundOr returns *b if b is set, else the fallback value — used by
// widgets like Float that need a concrete size even when no
// caller-imposed maximum exists.
func boundOr(b Bound, fallback int) int {
	if b == nil {
		return fallback
	}
	return *b
}

// Pos is a cell coordinate relative to the Frame's current clip
// rectangle, with (0, 0) at its top-left corner.
type Pos struct {
	X int
	Y int
}

// Bound is an optional maximum dimension a container imposes on a
// child's Size call. A nil Bound means unbounded in that axis, mirroring
// original_source's Option<u16> max_width/max_height.
type Bound = *int

// Dim returns *v, useful for constructing a Bound literal inline.
func Dim(v int) Bound { return &v }

// Widget is anything that can report how much space it wants and draw
// itself into a Frame. Size must be pure (it's called during layout,
// possibly more than once, before any Render); Render may assume the
// frame passed to it is already clipped to exactly the size Size
// returned for the same max_width/max_height.
type Widget interface {
	// Size returns how much space this widget wants to occupy, given
	// optional maximum bounds in each axis.
	Size(frame Frame, maxWidth, maxHeight Bound) Size
	// Render draws the widget into frame, which is clipped to this
	// widget's own rectangle (see Frame.Push).
	Render(frame Frame)
}

// Frame is the drawing surface a Widget renders into. Implementations
// own a clip-rectangle stack: Push narrows the writable area to a
// sub-rectangle of the current one (in coordinates relative to it), and
// Pop restores the previous rectangle. Write and Size always operate
// relative to the top of that stack, the same push/pop clipping idiom
// border.rs uses to hand its wrapped widget an inset rectangle.
type Frame interface {
	// Size returns the size of the current (topmost) clip rectangle.
	Size() Size
	// Write draws content at pos, relative to the current clip
	// rectangle, using style. Writes outside the current rectangle are
	// silently clipped, never panics.
	Write(pos Pos, content string, style Style)
	// Push narrows the clip rectangle to the sub-rectangle at pos (still
	// relative to the current rectangle) with the given size, clamped to
	// fit inside it. Every Push must be matched by a Pop.
	Push(pos Pos, size Size)
	// Pop restores the clip rectangle active before the matching Push.
	Pop()
}

// Style is the subset of text styling a Frame.Write call can apply,
// kept backend-agnostic so layout code never imports lipgloss directly.
// The concrete Buffer translates it to a lipgloss.Style lazily, at
// render time.
type Style struct {
	Bold      bool
	Underline bool
	Reverse   bool
	Dim       bool
	// Foreground/Background are ANSI color names or hex codes accepted
	// by lipgloss.Color; empty means "inherit terminal default".
	Foreground string
	Background string
}

// Plain is the zero Style: no attributes, default colors.
var Plain = Style{}
