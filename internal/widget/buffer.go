package widget

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type cell struct {
	ch    rune
	style Style
	set   bool
}

type rect struct {
	x, y, w, h int
}

// Buffer is the concrete terminal Frame: a fixed-size grid of styled
// cells with a push/pop clip-rectangle stack, rendered to a plain string
// via lipgloss at the end of a pass. cmd/ember-client builds one per
// bubbletea View call, sized to the program's current window.
//
// Not safe for concurrent use; a bubbletea program drives its Update and
// View methods from a single goroutine, same as the rest of this
// package's widgets assume.
type Buffer struct {
	width, height int
	cells         [][]cell
	stack         []rect
}

// NewBuffer allocates a Buffer of the given size, its clip rectangle
// initially covering the whole grid.
func NewBuffer(size Size) *Buffer {
	w, h := max0(size.Width), max0(size.Height)
	cells := make([][]cell, h)
	for y := range cells {
		cells[y] = make([]cell, w)
	}
	return &Buffer{
		width:  w,
		height: h,
		cells:  cells,
		stack:  []rect{{x: 0, y: 0, w: w, h: h}},
	}
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func (b *Buffer) top() rect { return b.stack[len(b.stack)-1] }

// Size implements Frame.
func (b *Buffer) Size() Size {
	r := b.top()
	return Size{Width: r.w, Height: r.h}
}

// Write implements Frame. Content is written left to right starting at
// pos; runes landing outside the current clip rectangle, or outside the
// buffer's own bounds, are dropped rather than wrapped or panicking.
func (b *Buffer) Write(pos Pos, content string, style Style) {
	r := b.top()
	x := r.x + pos.X
	y := r.y + pos.Y
	if y < r.y || y >= r.y+r.h || y < 0 || y >= b.height {
		return
	}
	for _, ch := range content {
		if x >= r.x+r.w || x >= b.width {
			break
		}
		if x >= r.x && x >= 0 {
			b.cells[y][x] = cell{ch: ch, style: style, set: true}
		}
		x++
	}
}

// Push implements Frame, clamping the requested sub-rectangle to fit
// inside the current one (never growing the writable area).
func (b *Buffer) Push(pos Pos, size Size) {
	cur := b.top()
	x := cur.x + pos.X
	y := cur.y + pos.Y
	w, h := size.Width, size.Height

	if x < cur.x {
		w -= cur.x - x
		x = cur.x
	}
	if y < cur.y {
		h -= cur.y - y
		y = cur.y
	}
	if x+w > cur.x+cur.w {
		w = cur.x + cur.w - x
	}
	if y+h > cur.y+cur.h {
		h = cur.y + cur.h - y
	}
	w, h = max0(w), max0(h)

	b.stack = append(b.stack, rect{x: x, y: y, w: w, h: h})
}

// Pop implements Frame. Popping the root rectangle is a programming
// error (every Push must be matched); it is a silent no-op rather than a
// panic so a stray extra Pop in a compositor doesn't crash the client.
func (b *Buffer) Pop() {
	if len(b.stack) > 1 {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

// Render flattens the buffer into a plain string, one line per row,
// applying each cell's Style via lipgloss. Unwritten cells render as a
// single space in the default style.
func (b *Buffer) Render() string {
	var out strings.Builder
	for y, row := range b.cells {
		if y > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(renderRow(row))
	}
	return out.String()
}

func renderRow(row []cell) string {
	var out strings.Builder
	start := 0
	for start < len(row) {
		end := start + 1
		for end < len(row) && row[end].style == row[start].style {
			end++
		}
		out.WriteString(renderRun(row[start:end]))
		start = end
	}
	return out.String()
}

func renderRun(run []cell) string {
	var text strings.Builder
	for _, c := range run {
		if c.set {
			text.WriteRune(c.ch)
		} else {
			text.WriteByte(' ')
		}
	}
	return lipglossStyle(run[0].style).Render(text.String())
}

func lipglossStyle(s Style) lipgloss.Style {
	ls := lipgloss.NewStyle()
	if s.Bold {
		ls = ls.Bold(true)
	}
	if s.Underline {
		ls = ls.Underline(true)
	}
	if s.Reverse {
		ls = ls.Reverse(true)
	}
	if s.Dim {
		ls = ls.Faint(true)
	}
	if s.Foreground != "" {
		ls = ls.Foreground(lipgloss.Color(s.Foreground))
	}
	if s.Background != "" {
		ls = ls.Background(lipgloss.Color(s.Background))
	}
	return ls
}
