package widget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferWriteClipsToPushedRect(t *testing.T) {
	buf := NewBuffer(Size{Width: 5, Height: 3})
	buf.Push(Pos{X: 1, Y: 1}, Size{Width: 3, Height: 1})
	buf.Write(Pos{X: 0, Y: 0}, "xxxxxxxx", Plain) // overruns the 3-wide rect
	buf.Pop()

	lines := strings.Split(stripANSI(buf.Render()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, " xxx ", lines[1])
}

func TestBufferPushClampsToCurrentRect(t *testing.T) {
	buf := NewBuffer(Size{Width: 4, Height: 4})
	buf.Push(Pos{X: 2, Y: 2}, Size{Width: 2, Height: 2})
	buf.Push(Pos{X: -5, Y: -5}, Size{Width: 10, Height: 10}) // clamp back to parent rect
	assert.Equal(t, Size{Width: 2, Height: 2}, buf.Size())
}

func TestBufferExtraPopIsNoop(t *testing.T) {
	buf := NewBuffer(Size{Width: 3, Height: 3})
	buf.Pop()
	buf.Pop()
	assert.Equal(t, Size{Width: 3, Height: 3}, buf.Size())
}

func TestBorderDrawsCornersAndInsetsInner(t *testing.T) {
	buf := NewBuffer(Size{Width: 5, Height: 4})
	b := NewBorder(NewText("hi"))
	b.Render(buf)

	lines := strings.Split(stripANSI(buf.Render()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "┌───┐", lines[0])
	assert.Equal(t, "└───┘", lines[3])
	assert.True(t, strings.HasPrefix(lines[1], "│hi"))
}

func TestBackgroundFillsBeforeInner(t *testing.T) {
	buf := NewBuffer(Size{Width: 4, Height: 2})
	bg := NewBackground(NewText("ok"))
	bg.Render(buf)

	lines := strings.Split(stripANSI(buf.Render()), "\n")
	assert.Equal(t, "ok  ", lines[0])
	assert.Equal(t, "    ", lines[1])
}

func TestFloatCentersInner(t *testing.T) {
	buf := NewBuffer(Size{Width: 10, Height: 3})
	f := NewFloat(NewText("hi")).WithHorizontal(0.5).WithVertical(0.5)
	f.Render(buf)

	lines := strings.Split(stripANSI(buf.Render()), "\n")
	assert.Equal(t, "    hi    ", lines[1])
}

func TestHJoinGivesFlexSegmentRemainingWidth(t *testing.T) {
	buf := NewBuffer(Size{Width: 10, Height: 1})
	j := NewHJoin(
		NewSegment(NewResize(NewText("ab")).WithMinWidth(4)),
		NewSegment(NewText("xyzxyzxyz")).WithFlex(),
	)
	j.Render(buf)

	lines := strings.Split(stripANSI(buf.Render()), "\n")
	assert.Equal(t, "ab  xyzxyz", lines[0])
}

func TestListStacksItemsVertically(t *testing.T) {
	l := NewList()
	l.Add(NewText("one"))
	l.Add(NewText("two"))
	l.Add(NewText("three"))

	buf := NewBuffer(Size{Width: 5, Height: 3})
	l.Render(buf)

	lines := strings.Split(stripANSI(buf.Render()), "\n")
	assert.Equal(t, "one  ", lines[0])
	assert.Equal(t, "two  ", lines[1])
	assert.Equal(t, "three", lines[2])
}

func TestResizeDoesNotStretchInnerDraw(t *testing.T) {
	r := NewResize(NewText("hi")).WithMinWidth(6)
	size := r.Size(NewBuffer(Size{Width: 20, Height: 1}), nil, nil)
	assert.Equal(t, Size{Width: 6, Height: 1}, size)

	buf := NewBuffer(Size{Width: 6, Height: 1})
	r.Render(buf)
	lines := strings.Split(stripANSI(buf.Render()), "\n")
	assert.Equal(t, "hi    ", lines[0])
}

func TestKeyBindingsWidgetRendersWithoutPanicking(t *testing.T) {
	k := NewKeyBindings()
	k.Heading("General")
	k.Binding("q", "quit")
	k.Binding("?", "toggle this help")
	k.BindingContinued("(press again to close)")
	k.Blank()

	buf := NewBuffer(Size{Width: 60, Height: 20})
	assert.NotPanics(t, func() {
		k.Widget().Render(buf)
	})
}

// stripANSI removes lipgloss's SGR escape sequences so tests can assert
// on the plain text content of a rendered line.
func stripANSI(s string) string {
	var out strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}
