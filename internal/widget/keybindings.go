package widget

// KeyBindings composes a scrollable help popup listing available key
// bindings, centered over whatever it's floated above.
//
// Ported from input.rs's KeyBindingsList: a bordered, background-filled
// list of heading/binding lines in a Layer with a floated hint drawn over
// its top border,
// the whole thing centered via Float(...).horizontal(0.5).vertical(0.5).
type KeyBindings struct {
	list        *List
	bindingText Style
}

// NewKeyBindings returns an empty popup; use Heading/Binding/BindingContinued/Blank to fill it.
func NewKeyBindings() *KeyBindings {
	return &KeyBindings{list: NewList(), bindingText: Style{Foreground: "14"}}
}

// Blank adds an empty spacer line.
func (k *KeyBindings) Blank() {
	k.list.Add(NewEmpty())
}

// Heading adds a bold section header line.
func (k *KeyBindings) Heading(name string) {
	k.list.Add(NewStyledText(name, Style{Bold: true}))
}

// Binding adds one "key  description" row, the key column a fixed 16
// cells wide regardless of the key text's own length.
func (k *KeyBindings) Binding(binding, description string) {
	k.list.Add(NewHJoin(
		NewSegment(NewResize(NewStyledText(binding, k.bindingText)).WithMinWidth(16)),
		NewSegment(NewText(description)).WithFlex(),
	))
}

// BindingContinued adds a description-only row aligned under a previous
// Binding row, for a binding whose explanation spans multiple lines.
func (k *KeyBindings) BindingContinued(description string) {
	k.list.Add(NewHJoin(
		NewSegment(NewResize(NewEmpty()).WithMinWidth(16)),
		NewSegment(NewText(description)).WithFlex(),
	))
}

// Widget returns the popup as a single centered Widget, ready to render
// over whatever backdrop the caller is currently drawing.
func (k *KeyBindings) Widget() Widget {
	hint := NewFloat(
		NewPadding(NewText("j/k or ↓/↑ to scroll, esc to close")).WithHorizontal(1),
	).WithHorizontal(0.5)

	backdrop := NewBorder(NewBackground(NewPadding(k.list).WithHorizontal(1)))

	return NewFloat(NewLayer(backdrop, hint)).WithHorizontal(0.5).WithVertical(0.5)
}
