package widgets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyxui/calyx"
	"github.com/calyxui/calyx/focus"
)

func newListboxFixture(t *testing.T, values ...string) (*calyx.Document, *Listbox, []*Option) {
	t.Helper()
	doc := calyx.NewDocument()
	ctx := NewContext(doc)
	box := NewListbox(ctx, doc.Root())
	opts := make([]*Option, len(values))
	for i, v := range values {
		opts[i] = box.AddOption(v)
	}
	return doc, box, opts
}

func TestListboxOpenFocusesFirstOption(t *testing.T) {
	doc, box, opts := newListboxFixture(t, "red", "green", "blue")

	doc.Dispatcher().Click(box.Button(), 0, 0, calyx.ButtonLeft, 0)
	assert.True(t, box.IsOpen())
	assert.Same(t, opts[0].Element(), doc.ActiveElement())
}

func TestListboxOpenFocusesSelection(t *testing.T) {
	doc, box, opts := newListboxFixture(t, "red", "green", "blue")

	box.Open()
	opts[1].Select()
	require.Equal(t, "green", box.Value())
	require.False(t, box.IsOpen())

	box.Open()
	assert.Same(t, opts[1].Element(), doc.ActiveElement(),
		"reopening starts at the current selection")
}

func TestListboxKeyboardSelection(t *testing.T) {
	doc, box, opts := newListboxFixture(t, "red", "green", "blue")

	var changes []string
	box.OnChange(func(v string) { changes = append(changes, v) })

	box.Open()
	doc.Dispatcher().KeyDown("ArrowDown", 0)
	require.Same(t, opts[1].Element(), doc.ActiveElement())

	doc.Dispatcher().KeyDown("Enter", 0)
	assert.Equal(t, "green", box.Value())
	assert.Equal(t, []string{"green"}, changes)
	assert.False(t, box.IsOpen())
	assert.Same(t, box.Button(), doc.ActiveElement())
}

func TestListboxEscapeClosesWithoutSelecting(t *testing.T) {
	doc, box, _ := newListboxFixture(t, "red", "green")

	box.Open()
	doc.Dispatcher().KeyDown("Escape", 0)
	assert.False(t, box.IsOpen())
	assert.Empty(t, box.Value())
	assert.Same(t, box.Button(), doc.ActiveElement())
}

func TestListboxOutsideClickCloses(t *testing.T) {
	doc, box, _ := newListboxFixture(t, "red", "green")
	other := calyx.NewElement(calyx.KindButton)
	doc.Root().AppendChild(other)

	box.Open()
	doc.Dispatcher().Click(other, 0, 0, calyx.ButtonLeft, 0)
	assert.False(t, box.IsOpen())
}

func TestListboxInsideDialogEscapeOrder(t *testing.T) {
	t.Cleanup(focus.ResetHistories)
	doc := calyx.NewDocument()
	ctx := NewContext(doc)

	dialog := NewDialog(ctx, doc.Root(), DialogOptions{})
	box := NewListbox(ctx, dialog.Panel())
	box.AddOption("red")
	box.AddOption("green")

	dialog.Open()
	doc.Scheduler().(*calyx.StepScheduler).FlushMicrotasks()
	require.Same(t, box.Button(), doc.ActiveElement())

	box.Open()
	require.True(t, box.IsOpen())

	// Escape reaches the topmost overlay only: the listbox closes, then
	// the dialog on the next press.
	doc.Dispatcher().KeyDown("Escape", 0)
	assert.False(t, box.IsOpen())
	assert.True(t, dialog.IsOpen())

	doc.Dispatcher().KeyDown("Escape", 0)
	assert.False(t, dialog.IsOpen())
}

func TestListboxDisabledOptionNotSelectable(t *testing.T) {
	doc, box, opts := newListboxFixture(t, "red", "green", "blue")
	opts[1].Element().SetDisabled(true)

	box.Open()
	doc.Dispatcher().KeyDown("ArrowDown", 0)
	assert.Same(t, opts[2].Element(), doc.ActiveElement(), "disabled option is skipped")

	opts[1].Select()
	assert.Empty(t, box.Value())
}
