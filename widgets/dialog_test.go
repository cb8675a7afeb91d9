package widgets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyxui/calyx"
	"github.com/calyxui/calyx/focus"
)

type dialogFixture struct {
	ctx     *Context
	doc     *calyx.Document
	sched   *calyx.StepScheduler
	trigger *calyx.Element
	dialog  *Dialog
	inner   []*calyx.Element
	closed  int
}

func newDialogFixture(t *testing.T) *dialogFixture {
	t.Helper()
	t.Cleanup(focus.ResetHistories)

	doc := calyx.NewDocument()
	f := &dialogFixture{
		ctx:   NewContext(doc),
		doc:   doc,
		sched: doc.Scheduler().(*calyx.StepScheduler),
	}
	f.trigger = calyx.NewElement(calyx.KindButton)
	doc.Root().AppendChild(f.trigger)

	f.dialog = NewDialog(f.ctx, doc.Root(), DialogOptions{
		OnClose: func() { f.closed++ },
	})
	f.inner = []*calyx.Element{
		calyx.NewElement(calyx.KindInput),
		calyx.NewElement(calyx.KindButton),
	}
	for _, el := range f.inner {
		f.dialog.Panel().AppendChild(el)
	}
	return f
}

func (f *dialogFixture) open(t *testing.T) {
	t.Helper()
	require.True(t, f.doc.Focus(f.trigger, calyx.FocusOptions{}))
	f.dialog.Open()
	f.sched.FlushMicrotasks()
}

func TestDialogOpenMovesFocusInside(t *testing.T) {
	f := newDialogFixture(t)
	f.open(t)

	assert.True(t, f.dialog.IsOpen())
	assert.Same(t, f.inner[0], f.doc.ActiveElement())
}

func TestDialogTrapsFocus(t *testing.T) {
	f := newDialogFixture(t)
	f.open(t)

	assert.False(t, f.doc.Focus(f.trigger, calyx.FocusOptions{}))
	assert.Same(t, f.inner[0], f.doc.ActiveElement())
}

func TestDialogEscapeCloses(t *testing.T) {
	f := newDialogFixture(t)
	f.open(t)

	f.doc.Dispatcher().KeyDown("Escape", 0)
	assert.False(t, f.dialog.IsOpen())
	assert.Equal(t, 1, f.closed)
	assert.Same(t, f.trigger, f.doc.ActiveElement(), "focus returns to the trigger")
}

func TestDialogOutsideClickCloses(t *testing.T) {
	f := newDialogFixture(t)
	f.open(t)

	f.doc.Dispatcher().Click(f.trigger, 0, 0, calyx.ButtonLeft, 0)
	assert.False(t, f.dialog.IsOpen())
	assert.Equal(t, 1, f.closed)
}

func TestDialogInsideClickStaysOpen(t *testing.T) {
	f := newDialogFixture(t)
	f.open(t)

	f.doc.Dispatcher().Click(f.inner[1], 0, 0, calyx.ButtonLeft, 0)
	assert.True(t, f.dialog.IsOpen())
}

func TestNestedDialogsCloseInnermostFirst(t *testing.T) {
	f := newDialogFixture(t)
	f.open(t)

	inner := NewDialog(f.ctx, f.dialog.Panel(), DialogOptions{})
	innerButton := calyx.NewElement(calyx.KindButton)
	inner.Panel().AppendChild(innerButton)

	inner.Open()
	f.sched.FlushMicrotasks()
	require.Same(t, innerButton, f.doc.ActiveElement())

	f.doc.Dispatcher().KeyDown("Escape", 0)
	assert.False(t, inner.IsOpen())
	assert.True(t, f.dialog.IsOpen(), "one overlay per press")

	f.doc.Dispatcher().KeyDown("Escape", 0)
	assert.False(t, f.dialog.IsOpen())
}

func TestDialogInitialFocusOption(t *testing.T) {
	t.Cleanup(focus.ResetHistories)
	doc := calyx.NewDocument()
	ctx := NewContext(doc)

	second := calyx.NewElement(calyx.KindButton)
	d := NewDialog(ctx, doc.Root(), DialogOptions{InitialFocus: second})
	d.Panel().AppendChild(calyx.NewElement(calyx.KindButton))
	d.Panel().AppendChild(second)

	d.Open()
	doc.Scheduler().(*calyx.StepScheduler).FlushMicrotasks()
	assert.Same(t, second, doc.ActiveElement())

	d.Close()
	d.Close() // closing an already-closed dialog is a no-op
	assert.False(t, d.IsOpen())
}

func TestDialogPanelHiddenWhileClosed(t *testing.T) {
	f := newDialogFixture(t)

	assert.False(t, f.dialog.Panel().EffectivelyVisible())
	f.open(t)
	assert.True(t, f.dialog.Panel().EffectivelyVisible())
}
