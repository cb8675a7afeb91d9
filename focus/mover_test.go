package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyxui/calyx"
)

// row lays out n focusable buttons under the root and returns them.
func row(t *testing.T, doc *calyx.Document, n int) []*calyx.Element {
	t.Helper()
	els := make([]*calyx.Element, n)
	for i := range els {
		els[i] = mount(t, doc.Root(), calyx.KindButton, nil)
	}
	return els
}

func TestMoveDirectiveValidation(t *testing.T) {
	doc := newDoc(t)

	assert.Panics(t, func() { Move(doc, nil, 0, Options{}) })
	assert.Panics(t, func() { Move(doc, nil, WrapAround, Options{}) })
	assert.Panics(t, func() { Move(doc, nil, First|Last, Options{}) })
	assert.NotPanics(t, func() { Move(doc, nil, First|WrapAround, Options{}) })
}

func TestMoveFirstLast(t *testing.T) {
	doc := newDoc(t)
	els := row(t, doc, 3)

	require.Equal(t, Success, Move(doc, els, First, Options{}))
	assert.Same(t, els[0], doc.ActiveElement())

	require.Equal(t, Success, Move(doc, els, Last, Options{}))
	assert.Same(t, els[2], doc.ActiveElement())
}

func TestMoveSkipsRefusingCandidates(t *testing.T) {
	doc := newDoc(t)
	els := row(t, doc, 4)
	els[2].SetDisabled(true)

	require.True(t, doc.Focus(els[1], calyx.FocusOptions{}))
	require.Equal(t, Success, Move(doc, els, Next, Options{}))
	assert.Same(t, els[3], doc.ActiveElement(), "disabled candidate is skipped")
}

func TestMoveBoundaries(t *testing.T) {
	doc := newDoc(t)
	els := row(t, doc, 2)

	require.True(t, doc.Focus(els[1], calyx.FocusOptions{}))
	assert.Equal(t, Overflow, Move(doc, els, Next, Options{}))
	assert.Same(t, els[1], doc.ActiveElement(), "overflow leaves focus in place")

	require.True(t, doc.Focus(els[0], calyx.FocusOptions{}))
	assert.Equal(t, Underflow, Move(doc, els, Previous, Options{}))
	assert.Same(t, els[0], doc.ActiveElement(), "underflow leaves focus in place")
}

func TestMoveWrapAround(t *testing.T) {
	doc := newDoc(t)
	els := row(t, doc, 3)

	require.True(t, doc.Focus(els[2], calyx.FocusOptions{}))
	require.Equal(t, Success, Move(doc, els, Next|WrapAround, Options{}))
	assert.Same(t, els[0], doc.ActiveElement())

	require.Equal(t, Success, Move(doc, els, Previous|WrapAround, Options{}))
	assert.Same(t, els[2], doc.ActiveElement())
}

func TestMoveWrapRevisitsStart(t *testing.T) {
	doc := newDoc(t)
	els := row(t, doc, 3)
	els[0].SetDisabled(true)
	els[2].SetDisabled(true)

	// The only enabled element is the active one; a full wrap comes back
	// to it rather than failing.
	require.True(t, doc.Focus(els[1], calyx.FocusOptions{}))
	assert.Equal(t, Success, Move(doc, els, Next|WrapAround, Options{}))
	assert.Same(t, els[1], doc.ActiveElement())
}

func TestMoveEmptyList(t *testing.T) {
	doc := newDoc(t)

	assert.Equal(t, Overflow, Move(doc, nil, Next, Options{}))
	assert.Equal(t, Underflow, Move(doc, nil, Previous, Options{}))
	assert.Equal(t, Error, Move(doc, nil, Next|WrapAround, Options{}))
}

func TestMoveAllRefuse(t *testing.T) {
	doc := newDoc(t)
	els := row(t, doc, 2)
	els[0].SetDisabled(true)
	els[1].SetDisabled(true)

	assert.Equal(t, Error, Move(doc, els, First, Options{}))
	assert.Nil(t, doc.ActiveElement())
}

func TestMoveSkipOption(t *testing.T) {
	doc := newDoc(t)
	els := row(t, doc, 3)

	require.Equal(t, Success, Move(doc, els, First, Options{Skip: []*calyx.Element{els[0]}}))
	assert.Same(t, els[1], doc.ActiveElement())
}

func TestMoveRelativeTo(t *testing.T) {
	doc := newDoc(t)
	els := row(t, doc, 3)

	require.Equal(t, Success, Move(doc, els, Next, Options{RelativeTo: els[0]}))
	assert.Same(t, els[1], doc.ActiveElement())
}

func TestMoveSortsInputUnlessNoSort(t *testing.T) {
	doc := newDoc(t)
	els := row(t, doc, 3)

	shuffled := []*calyx.Element{els[2], els[0], els[1]}
	require.Equal(t, Success, Move(doc, shuffled, First, Options{}))
	assert.Same(t, els[0], doc.ActiveElement(), "input is sorted into document order")

	require.Equal(t, Success, Move(doc, shuffled, First, Options{NoSort: true}))
	assert.Same(t, els[2], doc.ActiveElement(), "NoSort preserves caller order")
}

func TestMoveSelectsTextOnArrival(t *testing.T) {
	doc := newDoc(t)
	button := mount(t, doc.Root(), calyx.KindButton, nil)
	input := mount(t, doc.Root(), calyx.KindInput, nil)
	input.SetValue("hello")
	input.Select(2, 2)

	els := []*calyx.Element{button, input}
	require.True(t, doc.Focus(button, calyx.FocusOptions{}))

	require.Equal(t, Success, Move(doc, els, Next, Options{}))
	start, end := input.Selection()
	assert.Equal(t, 0, start, "sequential arrival selects the whole value")
	assert.Equal(t, 5, end)

	// A jump to an end does not touch the selection.
	input.Select(2, 2)
	require.True(t, doc.Focus(button, calyx.FocusOptions{}))
	require.Equal(t, Success, Move(doc, els, Last, Options{}))
	start, end = input.Selection()
	assert.Equal(t, 2, start)
	assert.Equal(t, 2, end)
}

func TestMoveNoScroll(t *testing.T) {
	doc := newDoc(t)
	els := row(t, doc, 1)

	var scrolled int
	doc.SetScrollIntoView(func(*calyx.Element) { scrolled++ })

	require.Equal(t, Success, Move(doc, els, First|NoScroll, Options{}))
	assert.Zero(t, scrolled)

	doc.Blur()
	require.Equal(t, Success, Move(doc, els, First, Options{}))
	assert.Equal(t, 1, scrolled)
}

func TestMoveWithin(t *testing.T) {
	doc := newDoc(t)
	section := mount(t, doc.Root(), calyx.KindContainer, nil)
	a := mount(t, section, calyx.KindButton, nil)
	b := mount(t, section, calyx.KindButton, nil)
	mount(t, doc.Root(), calyx.KindButton, nil) // outside the container

	require.Equal(t, Success, MoveWithin(doc, section, First, Options{}))
	assert.Same(t, a, doc.ActiveElement())

	require.Equal(t, Success, MoveWithin(doc, section, Next, Options{}))
	assert.Same(t, b, doc.ActiveElement())

	assert.Equal(t, Overflow, MoveWithin(doc, section, Next, Options{}))
	assert.Same(t, b, doc.ActiveElement())
}

func TestMoveWithinAutoFocusOnly(t *testing.T) {
	doc := newDoc(t)
	section := mount(t, doc.Root(), calyx.KindContainer, nil)
	mount(t, section, calyx.KindButton, nil)
	marked := mount(t, section, calyx.KindInput, func(el *calyx.Element) { el.SetAutoFocus(true) })

	require.Equal(t, Success, MoveWithin(doc, section, First|AutoFocusOnly, Options{}))
	assert.Same(t, marked, doc.ActiveElement())
}
