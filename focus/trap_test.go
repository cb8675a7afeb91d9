package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyxui/calyx"
)

// trapFixture is a document with a focusable trigger, a panel holding
// two buttons, and a focusable element after the panel.
type trapFixture struct {
	doc     *calyx.Document
	sched   *calyx.StepScheduler
	trigger *calyx.Element
	panel   *calyx.Element
	inner   []*calyx.Element
	after   *calyx.Element
}

func newTrapFixture(t *testing.T) *trapFixture {
	t.Helper()
	doc := newDoc(t)
	f := &trapFixture{
		doc:     doc,
		sched:   doc.Scheduler().(*calyx.StepScheduler),
		trigger: mount(t, doc.Root(), calyx.KindButton, nil),
		panel:   mount(t, doc.Root(), calyx.KindContainer, nil),
	}
	f.inner = []*calyx.Element{
		mount(t, f.panel, calyx.KindButton, nil),
		mount(t, f.panel, calyx.KindInput, nil),
	}
	f.after = mount(t, doc.Root(), calyx.KindButton, nil)
	return f
}

func TestTrapInitialFocus(t *testing.T) {
	f := newTrapFixture(t)

	trap := NewTrap(f.doc, f.panel, TrapOptions{Features: FeatureInitialFocus})
	trap.SetEnabled(true)
	defer trap.SetEnabled(false)

	assert.Nil(t, f.doc.ActiveElement(), "initial focus is deferred")
	f.sched.FlushMicrotasks()
	assert.Same(t, f.inner[0], f.doc.ActiveElement())
}

func TestTrapInitialFocusExplicitTarget(t *testing.T) {
	f := newTrapFixture(t)

	trap := NewTrap(f.doc, f.panel, TrapOptions{
		Features:     FeatureInitialFocus,
		InitialFocus: f.inner[1],
	})
	trap.SetEnabled(true)
	defer trap.SetEnabled(false)

	f.sched.FlushMicrotasks()
	assert.Same(t, f.inner[1], f.doc.ActiveElement())
}

func TestTrapInitialFocusPrefersAutoFocus(t *testing.T) {
	f := newTrapFixture(t)
	f.inner[1].SetAutoFocus(true)

	trap := NewTrap(f.doc, f.panel, TrapOptions{
		Features: FeatureInitialFocus | FeatureAutoFocus,
	})
	trap.SetEnabled(true)
	defer trap.SetEnabled(false)

	f.sched.FlushMicrotasks()
	assert.Same(t, f.inner[1], f.doc.ActiveElement())
}

func TestTrapInitialFocusKeepsFocusAlreadyInside(t *testing.T) {
	f := newTrapFixture(t)
	require.True(t, f.doc.Focus(f.inner[1], calyx.FocusOptions{}))

	trap := NewTrap(f.doc, f.panel, TrapOptions{Features: FeatureInitialFocus})
	trap.SetEnabled(true)
	defer trap.SetEnabled(false)

	f.sched.FlushMicrotasks()
	assert.Same(t, f.inner[1], f.doc.ActiveElement())
}

func TestTrapInitialFocusFallback(t *testing.T) {
	doc := newDoc(t)
	panel := mount(t, doc.Root(), calyx.KindContainer, nil)

	trap := NewTrap(doc, panel, TrapOptions{
		Features: FeatureInitialFocus,
		Fallback: panel,
	})
	trap.SetEnabled(true)
	defer trap.SetEnabled(false)

	doc.Scheduler().(*calyx.StepScheduler).FlushMicrotasks()
	assert.Same(t, panel, doc.ActiveElement())
}

func TestTrapInitialFocusCanceledByDisable(t *testing.T) {
	f := newTrapFixture(t)

	trap := NewTrap(f.doc, f.panel, TrapOptions{Features: FeatureInitialFocus})
	trap.SetEnabled(true)
	trap.SetEnabled(false)

	f.sched.FlushMicrotasks()
	assert.Nil(t, f.doc.ActiveElement())
}

func TestTrapGuardsCycleTab(t *testing.T) {
	f := newTrapFixture(t)
	dispose := Install(f.doc)
	defer dispose()

	trap := NewTrap(f.doc, f.panel, TrapOptions{Features: FeatureTabLock})
	trap.SetEnabled(true)
	defer trap.SetEnabled(false)

	// Tabbing past the panel's last element lands on the end guard,
	// which bounces to the first element.
	require.True(t, f.doc.Focus(f.inner[1], calyx.FocusOptions{}))
	f.doc.Dispatcher().KeyDown("Tab", 0)
	assert.Same(t, f.inner[0], f.doc.ActiveElement())

	// Shift-tabbing before the first element bounces to the last.
	f.doc.Dispatcher().KeyDown("Tab", calyx.ModShift)
	assert.Same(t, f.inner[1], f.doc.ActiveElement())
}

func TestTrapGuardsRemovedOnDisable(t *testing.T) {
	f := newTrapFixture(t)
	before := len(f.doc.Root().Children())

	trap := NewTrap(f.doc, f.panel, TrapOptions{Features: FeatureTabLock})
	trap.SetEnabled(true)
	assert.Len(t, f.doc.Root().Children(), before+2)

	trap.SetEnabled(false)
	assert.Len(t, f.doc.Root().Children(), before)
}

func TestTrapFocusLockVetoesEscape(t *testing.T) {
	f := newTrapFixture(t)

	trap := NewTrap(f.doc, f.panel, TrapOptions{Features: FeatureFocusLock})
	require.True(t, f.doc.Focus(f.inner[0], calyx.FocusOptions{}))
	trap.SetEnabled(true)
	defer trap.SetEnabled(false)

	assert.False(t, f.doc.Focus(f.after, calyx.FocusOptions{}))
	assert.Same(t, f.inner[0], f.doc.ActiveElement(),
		"focus never observably leaves the trap")

	// Moves within the trap stay allowed.
	assert.True(t, f.doc.Focus(f.inner[1], calyx.FocusOptions{}))
}

func TestTrapFocusLockTabExitWraps(t *testing.T) {
	f := newTrapFixture(t)
	dispose := Install(f.doc)
	defer dispose()

	trap := NewTrap(f.doc, f.panel, TrapOptions{Features: FeatureFocusLock})
	require.True(t, f.doc.Focus(f.inner[1], calyx.FocusOptions{}))
	trap.SetEnabled(true)
	defer trap.SetEnabled(false)

	// Tab past the end: the keyboard exit is vetoed and wraps to the
	// trap's first element.
	f.doc.Dispatcher().KeyDown("Tab", 0)
	assert.Same(t, f.inner[0], f.doc.ActiveElement())

	// Shift+Tab before the start wraps to the last.
	f.doc.Dispatcher().KeyDown("Tab", calyx.ModShift)
	assert.Same(t, f.inner[1], f.doc.ActiveElement())

	// The Tab flag expires on the next frame: a later programmatic
	// escape restores rather than wraps.
	f.sched.Frame()
	assert.False(t, f.doc.Focus(f.after, calyx.FocusOptions{}))
	assert.Same(t, f.inner[1], f.doc.ActiveElement())
}

func TestTrapFocusLockPointerSnap(t *testing.T) {
	f := newTrapFixture(t)
	icon := mount(t, f.inner[0], calyx.KindText, nil)

	trap := NewTrap(f.doc, f.panel, TrapOptions{Features: FeatureFocusLock})
	require.True(t, f.doc.Focus(f.inner[1], calyx.FocusOptions{}))
	trap.SetEnabled(true)
	defer trap.SetEnabled(false)

	// A press inside the trap whose handler tries to focus outside: the
	// veto snaps focus to the pressed element's focusable ancestor.
	f.doc.Dispatcher().PointerDown(icon, 0, 0, calyx.ButtonLeft, 0)
	assert.False(t, f.doc.Focus(f.after, calyx.FocusOptions{}))
	assert.Same(t, f.inner[0], f.doc.ActiveElement())
}

func TestTrapRestoreFocus(t *testing.T) {
	defer ResetHistories()
	f := newTrapFixture(t)

	require.True(t, f.doc.Focus(f.trigger, calyx.FocusOptions{}))

	trap := NewTrap(f.doc, f.panel, TrapOptions{Features: FeatureAll})
	trap.SetEnabled(true)
	f.sched.FlushMicrotasks()
	require.Same(t, f.inner[0], f.doc.ActiveElement())

	trap.SetEnabled(false)
	assert.Same(t, f.trigger, f.doc.ActiveElement(),
		"focus returns to its pre-activation home")
}

func TestTrapRestoreFocusSkipsDetached(t *testing.T) {
	defer ResetHistories()
	f := newTrapFixture(t)
	second := mount(t, f.doc.Root(), calyx.KindButton, nil)

	history := HistoryFor(f.doc)
	require.True(t, f.doc.Focus(f.trigger, calyx.FocusOptions{}))
	require.True(t, f.doc.Focus(second, calyx.FocusOptions{}))
	require.Len(t, history.Snapshot(), 2)

	trap := NewTrap(f.doc, f.panel, TrapOptions{Features: FeatureAll})
	trap.SetEnabled(true)
	f.sched.FlushMicrotasks()

	second.Remove()
	trap.SetEnabled(false)
	assert.Same(t, f.trigger, f.doc.ActiveElement(),
		"restoration falls back past detached entries")
}

func TestTrapExtraContainers(t *testing.T) {
	f := newTrapFixture(t)
	portal := mount(t, f.doc.Root(), calyx.KindContainer, nil)
	portalButton := mount(t, portal, calyx.KindButton, nil)

	var extras []*calyx.Element
	trap := NewTrap(f.doc, f.panel, TrapOptions{
		Features:        FeatureFocusLock,
		ExtraContainers: func() []*calyx.Element { return extras },
	})
	require.True(t, f.doc.Focus(f.inner[0], calyx.FocusOptions{}))
	trap.SetEnabled(true)
	defer trap.SetEnabled(false)

	// Not yet a container: vetoed.
	assert.False(t, f.doc.Focus(portalButton, calyx.FocusOptions{}))
	assert.Same(t, f.inner[0], f.doc.ActiveElement())

	// Once resolved as an extra container, the portal is inside.
	extras = []*calyx.Element{portal}
	assert.True(t, f.doc.Focus(portalButton, calyx.FocusOptions{}))

	// The portal unmounts: Update pulls focus back into the trap.
	extras = nil
	trap.Update()
	assert.Same(t, f.inner[0], f.doc.ActiveElement())
}

func TestTrapWarnsWhenNothingFocusable(t *testing.T) {
	doc := newDoc(t)
	panel := mount(t, doc.Root(), calyx.KindContainer, nil)

	trap := NewTrap(doc, panel, TrapOptions{Features: FeatureInitialFocus})
	trap.SetEnabled(true)
	defer trap.SetEnabled(false)

	doc.Scheduler().(*calyx.StepScheduler).FlushMicrotasks()
	assert.Nil(t, doc.ActiveElement(), "focus is left unchanged")
}
