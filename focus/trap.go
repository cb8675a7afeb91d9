package focus

import (
	"sync"

	"github.com/calyxui/calyx"
)

// Feature is a combinable set of trap capabilities.
type Feature uint8

const (
	// FeatureInitialFocus moves focus into the trap on activation.
	FeatureInitialFocus Feature = 1 << iota
	// FeatureTabLock keeps Tab traversal cyclic within the trap using
	// guard elements.
	FeatureTabLock
	// FeatureFocusLock vetoes focus moves that leave the trap.
	FeatureFocusLock
	// FeatureRestoreFocus returns focus to its pre-activation home on
	// deactivation.
	FeatureRestoreFocus
	// FeatureAutoFocus prefers auto-focus-marked elements during
	// initial-focus resolution.
	FeatureAutoFocus
)

// FeatureNone disables every capability.
const FeatureNone Feature = 0

// FeatureAll is the full modal behavior.
const FeatureAll = FeatureInitialFocus | FeatureTabLock | FeatureFocusLock | FeatureRestoreFocus

// TrapOptions configures a focus trap.
type TrapOptions struct {
	// Features selects the trap's capabilities.
	Features Feature

	// InitialFocus is an explicit first target for initial-focus
	// resolution.
	InitialFocus *calyx.Element

	// Fallback receives focus when nothing else inside the trap can.
	Fallback *calyx.Element

	// ExtraContainers resolves additional elements that count as part of
	// the trap, for content that is logically inside but structurally
	// elsewhere (portals). Resolved at every containment check.
	ExtraContainers func() []*calyx.Element

	// History overrides the shared focus history used for restoration.
	History *History
}

// Trap constrains keyboard traversal and programmatic focus changes to a
// region of the tree. The caller owns the enabled flag; the trap is a
// two-state machine (inactive, active) driven by SetEnabled.
type Trap struct {
	mu   sync.Mutex
	doc  *calyx.Document
	root *calyx.Element
	opts TrapOptions

	history *History

	enabled   bool
	lastGood  *calyx.Element
	restoreTo []*calyx.Element

	guardBefore *calyx.Element
	guardAfter  *calyx.Element

	disposals     []calyx.Disposal
	cancelInitial calyx.CancelFunc
	cancelTabFlag calyx.CancelFunc

	tabRecent bool
	tabShift  bool
}

// NewTrap creates an inactive trap rooted at root.
func NewTrap(doc *calyx.Document, root *calyx.Element, opts TrapOptions) *Trap {
	t := &Trap{doc: doc, root: root, opts: opts, history: opts.History}
	if t.history == nil && opts.Features&FeatureRestoreFocus != 0 {
		t.history = HistoryFor(doc)
	}
	return t
}

// Enabled reports whether the trap is active.
func (t *Trap) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// SetEnabled drives the trap's state machine.
func (t *Trap) SetEnabled(enabled bool) {
	t.mu.Lock()
	if t.enabled == enabled {
		t.mu.Unlock()
		return
	}
	t.enabled = enabled
	t.mu.Unlock()

	if enabled {
		t.activate()
	} else {
		t.deactivate()
	}
}

// Update re-checks the trap's containment against freshly resolved
// containers. Hosts call it after the container set changes (an extra
// container mounted or unmounted); with FeatureFocusLock it pulls focus
// back inside if the change stranded it outside.
func (t *Trap) Update() {
	if !t.Enabled() || !t.has(FeatureFocusLock) {
		return
	}
	active := t.doc.ActiveElement()
	if active == nil || t.contains(active) || t.isGuard(active) {
		return
	}
	t.recoverFocus()
}

func (t *Trap) has(f Feature) bool {
	return t.opts.Features&f != 0
}

// ============================================================================
// Activation
// ============================================================================

func (t *Trap) activate() {
	if t.has(FeatureRestoreFocus) {
		snap := t.history.Snapshot()
		if active := t.doc.ActiveElement(); active != nil {
			if len(snap) == 0 || snap[len(snap)-1] != active {
				snap = append(snap, active)
			}
		}
		t.mu.Lock()
		t.restoreTo = snap
		t.mu.Unlock()
	}

	if active := t.doc.ActiveElement(); active != nil && t.contains(active) {
		t.setLastGood(active)
	}

	// The Tab flag is kept regardless of features: both the focus lock
	// and the guards consult it to tell keyboard exits from pointer ones.
	t.addDisposal(t.doc.AddListener(calyx.EventKeyDown, t.onKeyDown))

	if t.has(FeatureFocusLock) {
		t.addDisposal(t.doc.OnFocusCapture(t.onFocusCapture))
		t.addDisposal(t.doc.OnFocusChange(t.onFocusChange))
	}

	if t.has(FeatureTabLock) {
		t.mountGuards()
	}

	if t.has(FeatureInitialFocus) {
		// Deferred so the surrounding tree finishes mounting before focus
		// is requested.
		cancel := t.doc.Scheduler().QueueMicrotask(t.applyInitialFocus)
		t.mu.Lock()
		t.cancelInitial = cancel
		t.mu.Unlock()
	}
}

func (t *Trap) deactivate() {
	t.mu.Lock()
	disposals := t.disposals
	t.disposals = nil
	cancelInitial := t.cancelInitial
	t.cancelInitial = nil
	cancelTabFlag := t.cancelTabFlag
	t.cancelTabFlag = nil
	restoreTo := t.restoreTo
	t.restoreTo = nil
	t.lastGood = nil
	t.tabRecent = false
	t.mu.Unlock()

	if cancelInitial != nil {
		cancelInitial()
	}
	if cancelTabFlag != nil {
		cancelTabFlag()
	}
	for _, dispose := range disposals {
		dispose()
	}
	t.unmountGuards()

	if t.has(FeatureRestoreFocus) {
		// Most recent still-attached element predating activation.
		for i := len(restoreTo) - 1; i >= 0; i-- {
			el := restoreTo[i]
			if el.Attached() && t.doc.Focus(el, calyx.FocusOptions{}) {
				break
			}
		}
	}
}

func (t *Trap) addDisposal(d calyx.Disposal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disposals = append(t.disposals, d)
}

// ============================================================================
// Containment
// ============================================================================

// containers returns the trap root plus any resolved extra containers.
func (t *Trap) containers() []*calyx.Element {
	out := []*calyx.Element{t.root}
	if t.opts.ExtraContainers != nil {
		for _, el := range t.opts.ExtraContainers() {
			if el != nil {
				out = append(out, el)
			}
		}
	}
	return out
}

func (t *Trap) contains(el *calyx.Element) bool {
	for _, c := range t.containers() {
		if c.Contains(el) {
			return true
		}
	}
	return false
}

// focusables returns the focusable elements across all containers, each
// container's list in tab order, containers in registration order.
func (t *Trap) focusables() []*calyx.Element {
	var out []*calyx.Element
	for _, c := range t.containers() {
		out = append(out, List(c)...)
	}
	return out
}

func (t *Trap) isGuard(el *calyx.Element) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return el != nil && (el == t.guardBefore || el == t.guardAfter)
}

func (t *Trap) guards() []*calyx.Element {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*calyx.Element
	if t.guardBefore != nil {
		out = append(out, t.guardBefore)
	}
	if t.guardAfter != nil {
		out = append(out, t.guardAfter)
	}
	return out
}

// ============================================================================
// Initial Focus
// ============================================================================

func (t *Trap) applyInitialFocus() {
	if !t.Enabled() {
		return
	}

	active := t.doc.ActiveElement()

	// Explicit target already holds focus: accept as-is.
	if t.opts.InitialFocus != nil && active == t.opts.InitialFocus {
		t.setLastGood(active)
		return
	}

	// Focus already inside the trap: accept as-is.
	if active != nil && t.contains(active) {
		t.setLastGood(active)
		return
	}

	if t.opts.InitialFocus != nil && t.doc.Focus(t.opts.InitialFocus, calyx.FocusOptions{}) {
		t.setLastGood(t.doc.ActiveElement())
		return
	}

	skip := t.guards()
	if t.has(FeatureAutoFocus) {
		if t.moveInto(First|AutoFocusOnly, skip) {
			return
		}
	}
	if t.moveInto(First, skip) {
		return
	}

	if t.opts.Fallback != nil && t.doc.Focus(t.opts.Fallback, calyx.FocusOptions{}) {
		t.setLastGood(t.doc.ActiveElement())
		return
	}

	t.doc.Log().Warn("focus trap: no focusable elements inside the trap; focus left unchanged")
}

func (t *Trap) moveInto(dir Direction, skip []*calyx.Element) bool {
	var candidates []*calyx.Element
	for _, c := range t.containers() {
		if dir&AutoFocusOnly != 0 {
			candidates = append(candidates, ListAutoFocus(c)...)
		} else {
			candidates = append(candidates, List(c)...)
		}
	}
	res := Move(t.doc, candidates, dir&^AutoFocusOnly, Options{Skip: skip, NoSort: true})
	if res == Success {
		t.setLastGood(t.doc.ActiveElement())
		return true
	}
	return false
}

func (t *Trap) setLastGood(el *calyx.Element) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastGood = el
}

// ============================================================================
// Guards (TabLock)
// ============================================================================

// mountGuards renders two invisible-to-layout but focusable elements as
// siblings immediately before and after the trap root. Reaching a guard
// means the user tabbed past the trap's edge; the guard bounces focus to
// the opposite end.
func (t *Trap) mountGuards() {
	parent := t.root.Parent()
	if parent == nil {
		t.doc.Log().Debug("focus trap: root has no parent, tab guards skipped")
		return
	}

	before := calyx.NewElement(calyx.KindContainer)
	before.SetTabIndex(0)
	before.OnFocus(func(*calyx.FocusEvent) { t.bounceFromGuard(false) })

	after := calyx.NewElement(calyx.KindContainer)
	after.SetTabIndex(0)
	after.OnFocus(func(*calyx.FocusEvent) { t.bounceFromGuard(true) })

	parent.InsertBefore(before, t.root)
	parent.InsertAfter(after, t.root)

	t.mu.Lock()
	t.guardBefore = before
	t.guardAfter = after
	t.mu.Unlock()
}

func (t *Trap) unmountGuards() {
	t.mu.Lock()
	before := t.guardBefore
	after := t.guardAfter
	t.guardBefore = nil
	t.guardAfter = nil
	t.mu.Unlock()

	if before != nil {
		before.Remove()
	}
	if after != nil {
		after.Remove()
	}
}

// bounceFromGuard redirects focus to the first real focusable descendant
// when the end guard was entered, or the last when the start guard was.
func (t *Trap) bounceFromGuard(toFirst bool) {
	if !t.Enabled() {
		return
	}
	dir := Last
	if toFirst {
		dir = First
	}
	Move(t.doc, t.focusables(), dir, Options{Skip: t.guards(), NoSort: true})
}

// ============================================================================
// Focus Lock
// ============================================================================

func (t *Trap) onKeyDown(ev calyx.Event) {
	key, ok := ev.(*calyx.KeyEvent)
	if !ok || key.Key != "Tab" {
		return
	}

	t.mu.Lock()
	t.tabRecent = true
	t.tabShift = key.Modifiers.Shift()
	cancelPrev := t.cancelTabFlag
	t.mu.Unlock()
	if cancelPrev != nil {
		cancelPrev()
	}

	// The flag must outlive this event but not persist: it is cleared on
	// the next animation frame. The window is a heuristic and may be
	// loose under very fast synthetic input.
	cancel := t.doc.Scheduler().NextFrame(func() {
		t.mu.Lock()
		t.tabRecent = false
		t.mu.Unlock()
	})
	t.mu.Lock()
	t.cancelTabFlag = cancel
	t.mu.Unlock()
}

// onFocusCapture vetoes focus moves that would leave the trap and routes
// focus back inside. Tab-driven exits wrap to the opposite end; pointer
// driven exits snap to the clicked element when it is an interactive
// part of the trap, and otherwise restore the last known good element.
func (t *Trap) onFocusCapture(ev *calyx.FocusEvent) {
	if !t.Enabled() {
		return
	}
	target := ev.Target()
	if target == nil || t.isGuard(target) || t.contains(target) {
		return
	}

	ev.PreventDefault()
	ev.StopPropagation()

	t.mu.Lock()
	tabRecent := t.tabRecent
	tabShift := t.tabShift
	t.mu.Unlock()

	if tabRecent {
		dir := First
		if tabShift {
			dir = Last
		}
		Move(t.doc, t.focusables(), dir|WrapAround, Options{Skip: t.guards(), NoSort: true})
		return
	}

	if origin := t.doc.Dispatcher().LastPointerDown(); origin != nil {
		if snap := Nearest(origin); snap != nil && t.contains(snap) {
			if t.doc.Focus(snap, calyx.FocusOptions{}) {
				return
			}
		}
	}
	t.recoverFocus()
}

func (t *Trap) onFocusChange(el *calyx.Element) {
	if el == nil || t.isGuard(el) || !t.contains(el) {
		return
	}
	t.setLastGood(el)
}

func (t *Trap) recoverFocus() {
	t.mu.Lock()
	lastGood := t.lastGood
	t.mu.Unlock()

	// A stale lastGood outside the current containers must not be
	// retried: the capture veto would route it right back here.
	if lastGood != nil && t.contains(lastGood) && t.doc.Focus(lastGood, calyx.FocusOptions{}) {
		return
	}
	Move(t.doc, t.focusables(), First, Options{Skip: t.guards(), NoSort: true})
}
