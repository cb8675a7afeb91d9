package calyx

import (
	"io"
	"sync"

	"github.com/calyxui/calyx/internal/logger"
)

// Disposal removes a previously registered listener. Calling it more
// than once is harmless.
type Disposal func()

// FocusOptions controls a programmatic focus request.
type FocusOptions struct {
	// PreventScroll skips the scroll-into-view side effect.
	PreventScroll bool
}

type eventListener struct {
	id int
	fn func(Event)
}

type focusCaptureListener struct {
	id int
	fn func(*FocusEvent)
}

type focusChangeListener struct {
	id int
	fn func(*Element)
}

type windowBlurListener struct {
	id int
	fn func()
}

// Document owns an element tree, the active (focused) element, the
// document-level listener lists and the scheduler. It is the stand-in
// for the host platform's document plus window.
type Document struct {
	mu     sync.RWMutex
	root   *Element
	active *Element

	config InteractionConfig
	log    *logger.Logger
	sched  Scheduler
	disp   *Dispatcher

	listeners    map[EventType][]eventListener
	focusCapture []focusCaptureListener
	focusChange  []focusChangeListener
	windowBlur   []windowBlurListener
	nextListener int

	// Host hooks. scrollIntoView is invoked after a successful focus
	// unless PreventScroll was requested. tabNavigate and clickFocus are
	// the default actions for an unhandled Tab key and click; they are
	// installed by the focus package (see focus.Install) so the tree
	// itself stays free of focus policy.
	scrollIntoView func(*Element)
	tabNavigate    func(shift bool)
	clickFocus     func(*Element)
}

// NewDocument creates a document with a container root, default
// interaction config and a manual StepScheduler.
func NewDocument() *Document {
	d := &Document{
		config:    DefaultInteractionConfig(),
		sched:     NewStepScheduler(),
		listeners: make(map[EventType][]eventListener),
	}
	root := NewElement(KindContainer)
	root.setDocument(d)
	d.root = root
	d.disp = newDispatcher(d)
	return d
}

// Root returns the document's root element.
func (d *Document) Root() *Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.root
}

// Config returns the current interaction config.
func (d *Document) Config() InteractionConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}

// SetConfig replaces the interaction config. Invalid configs are rejected.
func (d *Document) SetConfig(cfg InteractionConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	d.config = cfg
	d.mu.Unlock()
	return nil
}

// Scheduler returns the document's scheduler.
func (d *Document) Scheduler() Scheduler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sched
}

// SetScheduler replaces the scheduler. Hosts with a real frame loop call
// this once at startup.
func (d *Document) SetScheduler(s Scheduler) {
	d.mu.Lock()
	d.sched = s
	d.mu.Unlock()
}

// Dispatcher returns the document's event dispatcher.
func (d *Document) Dispatcher() *Dispatcher {
	return d.disp
}

// EnableLogging routes toolkit diagnostics to w at the given zerolog
// level ("debug", "info", "warn", ...).
func (d *Document) EnableLogging(w io.Writer, level string) error {
	log, err := logger.New(logger.Options{Level: level, Writer: w})
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.log = log
	d.mu.Unlock()
	return nil
}

// Log returns the document's logger. A nil logger discards everything,
// so callers may use the result unconditionally.
func (d *Document) Log() *logger.Logger {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.log
}

// SetScrollIntoView installs the host's scroll-into-view hook.
func (d *Document) SetScrollIntoView(fn func(*Element)) {
	d.mu.Lock()
	d.scrollIntoView = fn
	d.mu.Unlock()
}

// SetTabNavigator installs the default action for an unhandled Tab key.
func (d *Document) SetTabNavigator(fn func(shift bool)) {
	d.mu.Lock()
	d.tabNavigate = fn
	d.mu.Unlock()
}

// SetClickFocuser installs the default focus side effect of a click.
func (d *Document) SetClickFocuser(fn func(target *Element)) {
	d.mu.Lock()
	d.clickFocus = fn
	d.mu.Unlock()
}

// ============================================================================
// Focus
// ============================================================================

// ActiveElement returns the element holding keyboard focus, or nil.
func (d *Document) ActiveElement() *Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active
}

// Focus requests keyboard focus for el. The request is vetoed - and
// false returned - when the element cannot take focus (nil, disabled,
// invisible, detached) or when a capturing focus listener prevents the
// default. A true return means the move committed; handlers running
// during commit may immediately move focus onward, which still counts
// as success for the original request.
func (d *Document) Focus(el *Element, opts FocusOptions) bool {
	if el == nil || el.Disabled() || !el.EffectivelyVisible() || !el.Attached() {
		return false
	}
	if el.Document() != d {
		return false
	}

	d.mu.RLock()
	old := d.active
	d.mu.RUnlock()
	if old == el {
		return true
	}

	ev := NewFocusEvent(EventFocusIn, el, old)
	ev.path = el.propagationPath()
	for _, l := range d.focusCaptureSnapshot() {
		l.fn(ev)
		if ev.IsPropagationStopped() {
			break
		}
	}
	if ev.IsDefaultPrevented() {
		return false
	}

	// Capture listeners may have focused something themselves; re-read.
	d.mu.Lock()
	old = d.active
	if old == el {
		d.mu.Unlock()
		return true
	}
	d.active = el
	d.mu.Unlock()

	if old != nil {
		old.setFocused(false)
		blur := NewFocusEvent(EventFocusOut, old, el)
		blur.setCurrentTarget(old)
		old.handleEvent(blur, PhaseTarget)
	}
	el.setFocused(true)

	for _, l := range d.focusChangeSnapshot() {
		l.fn(el)
	}

	ev.setCurrentTarget(el)
	el.handleEvent(ev, PhaseTarget)

	if !opts.PreventScroll {
		d.mu.RLock()
		scroll := d.scrollIntoView
		d.mu.RUnlock()
		if scroll != nil {
			scroll(el)
		}
	}
	return true
}

// Blur removes focus from the active element, if any.
func (d *Document) Blur() {
	d.mu.Lock()
	old := d.active
	d.active = nil
	d.mu.Unlock()
	if old == nil {
		return
	}

	old.setFocused(false)
	blur := NewFocusEvent(EventFocusOut, old, nil)
	blur.setCurrentTarget(old)
	old.handleEvent(blur, PhaseTarget)

	for _, l := range d.focusChangeSnapshot() {
		l.fn(nil)
	}
}

// elementDetached clears focus state when the active element leaves the
// tree. Called by the tree mutation path.
func (d *Document) elementDetached(el *Element) {
	d.mu.Lock()
	wasActive := d.active != nil && el.Contains(d.active)
	if wasActive {
		d.active.setFocused(false)
		d.active = nil
	}
	d.mu.Unlock()

	if wasActive {
		for _, l := range d.focusChangeSnapshot() {
			l.fn(nil)
		}
	}
}

// ============================================================================
// Document Order
// ============================================================================

// Compare orders two elements by document (pre-order) position:
// -1 if a precedes b, +1 if a follows b, 0 if equal or unordered
// (different trees). An ancestor precedes its descendants.
func (d *Document) Compare(a, b *Element) int {
	if a == nil || b == nil || a == b {
		return 0
	}
	pa := treePath(a)
	pb := treePath(b)
	if len(pa) == 0 || len(pb) == 0 || pa[0].el != pb[0].el {
		return 0
	}
	n := len(pa)
	if len(pb) < n {
		n = len(pb)
	}
	for i := 1; i < n; i++ {
		if pa[i].idx != pb[i].idx {
			if pa[i].idx < pb[i].idx {
				return -1
			}
			return 1
		}
	}
	if len(pa) < len(pb) {
		return -1
	}
	if len(pa) > len(pb) {
		return 1
	}
	return 0
}

type pathStep struct {
	el  *Element
	idx int
}

// treePath returns the root-first chain of (element, index-in-parent).
func treePath(el *Element) []pathStep {
	var rev []pathStep
	node := el
	for {
		parent := node.Parent()
		if parent == nil {
			rev = append(rev, pathStep{el: node, idx: 0})
			break
		}
		rev = append(rev, pathStep{el: node, idx: parent.indexOf(node)})
		node = parent
	}
	out := make([]pathStep, len(rev))
	for i, step := range rev {
		out[len(rev)-1-i] = step
	}
	return out
}

// ============================================================================
// Document-Level Listeners
// ============================================================================

// AddListener registers a capturing document-level listener for the
// given event type. It runs before tree dispatch; StopPropagation on the
// event suppresses tree dispatch entirely.
func (d *Document) AddListener(t EventType, fn func(Event)) Disposal {
	d.mu.Lock()
	id := d.nextListener
	d.nextListener++
	d.listeners[t] = append(d.listeners[t], eventListener{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		list := d.listeners[t]
		for i, l := range list {
			if l.id == id {
				d.listeners[t] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// OnFocusCapture registers a capturing focus listener that runs before a
// focus move commits. PreventDefault on the event vetoes the move.
func (d *Document) OnFocusCapture(fn func(*FocusEvent)) Disposal {
	d.mu.Lock()
	id := d.nextListener
	d.nextListener++
	d.focusCapture = append(d.focusCapture, focusCaptureListener{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, l := range d.focusCapture {
			if l.id == id {
				d.focusCapture = append(d.focusCapture[:i], d.focusCapture[i+1:]...)
				return
			}
		}
	}
}

// OnFocusChange registers a listener notified after every committed
// focus change. The argument is the newly focused element, or nil on blur.
func (d *Document) OnFocusChange(fn func(*Element)) Disposal {
	d.mu.Lock()
	id := d.nextListener
	d.nextListener++
	d.focusChange = append(d.focusChange, focusChangeListener{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, l := range d.focusChange {
			if l.id == id {
				d.focusChange = append(d.focusChange[:i], d.focusChange[i+1:]...)
				return
			}
		}
	}
}

// OnWindowBlur registers a listener for the window losing focus.
func (d *Document) OnWindowBlur(fn func()) Disposal {
	d.mu.Lock()
	id := d.nextListener
	d.nextListener++
	d.windowBlur = append(d.windowBlur, windowBlurListener{id: id, fn: fn})
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, l := range d.windowBlur {
			if l.id == id {
				d.windowBlur = append(d.windowBlur[:i], d.windowBlur[i+1:]...)
				return
			}
		}
	}
}

func (d *Document) listenerSnapshot(t EventType) []eventListener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]eventListener, len(d.listeners[t]))
	copy(out, d.listeners[t])
	return out
}

func (d *Document) focusCaptureSnapshot() []focusCaptureListener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]focusCaptureListener, len(d.focusCapture))
	copy(out, d.focusCapture)
	return out
}

func (d *Document) focusChangeSnapshot() []focusChangeListener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]focusChangeListener, len(d.focusChange))
	copy(out, d.focusChange)
	return out
}

func (d *Document) windowBlurSnapshot() []windowBlurListener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]windowBlurListener, len(d.windowBlur))
	copy(out, d.windowBlur)
	return out
}

// ============================================================================
// Tree Dispatch
// ============================================================================

// dispatchTree propagates an event through the tree: capture from the
// root down to the target's parent, then target, then bubble back up.
func (d *Document) dispatchTree(ev Event, target *Element) {
	path := target.propagationPath()

	for i := len(path) - 1; i >= 1; i-- {
		ev.setPhase(PhaseCapture)
		ev.setCurrentTarget(path[i])
		path[i].handleEvent(ev, PhaseCapture)
		if ev.IsPropagationStopped() {
			return
		}
	}

	ev.setPhase(PhaseTarget)
	ev.setCurrentTarget(target)
	target.handleEvent(ev, PhaseTarget)
	if ev.IsPropagationStopped() {
		return
	}

	for i := 1; i < len(path); i++ {
		ev.setPhase(PhaseBubble)
		ev.setCurrentTarget(path[i])
		path[i].handleEvent(ev, PhaseBubble)
		if ev.IsPropagationStopped() {
			return
		}
	}
}
