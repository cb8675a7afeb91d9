package calyx

import (
	"math"
	"sync"
	"time"
)

// Dispatcher routes platform input into the document: document-level
// capturing listeners first, then capture/target/bubble tree dispatch,
// then default actions. Hosts feed it raw input; tests drive it directly.
type Dispatcher struct {
	mu  sync.Mutex
	doc *Document

	// Pointer session state
	pressed       *Element
	pressedButton Button
	lastDown      *Element

	// Click counting
	lastClickTime time.Time
	lastClickX    float64
	lastClickY    float64
	clickCount    int
}

func newDispatcher(doc *Document) *Dispatcher {
	return &Dispatcher{doc: doc}
}

// LastPointerDown returns the origin element of the most recent
// pointer-down gesture. The focus trap uses it to tell a click-driven
// focus exit apart from a keyboard-driven one.
func (d *Dispatcher) LastPointerDown() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastDown
}

// PointerDown dispatches a pointer press on target.
func (d *Dispatcher) PointerDown(target *Element, x, y float64, button Button, mods Modifiers) {
	if target == nil {
		return
	}
	ev := NewPointerEvent(EventPointerDown, x, y, button, mods)
	ev.target = target
	ev.path = target.propagationPath()

	d.runDocListeners(EventPointerDown, ev)
	if !ev.IsPropagationStopped() {
		d.doc.dispatchTree(ev, target)
	}

	d.mu.Lock()
	d.pressed = target
	d.pressedButton = button
	d.lastDown = target
	d.mu.Unlock()

	ev.Release()
}

// PointerUp dispatches a pointer release on target and synthesizes a
// click when a press is in flight. The click target is the nearest
// common ancestor of the press origin and the release element, so a
// drag that crosses container boundaries still produces a click on the
// containment the gesture never left.
func (d *Dispatcher) PointerUp(target *Element, x, y float64, button Button, mods Modifiers) {
	if target == nil {
		return
	}
	ev := NewPointerEvent(EventPointerUp, x, y, button, mods)
	ev.target = target
	ev.path = target.propagationPath()

	d.runDocListeners(EventPointerUp, ev)
	if !ev.IsPropagationStopped() {
		d.doc.dispatchTree(ev, target)
	}
	ev.Release()

	d.mu.Lock()
	pressed := d.pressed
	pressedButton := d.pressedButton
	d.pressed = nil
	d.pressedButton = ButtonNone
	d.mu.Unlock()

	if pressed == nil || button != pressedButton {
		return
	}
	if clickTarget := commonAncestor(pressed, target); clickTarget != nil {
		d.synthesizeClick(clickTarget, x, y, button, mods)
	}
}

// Click is a convenience that performs a full press-and-release on a
// single element.
func (d *Dispatcher) Click(target *Element, x, y float64, button Button, mods Modifiers) {
	d.PointerDown(target, x, y, button, mods)
	d.PointerUp(target, x, y, button, mods)
}

func (d *Dispatcher) synthesizeClick(target *Element, x, y float64, button Button, mods Modifiers) {
	cfg := d.doc.Config()
	now := time.Now()

	d.mu.Lock()
	within := now.Sub(d.lastClickTime) <= time.Duration(cfg.DoubleClickMillis)*time.Millisecond
	near := math.Abs(x-d.lastClickX) <= cfg.DoubleClickDistance &&
		math.Abs(y-d.lastClickY) <= cfg.DoubleClickDistance
	if within && near {
		d.clickCount++
	} else {
		d.clickCount = 1
	}
	count := d.clickCount
	d.lastClickTime = now
	d.lastClickX = x
	d.lastClickY = y
	d.mu.Unlock()

	ev := NewPointerEvent(EventClick, x, y, button, mods)
	ev.target = target
	ev.path = target.propagationPath()
	ev.ClickCount = count

	d.runDocListeners(EventClick, ev)
	if !ev.IsPropagationStopped() {
		d.doc.dispatchTree(ev, target)
	}

	// Default action: a click moves focus, unless a listener prevented it.
	if !ev.IsDefaultPrevented() {
		d.doc.mu.RLock()
		clickFocus := d.doc.clickFocus
		d.doc.mu.RUnlock()
		if clickFocus != nil {
			clickFocus(target)
		}
	}
	ev.Release()
}

// KeyDown dispatches a key press to the active element (or the root when
// nothing is focused). An unhandled Tab runs the document's tab
// navigator as its default action.
func (d *Dispatcher) KeyDown(key string, mods Modifiers) {
	target := d.doc.ActiveElement()
	if target == nil {
		target = d.doc.Root()
	}

	ev := NewKeyEvent(EventKeyDown, key, mods, false)
	ev.target = target
	ev.path = target.propagationPath()

	d.runDocListeners(EventKeyDown, ev)
	if !ev.IsPropagationStopped() {
		d.doc.dispatchTree(ev, target)
	}

	if key == "Tab" && !ev.IsDefaultPrevented() {
		d.doc.mu.RLock()
		tab := d.doc.tabNavigate
		d.doc.mu.RUnlock()
		if tab != nil {
			tab(mods.Shift())
		}
	}
	ev.Release()
}

// KeyUp dispatches a key release to the active element.
func (d *Dispatcher) KeyUp(key string, mods Modifiers) {
	target := d.doc.ActiveElement()
	if target == nil {
		target = d.doc.Root()
	}

	ev := NewKeyEvent(EventKeyUp, key, mods, false)
	ev.target = target
	ev.path = target.propagationPath()

	d.runDocListeners(EventKeyUp, ev)
	if !ev.IsPropagationStopped() {
		d.doc.dispatchTree(ev, target)
	}
	ev.Release()
}

// TouchStart dispatches the beginning of a touch gesture on target.
func (d *Dispatcher) TouchStart(target *Element, x, y float64) {
	if target == nil {
		return
	}
	ev := NewTouchEvent(EventTouchStart, x, y)
	ev.target = target
	ev.path = target.propagationPath()

	d.runDocListeners(EventTouchStart, ev)
	if !ev.IsPropagationStopped() {
		d.doc.dispatchTree(ev, target)
	}
}

// TouchEnd dispatches the end of a touch gesture on target.
func (d *Dispatcher) TouchEnd(target *Element, x, y float64) {
	if target == nil {
		return
	}
	ev := NewTouchEvent(EventTouchEnd, x, y)
	ev.target = target
	ev.path = target.propagationPath()

	d.runDocListeners(EventTouchEnd, ev)
	if !ev.IsPropagationStopped() {
		d.doc.dispatchTree(ev, target)
	}
}

// WindowBlur reports that the window lost focus to another application
// or to embedded content.
func (d *Dispatcher) WindowBlur() {
	for _, l := range d.doc.windowBlurSnapshot() {
		l.fn()
	}
}

func (d *Dispatcher) runDocListeners(t EventType, ev Event) {
	for _, l := range d.doc.listenerSnapshot(t) {
		l.fn(ev)
		if ev.IsPropagationStopped() {
			return
		}
	}
}

// commonAncestor returns the deepest element containing both a and b,
// or nil when they live in different trees.
func commonAncestor(a, b *Element) *Element {
	if a == nil || b == nil {
		return nil
	}
	seen := make(map[*Element]bool)
	for node := a; node != nil; node = node.Parent() {
		seen[node] = true
	}
	for node := b; node != nil; node = node.Parent() {
		if seen[node] {
			return node
		}
	}
	return nil
}
