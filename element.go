// Package calyx provides a retained-mode element tree that stands in for
// the host platform's document: elements carry the attributes that matter
// to focus and interaction (disabled state, tab index, editability,
// visibility, native interactivity) while rendering stays entirely with
// the consumer.
//
// The tree is the substrate for the focus, layers and outside packages,
// which implement keyboard traversal, focus trapping, overlay layering
// and outside-interaction detection on top of it.
package calyx

import (
	"sync"
	"sync/atomic"
)

// ElementID uniquely identifies an element. IDs are stable for the life
// of the element and never reused within a process.
type ElementID uint64

var nextElementID atomic.Uint64

func newElementID() ElementID {
	return ElementID(nextElementID.Add(1))
}

// Kind identifies the role of an element. It decides native
// interactivity: a button is focusable by nature, a container is not.
type Kind string

const (
	KindContainer Kind = "container"
	KindText      Kind = "text"
	KindButton    Kind = "button"
	KindLink      Kind = "link"
	KindInput     Kind = "input"
	KindTextArea  Kind = "textarea"
	KindCheckbox  Kind = "checkbox"
	KindSwitch    Kind = "switch"
	KindSelect    Kind = "select"
	KindFrame     Kind = "frame"
	KindCustom    Kind = "custom"
)

// NativeInteractive reports whether elements of this kind can take
// keyboard focus without an explicit tab index.
func (k Kind) NativeInteractive() bool {
	switch k {
	case KindButton, KindLink, KindInput, KindTextArea, KindCheckbox, KindSwitch, KindSelect:
		return true
	}
	return false
}

// TextEntry reports whether elements of this kind hold editable text
// with a selection range.
func (k Kind) TextEntry() bool {
	return k == KindInput || k == KindTextArea
}

// Element is a node in the document tree. Elements are safe for
// concurrent property access; structural mutation and event dispatch are
// single-threaded, driven by the host's event loop.
type Element struct {
	mu sync.RWMutex

	id       ElementID
	kind     Kind
	parent   *Element
	children []*Element

	// Back-reference, set when the element is attached under a document root.
	doc *Document

	// Focus-relevant attributes
	disabled  bool
	visible   bool
	tabIndex  *int // nil means no explicit tab index
	editable  bool
	autoFocus bool

	// Interactive state
	focused bool

	// Text value and selection (for KindInput / KindTextArea)
	value              string
	selStart, selEnd   int

	// Event handlers (simple callback API)
	onPointerDown PointerHandler
	onPointerUp   PointerHandler
	onClick       PointerHandler
	onKeyDown     KeyHandler
	onKeyUp       KeyHandler
	onTouchStart  TouchHandler
	onTouchEnd    TouchHandler
	onFocus       FocusHandler
	onBlur        FocusHandler
}

// NewElement creates a detached element with default values.
func NewElement(kind Kind) *Element {
	return &Element{
		id:      newElementID(),
		kind:    kind,
		visible: true,
	}
}

// ID returns the element's unique identifier.
func (e *Element) ID() ElementID {
	return e.id
}

// Kind returns the element's kind.
func (e *Element) Kind() Kind {
	return e.kind
}

// ============================================================================
// Tree Structure
// ============================================================================

// Parent returns the element's parent, or nil.
func (e *Element) Parent() *Element {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.parent
}

// Children returns a copy of the element's children in document order.
func (e *Element) Children() []*Element {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// Document returns the owning document, or nil while detached.
func (e *Element) Document() *Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc
}

// Root returns the topmost ancestor (the element itself if detached).
func (e *Element) Root() *Element {
	node := e
	for {
		parent := node.Parent()
		if parent == nil {
			return node
		}
		node = parent
	}
}

// AppendChild adds child as the last child of e.
func (e *Element) AppendChild(child *Element) {
	e.insertChild(child, -1)
}

// InsertBefore inserts child immediately before ref among e's children.
// If ref is nil or not a child of e, child is appended.
func (e *Element) InsertBefore(child, ref *Element) {
	e.insertChild(child, e.indexOf(ref))
}

// InsertAfter inserts child immediately after ref among e's children.
// If ref is nil or not a child of e, child is appended.
func (e *Element) InsertAfter(child, ref *Element) {
	idx := e.indexOf(ref)
	if idx >= 0 {
		idx++
	}
	e.insertChild(child, idx)
}

// indexOf returns ref's index among e's children, or -1.
func (e *Element) indexOf(ref *Element) int {
	if ref == nil {
		return -1
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for i, c := range e.children {
		if c == ref {
			return i
		}
	}
	return -1
}

func (e *Element) insertChild(child *Element, idx int) {
	if child == nil || child == e {
		return
	}
	if p := child.Parent(); p != nil {
		p.RemoveChild(child)
	}

	e.mu.Lock()
	if idx < 0 || idx > len(e.children) {
		idx = len(e.children)
	}
	e.children = append(e.children, nil)
	copy(e.children[idx+1:], e.children[idx:])
	e.children[idx] = child
	doc := e.doc
	e.mu.Unlock()

	child.mu.Lock()
	child.parent = e
	child.mu.Unlock()

	child.setDocument(doc)
}

// RemoveChild detaches child from e. Removal of a non-child is a no-op.
func (e *Element) RemoveChild(child *Element) {
	if child == nil {
		return
	}
	e.mu.Lock()
	found := false
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			found = true
			break
		}
	}
	e.mu.Unlock()
	if !found {
		return
	}

	child.mu.Lock()
	child.parent = nil
	doc := child.doc
	child.mu.Unlock()

	child.setDocument(nil)
	if doc != nil {
		doc.elementDetached(child)
	}
}

// Remove detaches the element from its parent, if any.
func (e *Element) Remove() {
	if p := e.Parent(); p != nil {
		p.RemoveChild(e)
	}
}

// setDocument propagates the owning document through a subtree.
func (e *Element) setDocument(doc *Document) {
	e.mu.Lock()
	e.doc = doc
	children := make([]*Element, len(e.children))
	copy(children, e.children)
	e.mu.Unlock()

	for _, c := range children {
		c.setDocument(doc)
	}
}

// Contains reports whether other is e or a descendant of e.
func (e *Element) Contains(other *Element) bool {
	for node := other; node != nil; node = node.Parent() {
		if node == e {
			return true
		}
	}
	return false
}

// Attached reports whether the element is connected to a document.
func (e *Element) Attached() bool {
	doc := e.Document()
	return doc != nil && doc.Root().Contains(e)
}

// propagationPath returns the chain from e up to the root, deepest first.
func (e *Element) propagationPath() []*Element {
	var path []*Element
	for node := e; node != nil; node = node.Parent() {
		path = append(path, node)
	}
	return path
}

// ============================================================================
// Focus-Relevant Attributes
// ============================================================================

// SetDisabled toggles the disabled state. Disabled elements never take
// focus and do not receive pointer events' default actions.
func (e *Element) SetDisabled(disabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disabled = disabled
}

// Disabled reports the element's own disabled state.
func (e *Element) Disabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.disabled
}

// SetVisible toggles the element's own visibility.
func (e *Element) SetVisible(visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.visible = visible
}

// Visible reports the element's own visibility flag.
func (e *Element) Visible() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.visible
}

// EffectivelyVisible reports whether the element and all its ancestors
// are visible.
func (e *Element) EffectivelyVisible() bool {
	for node := e; node != nil; node = node.Parent() {
		if !node.Visible() {
			return false
		}
	}
	return true
}

// SetTabIndex assigns an explicit tab index. Negative values remove the
// element from sequential traversal while keeping it programmatically
// focusable.
func (e *Element) SetTabIndex(idx int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := idx
	e.tabIndex = &v
}

// ClearTabIndex removes the explicit tab index.
func (e *Element) ClearTabIndex() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tabIndex = nil
}

// TabIndex returns the explicit tab index and whether one is set.
func (e *Element) TabIndex() (int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.tabIndex == nil {
		return 0, false
	}
	return *e.tabIndex, true
}

// SetEditable marks the element's content as editable, which makes it
// focusable regardless of kind.
func (e *Element) SetEditable(editable bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editable = editable
}

// Editable reports the content-editable flag.
func (e *Element) Editable() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.editable
}

// SetAutoFocus marks the element as an auto-focus priority target.
func (e *Element) SetAutoFocus(auto bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoFocus = auto
}

// AutoFocus reports the auto-focus marker.
func (e *Element) AutoFocus() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.autoFocus
}

// Focused reports whether the element currently holds keyboard focus.
func (e *Element) Focused() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.focused
}

func (e *Element) setFocused(focused bool) {
	e.mu.Lock()
	e.focused = focused
	e.mu.Unlock()
}

// ============================================================================
// Text Value and Selection
// ============================================================================

// SetValue replaces the text value and collapses the selection to the end.
func (e *Element) SetValue(value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = value
	e.selStart = len(value)
	e.selEnd = len(value)
}

// Value returns the text value.
func (e *Element) Value() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.value
}

// Select sets the selection range, clamped to the value bounds.
func (e *Element) Select(start, end int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(e.value)
	e.selStart = clampInt(start, 0, n)
	e.selEnd = clampInt(end, e.selStart, n)
}

// SelectAll selects the entire text value.
func (e *Element) SelectAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selStart = 0
	e.selEnd = len(e.value)
}

// Selection returns the current selection range.
func (e *Element) Selection() (start, end int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selStart, e.selEnd
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ============================================================================
// Event Handlers
// ============================================================================

// OnPointerDown sets the pointer-down handler.
func (e *Element) OnPointerDown(h PointerHandler) { e.setHandler(func() { e.onPointerDown = h }) }

// OnPointerUp sets the pointer-up handler.
func (e *Element) OnPointerUp(h PointerHandler) { e.setHandler(func() { e.onPointerUp = h }) }

// OnClick sets the click handler.
func (e *Element) OnClick(h PointerHandler) { e.setHandler(func() { e.onClick = h }) }

// OnKeyDown sets the key-down handler.
func (e *Element) OnKeyDown(h KeyHandler) { e.setHandler(func() { e.onKeyDown = h }) }

// OnKeyUp sets the key-up handler.
func (e *Element) OnKeyUp(h KeyHandler) { e.setHandler(func() { e.onKeyUp = h }) }

// OnTouchStart sets the touch-start handler.
func (e *Element) OnTouchStart(h TouchHandler) { e.setHandler(func() { e.onTouchStart = h }) }

// OnTouchEnd sets the touch-end handler.
func (e *Element) OnTouchEnd(h TouchHandler) { e.setHandler(func() { e.onTouchEnd = h }) }

// OnFocus sets the focus handler.
func (e *Element) OnFocus(h FocusHandler) { e.setHandler(func() { e.onFocus = h }) }

// OnBlur sets the blur handler.
func (e *Element) OnBlur(h FocusHandler) { e.setHandler(func() { e.onBlur = h }) }

func (e *Element) setHandler(assign func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	assign()
}

// handleEvent invokes the matching callback for the event. Callbacks run
// during the target and bubble phases, like default-mode listeners.
func (e *Element) handleEvent(ev Event, phase EventPhase) {
	if phase == PhaseCapture {
		return
	}

	e.mu.RLock()
	var fn func()
	switch t := ev.(type) {
	case *PointerEvent:
		switch ev.Type() {
		case EventPointerDown:
			if h := e.onPointerDown; h != nil {
				fn = func() { h(t) }
			}
		case EventPointerUp:
			if h := e.onPointerUp; h != nil {
				fn = func() { h(t) }
			}
		case EventClick:
			if h := e.onClick; h != nil {
				fn = func() { h(t) }
			}
		}
	case *KeyEvent:
		switch ev.Type() {
		case EventKeyDown:
			if h := e.onKeyDown; h != nil {
				fn = func() { h(t) }
			}
		case EventKeyUp:
			if h := e.onKeyUp; h != nil {
				fn = func() { h(t) }
			}
		}
	case *TouchEvent:
		switch ev.Type() {
		case EventTouchStart:
			if h := e.onTouchStart; h != nil {
				fn = func() { h(t) }
			}
		case EventTouchEnd:
			if h := e.onTouchEnd; h != nil {
				fn = func() { h(t) }
			}
		}
	case *FocusEvent:
		switch ev.Type() {
		case EventFocusIn:
			if h := e.onFocus; h != nil {
				fn = func() { h(t) }
			}
		case EventFocusOut:
			if h := e.onBlur; h != nil {
				fn = func() { h(t) }
			}
		}
	}
	e.mu.RUnlock()

	if fn != nil {
		fn()
	}
}
