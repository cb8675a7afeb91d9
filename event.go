package calyx

import "sync"

// ============================================================================
// Event Types
// ============================================================================

// EventType identifies the kind of event.
type EventType uint8

const (
	// Pointer events
	EventPointerDown EventType = iota + 1
	EventPointerUp
	EventClick

	// Keyboard events
	EventKeyDown
	EventKeyUp

	// Touch events
	EventTouchStart
	EventTouchEnd

	// Focus events
	EventFocusIn
	EventFocusOut
)

// EventPhase indicates when in the event propagation cycle we are.
type EventPhase uint8

const (
	// PhaseCapture - event travels from root down to target.
	PhaseCapture EventPhase = iota

	// PhaseTarget - event is at the target element.
	PhaseTarget

	// PhaseBubble - event travels from target up to root.
	PhaseBubble
)

// Button identifies which pointer button was pressed.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

// Modifiers holds the modifier keys held during an event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

func (m Modifiers) Shift() bool { return m&ModShift != 0 }
func (m Modifiers) Ctrl() bool  { return m&ModCtrl != 0 }
func (m Modifiers) Alt() bool   { return m&ModAlt != 0 }
func (m Modifiers) Super() bool { return m&ModSuper != 0 }

// ============================================================================
// Event Interface and Base
// ============================================================================

// Event is the interface for all events.
type Event interface {
	// Type returns the event type.
	Type() EventType

	// Target returns the element the event was dispatched to.
	Target() *Element

	// CurrentTarget returns the element currently handling the event.
	CurrentTarget() *Element

	// Phase returns the current propagation phase.
	Phase() EventPhase

	// Path returns the propagation path, deepest element first. It is the
	// toolkit's equivalent of composedPath(): the first entry is where the
	// event really originated, regardless of retargeting.
	Path() []*Element

	// StopPropagation prevents the event from continuing to propagate.
	StopPropagation()

	// IsPropagationStopped reports whether propagation was stopped.
	IsPropagationStopped() bool

	// PreventDefault suppresses the default action, if any.
	PreventDefault()

	// IsDefaultPrevented reports whether the default action was suppressed.
	IsDefaultPrevented() bool

	// internal methods for dispatch
	setCurrentTarget(el *Element)
	setPhase(p EventPhase)
}

// eventBase provides common event functionality.
type eventBase struct {
	eventType          EventType
	target             *Element
	currentTarget      *Element
	phase              EventPhase
	path               []*Element
	propagationStopped bool
	defaultPrevented   bool
}

func (e *eventBase) Type() EventType            { return e.eventType }
func (e *eventBase) Target() *Element           { return e.target }
func (e *eventBase) CurrentTarget() *Element    { return e.currentTarget }
func (e *eventBase) Phase() EventPhase          { return e.phase }
func (e *eventBase) Path() []*Element           { return e.path }
func (e *eventBase) StopPropagation()           { e.propagationStopped = true }
func (e *eventBase) IsPropagationStopped() bool { return e.propagationStopped }
func (e *eventBase) PreventDefault()            { e.defaultPrevented = true }
func (e *eventBase) IsDefaultPrevented() bool   { return e.defaultPrevented }
func (e *eventBase) setCurrentTarget(el *Element) { e.currentTarget = el }
func (e *eventBase) setPhase(p EventPhase)        { e.phase = p }

func (e *eventBase) reset(t EventType) {
	e.eventType = t
	e.target = nil
	e.currentTarget = nil
	e.phase = PhaseTarget
	e.path = nil
	e.propagationStopped = false
	e.defaultPrevented = false
}

// ============================================================================
// Pointer Event
// ============================================================================

// PointerEvent represents pointer interaction events.
type PointerEvent struct {
	eventBase

	// Position in document coordinates.
	X, Y float64

	// Which button triggered the event (for down/up/click).
	Button Button

	// Modifier keys held during the event.
	Modifiers Modifiers

	// Click count for detecting double/triple clicks.
	ClickCount int
}

// NewPointerEvent creates a pointer event. Uses an object pool because
// pointer events are high-frequency.
func NewPointerEvent(eventType EventType, x, y float64, button Button, mods Modifiers) *PointerEvent {
	e := pointerEventPool.Get().(*PointerEvent)
	e.reset(eventType)
	e.X = x
	e.Y = y
	e.Button = button
	e.Modifiers = mods
	e.ClickCount = 1
	return e
}

// Release returns the event to the pool. Call when done processing.
func (e *PointerEvent) Release() {
	pointerEventPool.Put(e)
}

var pointerEventPool = sync.Pool{
	New: func() any {
		return &PointerEvent{}
	},
}

// ============================================================================
// Keyboard Event
// ============================================================================

// KeyEvent represents keyboard events.
type KeyEvent struct {
	eventBase

	// Logical key (e.g. "a", "Enter", "Escape", "Tab", "ArrowDown").
	Key string

	// Modifier keys held during the event.
	Modifiers Modifiers

	// True if this is a repeat event (key held down).
	Repeat bool
}

// NewKeyEvent creates a keyboard event.
func NewKeyEvent(eventType EventType, key string, mods Modifiers, repeat bool) *KeyEvent {
	e := keyEventPool.Get().(*KeyEvent)
	e.reset(eventType)
	e.Key = key
	e.Modifiers = mods
	e.Repeat = repeat
	return e
}

// Release returns the event to the pool.
func (e *KeyEvent) Release() {
	keyEventPool.Put(e)
}

var keyEventPool = sync.Pool{
	New: func() any {
		return &KeyEvent{}
	},
}

// ============================================================================
// Touch Event
// ============================================================================

// TouchEvent represents single-touch gesture events.
type TouchEvent struct {
	eventBase

	// Position in document coordinates.
	X, Y float64
}

// NewTouchEvent creates a touch event.
func NewTouchEvent(eventType EventType, x, y float64) *TouchEvent {
	e := &TouchEvent{}
	e.reset(eventType)
	e.X = x
	e.Y = y
	return e
}

// ============================================================================
// Focus Event
// ============================================================================

// FocusEvent represents focus change events.
type FocusEvent struct {
	eventBase

	// Related is the element losing focus (for FocusIn) or gaining focus
	// (for FocusOut).
	Related *Element
}

// NewFocusEvent creates a focus event.
func NewFocusEvent(eventType EventType, target, related *Element) *FocusEvent {
	e := &FocusEvent{Related: related}
	e.eventType = eventType
	e.target = target
	return e
}

// ============================================================================
// Handler Types (simple callback API)
// ============================================================================

// PointerHandler is a callback for pointer events.
type PointerHandler func(*PointerEvent)

// KeyHandler is a callback for keyboard events.
type KeyHandler func(*KeyEvent)

// TouchHandler is a callback for touch events.
type TouchHandler func(*TouchEvent)

// FocusHandler is a callback for focus events.
type FocusHandler func(*FocusEvent)
