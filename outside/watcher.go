package outside

import (
	"sync"

	"github.com/calyxui/calyx"
	"github.com/calyxui/calyx/focus"
	"github.com/calyxui/calyx/layers"
)

// Scope is the layer-registry scope shared by all outside watchers in a
// document. Only the topmost registered watcher listens, so nested
// overlays dismiss one at a time from the top of the stack.
const Scope = "outside-interaction"

// Handler is invoked when an interaction lands outside every container.
// ev is the triggering event (nil for a window-blur-into-frame
// interaction) and target is the element the interaction began on.
type Handler func(ev calyx.Event, target *calyx.Element)

// Watcher observes document-level input and reports interactions that
// begin outside its containers. It starts disabled; drive it with
// SetEnabled and call Update after container or stacking changes.
type Watcher struct {
	mu      sync.Mutex
	doc     *calyx.Document
	reg     *layers.Registry
	id      layers.InstanceID
	resolve Resolver
	handler Handler

	enabled   bool
	installed bool
	disposals []calyx.Disposal
	unsub     func()

	pressTarget *calyx.Element
	touchTarget *calyx.Element
	touchX      float64
	touchY      float64
}

// Watch creates a disabled watcher. The registry arbitrates between
// nested watchers; pass a per-document shared registry.
func Watch(doc *calyx.Document, reg *layers.Registry, resolve Resolver, handler Handler) *Watcher {
	w := &Watcher{
		doc:     doc,
		reg:     reg,
		id:      layers.NewInstanceID(),
		resolve: resolve,
		handler: handler,
	}
	w.unsub = reg.Subscribe(w.Update)
	return w
}

// ID returns the watcher's registry instance id.
func (w *Watcher) ID() layers.InstanceID {
	return w.id
}

// SetEnabled registers or unregisters the watcher in the shared scope
// and reconciles its listeners.
func (w *Watcher) SetEnabled(enabled bool) {
	w.mu.Lock()
	if w.enabled == enabled {
		w.mu.Unlock()
		return
	}
	w.enabled = enabled
	w.mu.Unlock()

	// Registration triggers Update through the registry subscription.
	if enabled {
		w.reg.Register(Scope, w.id)
	} else {
		w.reg.Unregister(Scope, w.id)
	}
	w.Update()
}

// Close permanently tears the watcher down.
func (w *Watcher) Close() {
	w.SetEnabled(false)
	w.mu.Lock()
	unsub := w.unsub
	w.unsub = nil
	w.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Update reconciles the listener set with the watcher's eligibility:
// listeners are installed only while the watcher is enabled and topmost
// in its scope.
func (w *Watcher) Update() {
	w.mu.Lock()
	should := w.enabled && w.reg.IsTop(Scope, w.id)
	if should == w.installed {
		w.mu.Unlock()
		return
	}
	w.installed = should
	if !should {
		disposals := w.disposals
		w.disposals = nil
		w.pressTarget = nil
		w.touchTarget = nil
		w.mu.Unlock()
		for _, dispose := range disposals {
			dispose()
		}
		return
	}
	w.mu.Unlock()

	disposals := []calyx.Disposal{
		w.doc.AddListener(calyx.EventPointerDown, w.onPointerDown),
		w.doc.AddListener(calyx.EventClick, w.onClick),
		w.doc.AddListener(calyx.EventTouchStart, w.onTouchStart),
		w.doc.AddListener(calyx.EventTouchEnd, w.onTouchEnd),
		w.doc.OnWindowBlur(w.onWindowBlur),
	}
	w.mu.Lock()
	w.disposals = append(w.disposals, disposals...)
	w.mu.Unlock()
}

func (w *Watcher) containers() []*calyx.Element {
	if w.resolve == nil {
		return nil
	}
	return compact(w.resolve())
}

func (w *Watcher) containedByTree(el *calyx.Element) bool {
	for _, c := range w.containers() {
		if c.Contains(el) {
			return true
		}
	}
	return false
}

// containedByPath is the fallback containment check: the judged element
// may have been reparented or detached between press and release, but
// if the event's propagation path still threads a container the
// interaction began inside it.
func (w *Watcher) containedByPath(path []*calyx.Element) bool {
	containers := w.containers()
	for _, node := range path {
		for _, c := range containers {
			if node == c {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) onPointerDown(ev calyx.Event) {
	w.mu.Lock()
	w.pressTarget = ev.Target()
	w.mu.Unlock()
}

func (w *Watcher) onClick(ev calyx.Event) {
	w.mu.Lock()
	origin := w.pressTarget
	w.pressTarget = nil
	w.mu.Unlock()

	if origin == nil {
		origin = ev.Target()
	}
	w.judge(ev, origin)
}

func (w *Watcher) onTouchStart(ev calyx.Event) {
	touch, ok := ev.(*calyx.TouchEvent)
	if !ok {
		return
	}
	w.mu.Lock()
	w.touchTarget = ev.Target()
	w.touchX = touch.X
	w.touchY = touch.Y
	w.mu.Unlock()
}

func (w *Watcher) onTouchEnd(ev calyx.Event) {
	touch, ok := ev.(*calyx.TouchEvent)
	if !ok {
		return
	}
	w.mu.Lock()
	origin := w.touchTarget
	startX, startY := w.touchX, w.touchY
	w.touchTarget = nil
	w.mu.Unlock()

	if origin == nil {
		return
	}

	// Travel beyond the slop on either axis reads as a scroll, not a
	// deliberate tap.
	slop := w.doc.Config().TouchSlop
	if abs(touch.X-startX) >= slop || abs(touch.Y-startY) >= slop {
		return
	}
	w.judge(ev, origin)
}

// judge decides whether the interaction that began on origin counts as
// outside and fires the handler if so.
func (w *Watcher) judge(ev calyx.Event, origin *calyx.Element) {
	if ev.IsDefaultPrevented() {
		return
	}
	if origin == nil || !origin.Attached() {
		return
	}
	if w.containedByTree(origin) {
		return
	}
	if w.containedByPath(ev.Path()) {
		return
	}

	// An outside press on something inert would clear focus via the
	// click's default action; suppress that so dismissal does not also
	// blur whatever the user was working in. The handler sees the flag
	// already set.
	if !focus.IsFocusable(origin, focus.Loose) {
		ev.PreventDefault()
	}

	w.handler(ev, origin)
}

// onWindowBlur treats focus escaping into an embedded frame outside the
// containers as an outside interaction, since no pointer event will be
// observed for it.
func (w *Watcher) onWindowBlur() {
	active := w.doc.ActiveElement()
	if active == nil || active.Kind() != calyx.KindFrame {
		return
	}
	if w.containedByTree(active) {
		return
	}
	w.handler(nil, active)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
