// Package layers tracks stacking order among coexisting overlay
// instances. Each named scope holds an insertion-ordered stack of
// instance IDs; the most recently registered instance of a scope is its
// topmost, and topmost-wins gating lets nested overlays decide which
// one responds to a shared trigger such as Escape or an outside click.
package layers

import (
	"sync"

	"github.com/google/uuid"
)

// InstanceID identifies one registered overlay instance within a scope.
type InstanceID string

// NewInstanceID returns a fresh unique instance identifier.
func NewInstanceID() InstanceID {
	return InstanceID(uuid.NewString())
}

// Registry holds per-scope stacks of overlay instances. The zero value
// is not usable; construct with NewRegistry. Typically one registry is
// shared per document.
type Registry struct {
	mu          sync.Mutex
	scopes      map[string][]InstanceID
	subscribers map[int]func()
	nextSub     int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		scopes:      make(map[string][]InstanceID),
		subscribers: make(map[int]func()),
	}
}

// Register appends id to the scope's stack, making it the scope's
// topmost instance. Registering an id already present in the scope is a
// no-op; its position is preserved.
func (r *Registry) Register(scope string, id InstanceID) {
	r.mu.Lock()
	stack := r.scopes[scope]
	for _, existing := range stack {
		if existing == id {
			r.mu.Unlock()
			return
		}
	}
	r.scopes[scope] = append(stack, id)
	subs := r.snapshotSubscribers()
	r.mu.Unlock()

	notify(subs)
}

// Unregister removes id from the scope's stack, preserving the order of
// the remaining instances. Unregistering an absent id is a no-op.
func (r *Registry) Unregister(scope string, id InstanceID) {
	r.mu.Lock()
	stack := r.scopes[scope]
	idx := -1
	for i, existing := range stack {
		if existing == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return
	}
	stack = append(stack[:idx:idx], stack[idx+1:]...)
	if len(stack) == 0 {
		delete(r.scopes, scope)
	} else {
		r.scopes[scope] = stack
	}
	subs := r.snapshotSubscribers()
	r.mu.Unlock()

	notify(subs)
}

// IsTop reports whether id is the scope's topmost instance. An id not
// present in the scope is reported as topmost: an instance asking before
// its registration lands must not suppress its own behavior.
func (r *Registry) IsTop(scope string, id InstanceID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	stack := r.scopes[scope]
	if len(stack) == 0 {
		return true
	}
	for _, existing := range stack {
		if existing == id {
			return stack[len(stack)-1] == id
		}
	}
	return true
}

// Len returns the number of instances registered in scope.
func (r *Registry) Len(scope string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scopes[scope])
}

// Subscribe registers fn to run after every registration change. The
// returned function removes the subscription.
func (r *Registry) Subscribe(fn func()) func() {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subscribers[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subscribers, id)
		r.mu.Unlock()
	}
}

func (r *Registry) snapshotSubscribers() []func() {
	out := make([]func(), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}
