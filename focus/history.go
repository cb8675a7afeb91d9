package focus

import (
	"sync"

	"github.com/calyxui/calyx"
)

// History is a bounded ring of elements that have received focus, most
// recent last. A single history serves every trap on a document: it is
// installed once via a document-level focus listener and read by traps
// restoring focus on teardown.
type History struct {
	mu       sync.Mutex
	buf      []*calyx.Element
	capacity int
	dispose  calyx.Disposal
}

// NewHistory creates a history bounded to capacity entries. A capacity
// below one falls back to the document default.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = calyx.DefaultInteractionConfig().FocusHistorySize
	}
	return &History{capacity: capacity}
}

// Install subscribes the history to the document's focus changes.
// Installing twice is a no-op.
func (h *History) Install(doc *calyx.Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dispose != nil {
		return
	}
	h.dispose = doc.OnFocusChange(func(el *calyx.Element) {
		if el != nil {
			h.record(el)
		}
	})
}

// Uninstall detaches the history from its document.
func (h *History) Uninstall() {
	h.mu.Lock()
	dispose := h.dispose
	h.dispose = nil
	h.mu.Unlock()
	if dispose != nil {
		dispose()
	}
}

// Clear empties the buffer. Exposed for test isolation.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf = h.buf[:0]
}

// Snapshot returns a copy of the buffer, most recent last.
func (h *History) Snapshot() []*calyx.Element {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*calyx.Element, len(h.buf))
	copy(out, h.buf)
	return out
}

func (h *History) record(el *calyx.Element) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Collapse immediate repeats so bouncing focus does not flood the ring.
	if n := len(h.buf); n > 0 && h.buf[n-1] == el {
		return
	}
	h.buf = append(h.buf, el)
	if len(h.buf) > h.capacity {
		h.buf = h.buf[len(h.buf)-h.capacity:]
	}
}

var (
	historiesMu sync.Mutex
	histories   map[*calyx.Document]*History
)

// HistoryFor returns the shared history for a document, creating and
// installing it on first use with the document's configured capacity.
func HistoryFor(doc *calyx.Document) *History {
	historiesMu.Lock()
	if histories == nil {
		histories = make(map[*calyx.Document]*History)
	}
	h, ok := histories[doc]
	if !ok {
		h = NewHistory(doc.Config().FocusHistorySize)
		histories[doc] = h
	}
	historiesMu.Unlock()

	if !ok {
		h.Install(doc)
	}
	return h
}

// ResetHistories drops every shared history. Exposed for test isolation.
func ResetHistories() {
	historiesMu.Lock()
	defer historiesMu.Unlock()
	for _, h := range histories {
		h.Uninstall()
	}
	histories = nil
}
