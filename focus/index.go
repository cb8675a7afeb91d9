// Package focus implements keyboard-focus management over a calyx
// element tree: enumerating and ranking focusable elements, moving focus
// deterministically with wrap-around and disabled-element skipping, and
// trapping focus inside a region with entry and exit tracking.
package focus

import (
	"sort"

	"github.com/calyxui/calyx"
)

// Mode selects how IsFocusable inspects an element.
type Mode int

const (
	// Strict checks the element itself.
	Strict Mode = iota

	// Loose walks ancestors and succeeds if the element or any ancestor
	// qualifies. Used to decide whether a click landed on "something
	// interactive" even when the click target is a non-focusable child,
	// like an icon inside a button.
	Loose
)

// IsFocusable reports whether el can receive keyboard focus.
func IsFocusable(el *calyx.Element, mode Mode) bool {
	if el == nil {
		return false
	}
	switch mode {
	case Loose:
		for node := el; node != nil; node = node.Parent() {
			if focusableSelf(node) {
				return true
			}
		}
		return false
	default:
		return focusableSelf(el)
	}
}

// focusableSelf is the element-level selection predicate: explicit tab
// index, native interactivity, editable content, or an embedded frame -
// excluded again by an explicit negative tab index, a disabled state, or
// invisibility.
func focusableSelf(el *calyx.Element) bool {
	if el.Disabled() || !el.EffectivelyVisible() {
		return false
	}
	if idx, ok := el.TabIndex(); ok {
		return idx >= 0
	}
	if el.Kind().NativeInteractive() || el.Editable() || el.Kind() == calyx.KindFrame {
		return true
	}
	return false
}

// List returns every focusable element within container (including the
// container itself when it qualifies), ordered by tab-index semantics:
// explicit positive tab indexes ascending first, then tab index zero and
// absent in document order.
func List(container *calyx.Element) []*calyx.Element {
	if container == nil {
		return nil
	}
	var out []*calyx.Element
	collectFocusable(container, &out, false)
	sortByTabIndex(out)
	return out
}

// ListAutoFocus returns the focusable elements within container that
// carry the auto-focus marker, in the same order as List.
func ListAutoFocus(container *calyx.Element) []*calyx.Element {
	if container == nil {
		return nil
	}
	var out []*calyx.Element
	collectFocusable(container, &out, true)
	sortByTabIndex(out)
	return out
}

// collectFocusable walks the subtree in document (pre-order) order.
func collectFocusable(el *calyx.Element, out *[]*calyx.Element, autoOnly bool) {
	if !el.Visible() {
		// An invisible subtree hides all of its descendants.
		return
	}
	if focusableSelf(el) && (!autoOnly || el.AutoFocus()) {
		*out = append(*out, el)
	}
	for _, child := range el.Children() {
		collectFocusable(child, out, autoOnly)
	}
}

// sortByTabIndex stable-sorts a document-ordered slice so explicit
// positive tab indexes come first, low to high. Tab index zero and
// absent share a group and keep document order, mirroring platform
// tab-order semantics.
func sortByTabIndex(els []*calyx.Element) {
	sort.SliceStable(els, func(i, j int) bool {
		return tabRank(els[i]) < tabRank(els[j])
	})
}

func tabRank(el *calyx.Element) int {
	if idx, ok := el.TabIndex(); ok && idx > 0 {
		return idx
	}
	// Zero and absent sort after every explicit positive index.
	return int(^uint(0) >> 1)
}

// SortByDocumentOrder stable-sorts els into document order.
func SortByDocumentOrder(doc *calyx.Document, els []*calyx.Element) {
	sort.SliceStable(els, func(i, j int) bool {
		return doc.Compare(els[i], els[j]) < 0
	})
}

// Nearest resolves el to itself or its closest strictly focusable
// ancestor, or nil when no ancestor qualifies.
func Nearest(el *calyx.Element) *calyx.Element {
	for node := el; node != nil; node = node.Parent() {
		if focusableSelf(node) {
			return node
		}
	}
	return nil
}
