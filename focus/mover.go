package focus

import (
	"github.com/calyxui/calyx"
)

// Direction is a combinable set of movement flags. Exactly one of
// First, Previous, Next, Last must be present.
type Direction uint8

const (
	// First focuses the first candidate.
	First Direction = 1 << iota
	// Previous focuses the candidate before the reference point.
	Previous
	// Next focuses the candidate after the reference point.
	Next
	// Last focuses the last candidate.
	Last

	// WrapAround wraps traversal past either boundary.
	WrapAround
	// NoScroll suppresses the scroll-into-view side effect.
	NoScroll
	// AutoFocusOnly restricts container resolution to auto-focus-marked
	// elements.
	AutoFocusOnly
)

const directionMask = First | Previous | Next | Last

// Result is the outcome of a focus movement.
type Result int

const (
	// Success means focus landed on a candidate.
	Success Result = iota
	// Error means every candidate refused focus.
	Error
	// Overflow means forward traversal stepped past the end without
	// WrapAround.
	Overflow
	// Underflow means backward traversal stepped past the start without
	// WrapAround.
	Underflow
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Error:
		return "error"
	case Overflow:
		return "overflow"
	case Underflow:
		return "underflow"
	}
	return "unknown"
}

// Options adjusts a focus movement.
type Options struct {
	// RelativeTo is the reference point for Next/Previous. It defaults
	// to the document's active element.
	RelativeTo *calyx.Element

	// Skip removes elements from candidacy. Used for trap guards, which
	// must never be selected as real destinations.
	Skip []*calyx.Element

	// NoSort marks the input as already being in document order, saving
	// the sort. Only meaningful for explicit element lists.
	NoSort bool
}

// Move applies a movement directive to an explicit candidate list and
// returns the outcome. The list is sorted into document order unless
// Options.NoSort is set. Move panics when the directive does not contain
// exactly one of First, Previous, Next, Last: that is a programming
// error, not a runtime condition.
func Move(doc *calyx.Document, elements []*calyx.Element, dir Direction, opts Options) Result {
	validateDirection(dir)

	candidates := elements
	if len(opts.Skip) > 0 {
		candidates = make([]*calyx.Element, 0, len(elements))
		for _, el := range elements {
			if !containsElement(opts.Skip, el) {
				candidates = append(candidates, el)
			}
		}
	} else {
		candidates = make([]*calyx.Element, len(elements))
		copy(candidates, elements)
	}
	if !opts.NoSort {
		SortByDocumentOrder(doc, candidates)
	}

	return moveAmong(doc, candidates, dir, opts)
}

// MoveWithin resolves container through the focusable element index
// (restricted to auto-focus-marked elements when AutoFocusOnly is set)
// and applies the directive. The index already yields tab order, so no
// re-sort happens.
func MoveWithin(doc *calyx.Document, container *calyx.Element, dir Direction, opts Options) Result {
	validateDirection(dir)

	var candidates []*calyx.Element
	if dir&AutoFocusOnly != 0 {
		candidates = ListAutoFocus(container)
	} else {
		candidates = List(container)
	}
	if len(opts.Skip) > 0 {
		filtered := candidates[:0]
		for _, el := range candidates {
			if !containsElement(opts.Skip, el) {
				filtered = append(filtered, el)
			}
		}
		candidates = filtered
	}

	return moveAmong(doc, candidates, dir, opts)
}

func validateDirection(dir Direction) {
	bits := dir & directionMask
	if bits == 0 || bits&(bits-1) != 0 {
		panic("focus: movement directive must contain exactly one of First, Previous, Next, Last")
	}
}

func moveAmong(doc *calyx.Document, candidates []*calyx.Element, dir Direction, opts Options) Result {
	n := len(candidates)

	relative := opts.RelativeTo
	if relative == nil {
		relative = doc.ActiveElement()
	}

	forward := dir&(First|Next) != 0
	step := 1
	if !forward {
		step = -1
	}

	var idx int
	switch {
	case dir&First != 0:
		idx = 0
	case dir&Last != 0:
		idx = n - 1
	case dir&Next != 0:
		idx = indexOfElement(candidates, relative) + 1
	default: // Previous
		at := indexOfElement(candidates, relative)
		if at < 0 {
			idx = 0
		} else {
			idx = at - 1
		}
	}

	focusOpts := calyx.FocusOptions{PreventScroll: dir&NoScroll != 0}

	for attempts := 0; attempts < n; attempts++ {
		if dir&WrapAround != 0 {
			if n == 0 {
				break
			}
			idx = ((idx % n) + n) % n
		} else {
			if idx >= n {
				return Overflow
			}
			if idx < 0 {
				return Underflow
			}
		}

		candidate := candidates[idx]

		// A focus attempt can be refused by the document (disabled,
		// invisible, detached, or vetoed); move on to the next candidate.
		if doc.Focus(candidate, focusOpts) {
			if dir&(Next|Previous) != 0 && candidate.Kind().TextEntry() {
				candidate.SelectAll()
			}
			return Success
		}

		idx += step
	}

	// Boundary outcomes still win over Error when the list is empty.
	if n == 0 && dir&WrapAround == 0 {
		if forward {
			return Overflow
		}
		return Underflow
	}
	return Error
}

func indexOfElement(els []*calyx.Element, el *calyx.Element) int {
	if el == nil {
		return -1
	}
	for i, e := range els {
		if e == el {
			return i
		}
	}
	return -1
}

func containsElement(els []*calyx.Element, el *calyx.Element) bool {
	return indexOfElement(els, el) >= 0
}
