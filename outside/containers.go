// Package outside detects pointer and touch interactions that land
// outside a set of container elements, the primitive behind
// click-away-to-dismiss overlays. Judgment is based on where the
// gesture began, not where it ended, so a press inside a container that
// is dragged out before release never counts as an outside interaction.
package outside

import (
	"fmt"

	"github.com/calyxui/calyx"
)

// Resolver produces the current container set. It is invoked at every
// containment check so callers can hand over containers whose identity
// changes across renders.
type Resolver func() []*calyx.Element

// Containers adapts a container source to a Resolver. Accepted forms:
//
//   - nil
//   - *calyx.Element
//   - []*calyx.Element
//   - map[*calyx.Element]struct{} and map[*calyx.Element]bool
//   - func() *calyx.Element
//   - func() []*calyx.Element (including Resolver itself)
//
// Nil elements inside any form are skipped. Any other type panics.
func Containers(source any) Resolver {
	switch v := source.(type) {
	case nil:
		return func() []*calyx.Element { return nil }
	case *calyx.Element:
		return func() []*calyx.Element {
			if v == nil {
				return nil
			}
			return []*calyx.Element{v}
		}
	case []*calyx.Element:
		return func() []*calyx.Element { return compact(v) }
	case map[*calyx.Element]struct{}:
		return func() []*calyx.Element {
			out := make([]*calyx.Element, 0, len(v))
			for el := range v {
				if el != nil {
					out = append(out, el)
				}
			}
			return out
		}
	case map[*calyx.Element]bool:
		return func() []*calyx.Element {
			out := make([]*calyx.Element, 0, len(v))
			for el, ok := range v {
				if ok && el != nil {
					out = append(out, el)
				}
			}
			return out
		}
	case func() *calyx.Element:
		return func() []*calyx.Element {
			if el := v(); el != nil {
				return []*calyx.Element{el}
			}
			return nil
		}
	case Resolver:
		return func() []*calyx.Element { return compact(v()) }
	case func() []*calyx.Element:
		return func() []*calyx.Element { return compact(v()) }
	default:
		panic(fmt.Sprintf("outside: unsupported container source %T", source))
	}
}

func compact(els []*calyx.Element) []*calyx.Element {
	out := make([]*calyx.Element, 0, len(els))
	for _, el := range els {
		if el != nil {
			out = append(out, el)
		}
	}
	return out
}
