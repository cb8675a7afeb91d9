package calyx

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"
)

// Dump renders the element tree as indented text for debugging.
func (d *Document) Dump() string {
	root := d.Root()
	tree := treeprint.NewWithRoot(describeElement(root, d.ActiveElement()))
	dumpChildren(tree, root, d.ActiveElement())
	return tree.String()
}

func dumpChildren(branch treeprint.Tree, el *Element, active *Element) {
	for _, child := range el.Children() {
		sub := branch.AddBranch(describeElement(child, active))
		dumpChildren(sub, child, active)
	}
}

func describeElement(el *Element, active *Element) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s#%d", el.Kind(), el.ID())
	if el.Disabled() {
		b.WriteString(" [disabled]")
	}
	if !el.Visible() {
		b.WriteString(" [hidden]")
	}
	if idx, ok := el.TabIndex(); ok {
		fmt.Fprintf(&b, " [tabindex=%d]", idx)
	}
	if el.Editable() {
		b.WriteString(" [editable]")
	}
	if el.AutoFocus() {
		b.WriteString(" [autofocus]")
	}
	if el == active {
		b.WriteString(" [focused]")
	}
	return b.String()
}
