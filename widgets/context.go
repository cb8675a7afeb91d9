// Package widgets provides headless interactive components (Dialog,
// Menu, Tabs, Switch, Listbox, Combobox) built on the focus, layers and
// outside packages. Widgets own behavior only: element kinds, focus
// wiring, key handling, dismissal. Presentation is the host's problem.
package widgets

import (
	"github.com/calyxui/calyx"
	"github.com/calyxui/calyx/focus"
	"github.com/calyxui/calyx/layers"
)

// ScopeEscape is the layer scope arbitrating which open overlay handles
// the Escape key. The topmost registrant wins.
const ScopeEscape = "escape"

// Context bundles the per-document services widgets share: the document
// itself and one layer registry arbitrating overlay stacking.
type Context struct {
	doc *calyx.Document
	reg *layers.Registry
}

// NewContext creates a widget context for doc with a fresh layer
// registry and the document's default focus behaviors installed.
func NewContext(doc *calyx.Document) *Context {
	focus.Install(doc)
	return &Context{doc: doc, reg: layers.NewRegistry()}
}

// Document returns the underlying document.
func (c *Context) Document() *calyx.Document { return c.doc }

// Layers returns the shared layer registry.
func (c *Context) Layers() *layers.Registry { return c.reg }
