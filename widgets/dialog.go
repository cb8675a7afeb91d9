package widgets

import (
	"github.com/calyxui/calyx"
	"github.com/calyxui/calyx/focus"
	"github.com/calyxui/calyx/layers"
	"github.com/calyxui/calyx/outside"
)

// DialogOptions configures a Dialog.
type DialogOptions struct {
	// InitialFocus is handed to the focus trap as the explicit first
	// target on open.
	InitialFocus *calyx.Element

	// OnClose runs after the dialog closes, however it was dismissed.
	OnClose func()
}

// Dialog is a modal overlay: while open it traps focus inside its
// panel, closes on Escape and on interactions outside the panel, and
// restores focus to its pre-open home on close. Nested dialogs dismiss
// one at a time, innermost first.
type Dialog struct {
	ctx  *Context
	opts DialogOptions

	panel   *calyx.Element
	open    bool
	layerID layers.InstanceID

	trap    *focus.Trap
	watcher *outside.Watcher
	escape  calyx.Disposal
}

// NewDialog creates a closed dialog whose panel is mounted under
// parent. Populate the panel via Panel() before opening.
func NewDialog(ctx *Context, parent *calyx.Element, opts DialogOptions) *Dialog {
	d := &Dialog{
		ctx:     ctx,
		opts:    opts,
		panel:   calyx.NewElement(calyx.KindContainer),
		layerID: layers.NewInstanceID(),
	}
	d.panel.SetVisible(false)
	parent.AppendChild(d.panel)

	d.trap = focus.NewTrap(ctx.doc, d.panel, focus.TrapOptions{
		Features:     focus.FeatureAll,
		InitialFocus: opts.InitialFocus,
		Fallback:     d.panel,
	})
	d.watcher = outside.Watch(ctx.doc, ctx.reg, outside.Containers(d.panel),
		func(calyx.Event, *calyx.Element) { d.Close() })
	return d
}

// Panel returns the dialog's panel element, the focus-trap root and
// outside-interaction container.
func (d *Dialog) Panel() *calyx.Element { return d.panel }

// IsOpen reports whether the dialog is open.
func (d *Dialog) IsOpen() bool { return d.open }

// Open shows the dialog, activates its trap and watcher, and claims the
// top of the escape scope.
func (d *Dialog) Open() {
	if d.open {
		return
	}
	d.open = true
	d.panel.SetVisible(true)

	d.ctx.reg.Register(ScopeEscape, d.layerID)
	d.escape = d.ctx.doc.AddListener(calyx.EventKeyDown, d.onKeyDown)
	d.watcher.SetEnabled(true)
	d.trap.SetEnabled(true)
}

// Close hides the dialog, releasing its layer, watcher and trap in the
// reverse of open order so focus restoration runs last.
func (d *Dialog) Close() {
	if !d.open {
		return
	}
	d.open = false

	if d.escape != nil {
		d.escape()
		d.escape = nil
	}
	d.watcher.SetEnabled(false)
	d.ctx.reg.Unregister(ScopeEscape, d.layerID)
	d.panel.SetVisible(false)
	d.trap.SetEnabled(false)

	if d.opts.OnClose != nil {
		d.opts.OnClose()
	}
}

func (d *Dialog) onKeyDown(ev calyx.Event) {
	key, ok := ev.(*calyx.KeyEvent)
	if !ok || key.Key != "Escape" || key.IsDefaultPrevented() {
		return
	}
	// Only the innermost open overlay responds.
	if !d.ctx.reg.IsTop(ScopeEscape, d.layerID) {
		return
	}
	key.PreventDefault()
	d.Close()
}
