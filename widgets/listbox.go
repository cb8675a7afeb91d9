package widgets

import (
	"github.com/calyxui/calyx"
	"github.com/calyxui/calyx/focus"
	"github.com/calyxui/calyx/layers"
	"github.com/calyxui/calyx/outside"
)

// Listbox is a single-select dropdown: a trigger button and a popover
// of options. Arrow keys move through enabled options with wrap, Enter
// or Space selects, Escape and outside interactions close. When nested
// inside a Dialog, Escape closes the listbox first; the dialog stays
// open until the next press.
type Listbox struct {
	ctx    *Context
	button *calyx.Element
	list   *calyx.Element

	options  []*Option
	selected *Option
	open     bool

	layerID  layers.InstanceID
	watcher  *outside.Watcher
	escape   calyx.Disposal
	onChange func(value string)
}

// Option is one selectable entry.
type Option struct {
	box   *Listbox
	el    *calyx.Element
	value string
}

// NewListbox creates a closed listbox under parent.
func NewListbox(ctx *Context, parent *calyx.Element) *Listbox {
	b := &Listbox{
		ctx:     ctx,
		button:  calyx.NewElement(calyx.KindButton),
		list:    calyx.NewElement(calyx.KindContainer),
		layerID: layers.NewInstanceID(),
	}
	b.list.SetVisible(false)
	parent.AppendChild(b.button)
	parent.AppendChild(b.list)

	b.button.OnClick(func(ev *calyx.PointerEvent) {
		// The listbox moves focus itself; the click's focus default
		// would pull it back to the trigger.
		ev.PreventDefault()
		if b.open {
			b.Close()
		} else {
			b.Open()
		}
	})
	b.button.OnKeyDown(func(ev *calyx.KeyEvent) {
		switch ev.Key {
		case "ArrowDown", "Enter", " ":
			ev.PreventDefault()
			b.Open()
		}
	})
	b.list.OnKeyDown(b.onListKeyDown)

	b.watcher = outside.Watch(ctx.doc, ctx.reg,
		outside.Containers([]*calyx.Element{b.button, b.list}),
		func(calyx.Event, *calyx.Element) { b.dismiss(false) })
	return b
}

// Button returns the trigger element.
func (b *Listbox) Button() *calyx.Element { return b.button }

// List returns the popover element.
func (b *Listbox) List() *calyx.Element { return b.list }

// IsOpen reports whether the popover is showing.
func (b *Listbox) IsOpen() bool { return b.open }

// Value returns the selected option's value, empty when none.
func (b *Listbox) Value() string {
	if b.selected == nil {
		return ""
	}
	return b.selected.value
}

// OnChange registers the selection callback.
func (b *Listbox) OnChange(fn func(value string)) { b.onChange = fn }

// AddOption appends an option carrying value.
func (b *Listbox) AddOption(value string) *Option {
	opt := &Option{box: b, el: calyx.NewElement(calyx.KindButton), value: value}
	opt.el.SetTabIndex(-1)
	b.list.AppendChild(opt.el)
	b.options = append(b.options, opt)

	opt.el.OnClick(func(ev *calyx.PointerEvent) {
		ev.PreventDefault()
		opt.Select()
	})
	opt.el.OnKeyDown(func(ev *calyx.KeyEvent) {
		switch ev.Key {
		case "Enter", " ":
			ev.PreventDefault()
			opt.Select()
		}
	})
	return opt
}

// Open shows the popover and focuses the selected option, or the first
// enabled one.
func (b *Listbox) Open() {
	if b.open || b.button.Disabled() {
		return
	}
	b.open = true
	b.list.SetVisible(true)
	b.ctx.reg.Register(ScopeEscape, b.layerID)
	b.escape = b.ctx.doc.AddListener(calyx.EventKeyDown, b.onKeyDown)
	b.watcher.SetEnabled(true)

	if b.selected != nil && b.ctx.doc.Focus(b.selected.el, calyx.FocusOptions{}) {
		return
	}
	focus.Move(b.ctx.doc, b.optionElements(), focus.First, focus.Options{NoSort: true})
}

// Close hides the popover and returns focus to the trigger.
func (b *Listbox) Close() { b.dismiss(true) }

func (b *Listbox) dismiss(refocus bool) {
	if !b.open {
		return
	}
	b.open = false
	if b.escape != nil {
		b.escape()
		b.escape = nil
	}
	b.watcher.SetEnabled(false)
	b.ctx.reg.Unregister(ScopeEscape, b.layerID)
	b.list.SetVisible(false)
	if refocus {
		b.ctx.doc.Focus(b.button, calyx.FocusOptions{})
	}
}

func (b *Listbox) optionElements() []*calyx.Element {
	out := make([]*calyx.Element, 0, len(b.options))
	for _, opt := range b.options {
		out = append(out, opt.el)
	}
	return out
}

func (b *Listbox) onListKeyDown(ev *calyx.KeyEvent) {
	switch ev.Key {
	case "ArrowDown":
		ev.PreventDefault()
		focus.Move(b.ctx.doc, b.optionElements(), focus.Next|focus.WrapAround, focus.Options{NoSort: true})
	case "ArrowUp":
		ev.PreventDefault()
		focus.Move(b.ctx.doc, b.optionElements(), focus.Previous|focus.WrapAround, focus.Options{NoSort: true})
	case "Home":
		ev.PreventDefault()
		focus.Move(b.ctx.doc, b.optionElements(), focus.First, focus.Options{NoSort: true})
	case "End":
		ev.PreventDefault()
		focus.Move(b.ctx.doc, b.optionElements(), focus.Last, focus.Options{NoSort: true})
	}
}

func (b *Listbox) onKeyDown(ev calyx.Event) {
	key, ok := ev.(*calyx.KeyEvent)
	if !ok || key.Key != "Escape" || key.IsDefaultPrevented() {
		return
	}
	if !b.ctx.reg.IsTop(ScopeEscape, b.layerID) {
		return
	}
	key.PreventDefault()
	b.Close()
}

// Element returns the option's element.
func (o *Option) Element() *calyx.Element { return o.el }

// Value returns the option's value.
func (o *Option) Value() string { return o.value }

// Select makes the option the listbox's value, fires OnChange and
// closes the popover. Disabled options do nothing.
func (o *Option) Select() {
	if o.el.Disabled() {
		return
	}
	o.box.selected = o
	if o.box.onChange != nil {
		o.box.onChange(o.value)
	}
	o.box.Close()
}
