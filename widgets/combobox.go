package widgets

import (
	"strings"

	"github.com/calyxui/calyx"
	"github.com/calyxui/calyx/focus"
	"github.com/calyxui/calyx/layers"
	"github.com/calyxui/calyx/outside"
)

// Combobox is a text input with a filtered option popover. SetQuery
// filters the options by case-insensitive substring match and opens the
// popover while matches exist; arrows move through matches, Enter or a
// click commits one into the input, Escape and outside interactions
// close.
type Combobox struct {
	ctx   *Context
	input *calyx.Element
	list  *calyx.Element

	values  []string
	options []*calyx.Element
	open    bool

	layerID  layers.InstanceID
	watcher  *outside.Watcher
	escape   calyx.Disposal
	onChange func(value string)
}

// NewCombobox creates a closed combobox under parent offering values.
func NewCombobox(ctx *Context, parent *calyx.Element, values []string) *Combobox {
	c := &Combobox{
		ctx:     ctx,
		input:   calyx.NewElement(calyx.KindInput),
		list:    calyx.NewElement(calyx.KindContainer),
		values:  values,
		layerID: layers.NewInstanceID(),
	}
	c.list.SetVisible(false)
	parent.AppendChild(c.input)
	parent.AppendChild(c.list)

	for _, value := range values {
		opt := calyx.NewElement(calyx.KindButton)
		opt.SetTabIndex(-1)
		opt.SetValue(value)
		c.list.AppendChild(opt)
		c.options = append(c.options, opt)

		opt.OnClick(func(ev *calyx.PointerEvent) {
			ev.PreventDefault()
			c.commit(opt)
		})
		opt.OnKeyDown(func(ev *calyx.KeyEvent) {
			switch ev.Key {
			case "Enter", " ":
				ev.PreventDefault()
				c.commit(opt)
			}
		})
	}

	c.input.OnKeyDown(func(ev *calyx.KeyEvent) {
		switch ev.Key {
		case "ArrowDown":
			ev.PreventDefault()
			c.openList()
			focus.Move(c.ctx.doc, c.visibleOptions(), focus.First, focus.Options{NoSort: true})
		case "ArrowUp":
			ev.PreventDefault()
			c.openList()
			focus.Move(c.ctx.doc, c.visibleOptions(), focus.Last, focus.Options{NoSort: true})
		}
	})
	c.list.OnKeyDown(c.onListKeyDown)

	c.watcher = outside.Watch(ctx.doc, ctx.reg,
		outside.Containers([]*calyx.Element{c.input, c.list}),
		func(calyx.Event, *calyx.Element) { c.dismiss(false) })
	return c
}

// Input returns the text-entry element.
func (c *Combobox) Input() *calyx.Element { return c.input }

// List returns the popover element.
func (c *Combobox) List() *calyx.Element { return c.list }

// IsOpen reports whether the popover is showing.
func (c *Combobox) IsOpen() bool { return c.open }

// Value returns the input's current text.
func (c *Combobox) Value() string { return c.input.Value() }

// OnChange registers the commit callback.
func (c *Combobox) OnChange(fn func(value string)) { c.onChange = fn }

// SetQuery puts q into the input and filters the options to those
// containing it, opening the popover while matches remain and closing
// it otherwise.
func (c *Combobox) SetQuery(q string) {
	c.input.SetValue(q)
	needle := strings.ToLower(q)

	matches := 0
	for i, opt := range c.options {
		hit := needle == "" || strings.Contains(strings.ToLower(c.values[i]), needle)
		opt.SetVisible(hit)
		if hit {
			matches++
		}
	}
	if matches == 0 {
		c.dismiss(false)
		return
	}
	c.openList()
}

func (c *Combobox) openList() {
	if c.open {
		return
	}
	c.open = true
	c.list.SetVisible(true)
	c.ctx.reg.Register(ScopeEscape, c.layerID)
	c.escape = c.ctx.doc.AddListener(calyx.EventKeyDown, c.onKeyDown)
	c.watcher.SetEnabled(true)
}

// Close hides the popover and returns focus to the input.
func (c *Combobox) Close() { c.dismiss(true) }

func (c *Combobox) dismiss(refocus bool) {
	if !c.open {
		return
	}
	c.open = false
	if c.escape != nil {
		c.escape()
		c.escape = nil
	}
	c.watcher.SetEnabled(false)
	c.ctx.reg.Unregister(ScopeEscape, c.layerID)
	c.list.SetVisible(false)
	if refocus {
		c.ctx.doc.Focus(c.input, calyx.FocusOptions{})
	}
}

func (c *Combobox) visibleOptions() []*calyx.Element {
	out := make([]*calyx.Element, 0, len(c.options))
	for _, opt := range c.options {
		if opt.Visible() {
			out = append(out, opt)
		}
	}
	return out
}

func (c *Combobox) commit(opt *calyx.Element) {
	if opt.Disabled() {
		return
	}
	c.input.SetValue(opt.Value())
	if c.onChange != nil {
		c.onChange(opt.Value())
	}
	c.Close()
}

func (c *Combobox) onListKeyDown(ev *calyx.KeyEvent) {
	switch ev.Key {
	case "ArrowDown":
		ev.PreventDefault()
		focus.Move(c.ctx.doc, c.visibleOptions(), focus.Next|focus.WrapAround, focus.Options{NoSort: true})
	case "ArrowUp":
		ev.PreventDefault()
		focus.Move(c.ctx.doc, c.visibleOptions(), focus.Previous|focus.WrapAround, focus.Options{NoSort: true})
	}
}

func (c *Combobox) onKeyDown(ev calyx.Event) {
	key, ok := ev.(*calyx.KeyEvent)
	if !ok || key.Key != "Escape" || key.IsDefaultPrevented() {
		return
	}
	if !c.ctx.reg.IsTop(ScopeEscape, c.layerID) {
		return
	}
	key.PreventDefault()
	c.dismiss(true)
}
