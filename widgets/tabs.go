package widgets

import (
	"github.com/calyxui/calyx"
	"github.com/calyxui/calyx/focus"
)

// Activation selects when arrow-key traversal of a tab list commits the
// selection.
type Activation int

const (
	// ActivateOnFocus selects a tab as soon as it receives focus.
	ActivateOnFocus Activation = iota
	// ActivateManually selects only on click, Enter or Space.
	ActivateManually
)

// Tabs is a tabbed interface with roving focus: exactly one tab is a
// tab stop at a time, arrow keys move between tabs with wrap-around,
// and Home/End jump to the ends.
type Tabs struct {
	ctx  *Context
	list *calyx.Element

	tabs     []*Tab
	selected int
	mode     Activation
	onSelect func(index int)
}

// Tab pairs a trigger element with its panel.
type Tab struct {
	owner *Tabs
	index int
	el    *calyx.Element
	panel *calyx.Element
}

// NewTabs creates an empty tab list under parent.
func NewTabs(ctx *Context, parent *calyx.Element, mode Activation) *Tabs {
	t := &Tabs{
		ctx:      ctx,
		list:     calyx.NewElement(calyx.KindContainer),
		selected: -1,
		mode:     mode,
	}
	parent.AppendChild(t.list)
	t.list.OnKeyDown(t.onKeyDown)
	return t
}

// List returns the tab list element.
func (t *Tabs) List() *calyx.Element { return t.list }

// OnSelect registers the selection callback.
func (t *Tabs) OnSelect(fn func(index int)) { t.onSelect = fn }

// Selected returns the selected tab index, -1 when none.
func (t *Tabs) Selected() int { return t.selected }

// Add appends a tab whose panel is mounted under panelParent. The first
// tab added becomes the selection.
func (t *Tabs) Add(panelParent *calyx.Element) *Tab {
	tab := &Tab{
		owner: t,
		index: len(t.tabs),
		el:    calyx.NewElement(calyx.KindButton),
		panel: calyx.NewElement(calyx.KindContainer),
	}
	tab.el.SetTabIndex(-1)
	tab.panel.SetVisible(false)
	t.list.AppendChild(tab.el)
	panelParent.AppendChild(tab.panel)
	t.tabs = append(t.tabs, tab)

	tab.el.OnClick(func(ev *calyx.PointerEvent) {
		t.Select(tab.index)
	})
	tab.el.OnKeyDown(func(ev *calyx.KeyEvent) {
		switch ev.Key {
		case "Enter", " ":
			ev.PreventDefault()
			t.Select(tab.index)
		}
	})
	tab.el.OnFocus(func(ev *calyx.FocusEvent) {
		if t.mode == ActivateOnFocus {
			t.Select(tab.index)
		}
	})

	if t.selected < 0 {
		t.Select(tab.index)
	}
	return tab
}

// Select commits the selection: the chosen tab becomes the list's only
// tab stop and its panel the only visible one.
func (t *Tabs) Select(index int) {
	if index < 0 || index >= len(t.tabs) || t.tabs[index].el.Disabled() {
		return
	}
	if t.selected == index {
		return
	}
	t.selected = index
	for i, tab := range t.tabs {
		if i == index {
			tab.el.SetTabIndex(0)
			tab.panel.SetVisible(true)
		} else {
			tab.el.SetTabIndex(-1)
			tab.panel.SetVisible(false)
		}
	}
	if t.onSelect != nil {
		t.onSelect(index)
	}
}

func (t *Tabs) tabElements() []*calyx.Element {
	out := make([]*calyx.Element, 0, len(t.tabs))
	for _, tab := range t.tabs {
		out = append(out, tab.el)
	}
	return out
}

func (t *Tabs) onKeyDown(ev *calyx.KeyEvent) {
	var dir focus.Direction
	switch ev.Key {
	case "ArrowRight", "ArrowDown":
		dir = focus.Next | focus.WrapAround
	case "ArrowLeft", "ArrowUp":
		dir = focus.Previous | focus.WrapAround
	case "Home":
		dir = focus.First
	case "End":
		dir = focus.Last
	default:
		return
	}
	ev.PreventDefault()
	focus.Move(t.ctx.doc, t.tabElements(), dir, focus.Options{NoSort: true})
}

// Element returns the tab's trigger element.
func (tb *Tab) Element() *calyx.Element { return tb.el }

// Panel returns the tab's panel element.
func (tb *Tab) Panel() *calyx.Element { return tb.panel }
