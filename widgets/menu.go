package widgets

import (
	"sync"

	"github.com/calyxui/calyx"
	"github.com/calyxui/calyx/focus"
	"github.com/calyxui/calyx/layers"
	"github.com/calyxui/calyx/outside"
)

// menuLists maps popover list elements to their owning menus so
// NewMenuItem can locate its menu from a parent element alone.
var (
	menuMu    sync.Mutex
	menuLists = map[*calyx.Element]*Menu{}
)

// Menu is a button-anchored popover list. The trigger button toggles
// it; while open, arrow keys move focus through enabled items with
// wrap-around, Enter or Space activates the focused item, Escape and
// outside interactions close it and return focus to the trigger.
type Menu struct {
	ctx    *Context
	button *calyx.Element
	list   *calyx.Element

	items []*MenuItem
	open  bool

	layerID layers.InstanceID
	watcher *outside.Watcher
	escape  calyx.Disposal
}

// NewMenu creates a closed menu under parent.
func NewMenu(ctx *Context, parent *calyx.Element) *Menu {
	m := &Menu{
		ctx:     ctx,
		button:  calyx.NewElement(calyx.KindButton),
		list:    calyx.NewElement(calyx.KindContainer),
		layerID: layers.NewInstanceID(),
	}
	m.list.SetVisible(false)
	parent.AppendChild(m.button)
	parent.AppendChild(m.list)

	menuMu.Lock()
	menuLists[m.list] = m
	menuMu.Unlock()

	m.button.OnClick(func(ev *calyx.PointerEvent) {
		// The menu moves focus itself; the click's focus default would
		// pull it back to the trigger.
		ev.PreventDefault()
		if m.open {
			m.Close()
		} else {
			m.OpenFocusing(focus.First)
		}
	})
	m.button.OnKeyDown(func(ev *calyx.KeyEvent) {
		switch ev.Key {
		case "ArrowDown", "Enter", " ":
			ev.PreventDefault()
			m.OpenFocusing(focus.First)
		case "ArrowUp":
			ev.PreventDefault()
			m.OpenFocusing(focus.Last)
		}
	})
	m.list.OnKeyDown(m.onListKeyDown)

	// The press origin for "outside" spans both the trigger and the
	// list: a click on the trigger is the toggle, not a dismissal.
	m.watcher = outside.Watch(ctx.doc, ctx.reg,
		outside.Containers([]*calyx.Element{m.button, m.list}),
		func(calyx.Event, *calyx.Element) { m.dismiss(false) })
	return m
}

// Button returns the trigger element.
func (m *Menu) Button() *calyx.Element { return m.button }

// List returns the popover list element.
func (m *Menu) List() *calyx.Element { return m.list }

// IsOpen reports whether the popover is showing.
func (m *Menu) IsOpen() bool { return m.open }

// Open shows the popover and focuses its first enabled item.
func (m *Menu) Open() { m.OpenFocusing(focus.First) }

// OpenFocusing shows the popover and moves focus to the end selected by
// dir (First or Last).
func (m *Menu) OpenFocusing(dir focus.Direction) {
	if m.button.Disabled() {
		return
	}
	if !m.open {
		m.open = true
		m.list.SetVisible(true)
		m.ctx.reg.Register(ScopeEscape, m.layerID)
		m.escape = m.ctx.doc.AddListener(calyx.EventKeyDown, m.onKeyDown)
		m.watcher.SetEnabled(true)
	}
	focus.Move(m.ctx.doc, m.itemElements(), dir, focus.Options{NoSort: true})
}

// Close hides the popover and returns focus to the trigger.
func (m *Menu) Close() { m.dismiss(true) }

// Destroy closes the menu and releases everything that outlives its
// elements: the watcher's registry subscription and the list lookup
// entry NewMenuItem resolves through. The menu is unusable afterwards.
func (m *Menu) Destroy() {
	m.dismiss(false)
	m.watcher.Close()
	menuMu.Lock()
	delete(menuLists, m.list)
	menuMu.Unlock()
}

func (m *Menu) dismiss(refocus bool) {
	if !m.open {
		return
	}
	m.open = false
	if m.escape != nil {
		m.escape()
		m.escape = nil
	}
	m.watcher.SetEnabled(false)
	m.ctx.reg.Unregister(ScopeEscape, m.layerID)
	m.list.SetVisible(false)
	if refocus {
		m.ctx.doc.Focus(m.button, calyx.FocusOptions{})
	}
}

func (m *Menu) itemElements() []*calyx.Element {
	out := make([]*calyx.Element, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item.el)
	}
	return out
}

func (m *Menu) onListKeyDown(ev *calyx.KeyEvent) {
	switch ev.Key {
	case "ArrowDown":
		ev.PreventDefault()
		focus.Move(m.ctx.doc, m.itemElements(), focus.Next|focus.WrapAround, focus.Options{NoSort: true})
	case "ArrowUp":
		ev.PreventDefault()
		focus.Move(m.ctx.doc, m.itemElements(), focus.Previous|focus.WrapAround, focus.Options{NoSort: true})
	case "Home":
		ev.PreventDefault()
		focus.Move(m.ctx.doc, m.itemElements(), focus.First, focus.Options{NoSort: true})
	case "End":
		ev.PreventDefault()
		focus.Move(m.ctx.doc, m.itemElements(), focus.Last, focus.Options{NoSort: true})
	}
}

func (m *Menu) onKeyDown(ev calyx.Event) {
	key, ok := ev.(*calyx.KeyEvent)
	if !ok || key.Key != "Escape" || key.IsDefaultPrevented() {
		return
	}
	if !m.ctx.reg.IsTop(ScopeEscape, m.layerID) {
		return
	}
	key.PreventDefault()
	m.Close()
}

// MenuItem is one activatable entry in a Menu's popover.
type MenuItem struct {
	menu       *Menu
	el         *calyx.Element
	onActivate func()
}

// NewMenuItem creates an item under parent, which must be inside a
// Menu's list. It panics when no enclosing Menu exists: an item without
// a menu has no keyboard model to participate in.
func NewMenuItem(parent *calyx.Element) *MenuItem {
	menu := menuFor(parent)
	if menu == nil {
		panic("widgets: MenuItem must be used within Menu")
	}

	item := &MenuItem{menu: menu, el: calyx.NewElement(calyx.KindButton)}
	// Items are arrow-navigated, never tab stops.
	item.el.SetTabIndex(-1)
	parent.AppendChild(item.el)
	menu.items = append(menu.items, item)

	item.el.OnClick(func(ev *calyx.PointerEvent) {
		ev.PreventDefault()
		item.Activate()
	})
	item.el.OnKeyDown(func(ev *calyx.KeyEvent) {
		switch ev.Key {
		case "Enter", " ":
			ev.PreventDefault()
			item.Activate()
		}
	})
	return item
}

func menuFor(el *calyx.Element) *Menu {
	menuMu.Lock()
	defer menuMu.Unlock()
	for node := el; node != nil; node = node.Parent() {
		if m, ok := menuLists[node]; ok {
			return m
		}
	}
	return nil
}

// Element returns the item's element.
func (i *MenuItem) Element() *calyx.Element { return i.el }

// OnActivate registers the activation callback.
func (i *MenuItem) OnActivate(fn func()) { i.onActivate = fn }

// Activate runs the item's callback and closes the menu. Disabled items
// do nothing.
func (i *MenuItem) Activate() {
	if i.el.Disabled() {
		return
	}
	if i.onActivate != nil {
		i.onActivate()
	}
	i.menu.Close()
}
