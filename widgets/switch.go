package widgets

import "github.com/calyxui/calyx"

// Switch is a two-state toggle. It flips on click and on Space or Enter
// while focused.
type Switch struct {
	el       *calyx.Element
	onChange func(bool)
}

// NewSwitch creates a switch under parent.
func NewSwitch(parent *calyx.Element) *Switch {
	s := &Switch{el: calyx.NewElement(calyx.KindSwitch)}
	parent.AppendChild(s.el)

	s.el.OnClick(func(ev *calyx.PointerEvent) {
		s.Toggle()
	})
	s.el.OnKeyDown(func(ev *calyx.KeyEvent) {
		switch ev.Key {
		case " ", "Enter":
			ev.PreventDefault()
			s.Toggle()
		}
	})
	return s
}

// Element returns the switch's element.
func (s *Switch) Element() *calyx.Element { return s.el }

// Checked reports the current state.
func (s *Switch) Checked() bool { return s.el.Value() == "on" }

// SetChecked sets the state without firing OnChange.
func (s *Switch) SetChecked(checked bool) {
	if checked {
		s.el.SetValue("on")
	} else {
		s.el.SetValue("")
	}
}

// Toggle flips the state and fires OnChange.
func (s *Switch) Toggle() {
	if s.el.Disabled() {
		return
	}
	s.SetChecked(!s.Checked())
	if s.onChange != nil {
		s.onChange(s.Checked())
	}
}

// OnChange registers the state-change callback.
func (s *Switch) OnChange(fn func(checked bool)) { s.onChange = fn }
