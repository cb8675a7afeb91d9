package focus

import "github.com/calyxui/calyx"

// Install wires the document's default focus behaviors: Tab and
// Shift+Tab traverse the whole tree with wrap-around, and a primary
// click focuses the nearest focusable ancestor of the clicked element
// (or clears focus when there is none). Returns a disposal that
// uninstalls both behaviors.
func Install(doc *calyx.Document) calyx.Disposal {
	doc.SetTabNavigator(func(backward bool) {
		dir := Next | WrapAround
		if backward {
			dir = Previous | WrapAround
		}
		MoveWithin(doc, doc.Root(), dir, Options{})
	})
	doc.SetClickFocuser(func(target *calyx.Element) {
		if el := Nearest(target); el != nil {
			doc.Focus(el, calyx.FocusOptions{})
		} else {
			doc.Blur()
		}
	})
	return func() {
		doc.SetTabNavigator(nil)
		doc.SetClickFocuser(nil)
	}
}
