package bubbletea

import "github.com/fwojciec/wizard"

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// StatusLine exports statusLine for testing.
func StatusLine(m Model) string {
	return m.statusLine()
}

// ItemText exports itemText for testing.
func ItemText(item any) (string, string) {
	return itemText(item)
}

// Latest returns the pending snapshot of s without blocking.
func Latest(s *Subscription) (wizard.State, bool) {
	select {
	case st := <-s.ch:
		return st, true
	default:
		return wizard.State{}, false
	}
}
