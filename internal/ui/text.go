package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// textEntry is the overlay used to type a label. Enter or losing focus
// commits, Escape cancels.
type textEntry struct {
	widget.Entry
	onCommit func()
	onCancel func()
}

func newTextEntry(commit, cancel func()) *textEntry {
	e := &textEntry{onCommit: commit, onCancel: cancel}
	e.ExtendBaseWidget(e)
	e.SetPlaceHolder("Type, then Enter")
	e.OnSubmitted = func(string) { e.onCommit() }
	return e
}

// FocusLost commits unless nothing was typed yet; a click that opens a new
// edit can steal focus from the entry it just showed.
func (e *textEntry) FocusLost() {
	e.Entry.FocusLost()
	if e.Text != "" {
		e.onCommit()
	}
}

func (e *textEntry) TypedKey(ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeyEscape {
		e.onCancel()
		return
	}
	e.Entry.TypedKey(ev)
}
