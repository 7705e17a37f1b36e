//go:build !windows

package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
)

// pickDirectory shows the fyne folder dialog in the shared dialog window.
func pickDirectory(t *TrayApp, title string, onPicked func(path string)) {
	fyne.Do(func() {
		w := t.dialogWindow()
		w.SetTitle(title)
		d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			w.Hide()
			if err != nil || uri == nil {
				return
			}
			go onPicked(uri.Path())
		}, w)
		w.Show()
		d.Resize(fyne.NewSize(640, 480))
		d.Show()
	})
}
