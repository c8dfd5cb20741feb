package gui

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// SavePrompt opens a fyne save dialog over the window returned by Parent.
type SavePrompt struct {
	Parent func() fyne.Window
}

// ChooseSavePath shows the dialog prefilled with filename in dir. done runs on
// the UI thread with ok=false when the user cancels.
func (p SavePrompt) ChooseSavePath(filename, dir string, done func(path string, ok bool)) {
	fd := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			log.Printf("gui: save dialog: %v", err)
			done("", false)
			return
		}
		if w == nil {
			done("", false)
			return
		}
		path := w.URI().Path()
		_ = w.Close()
		done(path, true)
	}, p.Parent())
	fd.SetFileName(filename)
	if dir != "" {
		if loc, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(loc)
		} else {
			log.Printf("gui: save location %s: %v", dir, err)
		}
	}
	fd.Resize(fyne.NewSize(800, 560))
	fd.Show()
}
