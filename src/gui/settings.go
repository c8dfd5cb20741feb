package gui

import (
	"errors"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"screen-pds/src/action"
	"screen-pds/src/settings"
)

const duplicateMessage = "The shortcuts must be different!"

// SettingsStore reads and persists the user settings.
type SettingsStore interface {
	Snapshot() settings.Settings
	Save(s settings.Settings) error
}

type shortcutRow struct {
	modifier *widget.Select
	key      *widget.Select
}

// SettingsWindow edits the shortcuts and the default save location.
type SettingsWindow struct {
	window   fyne.Window
	store    SettingsStore
	onSaved  func(settings.Settings)
	rows     map[action.Action]shortcutRow
	location *widget.Label
	errLabel *widget.Label
}

var rowLabels = map[action.Action]string{
	action.New:    "New acquisition",
	action.Save:   "Save image",
	action.Undo:   "Undo action",
	action.Redo:   "Redo action",
	action.Cancel: "Cancel action",
}

func NewSettingsWindow(app fyne.App, store SettingsStore, onSaved func(settings.Settings)) *SettingsWindow {
	w := &SettingsWindow{
		window:   app.NewWindow("Settings-PDS"),
		store:    store,
		onSaved:  onSaved,
		rows:     make(map[action.Action]shortcutRow),
		location: widget.NewLabel(""),
		errLabel: widget.NewLabel(""),
	}
	w.errLabel.Hide()

	form := container.NewVBox(widget.NewLabelWithStyle("Shortcuts", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	for _, a := range action.All {
		row := shortcutRow{
			modifier: widget.NewSelect(settings.Modifiers, nil),
			key:      widget.NewSelect(settings.Keys, nil),
		}
		w.rows[a] = row
		form.Add(container.NewGridWithColumns(3, widget.NewLabel(rowLabels[a]), row.modifier, row.key))
	}

	change := widget.NewButton("Change", w.chooseLocation)
	form.Add(widget.NewLabelWithStyle("Default location", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	form.Add(container.NewBorder(nil, nil, nil, change, w.location))
	form.Add(w.errLabel)

	saveButton := widget.NewButton("Save changes", w.handleSave)
	closeButton := widget.NewButton("Close", func() { w.window.Hide() })
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), closeButton)

	w.window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	w.window.SetCloseIntercept(func() { w.window.Hide() })
	w.window.Resize(fyne.NewSize(460, 420))
	return w
}

// Show reloads the stored settings into the form and displays the window.
func (w *SettingsWindow) Show() {
	w.load(w.store.Snapshot())
	w.errLabel.Hide()
	w.window.Show()
	w.window.RequestFocus()
}

func (w *SettingsWindow) load(s settings.Settings) {
	for a, sc := range s.Shortcuts() {
		row := w.rows[a]
		row.modifier.SetSelected(sc.Modifier)
		row.key.SetSelected(sc.Key)
	}
	w.location.SetText(s.DefaultLocation)
}

func (w *SettingsWindow) collect() settings.Settings {
	s := w.store.Snapshot()
	for a, row := range w.rows {
		s.Set(a, settings.Shortcut{Modifier: row.modifier.Selected, Key: row.key.Selected})
	}
	if loc := w.location.Text; loc != "" {
		s.DefaultLocation = loc
	}
	return s
}

func (w *SettingsWindow) handleSave() {
	s := w.collect()
	if err := s.Validate(); err != nil {
		if errors.Is(err, settings.ErrDuplicateShortcut) {
			w.showError(duplicateMessage)
		} else {
			w.showError(err.Error())
		}
		return
	}
	if err := w.store.Save(s); err != nil {
		log.Printf("gui: save settings: %v", err)
		w.showError(err.Error())
		return
	}
	w.errLabel.Hide()
	w.window.Hide()
	if w.onSaved != nil {
		w.onSaved(s)
	}
}

func (w *SettingsWindow) showError(msg string) {
	w.errLabel.SetText(msg)
	w.errLabel.Show()
}

func (w *SettingsWindow) chooseLocation() {
	dialog.NewFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil {
			log.Printf("gui: folder dialog: %v", err)
			return
		}
		if dir == nil {
			return
		}
		w.location.SetText(dir.Path())
	}, w.window).Show()
}
