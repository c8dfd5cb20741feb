// Package gui builds the fyne windows: the main control window, the save
// dialog and the settings window.
package gui

import (
	"fmt"
	"log"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"screen-pds/src/action"
	"screen-pds/src/export"
	"screen-pds/src/screenshot"
	"screen-pds/src/settings"
)

// Poster receives the actions of the main window buttons.
type Poster interface {
	Post(a action.Action) bool
}

// MainWindow is the control window. It doubles as the session host (hidden
// while a capture is open) and as the source of the delay/format selection.
type MainWindow struct {
	window  fyne.Window
	poster  Poster
	howTo   *widget.Label
	buttons map[action.Action]*widget.Button

	delaySelect    *widget.Select
	formatSelect   *widget.Select
	settingsButton *widget.Button
	delay          time.Duration
	format         export.Format
}

func NewMainWindow(app fyne.App, p Poster, onSettings func()) *MainWindow {
	m := &MainWindow{
		window:  app.NewWindow("Screen-PDS"),
		poster:  p,
		howTo:   widget.NewLabel(""),
		buttons: make(map[action.Action]*widget.Button),
		format:  export.PNG,
	}
	m.howTo.Wrapping = fyne.TextWrapWord

	for _, a := range action.All {
		a := a
		m.buttons[a] = widget.NewButton(buttonLabel(a), func() { m.post(a) })
	}

	delays := make([]string, len(screenshot.Delays))
	for i, d := range screenshot.Delays {
		delays[i] = screenshot.DelayLabel(d)
	}
	m.delaySelect = widget.NewSelect(delays, m.selectDelay)
	m.delaySelect.SetSelected(delays[0])

	formats := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		formats[i] = f.String()
	}
	m.formatSelect = widget.NewSelect(formats, m.selectFormat)
	m.formatSelect.SetSelected(export.PNG.String())

	m.settingsButton = widget.NewButton("Settings", func() {
		if onSettings != nil {
			onSettings()
		}
	})

	m.window.SetContent(container.NewVBox(
		m.howTo,
		container.NewGridWithColumns(2, m.buttons[action.New], m.delaySelect),
		container.NewGridWithColumns(2, m.buttons[action.Save], m.formatSelect),
		container.NewGridWithColumns(3, m.buttons[action.Undo], m.buttons[action.Redo], m.buttons[action.Cancel]),
		m.settingsButton,
	))
	m.window.Resize(fyne.NewSize(420, 260))
	return m
}

func buttonLabel(a action.Action) string {
	return strings.ToUpper(a.String()[:1]) + a.String()[1:]
}

func (m *MainWindow) post(a action.Action) {
	if m.poster != nil && !m.poster.Post(a) {
		log.Printf("gui: %s dropped", a)
	}
}

func (m *MainWindow) selectDelay(label string) {
	for _, d := range screenshot.Delays {
		if screenshot.DelayLabel(d) == label {
			m.delay = d
			return
		}
	}
}

func (m *MainWindow) selectFormat(label string) {
	f, err := export.ParseFormat(label)
	if err != nil {
		log.Printf("gui: %v", err)
		return
	}
	m.format = f
}

// Window exposes the fyne window.
func (m *MainWindow) Window() fyne.Window { return m.window }

// Delay is the capture delay currently selected.
func (m *MainWindow) Delay() time.Duration { return m.delay }

// Format is the export format currently selected.
func (m *MainWindow) Format() export.Format { return m.format }

// Minimize hides the window; fyne has no portable iconify.
func (m *MainWindow) Minimize() { m.window.Hide() }

func (m *MainWindow) Restore() {
	m.window.Show()
	m.window.RequestFocus()
}

// SetShortcuts refreshes the how-to text with the current bindings.
func (m *MainWindow) SetShortcuts(s settings.Settings) {
	m.howTo.SetText(HowTo(s))
}

// HowTo describes the workflow and the active shortcuts.
func HowTo(s settings.Settings) string {
	return fmt.Sprintf("Press New (%s) to capture the screen, then drag to crop. "+
		"Undo %s, redo %s, save %s, cancel %s.",
		s.New, s.Undo, s.Redo, s.Save, s.Cancel)
}
