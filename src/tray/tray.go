package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnNew      func()
	OnSave     func()
	OnCancel   func()
	OnShow     func()
	OnSettings func()
	OnQuit     func()
}

// Manager owns the system tray menu.
type Manager struct {
	app        desktop.App
	callbacks  Callbacks
	statusItem *fyne.MenuItem
	saveItem   *fyne.MenuItem
	cancelItem *fyne.MenuItem
}

// New installs the tray menu and icon.
func New(app desktop.App, callbacks Callbacks) *Manager {
	m := &Manager{app: app, callbacks: callbacks}
	m.statusItem = fyne.NewMenuItem("Status: idle", nil)
	m.statusItem.Disabled = true
	m.saveItem = fyne.NewMenuItem("Save", call(callbacks.OnSave))
	m.cancelItem = fyne.NewMenuItem("Cancel", call(callbacks.OnCancel))
	m.SetActive(false)
	if app != nil {
		app.SetSystemTrayIcon(Icon)
	}
	return m
}

func call(f func()) func() {
	return func() {
		if f != nil {
			f()
		}
	}
}

// SetActive enables the session items while a capture is open.
func (m *Manager) SetActive(active bool) {
	m.saveItem.Disabled = !active
	m.cancelItem.Disabled = !active
	m.refreshMenu()
}

// SetStatus updates the status label.
func (m *Manager) SetStatus(status string) {
	m.statusItem.Label = fmt.Sprintf("Status: %s", status)
	m.refreshMenu()
}

func (m *Manager) menu() *fyne.Menu {
	return fyne.NewMenu("screen-pds",
		m.statusItem,
		fyne.NewMenuItem("New capture", call(m.callbacks.OnNew)),
		m.saveItem,
		m.cancelItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show window", call(m.callbacks.OnShow)),
		fyne.NewMenuItem("Settings", call(m.callbacks.OnSettings)),
		fyne.NewMenuItem("Quit", call(m.callbacks.OnQuit)),
	)
}

func (m *Manager) refreshMenu() {
	if m.app != nil {
		m.app.SetSystemTrayMenu(m.menu())
	}
}
