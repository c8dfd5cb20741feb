// Package session is the capture/crop state machine. It is driven once per
// tick on the UI thread with the action taken from the flag, then applies any
// completed drag.
package session

import (
	"fmt"
	"image"
	"log"
	"os"
	"time"

	"screen-pds/src/action"
	"screen-pds/src/drag"
	"screen-pds/src/export"
	"screen-pds/src/region"
	"screen-pds/src/settings"
	"screen-pds/src/timeline"
)

type State int

const (
	Idle State = iota
	// Capturing covers the delay and the screen grab of a new session.
	Capturing
	// Reviewing means the overlay is open and accepts crops, undo and redo.
	Reviewing
	// Saving waits for the save dialog to report a path or a cancel.
	Saving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Reviewing:
		return "reviewing"
	case Saving:
		return "saving"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Capturer interface {
	Capture(delay time.Duration) (image.Image, error)
}

type ClipboardTarget interface {
	WriteImage(img image.Image) error
}

// View is the fullscreen overlay showing the current frame. Open attaches the
// drag box to the overlay's pointer input.
type View interface {
	Open(img image.Image, box *drag.Box) error
	Show(img image.Image)
	Close()
}

// Host is the main window.
type Host interface {
	Minimize()
	Restore()
}

// SavePrompt asks the user for a destination. done may run later on the UI
// thread; ok is false when the user cancelled.
type SavePrompt interface {
	ChooseSavePath(filename, dir string, done func(path string, ok bool))
}

// Selection exposes the delay and format currently chosen in the main window.
type Selection interface {
	Delay() time.Duration
	Format() export.Format
}

type Exporter interface {
	Export(img image.Image, f export.Format, path string) (string, error)
}

type Deps struct {
	Timeline  *timeline.Timeline
	Capturer  Capturer
	Clipboard ClipboardTarget
	View      View
	Host      Host
	Prompt    SavePrompt
	Selection Selection
	Exporter  Exporter
	Settings  func() settings.Settings
	Now       func() time.Time
}

// Machine owns the timeline and the drag box for the lifetime of the process.
// All methods must be called from the UI thread.
type Machine struct {
	d     Deps
	box   *drag.Box
	state State

	saveFormat export.Format
}

func New(d Deps) *Machine {
	if d.Settings == nil {
		d.Settings = settings.Default
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Exporter == nil {
		d.Exporter = export.Exporter{}
	}
	return &Machine{d: d, box: drag.NewBox()}
}

func (m *Machine) State() State { return m.state }

// Active reports whether a session is open.
func (m *Machine) Active() bool { return m.state != Idle && m.state != Capturing }

// Box returns the drag mailbox fed by the overlay.
func (m *Machine) Box() *drag.Box { return m.box }

// Step runs one tick: the action first, then the pending crop, then a signal
// to any waiting drag producer.
func (m *Machine) Step(a action.Action) {
	m.Handle(a)
	if !m.Active() {
		return
	}
	m.applyPendingCrop()
	m.box.Signal()
}

// Handle applies one action and returns the resulting state. Actions that are
// not valid in the current state are ignored.
func (m *Machine) Handle(a action.Action) State {
	switch a {
	case action.None:
	case action.New:
		if m.state != Idle {
			log.Printf("session: new capture ignored, session %s", m.state)
			break
		}
		m.newCapture()
	case action.Save:
		if m.state == Reviewing {
			m.save()
		}
	case action.Undo:
		if m.state == Reviewing && m.d.Timeline.Undo() {
			m.showCurrent()
		}
	case action.Redo:
		if m.state == Reviewing && m.d.Timeline.Redo() {
			m.showCurrent()
		}
	case action.Cancel:
		if m.Active() {
			m.close()
		}
	default:
		log.Printf("session: unknown action %s", a)
	}
	return m.state
}

func (m *Machine) newCapture() {
	m.state = Capturing
	m.box.Clear()
	m.d.Host.Minimize()

	delay := m.d.Selection.Delay()
	img, err := m.d.Capturer.Capture(delay)
	if err != nil {
		log.Printf("session: capture failed: %v", err)
		m.abortCapture()
		return
	}
	if err := m.d.Timeline.Reset(img); err != nil {
		log.Printf("session: store frame 0: %v", err)
		m.abortCapture()
		return
	}
	m.copyToClipboard(img)
	if err := m.d.View.Open(img, m.box); err != nil {
		log.Printf("session: open overlay: %v", err)
		m.abortCapture()
		return
	}
	m.state = Reviewing
	log.Printf("session: capture %dx%d opened (delay %s)", img.Bounds().Dx(), img.Bounds().Dy(), delay)
}

func (m *Machine) abortCapture() {
	m.state = Idle
	m.d.Host.Restore()
}

func (m *Machine) save() {
	dir := m.d.Settings().DefaultLocation
	if dir == "" {
		dir = settings.DefaultLocation()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("session: create save dir %s: %v", dir, err)
	}
	m.saveFormat = m.d.Selection.Format()
	m.state = Saving
	name := export.DefaultFilename(m.d.Now(), m.saveFormat)
	m.d.Prompt.ChooseSavePath(name, dir, m.CompleteSave)
}

// CompleteSave finishes a save started by the Save action. A cancelled dialog
// or a failed export keeps the session open so the user can retry.
func (m *Machine) CompleteSave(path string, ok bool) {
	if m.state != Saving {
		return
	}
	m.state = Reviewing
	if !ok || path == "" {
		log.Printf("session: save cancelled")
		return
	}
	img, err := m.d.Timeline.LoadCurrent()
	if err != nil {
		log.Printf("session: load frame %d for save: %v", m.d.Timeline.Current(), err)
		m.discardPlaceholder(path)
		return
	}
	written, err := m.d.Exporter.Export(img, m.saveFormat, path)
	if err != nil || written != path {
		m.discardPlaceholder(path)
	}
	if err != nil {
		log.Printf("session: export %s: %v", m.saveFormat, err)
		return
	}
	log.Printf("session: saved frame %d to %s", m.d.Timeline.Current(), written)
	m.close()
}

// discardPlaceholder removes the empty file the save dialog left at path.
func (m *Machine) discardPlaceholder(path string) {
	if err := export.RemovePlaceholder(path); err != nil {
		log.Printf("session: remove placeholder %s: %v", path, err)
	}
}

func (m *Machine) close() {
	m.d.View.Close()
	m.d.Host.Restore()
	m.box.Clear()
	m.state = Idle
}

func (m *Machine) showCurrent() {
	img, err := m.d.Timeline.LoadCurrent()
	if err != nil {
		log.Printf("session: load frame %d: %v", m.d.Timeline.Current(), err)
		return
	}
	m.d.View.Show(img)
	m.copyToClipboard(img)
}

// applyPendingCrop turns a completed drag into a new frame. Rectangles whose
// origin falls outside the current frame are dropped.
func (m *Machine) applyPendingCrop() {
	if m.state != Reviewing {
		return
	}
	r, ok := m.box.Take()
	if !ok {
		return
	}
	r = r.Normalize()
	src, err := m.d.Timeline.LoadCurrent()
	if err != nil {
		log.Printf("session: load frame %d for crop: %v", m.d.Timeline.Current(), err)
		return
	}
	cropped, ok := region.Crop(src, r)
	if !ok {
		log.Printf("session: crop %+v outside %v, ignored", r, src.Bounds())
		return
	}
	idx, err := m.d.Timeline.Append(cropped)
	if err != nil {
		log.Printf("session: store crop: %v", err)
		return
	}
	m.d.View.Show(cropped)
	m.copyToClipboard(cropped)
	log.Printf("session: frame %d is %dx%d", idx, cropped.Bounds().Dx(), cropped.Bounds().Dy())
}

func (m *Machine) copyToClipboard(img image.Image) {
	if m.d.Clipboard == nil {
		return
	}
	if err := m.d.Clipboard.WriteImage(img); err != nil {
		log.Printf("session: clipboard: %v", err)
	}
}
