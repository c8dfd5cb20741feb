// Package overlay shows the captured frame fullscreen and turns pointer drags
// into crop rectangles in image pixel coordinates.
package overlay

import (
	"image"
	"log"

	"fyne.io/fyne/v2"

	"screen-pds/src/action"
	"screen-pds/src/drag"
)

// Poster receives Cancel when the overlay is dismissed from the keyboard or
// the window manager.
type Poster interface {
	Post(a action.Action) bool
}

// Window is the fullscreen crop overlay.
type Window struct {
	window fyne.Window
	area   *cropArea
	poster Poster
	open   bool
}

func New(app fyne.App, p Poster) *Window {
	w := app.NewWindow("screen-pds")
	w.SetPadded(false)
	area := newCropArea()
	w.SetContent(area)
	o := &Window{window: w, area: area, poster: p}

	w.SetCloseIntercept(func() { o.post(action.Cancel) })
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			o.post(action.Cancel)
		}
	})
	return o
}

func (o *Window) post(a action.Action) {
	if o.poster == nil || !o.open {
		return
	}
	if !o.poster.Post(a) {
		log.Printf("overlay: %s dropped", a)
	}
}

// Window exposes the fyne window so dialogs can be parented to it.
func (o *Window) Window() fyne.Window { return o.window }

// Open displays img fullscreen and routes drags into box.
func (o *Window) Open(img image.Image, box *drag.Box) error {
	o.area.attach(box)
	o.area.setImage(img)
	o.window.SetFullScreen(true)
	o.window.Show()
	o.window.RequestFocus()
	o.open = true
	return nil
}

// Show replaces the displayed frame.
func (o *Window) Show(img image.Image) {
	o.area.setImage(img)
}

// Close hides the overlay. The window is reused by the next session.
func (o *Window) Close() {
	o.open = false
	o.area.attach(nil)
	o.window.SetFullScreen(false)
	o.window.Hide()
}
