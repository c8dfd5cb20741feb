package overlay

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"screen-pds/src/drag"
)

var marqueeColor = color.NRGBA{R: 0, G: 120, B: 212, A: 255}

// cropArea draws the frame anchored top-left, shrunk to fit when larger than
// the widget and never enlarged, and reports drags in image pixels.
type cropArea struct {
	widget.BaseWidget

	image   *canvas.Image
	marquee *canvas.Rectangle
	box     *drag.Box
	pixels  image.Point

	dragging   bool
	start, cur fyne.Position
}

var _ fyne.Draggable = (*cropArea)(nil)

func newCropArea() *cropArea {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScaleFastest

	marquee := canvas.NewRectangle(color.Transparent)
	marquee.StrokeColor = marqueeColor
	marquee.StrokeWidth = 1
	marquee.Hide()

	c := &cropArea{image: img, marquee: marquee}
	c.ExtendBaseWidget(c)
	return c
}

func (c *cropArea) attach(box *drag.Box) {
	c.box = box
	c.dragging = false
	c.marquee.Hide()
}

func (c *cropArea) setImage(img image.Image) {
	c.image.Image = img
	if img != nil {
		b := img.Bounds()
		c.pixels = image.Pt(b.Dx(), b.Dy())
	} else {
		c.pixels = image.Point{}
	}
	c.Refresh()
}

// fitScale returns fyne units per image pixel.
func fitScale(pixels image.Point, area fyne.Size) float32 {
	if pixels.X <= 0 || pixels.Y <= 0 {
		return 1
	}
	s := float32(1)
	if sx := area.Width / float32(pixels.X); sx < s {
		s = sx
	}
	if sy := area.Height / float32(pixels.Y); sy < s {
		s = sy
	}
	if s <= 0 {
		return 1
	}
	return s
}

func (c *cropArea) scale() float32 { return fitScale(c.pixels, c.Size()) }

func (c *cropArea) Dragged(ev *fyne.DragEvent) {
	if c.box == nil {
		return
	}
	s := c.scale()
	if !c.dragging {
		c.dragging = true
		c.start = fyne.NewPos(ev.Position.X-ev.Dragged.DX, ev.Position.Y-ev.Dragged.DY)
		c.box.Begin(float64(c.start.X/s), float64(c.start.Y/s))
	}
	c.cur = ev.Position
	c.showMarquee()
}

func (c *cropArea) DragEnd() {
	if !c.dragging {
		return
	}
	c.dragging = false
	c.marquee.Hide()
	if c.box == nil {
		return
	}
	s := c.scale()
	c.box.End(float64((c.cur.X-c.start.X)/s), float64((c.cur.Y-c.start.Y)/s))
}

func (c *cropArea) showMarquee() {
	x0, x1 := c.start.X, c.cur.X
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	y0, y1 := c.start.Y, c.cur.Y
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	c.marquee.Move(fyne.NewPos(x0, y0))
	c.marquee.Resize(fyne.NewSize(x1-x0, y1-y0))
	c.marquee.Show()
	c.marquee.Refresh()
}

func (c *cropArea) CreateRenderer() fyne.WidgetRenderer {
	return &cropRenderer{area: c, objects: []fyne.CanvasObject{c.image, c.marquee}}
}

type cropRenderer struct {
	area    *cropArea
	objects []fyne.CanvasObject
}

func (r *cropRenderer) Layout(size fyne.Size) {
	s := fitScale(r.area.pixels, size)
	r.area.image.Move(fyne.NewPos(0, 0))
	r.area.image.Resize(fyne.NewSize(float32(r.area.pixels.X)*s, float32(r.area.pixels.Y)*s))
}

func (r *cropRenderer) MinSize() fyne.Size { return fyne.NewSize(1, 1) }

func (r *cropRenderer) Refresh() {
	r.Layout(r.area.Size())
	r.area.image.Refresh()
}

func (r *cropRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *cropRenderer) Destroy() {}
