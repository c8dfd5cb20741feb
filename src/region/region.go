package region

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Rect is a drag rectangle in source-image pixels. W and H may be negative
// until Normalize is applied.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Empty reports whether the rectangle has no extent at all.
func (r Rect) Empty() bool {
	return r.W == 0 && r.H == 0
}

// Normalize moves the origin to the top-left corner so that W and H are
// non-negative while covering the same area.
func (r Rect) Normalize() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Bounds converts r to integer pixel bounds relative to origin, truncating
// toward zero.
func (r Rect) Bounds(origin image.Point) image.Rectangle {
	x, y := int(r.X), int(r.Y)
	return image.Rect(x, y, x+int(r.W), y+int(r.H)).Add(origin)
}

// Contains reports whether the rectangle's origin lies inside [0,w)x[0,h).
func (r Rect) Contains(w, h int) bool {
	if r.X < 0 || r.Y < 0 {
		return false
	}
	return int(r.X) < w && int(r.Y) < h
}

// Crop copies the area r of src into a new zero-origin image. r must already be
// normalized. The extent is clamped to the source bounds. ok is false when the
// origin is outside src or nothing would remain after clamping.
func Crop(src image.Image, r Rect) (dst *image.RGBA, ok bool) {
	b := src.Bounds()
	if !r.Contains(b.Dx(), b.Dy()) {
		return nil, false
	}
	area := r.Bounds(b.Min).Intersect(b)
	if area.Empty() {
		return nil, false
	}
	dst = image.NewRGBA(image.Rect(0, 0, area.Dx(), area.Dy()))
	xdraw.Copy(dst, image.Point{}, src, area, xdraw.Src, nil)
	return dst, true
}
