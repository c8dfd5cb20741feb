package screenshot

import (
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/kbinani/screenshot"
)

// ErrNoDisplay is returned when no active display can be captured.
var ErrNoDisplay = errors.New("no active displays found")

// Delays are the capture delays offered in the main window, in picker order.
var Delays = []time.Duration{0, 3 * time.Second, 5 * time.Second, 10 * time.Second}

// DelayLabel renders a delay the way the picker shows it.
func DelayLabel(d time.Duration) string {
	if d <= 0 {
		return "No delay"
	}
	return fmt.Sprintf("%d seconds delay", int(d.Seconds()))
}

// displaySource is the subset of kbinani/screenshot used here.
type displaySource interface {
	NumActiveDisplays() int
	GetDisplayBounds(i int) image.Rectangle
	CaptureRect(r image.Rectangle) (*image.RGBA, error)
}

type kbinaniSource struct{}

func (kbinaniSource) NumActiveDisplays() int { return screenshot.NumActiveDisplays() }

func (kbinaniSource) GetDisplayBounds(i int) image.Rectangle { return screenshot.GetDisplayBounds(i) }

func (kbinaniSource) CaptureRect(r image.Rectangle) (*image.RGBA, error) {
	return screenshot.CaptureRect(r)
}

// GetDisplayBounds returns the bounds of the display that contains the origin,
// falling back to display 0.
func GetDisplayBounds() (image.Rectangle, error) {
	return primaryBounds(kbinaniSource{})
}

func primaryBounds(src displaySource) (image.Rectangle, error) {
	n := src.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, ErrNoDisplay
	}
	for i := 0; i < n; i++ {
		b := src.GetDisplayBounds(i)
		if image.Pt(0, 0).In(b) {
			return b, nil
		}
	}
	return src.GetDisplayBounds(0), nil
}

// CapturePrimary captures the full primary display.
func CapturePrimary() (*image.RGBA, error) {
	return capturePrimary(kbinaniSource{})
}

func capturePrimary(src displaySource) (*image.RGBA, error) {
	bounds, err := primaryBounds(src)
	if err != nil {
		return nil, err
	}
	img, err := src.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display: %w", err)
	}
	return img, nil
}

// Capturer takes a full-screen capture after an optional delay. The delay is
// a plain sleep on the calling goroutine and always runs to completion.
type Capturer struct {
	source displaySource
	sleep  func(time.Duration)
}

func NewCapturer() *Capturer {
	return &Capturer{source: kbinaniSource{}, sleep: time.Sleep}
}

func (c *Capturer) Capture(delay time.Duration) (image.Image, error) {
	if delay > 0 {
		log.Printf("Capture: waiting %v before capture", delay)
		c.sleep(delay)
	}
	img, err := capturePrimary(c.source)
	if err != nil {
		return nil, err
	}
	log.Printf("Capture: captured %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}
