package screenshot

import (
	"errors"
	"image"
	"testing"
	"time"
)

type fakeSource struct {
	displays []image.Rectangle
	captured image.Rectangle
	err      error
}

func (f *fakeSource) NumActiveDisplays() int { return len(f.displays) }

func (f *fakeSource) GetDisplayBounds(i int) image.Rectangle { return f.displays[i] }

func (f *fakeSource) CaptureRect(r image.Rectangle) (*image.RGBA, error) {
	f.captured = r
	if f.err != nil {
		return nil, f.err
	}
	return image.NewRGBA(r), nil
}

func TestCapturePrimaryPicksOriginDisplay(t *testing.T) {
	src := &fakeSource{displays: []image.Rectangle{
		image.Rect(-1280, 0, 0, 1024),
		image.Rect(0, 0, 1920, 1080),
	}}
	img, err := capturePrimary(src)
	if err != nil {
		t.Fatalf("capturePrimary failed: %v", err)
	}
	if src.captured != image.Rect(0, 0, 1920, 1080) {
		t.Fatalf("Captured %v, expected the display containing the origin", src.captured)
	}
	if img.Bounds().Dx() != 1920 {
		t.Fatalf("Unexpected image bounds %v", img.Bounds())
	}
}

func TestCapturePrimaryNoDisplay(t *testing.T) {
	if _, err := capturePrimary(&fakeSource{}); !errors.Is(err, ErrNoDisplay) {
		t.Fatalf("Expected ErrNoDisplay, got %v", err)
	}
}

func TestCapturePrimaryError(t *testing.T) {
	src := &fakeSource{displays: []image.Rectangle{image.Rect(0, 0, 10, 10)}, err: errors.New("denied")}
	if _, err := capturePrimary(src); err == nil {
		t.Fatal("Expected capture error to propagate")
	}
}

func TestCapturerSleepsBeforeCapture(t *testing.T) {
	var slept time.Duration
	src := &fakeSource{displays: []image.Rectangle{image.Rect(0, 0, 8, 8)}}
	c := &Capturer{source: src, sleep: func(d time.Duration) {
		if src.captured != (image.Rectangle{}) {
			t.Error("Capture happened before the delay elapsed")
		}
		slept = d
	}}
	if _, err := c.Capture(3 * time.Second); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if slept != 3*time.Second {
		t.Fatalf("Expected 3s delay, got %v", slept)
	}
}

func TestDelayLabel(t *testing.T) {
	want := []string{"No delay", "3 seconds delay", "5 seconds delay", "10 seconds delay"}
	for i, d := range Delays {
		if got := DelayLabel(d); got != want[i] {
			t.Errorf("DelayLabel(%v) = %q, expected %q", d, got, want[i])
		}
	}
}

func TestCapture(t *testing.T) {
	// This test would require a display, so we'll just check it doesn't panic
	_, err := CapturePrimary()
	if err != nil {
		t.Logf("Failed to capture screenshot (expected in headless environment): %v", err)
	}
}
