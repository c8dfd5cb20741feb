package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"

	"golang.design/x/clipboard"

	"screen-pds/src/worker"
)

// ErrNotInitialized is returned when Init has not succeeded.
var ErrNotInitialized = errors.New("clipboard not initialized")

// ErrQueueClosed is returned by AsyncTarget once its pool has shut down.
var ErrQueueClosed = errors.New("clipboard queue closed")

var (
	writeMu sync.Mutex
	ready   bool
)

func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := clipboard.Init(); err != nil {
		return err
	}
	ready = true
	return nil
}

// WriteImage puts img on the clipboard as PNG data. Writes are mutex-guarded to
// prevent corruption under parallel writes.
func WriteImage(img image.Image) error {
	data, err := encodePNG(img)
	if err != nil {
		return err
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return ErrNotInitialized
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode clipboard image: %w", err)
	}
	return buf.Bytes(), nil
}

// Submitter runs clipboard writes in the background.
type Submitter interface {
	Submit(j worker.Job) bool
}

// AsyncTarget encodes and writes frames off the UI thread. When frames arrive
// faster than they can be written, only the newest one is kept.
type AsyncTarget struct {
	Pool Submitter
}

func (a AsyncTarget) WriteImage(img image.Image) error {
	b := img.Bounds()
	name := fmt.Sprintf("clipboard %dx%d", b.Dx(), b.Dy())
	if !a.Pool.Submit(worker.Job{Name: name, Run: func() error { return WriteImage(img) }}) {
		return ErrQueueClosed
	}
	return nil
}
