package timeline

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
)

const (
	dirPattern  = "screen-pds-*"
	framePrefix = "tmp"
	frameExt    = ".png"
)

// ErrNoFrame is returned when an index past the high-water mark is requested.
var ErrNoFrame = errors.New("timeline: no such frame")

// Timeline is an index-addressed sequence of crop frames stored as PNG files.
// current is what is displayed and saved; last is the furthest frame redo can
// reach. Every navigation re-reads the frame from disk.
//
// A Timeline is owned by the tick goroutine and is not safe for concurrent use.
type Timeline struct {
	dir     string
	current int
	last    int
	started bool
}

// New creates a session-scoped directory under parent (the OS temp dir when
// parent is empty).
func New(parent string) (*Timeline, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, fmt.Errorf("create timeline parent: %w", err)
		}
	}
	dir, err := os.MkdirTemp(parent, dirPattern)
	if err != nil {
		return nil, fmt.Errorf("create timeline dir: %w", err)
	}
	return &Timeline{dir: dir}, nil
}

// Dir returns the session directory.
func (t *Timeline) Dir() string { return t.dir }

// Current returns the displayed frame index.
func (t *Timeline) Current() int { return t.current }

// Last returns the high-water index.
func (t *Timeline) Last() int { return t.last }

// PathFor returns the file that holds frame index.
func (t *Timeline) PathFor(index int) string {
	return filepath.Join(t.dir, framePrefix+strconv.Itoa(index)+frameExt)
}

// Reset starts a new session with img as frame 0. Frames from the previous
// session stay on disk but are no longer reachable.
func (t *Timeline) Reset(img image.Image) error {
	t.current, t.last, t.started = 0, 0, false
	if err := t.write(0, img); err != nil {
		return err
	}
	t.started = true
	return nil
}

// Append stores img right after the current frame and makes it both current and
// the high-water mark, dropping any redo history beyond it.
func (t *Timeline) Append(img image.Image) (int, error) {
	if !t.started {
		return 0, ErrNoFrame
	}
	next := t.current + 1
	if err := t.write(next, img); err != nil {
		return t.current, err
	}
	t.current, t.last = next, next
	return next, nil
}

// Undo steps back one frame. It reports false at frame 0.
func (t *Timeline) Undo() bool {
	if !t.started || t.current == 0 {
		return false
	}
	t.current--
	return true
}

// Redo steps forward one frame. It reports false at the high-water mark.
func (t *Timeline) Redo() bool {
	if !t.started || t.current >= t.last {
		return false
	}
	t.current++
	return true
}

// Load decodes frame index from disk.
func (t *Timeline) Load(index int) (image.Image, error) {
	if !t.started || index < 0 || index > t.last {
		return nil, ErrNoFrame
	}
	f, err := os.Open(t.PathFor(index))
	if err != nil {
		return nil, fmt.Errorf("open frame %d: %w", index, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %d: %w", index, err)
	}
	return img, nil
}

// LoadCurrent decodes the displayed frame.
func (t *Timeline) LoadCurrent() (image.Image, error) {
	return t.Load(t.current)
}

// Remove deletes the session directory and every frame in it.
func (t *Timeline) Remove() error {
	t.started = false
	t.current, t.last = 0, 0
	return os.RemoveAll(t.dir)
}

func (t *Timeline) write(index int, img image.Image) error {
	path := t.PathFor(index)
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create frame %d: %w", index, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close frame %d: %w", index, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("store frame %d: %w", index, err)
	}
	return nil
}
