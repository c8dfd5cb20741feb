package timeline

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func solid(w, h int, c uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: c, G: c, B: c, A: 255})
		}
	}
	return img
}

func newTimeline(t *testing.T) *Timeline {
	t.Helper()
	tl, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return tl
}

func TestNewCreatesDir(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "nested", "parent")
	tl, err := New(parent)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if st, err := os.Stat(tl.Dir()); err != nil || !st.IsDir() {
		t.Fatalf("Expected session directory at %s", tl.Dir())
	}
	if filepath.Dir(tl.Dir()) != parent {
		t.Fatalf("Expected session dir under %s, got %s", parent, tl.Dir())
	}
}

func TestPathForIsIndexNamed(t *testing.T) {
	tl := newTimeline(t)
	if got := filepath.Base(tl.PathFor(0)); got != "tmp0.png" {
		t.Errorf("PathFor(0) = %s", got)
	}
	if got := filepath.Base(tl.PathFor(12)); got != "tmp12.png" {
		t.Errorf("PathFor(12) = %s", got)
	}
}

func TestUndoRedoBounds(t *testing.T) {
	tl := newTimeline(t)
	if tl.Undo() || tl.Redo() {
		t.Fatal("Navigation before Reset must be a no-op")
	}
	if err := tl.Reset(solid(4, 4, 10)); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if tl.Undo() {
		t.Fatal("Undo at index 0 must be a no-op")
	}
	if tl.Redo() {
		t.Fatal("Redo at the high-water mark must be a no-op")
	}

	for i := 1; i <= 3; i++ {
		idx, err := tl.Append(solid(4, 4, uint8(10+i)))
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if idx != i || tl.Current() != i || tl.Last() != i {
			t.Fatalf("After append %d: idx=%d current=%d last=%d", i, idx, tl.Current(), tl.Last())
		}
	}

	if !tl.Undo() || !tl.Undo() {
		t.Fatal("Expected two undos to succeed")
	}
	if tl.Current() != 1 || tl.Last() != 3 {
		t.Fatalf("current=%d last=%d, expected 1/3", tl.Current(), tl.Last())
	}
	img, err := tl.LoadCurrent()
	if err != nil {
		t.Fatalf("LoadCurrent failed: %v", err)
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); uint8(r>>8) != 11 {
		t.Fatalf("Displayed frame should be frame 1, got red=%d", r>>8)
	}

	if !tl.Redo() || tl.Current() != 2 {
		t.Fatalf("Redo should move to 2, current=%d", tl.Current())
	}
}

func TestAppendDropsRedoHistory(t *testing.T) {
	tl := newTimeline(t)
	_ = tl.Reset(solid(2, 2, 1))
	_, _ = tl.Append(solid(2, 2, 2))
	_, _ = tl.Append(solid(2, 2, 3))
	tl.Undo()
	tl.Undo()

	idx, err := tl.Append(solid(2, 2, 9))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if idx != 1 || tl.Last() != 1 {
		t.Fatalf("Expected new branch at 1, got idx=%d last=%d", idx, tl.Last())
	}
	if tl.Redo() {
		t.Fatal("Redo must not reach the discarded branch")
	}
	if _, err := tl.Load(2); !errors.Is(err, ErrNoFrame) {
		t.Fatalf("Expected ErrNoFrame for discarded index, got %v", err)
	}
}

func TestResetRestartsCursors(t *testing.T) {
	tl := newTimeline(t)
	_ = tl.Reset(solid(2, 2, 1))
	_, _ = tl.Append(solid(2, 2, 2))
	if err := tl.Reset(solid(3, 3, 5)); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if tl.Current() != 0 || tl.Last() != 0 {
		t.Fatalf("Expected cursors at 0, got %d/%d", tl.Current(), tl.Last())
	}
	img, err := tl.Load(0)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 3 {
		t.Fatalf("Expected new frame 0, got %v", img.Bounds())
	}
}

func TestFramesRoundTripPixels(t *testing.T) {
	tl := newTimeline(t)
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.SetRGBA(0, 0, color.RGBA{R: 200, G: 10, B: 30, A: 255})
	src.SetRGBA(2, 1, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	if err := tl.Reset(src); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	img, err := tl.Load(0)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for _, p := range []image.Point{{0, 0}, {2, 1}} {
		r1, g1, b1, a1 := src.At(p.X, p.Y).RGBA()
		r2, g2, b2, a2 := img.At(p.X, p.Y).RGBA()
		if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
			t.Fatalf("Pixel %v changed on disk", p)
		}
	}
}

func TestRemove(t *testing.T) {
	tl := newTimeline(t)
	_ = tl.Reset(solid(2, 2, 1))
	if err := tl.Remove(); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(tl.Dir()); !os.IsNotExist(err) {
		t.Fatalf("Expected directory to be gone, stat err=%v", err)
	}
	if _, err := tl.LoadCurrent(); !errors.Is(err, ErrNoFrame) {
		t.Fatalf("Expected ErrNoFrame after Remove, got %v", err)
	}
}
