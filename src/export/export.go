package export

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	xdraw "golang.org/x/image/draw"
)

// DefaultPrefix starts every synthesized file name.
const DefaultPrefix = "capture"

// ErrUnknownFormat is returned for a format outside PNG/JPEG/GIF.
var ErrUnknownFormat = errors.New("export: unknown format")

// Format is an output encoding offered in the main window.
type Format int

const (
	PNG Format = iota
	JPEG
	GIF
)

// Formats lists the choices in the order the format picker shows them.
var Formats = []Format{PNG, JPEG, GIF}

func (f Format) String() string {
	switch f {
	case PNG:
		return "PNG"
	case JPEG:
		return "JPG"
	case GIF:
		return "GIF"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Extension returns the file extension including the leading dot.
func (f Format) Extension() string {
	switch f {
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case GIF:
		return ".gif"
	default:
		return ""
	}
}

// ParseFormat accepts "png", "jpg"/"jpeg" and "gif" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	default:
		return PNG, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case GIF:
		// Single frame, local palette only: the zero Config leaves the global
		// color table empty.
		return gif.EncodeAll(w, &gif.GIF{
			Image: []*image.Paletted{flatten(img)},
			Delay: []int{0},
		})
	default:
		return ErrUnknownFormat
	}
}

// flatten quantizes img onto a fixed 256-colour palette with dithering.
func flatten(img image.Image) *image.Paletted {
	b := img.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	xdraw.FloydSteinberg.Draw(dst, dst.Bounds(), img, b.Min)
	return dst
}

// Export encodes img into path. The format's extension is appended when path
// has none, and missing parent directories are created. It returns the path
// actually written.
func Export(img image.Image, f Format, path string) (string, error) {
	if f.Extension() == "" {
		return "", ErrUnknownFormat
	}
	if filepath.Ext(path) == "" {
		path += f.Extension()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("encode %s: %w", f, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close export file: %w", err)
	}
	return path, nil
}

// RemovePlaceholder deletes path when it is an empty regular file, such as
// the one a save dialog creates before the image is written. Anything else is
// left alone.
func RemovePlaceholder(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if !fi.Mode().IsRegular() || fi.Size() != 0 {
		return nil
	}
	return os.Remove(path)
}

// DefaultFilename synthesizes capture<Y>-<M>-<D>-<h>_<m>_<s><ext> from now.
// Components are not zero-padded.
func DefaultFilename(now time.Time, f Format) string {
	return fmt.Sprintf("%s%d-%d-%d-%d_%d_%d%s", DefaultPrefix,
		now.Year(), int(now.Month()), now.Day(),
		now.Hour(), now.Minute(), now.Second(), f.Extension())
}

// Exporter adapts Export to the session's exporter interface.
type Exporter struct{}

func (Exporter) Export(img image.Image, f Format, path string) (string, error) {
	return Export(img, f, path)
}
