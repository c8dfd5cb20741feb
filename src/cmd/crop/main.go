package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"screen-pds/src/export"
	"screen-pds/src/region"
)

var ErrOutOfBounds = errors.New("crop rectangle lies outside the image")

type cropOptions struct {
	in      string
	out     string
	rect    string
	format  string
	verbose bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &cropOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(os.Args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cropOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "crop",
		Short:         "Crop an image file with the same rules as the interactive overlay",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := runWithOptions(*opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), written)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.in, "in", "", "Input image (PNG, JPEG or GIF)")
	cmd.Flags().StringVar(&opts.out, "out", "", "Output path; the format extension is added when missing")
	cmd.Flags().StringVar(&opts.rect, "rect", "", "Crop rectangle x,y,w,h in pixels; negative w/h drag up or left")
	cmd.Flags().StringVar(&opts.format, "format", "png", "Output format: png, jpg or gif")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("rect")

	return cmd
}

func runWithOptions(opts cropOptions) (string, error) {
	if opts.verbose {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return "", err
	}
	r, err := parseRect(opts.rect)
	if err != nil {
		return "", err
	}

	f, err := os.Open(opts.in)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", opts.in, err)
	}
	defer f.Close()
	src, kind, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", opts.in, err)
	}
	log.Printf("Decoded %s %s image %v", opts.in, kind, src.Bounds())

	n := r.Normalize()
	cropped, ok := region.Crop(src, n)
	if !ok {
		return "", fmt.Errorf("%w: %+v not in %v", ErrOutOfBounds, n, src.Bounds())
	}
	log.Printf("Cropped to %v", cropped.Bounds())

	return export.Export(cropped, format, opts.out)
}

// parseRect reads "x,y,w,h".
func parseRect(s string) (region.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return region.Rect{}, fmt.Errorf("rect must be x,y,w,h, got %q", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return region.Rect{}, fmt.Errorf("rect component %d: %w", i, err)
		}
		v[i] = f
	}
	return region.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}
