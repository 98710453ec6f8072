// Package capture grabs rectangles of the display and encodes them as PNG.
package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/kbinani/screenshot"

	"sweeperctl/internal/query"
)

// ErrNoDisplay is returned when no active display can be found.
var ErrNoDisplay = errors.New("capture: no active display")

// Screen captures regions of the host display. The full-screen bounds are
// sampled once when the Screen is created; later resolution changes are not
// observed.
type Screen struct {
	bounds image.Rectangle
	grab   func(image.Rectangle) (*image.RGBA, error)
}

// New samples the bounds of the given display index.
func New(display int) (*Screen, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, ErrNoDisplay
	}
	if display < 0 || display >= n {
		return nil, fmt.Errorf("capture: display %d out of range (have %d)", display, n)
	}
	return &Screen{
		bounds: screenshot.GetDisplayBounds(display),
		grab:   screenshot.CaptureRect,
	}, nil
}

// Bounds returns the display rectangle sampled at startup.
func (s *Screen) Bounds() image.Rectangle { return s.bounds }

// Capture returns the raw pixels inside rect.
func (s *Screen) Capture(rect image.Rectangle) (*image.RGBA, error) {
	img, err := s.grab(rect)
	if err != nil {
		return nil, fmt.Errorf("capture %v: %w", rect, err)
	}
	return img, nil
}

// ErrOutOfBounds is returned for a region whose origin lies outside the display.
var ErrOutOfBounds = errors.New("capture: region origin outside display")

// Region resolves the capture rectangle for x, y, w and h in params. The
// rectangle is used only when all four are present and positive; anything
// else falls back to full.
func Region(params query.Params, full image.Rectangle) (image.Rectangle, error) {
	var vals [4]int
	for i, key := range []string{"x", "y", "w", "h"} {
		v, err := params.Int(key, 0)
		if err != nil {
			return image.Rectangle{}, err
		}
		vals[i] = v
	}
	return Rect(vals[0], vals[1], vals[2], vals[3], full)
}

// Rect applies the same fallback policy as Region to already-parsed values.
// Width and height are clipped to the display so the grab never allocates
// more than one screen of pixels.
func Rect(x, y, w, h int, full image.Rectangle) (image.Rectangle, error) {
	if x <= 0 || y <= 0 || w <= 0 || h <= 0 {
		return full, nil
	}
	if !image.Pt(x, y).In(full) {
		return image.Rectangle{}, fmt.Errorf("%w: (%d,%d) not in %v", ErrOutOfBounds, x, y, full)
	}
	w = min(w, full.Max.X-x)
	h = min(h, full.Max.Y-y)
	return image.Rect(x, y, x+w, y+h), nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
