// Package raster turns SVG markup into PNG bitmaps for the export engines
// and inspects image files referenced by documents.
package raster

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sentinel errors for rasterization.
var (
	ErrInvalidSize = errors.New("invalid raster size")
	ErrRasterize   = errors.New("rasterization failed")
	ErrUnsupported = errors.New("unsupported image format")

	// Image file errors never carry the path.
	ErrImageMissing    = errors.New("image file not found")
	ErrImageUnreadable = errors.New("image file not readable")
	ErrImageTooLarge   = errors.New("image file too large")
)

// MaxPixels caps the area of one bitmap.
const MaxPixels = 4096 * 4096

// Rasterizer renders SVG markup to a PNG of exactly widthPx x heightPx.
type Rasterizer interface {
	Name() string
	Rasterize(ctx context.Context, markup string, widthPx, heightPx int) ([]byte, error)
}

// Chain tries rasterizers in order and returns the first PNG produced.
type Chain []Rasterizer

// Compile-time interface implementation check.
var _ Rasterizer = Chain(nil)

func (c Chain) Name() string {
	names := make([]string, 0, len(c))
	for _, r := range c {
		names = append(names, r.Name())
	}
	return strings.Join(names, ",")
}

// Rasterize returns the first success. The error joins every attempt.
func (c Chain) Rasterize(ctx context.Context, markup string, widthPx, heightPx int) ([]byte, error) {
	if err := ValidateSize(widthPx, heightPx); err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return nil, fmt.Errorf("%w: no rasterizer configured", ErrRasterize)
	}

	var errs []error
	for _, r := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		png, err := r.Rasterize(ctx, markup, widthPx, heightPx)
		if err == nil && len(png) > 0 {
			return png, nil
		}
		if err == nil {
			err = errors.New("empty bitmap")
		}
		errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
	}
	return nil, fmt.Errorf("%w: %w", ErrRasterize, errors.Join(errs...))
}

// ValidateSize rejects empty and oversized bitmaps.
func ValidateSize(widthPx, heightPx int) error {
	if widthPx <= 0 || heightPx <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, widthPx, heightPx)
	}
	if widthPx*heightPx > MaxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidSize, widthPx, heightPx, MaxPixels)
	}
	return nil
}

// PixelSize converts a physical size in millimetres to pixels at dpi,
// shrinking uniformly if the result would exceed MaxPixels.
func PixelSize(widthMM, heightMM, dpi float64) (int, int) {
	w := widthMM / 25.4 * dpi
	h := heightMM / 25.4 * dpi
	if area := w * h; area > MaxPixels {
		scale := math.Sqrt(MaxPixels / area)
		return max(1, int(w*scale)), max(1, int(h*scale))
	}
	return max(1, int(math.Round(w))), max(1, int(math.Round(h)))
}
