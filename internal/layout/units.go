package layout

import (
	"errors"
	"fmt"
	"strings"
)

// PtToMM converts typographic points to millimetres.
const PtToMM = 25.4 / 72

// PxToMM converts CSS pixels (96 per inch) to millimetres.
const PxToMM = 25.4 / 96

// ErrInvalidPageSpec is returned for page geometry with no room for content.
var ErrInvalidPageSpec = errors.New("invalid page spec")

// PageSpec is the physical page, in millimetres.
type PageSpec struct {
	Width  float64
	Height float64
	Margin float64
}

// Page sizes by name, portrait.
var (
	A4     = PageSpec{Width: 210, Height: 297, Margin: 25}
	Letter = PageSpec{Width: 215.9, Height: 279.4, Margin: 25}
	Legal  = PageSpec{Width: 215.9, Height: 355.6, Margin: 25}
)

var pageSizes = map[string]PageSpec{
	"a4":     A4,
	"letter": Letter,
	"legal":  Legal,
}

// PageSizeByName returns the named page size. Matching is case-insensitive.
func PageSizeByName(name string) (PageSpec, error) {
	spec, ok := pageSizes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return PageSpec{}, fmt.Errorf("%w: unknown page size %q (want a4, letter or legal)", ErrInvalidPageSpec, name)
	}
	return spec, nil
}

// ContentWidth is the printable width between the side margins.
func (p PageSpec) ContentWidth() float64 { return p.Width - 2*p.Margin }

// ContentHeight is the printable height between the top and bottom margins.
func (p PageSpec) ContentHeight() float64 { return p.Height - 2*p.Margin }

// Landscape returns the spec with width and height swapped.
func (p PageSpec) Landscape() PageSpec {
	return PageSpec{Width: p.Height, Height: p.Width, Margin: p.Margin}
}

// Validate checks that content fits between the margins.
func (p PageSpec) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: page %gx%g mm", ErrInvalidPageSpec, p.Width, p.Height)
	}
	if p.Margin < 0 {
		return fmt.Errorf("%w: negative margin %g mm", ErrInvalidPageSpec, p.Margin)
	}
	if p.ContentWidth() < minContent || p.ContentHeight() < minContent {
		return fmt.Errorf("%w: margin %g mm leaves no room on a %gx%g mm page", ErrInvalidPageSpec, p.Margin, p.Width, p.Height)
	}
	return nil
}

// minContent is the smallest printable extent accepted, in millimetres.
const minContent = 20
