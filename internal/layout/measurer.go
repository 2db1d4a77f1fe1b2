package layout

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/mitchellh/go-wordwrap"
	"github.com/rivo/uniseg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Measurer measures and wraps text. Widths are millimetres.
type Measurer interface {
	Width(text string, f Font) (float64, error)
	Wrap(text string, f Font, maxWidth float64) ([]string, error)
}

// Compile-time interface checks
var (
	_ Measurer = Estimate{}
	_ Measurer = (*FaceMeasurer)(nil)
)

// estimateAdvance is the assumed advance of one column, in ems.
const estimateAdvance = 0.6

// Estimate measures every font as if it were monospace. It never fails and
// is deterministic, which makes it the fallback when no real font metrics
// are available.
type Estimate struct{}

func (Estimate) advance(f Font) float64 {
	return f.Size * PtToMM * estimateAdvance
}

// Width returns the display width of text in columns times the advance.
func (e Estimate) Width(text string, f Font) (float64, error) {
	return float64(uniseg.StringWidth(text)) * e.advance(f), nil
}

// Wrap breaks text into lines of at most maxWidth.
func (e Estimate) Wrap(text string, f Font, maxWidth float64) ([]string, error) {
	cols := int(maxWidth/e.advance(f) + epsilon)
	if cols < 1 {
		cols = 1
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		wrapped := wordwrap.WrapString(strings.Join(strings.Fields(para), " "), uint(cols))
		for _, line := range strings.Split(wrapped, "\n") {
			if uniseg.StringWidth(line) <= cols {
				out = append(out, line)
				continue
			}
			pieces, _ := breakGraphemes(line, float64(cols), func(s string) (float64, error) {
				return float64(uniseg.StringWidth(s)), nil
			})
			out = append(out, pieces...)
		}
	}
	return out, nil
}

// FaceMeasurer measures text with the Go font family through freetype.
// It is safe for concurrent use.
type FaceMeasurer struct {
	mu    sync.Mutex
	fonts map[string]*truetype.Font
	faces map[Font]font.Face
}

var faceSources = map[string][]byte{
	FamilySans:        goregular.TTF,
	FamilySans + "B":  gobold.TTF,
	FamilySans + "I":  goitalic.TTF,
	FamilySans + "BI": gobolditalic.TTF,
	FamilyMono:        gomono.TTF,
	FamilyMono + "B":  gomonobold.TTF,
	FamilyMono + "I":  gomonoitalic.TTF,
	FamilyMono + "BI": gomonobolditalic.TTF,
}

// NewFaceMeasurer parses the embedded Go fonts.
func NewFaceMeasurer() (*FaceMeasurer, error) {
	m := &FaceMeasurer{
		fonts: make(map[string]*truetype.Font, len(faceSources)),
		faces: make(map[Font]font.Face),
	}
	for key, ttf := range faceSources {
		parsed, err := truetype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parsing font %s: %w", key, err)
		}
		m.fonts[key] = parsed
	}
	return m, nil
}

func (m *FaceMeasurer) face(f Font) (font.Face, error) {
	if face, ok := m.faces[f]; ok {
		return face, nil
	}
	family := f.Family
	if family != FamilyMono {
		family = FamilySans
	}
	ttf, ok := m.fonts[family+f.Style()]
	if !ok {
		return nil, fmt.Errorf("no face for %s %q", f.Family, f.Style())
	}
	if f.Size <= 0 {
		return nil, fmt.Errorf("font size %g", f.Size)
	}
	// At 72 DPI one pixel is one point.
	face := truetype.NewFace(ttf, &truetype.Options{Size: f.Size, DPI: 72, Hinting: font.HintingNone})
	m.faces[f] = face
	return face, nil
}

// Width returns the advance width of text set in f.
func (m *FaceMeasurer) Width(text string, f Font) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	face, err := m.face(f)
	if err != nil {
		return 0, err
	}
	adv := font.MeasureString(face, text)
	return float64(adv) / 64 * PtToMM, nil
}

// Wrap breaks text on spaces so no line is wider than maxWidth.
func (m *FaceMeasurer) Wrap(text string, f Font, maxWidth float64) ([]string, error) {
	return WrapWith(text, maxWidth, func(s string) (float64, error) {
		return m.Width(s, f)
	})
}

// WrapWith greedily breaks text into lines no wider than maxWidth. Runs of
// spaces collapse, newlines always break, and a word wider than maxWidth is
// split between grapheme clusters.
func WrapWith(text string, maxWidth float64, width func(string) (float64, error)) ([]string, error) {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			w, err := width(candidate)
			if err != nil {
				return nil, err
			}
			if w <= maxWidth+epsilon {
				line = candidate
				continue
			}
			if line != "" {
				out = append(out, line)
				line = ""
			}
			ww, err := width(word)
			if err != nil {
				return nil, err
			}
			if ww <= maxWidth+epsilon {
				line = word
				continue
			}
			pieces, err := breakGraphemes(word, maxWidth, width)
			if err != nil {
				return nil, err
			}
			out = append(out, pieces[:len(pieces)-1]...)
			line = pieces[len(pieces)-1]
		}
		out = append(out, line)
	}
	return out, nil
}

// breakGraphemes splits s into pieces no wider than maxWidth. A single
// cluster wider than maxWidth still gets a piece of its own.
func breakGraphemes(s string, maxWidth float64, width func(string) (float64, error)) ([]string, error) {
	var pieces []string
	cur := ""
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cluster := g.Str()
		if cur == "" {
			cur = cluster
			continue
		}
		w, err := width(cur + cluster)
		if err != nil {
			return nil, err
		}
		if w > maxWidth+epsilon {
			pieces = append(pieces, cur)
			cur = cluster
			continue
		}
		cur += cluster
	}
	return append(pieces, cur), nil
}
