package pdfout

import (
	"fmt"
	"sync"

	"github.com/jung-kurt/gofpdf"

	"github.com/alnah/go-md2doc/internal/layout"
)

// Compile-time interface check
var _ layout.Measurer = (*Measurer)(nil)

// Measurer measures text with gofpdf's metrics for the embedded fonts.
// It is safe for concurrent use.
type Measurer struct {
	mu  sync.Mutex
	pdf *gofpdf.Fpdf
}

// NewMeasurer loads the fonts into a scratch document.
func NewMeasurer() (*Measurer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	if err := registerFonts(pdf); err != nil {
		return nil, err
	}
	return &Measurer{pdf: pdf}, nil
}

// Width returns the width of text in millimetres.
func (m *Measurer) Width(text string, f layout.Font) (float64, error) {
	if f.Size <= 0 {
		return 0, fmt.Errorf("%w: font size %g", ErrFont, f.Size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	setFont(m.pdf, f)
	w := m.pdf.GetStringWidth(text)
	if err := m.pdf.Error(); err != nil {
		m.pdf.ClearError()
		return 0, fmt.Errorf("%w: %v", ErrFont, err)
	}
	return w, nil
}

// Wrap breaks text into lines no wider than maxWidth.
func (m *Measurer) Wrap(text string, f layout.Font, maxWidth float64) ([]string, error) {
	return layout.WrapWith(text, maxWidth, func(s string) (float64, error) {
		return m.Width(s, f)
	})
}
