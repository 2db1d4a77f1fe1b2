package diagram

import (
	"bytes"
	"context"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/rivo/uniseg"

	"github.com/alnah/go-md2doc/internal/document"
	"github.com/alnah/go-md2doc/internal/sanitize"
)

// ASCII canvas metrics in SVG user units.
const (
	ASCIIFontSize   = 12.0
	ASCIICharWidth  = ASCIIFontSize * 0.6
	ASCIILineHeight = ASCIIFontSize * 1.2
	ASCIIPadding    = 10
)

// ASCIIFontFamily lists monospace faces with box-drawing coverage.
const ASCIIFontFamily = "DejaVu Sans Mono, Menlo, Consolas, monospace"

// ASCIIRenderer draws ASCII art as monospace SVG text on a white canvas.
// It has no external dependency and is always available.
type ASCIIRenderer struct{}

// Compile-time interface implementation check.
var _ Renderer = (*ASCIIRenderer)(nil)

// NewASCII creates the built-in ASCII renderer.
func NewASCII() *ASCIIRenderer { return &ASCIIRenderer{} }

func (r *ASCIIRenderer) Name() string              { return "svgo" }
func (r *ASCIIRenderer) Kind() document.SourceKind { return document.SourceASCII }
func (r *ASCIIRenderer) Available() error          { return nil }

// Render lays out one text element per line on a character grid. Column
// widths follow grapheme display width so wide runes keep the grid aligned.
func (r *ASCIIRenderer) Render(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lines := sanitize.Lines(strings.ReplaceAll(source, "\t", strings.Repeat(" ", sanitize.TabWidth)))
	cols := 0
	for _, line := range lines {
		cols = max(cols, uniseg.StringWidth(line))
	}

	w := int(math.Ceil(float64(cols)*ASCIICharWidth)) + 2*ASCIIPadding
	h := int(math.Ceil(float64(len(lines))*ASCIILineHeight)) + 2*ASCIIPadding

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(w, h, 0, 0, w, h)
	canvas.Rect(0, 0, w, h, "fill:#ffffff")
	canvas.Gstyle("font-family:" + ASCIIFontFamily + ";font-size:12px;fill:#1f2328")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		canvas.Text(ASCIIPadding, ASCIIBaseline(i), line, `xml:space="preserve"`)
	}
	canvas.Gend()
	canvas.End()
	return buf.String(), nil
}

// ASCIIBaseline returns the y coordinate of line i's baseline.
func ASCIIBaseline(i int) int {
	return ASCIIPadding + int(math.Round(float64(i)*ASCIILineHeight+ASCIIFontSize))
}
