package md2doc

import (
	"fmt"
	"strings"

	"github.com/alnah/go-md2doc/internal/diagram"
	"github.com/alnah/go-md2doc/internal/document"
	"github.com/alnah/go-md2doc/internal/layout"
	"github.com/alnah/go-md2doc/internal/pipeline"
	"github.com/alnah/go-md2doc/internal/raster"
)

// MaxInputSize is the largest markdown source Convert accepts.
const MaxInputSize = 10 << 20

// OutputKind selects the output encoding.
type OutputKind string

// Output kinds.
const (
	// Paginated is a PDF with absolute positioning and manual page breaks.
	Paginated OutputKind = "paginated"
	// Structured is a DOCX flow of paragraphs, runs and tables.
	Structured OutputKind = "structured"
	// Preview is a standalone HTML page.
	Preview OutputKind = "preview"
)

var kindAliases = map[string]OutputKind{
	"":           Paginated,
	"paginated":  Paginated,
	"pdf":        Paginated,
	"structured": Structured,
	"docx":       Structured,
	"preview":    Preview,
	"html":       Preview,
}

// ParseOutputKind accepts a kind name or a file format ("pdf", "docx",
// "html"). Empty means Paginated.
func ParseOutputKind(s string) (OutputKind, error) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q (want pdf, docx or html)", ErrInvalidOutputKind, s)
	}
	return k, nil
}

// Extension returns the file extension for k, without the dot.
func (k OutputKind) Extension() string {
	switch k {
	case Structured:
		return "docx"
	case Preview:
		return "html"
	}
	return "pdf"
}

// ContentType returns the MIME type of blobs of kind k.
func (k OutputKind) ContentType() string {
	switch k {
	case Structured:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case Preview:
		return "text/html; charset=utf-8"
	}
	return "application/pdf"
}

// Input contains conversion parameters.
type Input struct {
	Markdown   string     // Markdown content (required)
	SourceName string     // File name, seeds the title when front matter has none (optional)
	SourceDir  string     // Directory relative image paths resolve against (optional)
	Kind       OutputKind // Output kind (empty = Paginated)
	ASCIIMode  ASCIIMode  // Overrides the converter's ASCII-art mode (optional)
	// AllowAbsoluteImages lets absolute and file:// image references read
	// the local disk. Leave it false for markdown from untrusted sources.
	AllowAbsoluteImages bool
}

// Result is a finished conversion.
type Result struct {
	Blob        []byte
	Filename    string
	Kind        OutputKind
	Metadata    Metadata
	Diagnostics []Diagnostic
}

// Fallbacks counts diagrams that were kept as source text.
func (r *Result) Fallbacks() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == document.DiagRendererExhaustion {
			n++
		}
	}
	return n
}

// Re-exported types so callers can configure a Converter and read results
// without importing internal packages.
type (
	Metadata       = document.Metadata
	Diagnostic     = document.Diagnostic
	DiagnosticKind = document.DiagnosticKind
	PageSpec       = layout.PageSpec
	Renderer       = diagram.Renderer
	Rasterizer     = raster.Rasterizer
	Measurer       = layout.Measurer
	ASCIIMode      = pipeline.ASCIIMode
)

// ASCII-art modes.
const (
	ASCIIImage    = pipeline.ASCIIImage
	ASCIIOptimize = pipeline.ASCIIOptimize
	ASCIIPreserve = pipeline.ASCIIPreserve
)

// ParseASCIIMode validates a mode name. Empty means ASCIIImage.
func ParseASCIIMode(s string) (ASCIIMode, error) {
	return pipeline.ParseASCIIMode(s)
}

// Diagnostic kinds.
const (
	DiagRendered            = document.DiagRendered
	DiagRendererExhaustion  = document.DiagRendererExhaustion
	DiagMeasurementDegraded = document.DiagMeasurementDegraded
	DiagMalformedNode       = document.DiagMalformedNode
	DiagRasterization       = document.DiagRasterization
	DiagImageUnavailable    = document.DiagImageUnavailable
	DiagFrontMatter         = document.DiagFrontMatter
)

// Page sizes.
var (
	PageA4     = layout.A4
	PageLetter = layout.Letter
	PageLegal  = layout.Legal
)

// PageSizeByName returns a named page size ("a4", "letter", "legal").
func PageSizeByName(name string) (PageSpec, error) {
	return layout.PageSizeByName(name)
}
