package pdfout

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/alnah/go-md2doc/internal/document"
	"github.com/alnah/go-md2doc/internal/layout"
)

// Creator is written into the PDF info dictionary.
const Creator = "md2doc"

// Footer geometry.
const (
	footerSize = 9
	footerH    = 5
)

type writeOptions struct {
	footer  bool
	created time.Time
}

// Option configures Write.
type Option func(*writeOptions)

// WithoutFooter omits the "N / M" page footer.
func WithoutFooter() Option {
	return func(o *writeOptions) {
		o.footer = false
	}
}

// WithCreationDate pins the creation and modification dates.
func WithCreationDate(t time.Time) Option {
	return func(o *writeOptions) {
		o.created = t
	}
}

// Write paints doc into a PDF. meta fills the document properties.
func Write(doc *layout.Document, meta document.Metadata, opts ...Option) ([]byte, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, ErrNoPages
	}
	o := writeOptions{footer: true}
	for _, opt := range opts {
		opt(&o)
	}

	spec := doc.Spec
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: spec.Width, Ht: spec.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(spec.Margin, spec.Margin, spec.Margin)
	pdf.SetCellMargin(0)
	pdf.SetCatalogSort(true)
	if err := registerFonts(pdf); err != nil {
		return nil, err
	}

	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetCreator(Creator, true)
	if !o.created.IsZero() {
		pdf.SetCreationDate(o.created)
		pdf.SetModificationDate(o.created)
	}

	p := &painter{pdf: pdf}
	for i, page := range doc.Pages {
		pdf.AddPage()
		for j, op := range page.Ops {
			p.paint(op, fmt.Sprintf("p%d-%d", i, j))
		}
		if o.footer {
			p.footer(spec, i+1, len(doc.Pages))
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrWrite, i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return buf.Bytes(), nil
}

type painter struct {
	pdf *gofpdf.Fpdf
}

func (p *painter) paint(op layout.Op, fallbackID string) {
	pdf := p.pdf
	switch op.Kind {
	case layout.OpText:
		setFont(pdf, op.Font)
		pdf.SetTextColor(op.Color[0], op.Color[1], op.Color[2])
		pdf.SetXY(op.X, op.Y)
		pdf.CellFormat(op.W, op.H, op.Text, "", 0, "LM", false, 0, "")
		if op.Strike {
			pdf.SetDrawColor(op.Color[0], op.Color[1], op.Color[2])
			pdf.SetLineWidth(0.2)
			pdf.Line(op.X, op.Y+op.H/2, op.X+op.W, op.Y+op.H/2)
		}

	case layout.OpRect:
		style := ""
		if op.Filled {
			pdf.SetFillColor(op.Fill[0], op.Fill[1], op.Fill[2])
			style += "F"
		}
		if op.Stroked {
			pdf.SetDrawColor(op.Color[0], op.Color[1], op.Color[2])
			pdf.SetLineWidth(op.LineWidth)
			style += "D"
		}
		if style == "" {
			return
		}
		pdf.Rect(op.X, op.Y, op.W, op.H, style)

	case layout.OpLine:
		pdf.SetDrawColor(op.Color[0], op.Color[1], op.Color[2])
		pdf.SetLineWidth(op.LineWidth)
		pdf.Line(op.X, op.Y, op.X+op.W, op.Y+op.H)

	case layout.OpImage:
		p.image(op, fallbackID)
	}
}

// image embeds op's bitmap. A payload gofpdf cannot decode is replaced by
// an empty frame so one bad picture does not sink the document.
func (p *painter) image(op layout.Op, fallbackID string) {
	pdf := p.pdf
	name := op.ImageID
	if name == "" {
		name = fallbackID
	}
	opts := gofpdf.ImageOptions{ImageType: op.ImageType}
	if opts.ImageType == "" {
		opts.ImageType = "PNG"
	}

	if pdf.GetImageInfo(name) == nil {
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(op.Image))
		if pdf.Error() != nil {
			pdf.ClearError()
			pdf.SetDrawColor(document.BorderColor[0], document.BorderColor[1], document.BorderColor[2])
			pdf.SetLineWidth(layout.BorderWidth)
			pdf.Rect(op.X, op.Y, op.W, op.H, "D")
			return
		}
	}
	pdf.ImageOptions(name, op.X, op.Y, op.W, op.H, false, opts, 0, "")
}

func (p *painter) footer(spec layout.PageSpec, page, total int) {
	pdf := p.pdf
	setFont(pdf, layout.Font{Family: layout.FamilySans, Size: footerSize})
	pdf.SetTextColor(layout.MutedColor[0], layout.MutedColor[1], layout.MutedColor[2])
	y := spec.Height - spec.Margin + (spec.Margin-footerH)/2
	pdf.SetXY(spec.Margin, y)
	pdf.CellFormat(spec.ContentWidth(), footerH, PageLabel(page, total), "", 0, "CM", false, 0, "")
}

// PageLabel formats the footer of page n of total.
func PageLabel(n, total int) string {
	return strconv.Itoa(n) + " / " + strconv.Itoa(total)
}
