package docxout

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/fumiama/go-docx"

	"github.com/alnah/go-md2doc/internal/document"
	"github.com/alnah/go-md2doc/internal/layout"
	"github.com/alnah/go-md2doc/internal/structured"
)

// Font families written into run properties.
const (
	SansFont = "Arial"
	MonoFont = "Courier New"
)

// Unit conversions.
const (
	twipsPerMM  = 1440 / 25.4
	twipsPerPt  = 20
	emuPerMM    = 36000
	tableSize   = 10
	titleSize   = 22
	metaSize    = 11
	titleGap    = 12 // points after the title block
)

type writeOptions struct {
	title bool
	page  layout.PageSpec
}

// Option configures Write.
type Option func(*writeOptions)

// WithTitleBlock prepends the title, author and date from the metadata.
func WithTitleBlock() Option {
	return func(o *writeOptions) {
		o.title = true
	}
}

// WithPageSpec sets the paper size and margins of the section.
func WithPageSpec(spec layout.PageSpec) Option {
	return func(o *writeOptions) {
		o.page = spec
	}
}

// Write serializes acc into a DOCX file.
func Write(acc *structured.Accumulator, meta document.Metadata, opts ...Option) (out []byte, err error) {
	if acc == nil {
		return nil, ErrEmpty
	}
	o := writeOptions{page: layout.A4}
	for _, opt := range opts {
		opt(&o)
	}

	// go-docx panics on some malformed inputs rather than returning errors.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrWrite, r)
		}
	}()

	doc, err := newDocument()
	if err != nil {
		return nil, err
	}
	w := &writer{doc: doc, width: o.page.ContentWidth()}
	if o.title {
		w.titleBlock(meta)
	}
	for _, b := range acc.Blocks() {
		w.block(b)
	}
	w.section(o.page)

	var buf bytes.Buffer
	if _, err := w.doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return buf.Bytes(), nil
}

type writer struct {
	doc   *docx.Docx
	width float64 // content width in mm
}

func twips(mm float64) int {
	return int(math.Round(mm * twipsPerMM))
}

func halfPoints(pt float64) string {
	return strconv.Itoa(int(math.Round(pt * 2)))
}

func (w *writer) section(spec layout.PageSpec) {
	m := twips(spec.Margin)
	w.doc.Document.Body.Items = append(w.doc.Document.Body.Items, &docx.SectPr{
		PgSz:  &docx.PgSz{W: twips(spec.Width), H: twips(spec.Height)},
		PgMar: &docx.PgMar{Top: m, Left: m, Bottom: m, Right: m, Header: m / 2, Footer: m / 2},
	})
}

func (w *writer) titleBlock(meta document.Metadata) {
	title := meta.Title
	if title == "" {
		title = document.DefaultTitle
	}
	p := w.doc.AddParagraph().Justification("center")
	addText(p, title).Size(halfPoints(titleSize)).Bold().Font(SansFont, SansFont, SansFont, "default")

	muted := document.Hex(layout.MutedColor)
	for _, line := range []string{metaLine("Автор: ", meta.Author), metaLine("Дата: ", meta.Date)} {
		if line == "" {
			continue
		}
		p := w.doc.AddParagraph().Justification("center")
		addText(p, line).Size(halfPoints(metaSize)).Color(muted).Font(SansFont, SansFont, SansFont, "default")
	}
	w.doc.AddParagraph().Properties = &docx.ParagraphProperties{
		Spacing: &docx.Spacing{Before: titleGap * twipsPerPt},
	}
}

func metaLine(label, value string) string {
	if value == "" {
		return ""
	}
	return label + value
}

func (w *writer) block(b structured.Block) {
	switch b.Kind {
	case structured.BlockParagraph:
		w.paragraph(w.doc.AddParagraph(), b.Style, b.Runs)
	case structured.BlockTable:
		w.table(b)
	case structured.BlockImage:
		w.image(b)
	}
}

func (w *writer) paragraph(p *docx.Paragraph, st structured.Style, runs []structured.Run) {
	align := st.Align
	if align == "" {
		align = structured.AlignLeft
	}
	p.Justification(string(align))
	if st.Level > 0 {
		p.Style(HeadingStyle(st.Level))
	}
	props := p.Properties

	// w:ind has no right indent in go-docx; IndentRight is dropped.
	if st.IndentLeft > 0 || st.FirstLine > 0 || st.Hanging > 0 {
		props.Ind = &docx.Ind{
			Left:      twips(st.IndentLeft),
			FirstLine: twips(st.FirstLine),
			Hanging:   twips(st.Hanging),
		}
	}
	if st.SpaceBefore > 0 {
		props.Spacing = &docx.Spacing{Before: int(st.SpaceBefore * twipsPerPt)}
	}
	if st.Shaded {
		props.Shade = &docx.Shade{Val: "clear", Color: "auto", Fill: document.Hex(st.Fill)}
	}
	for _, r := range runs {
		w.run(p, st, r)
	}
}

func (w *writer) run(p *docx.Paragraph, st structured.Style, r structured.Run) {
	if r.Text == "" {
		return
	}
	size := st.Size
	if size <= 0 {
		size = structured.BodySize
	}
	run := addText(p, r.Text).Size(halfPoints(size))
	if r.Bold || st.Bold {
		run.Bold()
	}
	if r.Italic || st.Italic {
		run.Italic()
	}
	if r.Strike {
		run.Strike(true)
	}
	if r.Mono || st.Mono {
		run.Font(MonoFont, MonoFont, MonoFont, "default")
		if !st.Mono {
			run.Shade("clear", "auto", document.Hex(document.CodeFill))
		}
		return
	}
	run.Font(SansFont, SansFont, SansFont, "default")
}

// table writes one w:tc per source cell, so short rows stay short.
func (w *writer) table(b structured.Block) {
	cols := 0
	for _, r := range b.Rows {
		cols = max(cols, len(r.Cells))
	}
	if cols == 0 {
		return
	}
	border := document.Hex(document.BorderColor)
	t := w.doc.AddTable(len(b.Rows), cols, int64(twips(w.width-b.Style.IndentLeft)), &docx.APITableBorderColors{
		Top: border, Left: border, Bottom: border, Right: border, InsideH: border, InsideV: border,
	})

	cellStyle := structured.Style{Size: tableSize, Align: structured.AlignLeft}
	for i, row := range b.Rows {
		// A w:tr needs at least one w:tc.
		tr := t.TableRows[i]
		tr.TableCells = tr.TableCells[:max(len(row.Cells), 1)]
		for j, cell := range tr.TableCells {
			switch row.Shade {
			case document.ShadeHeader:
				cell.Shade("clear", "auto", document.Hex(document.HeaderFill))
			case document.ShadeStripe:
				cell.Shade("clear", "auto", document.Hex(document.StripeFill))
			}
			p := cell.AddParagraph()
			if j < len(row.Cells) {
				w.paragraph(p, cellStyle, row.Cells[j].Runs)
			}
		}
	}
}

// addText appends text to p with every w:t marked xml:space="preserve", so
// leading and repeated spaces survive.
func addText(p *docx.Paragraph, text string) *docx.Run {
	run := p.AddText(text)
	for _, c := range run.Children {
		if t, ok := c.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
	return run
}

func (w *writer) image(b structured.Block) {
	img := b.Image
	p := w.doc.AddParagraph().Justification("center")
	if img == nil || len(img.Data) == 0 {
		w.missingImage(p, "")
		return
	}
	run, err := p.AddInlineDrawing(img.Data)
	if err != nil {
		w.missingImage(p, img.ID)
		return
	}
	if len(run.Children) > 0 {
		if d, ok := run.Children[0].(*docx.Drawing); ok && d.Inline != nil && img.Width > 0 && img.Height > 0 {
			d.Inline.Size(int64(img.Width*emuPerMM), int64(img.Height*emuPerMM))
		}
	}
}

func (w *writer) missingImage(p *docx.Paragraph, id string) {
	text := "[Изображение]"
	if id != "" {
		text = "[Изображение: " + id + "]"
	}
	w.run(p, structured.Style{Size: structured.NoteSize, Italic: true}, structured.Run{Text: text})
}
