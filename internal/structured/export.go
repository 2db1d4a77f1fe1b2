package structured

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-md2doc/internal/diagram"
	"github.com/alnah/go-md2doc/internal/document"
	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/layout"
	"github.com/alnah/go-md2doc/internal/raster"
	"github.com/alnah/go-md2doc/internal/sanitize"
)

// Sizes, in points.
const (
	BodySize = 11
	CodeSize = 9
	NoteSize = 10
)

// Indents, in millimetres.
const (
	FirstLineIndent = 5.0
	CodeIndent      = 5.0
	ListIndent      = 6.0
	QuoteIndent     = 10.0
)

// RuleGlyph is repeated to draw a horizontal rule.
const (
	RuleGlyph = "─"
	ruleWidth = 40
)

// Options configures Export.
type Options struct {
	Rasterizer raster.Rasterizer
	ImageDir   string
	// AllowAbsoluteImages lets absolute and file:// references read the
	// local disk.
	AllowAbsoluteImages bool
	// ContentWidth caps picture widths, in millimetres. Zero means A4
	// with 25 mm margins.
	ContentWidth float64
	DPI          float64
}

// Export maps root to blocks. Diagnostics land on the accumulator; the
// only error is the context's.
func Export(ctx context.Context, root *document.Node, opts Options) (*Accumulator, error) {
	if opts.ContentWidth <= 0 {
		opts.ContentWidth = layout.A4.ContentWidth()
	}
	if opts.DPI <= 0 {
		opts.DPI = layout.RasterDPI
	}
	x := &exporter{ctx: ctx, opts: opts, acc: &Accumulator{}}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if root != nil {
		for _, b := range root.Children {
			if err := x.block(b, scope{}); err != nil {
				return nil, err
			}
		}
	}
	return x.acc, nil
}

// scope carries the treatment inherited from enclosing blocks.
type scope struct {
	indent float64
	italic bool
	depth  int // list nesting
}

type exporter struct {
	ctx      context.Context
	opts     Options
	acc      *Accumulator
	diagrams int
}

func (x *exporter) note(d document.Diagnostic) {
	x.acc.Diagnostics = append(x.acc.Diagnostics, d)
}

func (x *exporter) paragraph(st Style, runs []Run, sc scope) {
	st.IndentLeft += sc.indent
	st.Italic = st.Italic || sc.italic
	x.acc.Append(Block{Kind: BlockParagraph, Style: st, Runs: runs})
}

func (x *exporter) block(n *document.Node, sc scope) error {
	if err := x.ctx.Err(); err != nil {
		return err
	}
	if n == nil {
		return nil
	}

	switch n.Kind {
	case document.KindHeading:
		level := min(max(n.Level, 1), 6)
		x.paragraph(Style{
			Level:       level,
			Size:        layout.HeadingSize(level),
			Bold:        true,
			Align:       AlignLeft,
			SpaceBefore: 12,
		}, runs(n), sc)

	case document.KindParagraph:
		st := Style{Size: BodySize, Align: AlignJustify, FirstLine: FirstLineIndent}
		if sc.depth > 0 || sc.indent > 0 {
			st.FirstLine = 0
		}
		x.paragraph(st, runs(n), sc)

	case document.KindCodeBlock:
		x.paragraph(codeStyle(document.CodeFill), []Run{{Text: sanitize.Text(strings.TrimRight(n.Text, "\n")), Mono: true}}, sc)

	case document.KindList:
		return x.list(n, sc)

	case document.KindBlockquote:
		inner := scope{indent: sc.indent + QuoteIndent, italic: true, depth: sc.depth}
		for _, c := range n.Children {
			if err := x.block(c, inner); err != nil {
				return err
			}
		}

	case document.KindTable:
		x.table(n, sc)

	case document.KindImage:
		return x.image(n, sc)

	case document.KindDiagramArtifact:
		return x.artifact(n, sc)

	case document.KindDiagramFallback:
		x.fallback(n, sc)

	case document.KindDiagramPlaceholder:
		x.note(document.Note(document.DiagMalformedNode, "%s: diagram was never substituted", n.Kind))
		x.fallback(n, sc)

	case document.KindRule:
		x.paragraph(Style{Size: BodySize, Align: AlignCenter}, []Run{{Text: strings.Repeat(RuleGlyph, ruleWidth)}}, scope{})

	default:
		if text := document.FlattenText(n); text != "" {
			x.paragraph(Style{Size: BodySize, Align: AlignLeft}, []Run{{Text: sanitize.Text(text)}}, sc)
		}
	}
	return nil
}

func codeStyle(fill [3]int) Style {
	return Style{
		Size:        CodeSize,
		Mono:        true,
		Align:       AlignLeft,
		IndentLeft:  CodeIndent,
		IndentRight: CodeIndent,
		Shaded:      true,
		Fill:        fill,
	}
}

// runs converts the inline children of n.
func runs(n *document.Node) []Run {
	var out []Run
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		if c.Kind != document.KindText {
			if text := document.FlattenText(c); text != "" {
				out = append(out, Run{Text: sanitize.Text(text)})
			}
			continue
		}
		out = append(out, Run{
			Text:   sanitize.Text(c.Text),
			Bold:   c.Bold,
			Italic: c.Italic,
			Mono:   c.Code,
			Strike: c.Strike,
		})
	}
	return out
}

func (x *exporter) list(n *document.Node, sc scope) error {
	inner := sc
	inner.depth++
	inner.indent = sc.indent + ListIndent
	index := 0
	for _, item := range n.Children {
		if item == nil || item.Kind != document.KindListItem {
			if item != nil {
				x.note(document.Note(document.DiagMalformedNode, "%s: list child is not a list item", item.Kind))
			}
			continue
		}
		marker := Run{Text: document.ListMarker(n.Ordered, index) + " "}
		index++

		children := item.Children
		first := []Run{marker}
		if len(children) > 0 && children[0] != nil && children[0].Kind == document.KindParagraph {
			first = append(first, runs(children[0])...)
			children = children[1:]
		}
		x.paragraph(Style{Size: BodySize, Align: AlignLeft, Hanging: ListIndent}, first, inner)

		for _, c := range children {
			if err := x.block(c, inner); err != nil {
				return err
			}
		}
	}
	return nil
}

func (x *exporter) table(n *document.Node, sc scope) {
	var rows []Row
	body := 0
	for _, row := range n.Children {
		if row == nil || row.Kind != document.KindTableRow || len(row.Children) == 0 {
			if row != nil {
				x.note(document.Note(document.DiagMalformedNode, "%s: table row without cells", row.Kind))
			}
			continue
		}
		header := document.IsHeaderRow(row)
		r := Row{Header: header, Shade: document.RowShading(body, header)}
		if !header {
			body++
		}
		for _, c := range row.Children {
			var cell Cell
			if c != nil {
				cell.Runs = runs(c)
				if header {
					for i := range cell.Runs {
						cell.Runs[i].Bold = true
					}
				}
			}
			r.Cells = append(r.Cells, cell)
		}
		rows = append(rows, r)
	}
	if len(rows) == 0 {
		x.note(document.Note(document.DiagMalformedNode, "%s: table without rows", n.Kind))
		return
	}
	x.acc.Append(Block{Kind: BlockTable, Style: Style{Size: BodySize, IndentLeft: sc.indent}, Rows: rows})
}

func (x *exporter) fallback(n *document.Node, sc scope) {
	d := n.Diagram
	if d == nil {
		x.note(document.Note(document.DiagMalformedNode, "%s: fallback without payload", n.Kind))
		return
	}
	x.diagrams++
	x.paragraph(Style{Size: NoteSize, Italic: true, Align: AlignLeft},
		[]Run{{Text: d.FallbackCaption()}}, sc)
	x.paragraph(codeStyle(document.FallbackFill), []Run{{Text: sanitize.Text(d.Raw), Mono: true}}, sc)
}

func (x *exporter) centeredNote(text string, sc scope) {
	x.paragraph(Style{Size: NoteSize, Italic: true, Align: AlignCenter}, []Run{{Text: text}}, sc)
}

func (x *exporter) artifact(n *document.Node, sc scope) error {
	d := n.Diagram
	if d == nil || d.Markup == "" {
		x.note(document.Note(document.DiagMalformedNode, "%s: artifact without markup", n.Kind))
		return nil
	}
	index := x.diagrams
	x.diagrams++

	w, h := x.size(d.Width*layout.PxToMM, d.Height*layout.PxToMM, sc)
	png, err := x.rasterize(d.Markup, w, h)
	if err != nil {
		if cerr := x.ctx.Err(); cerr != nil {
			return cerr
		}
		x.note(document.Diagnostic{
			Kind:     document.DiagRasterization,
			Block:    index,
			Source:   d.Source,
			Renderer: d.Renderer,
			Message:  err.Error(),
		})
		x.centeredNote(fmt.Sprintf("[Диаграмма %s: не удалось растрировать]", d.Source), sc)
		return nil
	}
	x.acc.Append(Block{
		Kind:  BlockImage,
		Style: Style{Align: AlignCenter, IndentLeft: sc.indent},
		Image: &Image{Data: png, Format: "PNG", Width: w, Height: h, ID: d.ID},
	})
	return nil
}

// size keeps intrinsic dimensions unless they exceed the available width.
func (x *exporter) size(w, h float64, sc scope) (float64, float64) {
	if w <= 0 || h <= 0 {
		w, h = 160, 80
	}
	if maxW := x.opts.ContentWidth - sc.indent; w > maxW && maxW > 0 {
		h, w = h*maxW/w, maxW
	}
	return w, h
}

var errNoRasterizer = errors.New("no rasterizer configured")

func (x *exporter) rasterize(markup string, w, h float64) ([]byte, error) {
	if x.opts.Rasterizer == nil {
		return nil, errNoRasterizer
	}
	px, py := raster.PixelSize(w, h, x.opts.DPI)
	return x.opts.Rasterizer.Rasterize(x.ctx, markup, px, py)
}

func (x *exporter) image(n *document.Node, sc scope) error {
	img, err := x.loadImage(n, sc)
	if err != nil {
		if cerr := x.ctx.Err(); cerr != nil {
			return cerr
		}
		x.note(document.Note(document.DiagImageUnavailable, "%s: %v", n.Src, err))
		alt := n.Alt
		if alt == "" {
			alt = n.Src
		}
		x.centeredNote("[Изображение: "+sanitize.Text(alt)+"]", sc)
		return nil
	}
	x.acc.Append(Block{Kind: BlockImage, Style: Style{Align: AlignCenter, IndentLeft: sc.indent}, Image: img})
	return nil
}

func (x *exporter) loadImage(n *document.Node, sc scope) (*Image, error) {
	path, err := fileutil.ResolveImagePath(n.Src, fileutil.ImagePolicy{
		Dir:           x.opts.ImageDir,
		AllowAbsolute: x.opts.AllowAbsoluteImages,
	})
	if err != nil {
		return nil, err
	}
	data, info, err := raster.ReadImage(path)
	if err != nil {
		return nil, err
	}
	if info.IsVector() {
		iw, ih, err := diagram.IntrinsicSize(string(data))
		if err != nil {
			return nil, err
		}
		w, h := x.size(iw*layout.PxToMM, ih*layout.PxToMM, sc)
		png, err := x.rasterize(string(data), w, h)
		if err != nil {
			return nil, err
		}
		return &Image{Data: png, Format: "PNG", Width: w, Height: h, ID: n.Src}, nil
	}
	w, h := x.size(float64(info.Width)*layout.PxToMM, float64(info.Height)*layout.PxToMM, sc)
	return &Image{Data: data, Format: info.Format, Width: w, Height: h, ID: n.Src}, nil
}
