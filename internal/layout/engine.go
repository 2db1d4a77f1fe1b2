package layout

import (
	"context"
	"fmt"

	"github.com/alnah/go-md2doc/internal/document"
	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/raster"
)

// Engine paginates document trees. An Engine holds configuration only and
// may serve concurrent Layout calls if its Measurer and Rasterizer do.
type Engine struct {
	measurer   Measurer
	rasterizer raster.Rasterizer
	images     fileutil.ImagePolicy
	title      *document.Metadata
	dpi        float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithMeasurer sets the text measurer. Without one the engine estimates
// widths and marks every document degraded.
func WithMeasurer(m Measurer) Option {
	return func(e *Engine) {
		e.measurer = m
	}
}

// WithRasterizer sets how diagram and SVG image markup becomes bitmaps.
func WithRasterizer(r raster.Rasterizer) Option {
	return func(e *Engine) {
		e.rasterizer = r
	}
}

// WithImageDir resolves relative image references against dir.
func WithImageDir(dir string) Option {
	return func(e *Engine) {
		e.images.Dir = dir
	}
}

// WithAbsoluteImages lets absolute and file:// image references read the
// local disk. Leave it off for untrusted markdown.
func WithAbsoluteImages(allow bool) Option {
	return func(e *Engine) {
		e.images.AllowAbsolute = allow
	}
}

// WithTitle draws a title block with the document's metadata at the top of
// the first page.
func WithTitle(meta *document.Metadata) Option {
	return func(e *Engine) {
		e.title = meta
	}
}

// WithDPI sets the rasterization resolution.
func WithDPI(dpi float64) Option {
	return func(e *Engine) {
		if dpi > 0 {
			e.dpi = dpi
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{dpi: RasterDPI}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout paginates root. The only errors are an invalid spec and context
// cancellation: shape problems become diagnostics.
func (e *Engine) Layout(ctx context.Context, root *document.Node, spec PageSpec) (*Document, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &run{
		ctx:  ctx,
		e:    e,
		cur:  NewPageCursor(spec),
		doc:  &Document{Spec: spec, Pages: []*Page{{}}},
		body: frame{left: spec.Margin, width: spec.ContentWidth()},
	}
	r.m = &measure{m: e.measurer, onDegrade: r.degraded}
	if e.measurer == nil {
		r.m.degrade("no measurer configured")
	}

	if e.title != nil {
		r.titleBlock(e.title)
	}
	if root != nil {
		for _, b := range root.Children {
			if err := r.block(b, r.body); err != nil {
				return nil, err
			}
		}
	}
	return r.doc, nil
}

// frame is the horizontal band blocks are laid out in.
type frame struct {
	left  float64
	width float64
	// x of each enclosing blockquote rule, outermost first.
	quotes []float64
	italic bool
	tight  bool
}

func (f frame) indent(d float64) frame {
	f.left += d
	f.width -= d
	return f
}

// run is the state of one Layout call.
type run struct {
	ctx  context.Context
	e    *Engine
	cur  *PageCursor
	doc  *Document
	m    *measure
	body frame

	diagrams int
	marker   *marker
}

// marker is a list marker waiting for the first line of its item.
type marker struct {
	text string
	x    float64
}

func (r *run) page() *Page { return r.doc.Pages[r.cur.PageIndex] }

func (r *run) breakPage() {
	r.cur.Break()
	r.doc.Pages = append(r.doc.Pages, &Page{})
}

// reserve starts a new page unless h fits or the page is still empty.
func (r *run) reserve(h float64) {
	if !r.cur.Fits(h) && !r.cur.AtTop() {
		r.breakPage()
	}
}

// place consumes h on the current page inside f and returns the top y.
// Callers reserve first, so h always fits.
func (r *run) place(f frame, h float64) float64 {
	if h > r.cur.Remaining() {
		h = r.cur.Remaining()
	}
	y := r.cur.Advance(h)
	r.page().Used += h
	for _, x := range f.quotes {
		r.emit(Op{Kind: OpLine, X: x, Y: y, H: h, Color: document.QuoteRule, LineWidth: QuoteRuleWidth})
	}
	return y
}

// gap adds vertical space after a block. It never starts a page and is
// dropped at the top of one.
func (r *run) gap(f frame, h float64) {
	if r.cur.AtTop() {
		return
	}
	r.place(f, min(h, r.cur.Remaining()))
}

func (r *run) emit(op Op) {
	p := r.page()
	p.Ops = append(p.Ops, op)
}

func (r *run) note(d document.Diagnostic) {
	r.doc.Diagnostics = append(r.doc.Diagnostics, d)
}

func (r *run) degraded(reason string) {
	r.doc.Degraded = true
	r.note(document.Note(document.DiagMeasurementDegraded, "%s", reason))
}

func (r *run) malformed(n *document.Node, format string, args ...any) {
	r.note(document.Note(document.DiagMalformedNode, "%s: %s", n.Kind, fmt.Sprintf(format, args...)))
}

// block lays out one block node. Only context errors are returned.
func (r *run) block(n *document.Node, f frame) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	if n == nil {
		return nil
	}

	switch n.Kind {
	case document.KindHeading:
		r.heading(n, f)
	case document.KindParagraph:
		r.paragraph(n, f)
	case document.KindCodeBlock:
		r.code(n, f)
	case document.KindList:
		return r.list(n, f)
	case document.KindBlockquote:
		inner := f.indent(QuoteIndent)
		inner.quotes = append(append([]float64(nil), f.quotes...), f.left+QuoteIndent/3)
		inner.italic = true
		for _, c := range n.Children {
			if err := r.block(c, inner); err != nil {
				return err
			}
		}
		r.gap(f, ParagraphGap)
	case document.KindTable:
		r.table(n, f)
	case document.KindImage:
		return r.image(n, f)
	case document.KindDiagramArtifact:
		return r.artifact(n, f)
	case document.KindDiagramFallback:
		r.fallback(n, f)
	case document.KindDiagramPlaceholder:
		r.malformed(n, "diagram was never substituted")
		r.fallback(n, f)
	case document.KindRule:
		r.rule(f)
	case document.KindText:
		r.paragraph(&document.Node{Kind: document.KindParagraph, Children: []*document.Node{n}}, f)
	default:
		text := document.FlattenText(n)
		r.malformed(n, "unexpected at block level")
		if text != "" {
			r.paragraph(document.NewParagraph(text), f)
		}
	}
	return nil
}

func (r *run) titleBlock(meta *document.Metadata) {
	f := r.body
	title := meta.Title
	if title == "" {
		title = document.DefaultTitle
	}
	r.lines(r.wrapSpans([]span{{text: title, font: sans(TitleSize).bold()}}, f.width), f, TextColor)
	if meta.Author != "" {
		r.lines(r.wrapSpans([]span{{text: "Автор: " + meta.Author, font: sans(MetaSize)}}, f.width), f, MutedColor)
	}
	if meta.Date != "" {
		r.lines(r.wrapSpans([]span{{text: "Дата: " + meta.Date, font: sans(MetaSize)}}, f.width), f, MutedColor)
	}
	r.gap(f, TitleGapAfter)
}

func (r *run) rule(f frame) {
	h := min(RuleHeight, r.cur.Remaining())
	if h <= 0 {
		return
	}
	y := r.place(f, h)
	r.emit(Op{Kind: OpLine, X: f.left, Y: y + h/2, W: f.width, Color: RuleColor, LineWidth: BorderWidth})
}
