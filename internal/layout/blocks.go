package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/alnah/go-md2doc/internal/diagram"
	"github.com/alnah/go-md2doc/internal/document"
	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/raster"
	"github.com/alnah/go-md2doc/internal/sanitize"
)

// box is the look of a shaded monospace block.
type box struct {
	font        Font
	fill        [3]int
	stroke      [3]int
	strokeWidth float64
}

func (r *run) code(n *document.Node, f frame) {
	ft := mono(CodeSize)
	if n.Compact {
		ft = mono(CompactSize)
	}
	r.boxed(sanitize.Lines(sanitize.Text(n.Text)), f, box{font: ft, fill: document.CodeFill, stroke: document.BorderColor, strokeWidth: BorderWidth})
	r.gap(f, BlockGap)
}

func (r *run) fallback(n *document.Node, f frame) {
	d := n.Diagram
	if d == nil {
		r.malformed(n, "fallback without payload")
		return
	}
	r.diagrams++
	caption := d.FallbackCaption()
	r.lines(r.wrapSpans([]span{{text: caption, font: sans(NoteSize).italic()}}, f.width), f, MutedColor)
	r.boxed(sanitize.Lines(sanitize.Text(d.Raw)), f, box{
		font:        mono(CodeSize),
		fill:        document.FallbackFill,
		stroke:      FallbackStroke,
		strokeWidth: FallbackBorder,
	})
	r.gap(f, BlockGap)
}

// boxed draws source lines in a shaded, bordered box. Lines wider than the
// box wrap between grapheme clusters. The box stays on one page when it
// fits one; otherwise it is split between lines.
func (r *run) boxed(src []string, f frame, b box) {
	inner := f.width - 2*CodePadding
	var vis []string
	for _, l := range src {
		if l == "" {
			vis = append(vis, "")
			continue
		}
		pieces, _ := breakGraphemes(l, inner, func(s string) (float64, error) {
			return r.m.width(s, b.font), nil
		})
		vis = append(vis, pieces...)
	}
	if len(vis) == 0 {
		vis = []string{""}
	}

	lh := b.font.LineHeight()
	total := float64(len(vis))*lh + 2*CodePadding
	if total <= r.cur.ContentHeight()+epsilon {
		r.reserve(total)
		r.boxChunk(vis, f, b)
		return
	}

	for len(vis) > 0 {
		n := int(math.Floor((r.cur.Remaining() - 2*CodePadding + epsilon) / lh))
		if n < 1 {
			r.breakPage()
			continue
		}
		n = min(n, len(vis))
		r.boxChunk(vis[:n], f, b)
		vis = vis[n:]
		if len(vis) > 0 {
			r.breakPage()
		}
	}
}

func (r *run) boxChunk(vis []string, f frame, b box) {
	lh := b.font.LineHeight()
	h := float64(len(vis))*lh + 2*CodePadding
	y := r.place(f, h)
	r.emit(Op{
		Kind: OpRect, X: f.left, Y: y, W: f.width, H: h,
		Fill: b.fill, Filled: true,
		Color: b.stroke, Stroked: true, LineWidth: b.strokeWidth,
	})
	for i, l := range vis {
		if l == "" {
			continue
		}
		r.emit(Op{
			Kind: OpText,
			X:    f.left + CodePadding,
			Y:    y + CodePadding + float64(i)*lh,
			W:    f.width - 2*CodePadding,
			H:    lh,
			Text: l, Font: b.font, Color: TextColor,
		})
	}
}

// cell is one wrapped table cell.
type cell struct {
	lines []line
}

func (r *run) table(n *document.Node, f frame) {
	var rows []*document.Node
	cols := 0
	for _, row := range n.Children {
		if row == nil || row.Kind != document.KindTableRow || len(row.Children) == 0 {
			if row != nil {
				r.malformed(row, "table row without cells")
			}
			continue
		}
		rows = append(rows, row)
		cols = max(cols, len(row.Children))
	}
	if cols == 0 {
		r.malformed(n, "table without rows")
		return
	}

	colW := f.width / float64(cols)
	textW := colW - 2*CellPaddingX
	body := 0
	for _, row := range rows {
		header := document.IsHeaderRow(row)
		base := sans(TableSize)
		if header {
			base = base.bold()
		}
		cells := make([]cell, len(row.Children))
		for i, c := range row.Children {
			if c == nil {
				continue
			}
			if c.Kind != document.KindTableCell {
				r.malformed(c, "table row child is not a cell")
			}
			cells[i] = cell{lines: r.wrapSpans(spans(c, base, false), textW)}
		}

		shade := document.RowShading(body, header)
		if !header {
			body++
		}
		r.tableRow(cells, f, colW, base, shade)
	}
	r.gap(f, BlockGap)
}

func (r *run) tableRow(cells []cell, f frame, colW float64, base Font, shade document.Shade) {
	lh := base.LineHeight()
	most := 0
	for _, c := range cells {
		most = max(most, len(c.lines))
	}
	rowH := max(TableRowMinHeight, float64(most)*lh+2*CellPaddingY)

	if rowH <= r.cur.ContentHeight()+epsilon {
		r.reserve(rowH)
		r.rowChunk(cells, 0, most, rowH, f, colW, lh, shade)
		return
	}

	// Taller than a page: continue the row on following pages.
	start := 0
	for start < most {
		n := int(math.Floor((r.cur.Remaining() - 2*CellPaddingY + epsilon) / lh))
		if n < 1 {
			r.breakPage()
			continue
		}
		n = min(n, most-start)
		r.rowChunk(cells, start, start+n, float64(n)*lh+2*CellPaddingY, f, colW, lh, shade)
		start += n
		if start < most {
			r.breakPage()
		}
	}
}

func (r *run) rowChunk(cells []cell, from, to int, h float64, f frame, colW, lh float64, shade document.Shade) {
	y := r.place(f, h)
	for i, c := range cells {
		x := f.left + float64(i)*colW
		op := Op{Kind: OpRect, X: x, Y: y, W: colW, H: h, Color: document.BorderColor, Stroked: true, LineWidth: BorderWidth}
		switch shade {
		case document.ShadeHeader:
			op.Fill, op.Filled = document.HeaderFill, true
		case document.ShadeStripe:
			op.Fill, op.Filled = document.StripeFill, true
		}
		r.emit(op)

		for li := from; li < to && li < len(c.lines); li++ {
			tx := x + CellPaddingX
			ty := y + CellPaddingY + float64(li-from)*lh
			for _, s := range c.lines[li].spans {
				r.emit(Op{Kind: OpText, X: tx, Y: ty, W: s.width, H: lh, Text: s.text, Font: s.font, Strike: s.strike, Color: TextColor})
				tx += s.width
			}
		}
	}
}

// fit scales a w by h box to the frame width, then shrinks it uniformly to
// one page if needed.
func (r *run) fit(w, h, maxW float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		w, h = 2, 1
	}
	outW := maxW
	outH := maxW * h / w
	if ch := r.cur.ContentHeight(); outH > ch {
		s := ch / outH
		outW, outH = outW*s, ch
	}
	return outW, outH
}

func (r *run) artifact(n *document.Node, f frame) error {
	d := n.Diagram
	if d == nil || d.Markup == "" {
		r.malformed(n, "artifact without markup")
		return nil
	}
	index := r.diagrams
	r.diagrams++

	w, h := r.fit(d.Width, d.Height, f.width)
	png, err := r.rasterize(d.Markup, w, h)
	if err != nil {
		if cerr := r.ctx.Err(); cerr != nil {
			return cerr
		}
		r.note(document.Diagnostic{
			Kind:     document.DiagRasterization,
			Block:    index,
			Source:   d.Source,
			Renderer: d.Renderer,
			Message:  err.Error(),
		})
		r.placeholderLine(fmt.Sprintf("[Диаграмма %s: не удалось растрировать]", d.Source), f)
		return nil
	}
	r.picture(png, "PNG", d.ID, w, h, f)
	return nil
}

var errNoRasterizer = errors.New("no rasterizer configured")

func (r *run) rasterize(markup string, w, h float64) ([]byte, error) {
	if r.e.rasterizer == nil {
		return nil, errNoRasterizer
	}
	px, py := raster.PixelSize(w, h, r.e.dpi)
	return r.e.rasterizer.Rasterize(r.ctx, markup, px, py)
}

func (r *run) image(n *document.Node, f frame) error {
	data, format, w, h, err := r.loadImage(n)
	if err != nil {
		if cerr := r.ctx.Err(); cerr != nil {
			return cerr
		}
		r.note(document.Note(document.DiagImageUnavailable, "%s: %v", n.Src, err))
		alt := n.Alt
		if alt == "" {
			alt = n.Src
		}
		r.placeholderLine("[Изображение: "+sanitize.Text(alt)+"]", f)
		return nil
	}
	r.picture(data, format, n.Src, w, h, f)
	return nil
}

// loadImage reads a local image and returns its bytes, gofpdf type and
// size in millimetres.
func (r *run) loadImage(n *document.Node) ([]byte, string, float64, float64, error) {
	path, err := fileutil.ResolveImagePath(n.Src, r.e.images)
	if err != nil {
		return nil, "", 0, 0, err
	}
	data, info, err := raster.ReadImage(path)
	if err != nil {
		return nil, "", 0, 0, err
	}

	if info.IsVector() {
		iw, ih, err := diagram.IntrinsicSize(string(data))
		if err != nil {
			return nil, "", 0, 0, err
		}
		w, h := r.shrink(iw*PxToMM, ih*PxToMM, r.body.width)
		png, err := r.rasterize(string(data), w, h)
		if err != nil {
			return nil, "", 0, 0, err
		}
		return png, "PNG", w, h, nil
	}

	w, h := r.shrink(float64(info.Width)*PxToMM, float64(info.Height)*PxToMM, r.body.width)
	return data, info.Format, w, h, nil
}

// shrink keeps natural size unless the picture exceeds maxW or a page.
func (r *run) shrink(w, h, maxW float64) (float64, float64) {
	if w > maxW {
		h, w = h*maxW/w, maxW
	}
	if ch := r.cur.ContentHeight(); h > ch {
		w, h = w*ch/h, ch
	}
	return w, h
}

func (r *run) picture(data []byte, format, id string, w, h float64, f frame) {
	if w > f.width {
		h, w = h*f.width/w, f.width
	}
	r.reserve(h)
	y := r.place(f, h)
	r.emit(Op{
		Kind: OpImage, X: f.left + (f.width-w)/2, Y: y, W: w, H: h,
		Image: data, ImageType: format, ImageID: id,
	})
	r.gap(f, BlockGap)
}

func (r *run) placeholderLine(text string, f frame) {
	r.lines(r.wrapSpans([]span{{text: text, font: sans(BodySize).italic()}}, f.width), f, MutedColor)
	r.gap(f, ParagraphGap)
}
