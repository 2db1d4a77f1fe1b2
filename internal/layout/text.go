package layout

import (
	"strings"
	"unicode"

	"github.com/alnah/go-md2doc/internal/document"
	"github.com/alnah/go-md2doc/internal/sanitize"
)

// measure wraps the configured Measurer. The first failure switches the
// whole run to Estimate so one document never mixes metrics.
type measure struct {
	m         Measurer
	est       Estimate
	failed    bool
	onDegrade func(reason string)
}

func (ms *measure) degrade(reason string) {
	if ms.failed {
		return
	}
	ms.failed = true
	if ms.onDegrade != nil {
		ms.onDegrade(reason)
	}
}

func (ms *measure) width(text string, f Font) float64 {
	if ms.m != nil && !ms.failed {
		w, err := ms.m.Width(text, f)
		if err == nil {
			return w
		}
		ms.degrade("measuring text: " + err.Error())
	}
	w, _ := ms.est.Width(text, f)
	return w
}

func (ms *measure) wrap(text string, f Font, maxWidth float64) []string {
	if ms.m != nil && !ms.failed {
		ls, err := ms.m.Wrap(text, f, maxWidth)
		if err == nil {
			return ls
		}
		ms.degrade("wrapping text: " + err.Error())
	}
	ls, _ := ms.est.Wrap(text, f, maxWidth)
	return ls
}

// span is a run of text in one font. width is filled in by wrapSpans.
type span struct {
	text   string
	font   Font
	strike bool
	width  float64
}

type line struct {
	spans  []span
	width  float64
	height float64
}

// token is a word plus whether whitespace preceded it.
type token struct {
	text    string
	font    Font
	strike  bool
	space   bool
	newline bool
}

// spans converts the inline runs of n to spans based on base.
func spans(n *document.Node, base Font, italic bool) []span {
	var out []span
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		if c.Kind != document.KindText {
			if text := document.FlattenText(c); text != "" {
				out = append(out, span{text: sanitize.Text(text), font: base})
			}
			continue
		}
		f := base
		if c.Code {
			f = mono(base.Size * 0.9)
		}
		f.Bold = f.Bold || c.Bold
		f.Italic = f.Italic || c.Italic || italic
		out = append(out, span{text: sanitize.Text(c.Text), font: f, strike: c.Strike})
	}
	return out
}

func tokenize(in []span) []token {
	var toks []token
	for _, s := range in {
		space := false
		var word strings.Builder
		flush := func() {
			if word.Len() == 0 {
				return
			}
			toks = append(toks, token{text: word.String(), font: s.font, strike: s.strike, space: space})
			word.Reset()
			space = false
		}
		for _, r := range s.text {
			switch {
			case r == '\n':
				flush()
				toks = append(toks, token{newline: true, font: s.font})
				space = false
			case unicode.IsSpace(r):
				flush()
				space = true
			default:
				word.WriteRune(r)
			}
		}
		flush()
		if space {
			// Trailing space carries to the next span's first word.
			toks = append(toks, token{space: true, font: s.font})
		}
	}
	return toks
}

// uniform reports whether every span shares one font and strike.
func uniform(in []span) bool {
	for _, s := range in[1:] {
		if s.font != in[0].font || s.strike != in[0].strike {
			return false
		}
	}
	return true
}

// wrapPlain wraps spans set in one font with the measurer's own Wrap.
func (r *run) wrapPlain(in []span, maxWidth float64) []line {
	var text strings.Builder
	for _, s := range in {
		text.WriteString(s.text)
	}
	f, strike := in[0].font, in[0].strike
	lh := f.LineHeight()

	var out []line
	// A trailing newline ends the last line rather than opening another.
	for _, l := range r.m.wrap(strings.TrimSuffix(text.String(), "\n"), f, maxWidth) {
		if l == "" {
			out = append(out, line{height: lh})
			continue
		}
		w := r.m.width(l, f)
		out = append(out, line{
			spans:  []span{{text: l, font: f, strike: strike, width: w}},
			width:  w,
			height: lh,
		})
	}
	if len(out) == 0 {
		out = append(out, line{height: lh})
	}
	return out
}

// wrapSpans greedily fills lines of at most maxWidth. Single-font input goes
// through the measurer's Wrap; mixed fonts are fitted token by token.
func (r *run) wrapSpans(in []span, maxWidth float64) []line {
	if len(in) > 0 && uniform(in) {
		return r.wrapPlain(in, maxWidth)
	}
	var out []line
	var cur line
	pendingSpace := false
	var spaceFont Font

	flush := func() {
		out = append(out, cur)
		cur = line{}
		pendingSpace = false
	}
	add := func(text string, t token, w float64) {
		if n := len(cur.spans); n > 0 && cur.spans[n-1].font == t.font && cur.spans[n-1].strike == t.strike {
			cur.spans[n-1].text += text
			cur.spans[n-1].width += w
		} else {
			cur.spans = append(cur.spans, span{text: text, font: t.font, strike: t.strike, width: w})
		}
		cur.width += w
		cur.height = max(cur.height, t.font.LineHeight())
	}

	for _, t := range tokenize(in) {
		if t.newline {
			if cur.height == 0 {
				cur.height = t.font.LineHeight()
			}
			flush()
			continue
		}
		if t.text == "" {
			if t.space {
				pendingSpace, spaceFont = true, t.font
			}
			continue
		}
		if t.space {
			pendingSpace, spaceFont = true, t.font
		}

		w := r.m.width(t.text, t.font)
		sp := 0.0
		if pendingSpace && len(cur.spans) > 0 {
			sp = r.m.width(" ", spaceFont)
		}
		if len(cur.spans) > 0 && cur.width+sp+w > maxWidth+epsilon {
			flush()
			sp = 0
		}
		if w > maxWidth+epsilon {
			pieces, _ := breakGraphemes(t.text, maxWidth, func(s string) (float64, error) {
				return r.m.width(s, t.font), nil
			})
			for i, p := range pieces {
				add(p, t, r.m.width(p, t.font))
				if i < len(pieces)-1 {
					flush()
				}
			}
			pendingSpace = false
			continue
		}
		if sp > 0 {
			add(" ", token{font: spaceFont, strike: t.strike}, sp)
		}
		add(t.text, t, w)
		pendingSpace = false
	}
	if len(cur.spans) > 0 || len(out) == 0 {
		if cur.height == 0 && len(in) > 0 {
			cur.height = in[0].font.LineHeight()
		}
		out = append(out, cur)
	}
	return out
}

// lines places wrapped lines one by one, breaking the page whenever the
// next line does not fit.
func (r *run) lines(ls []line, f frame, color [3]int) {
	for _, l := range ls {
		h := l.height
		if h <= 0 {
			h = sans(BodySize).LineHeight()
		}
		r.reserve(h)
		y := r.place(f, h)
		if r.marker != nil {
			r.emit(Op{Kind: OpText, X: r.marker.x, Y: y, W: ListIndent, H: h, Text: r.marker.text, Font: sans(BodySize), Color: color})
			r.marker = nil
		}
		x := f.left
		for _, s := range l.spans {
			r.emit(Op{Kind: OpText, X: x, Y: y, W: s.width, H: h, Text: s.text, Font: s.font, Strike: s.strike, Color: color})
			x += s.width
		}
	}
}

func (r *run) paragraph(n *document.Node, f frame) {
	ss := spans(n, sans(BodySize), f.italic)
	if len(ss) == 0 && r.marker == nil {
		return
	}
	r.lines(r.wrapSpans(ss, f.width), f, TextColor)
	if f.tight {
		r.gap(f, ParagraphGap/3)
		return
	}
	r.gap(f, ParagraphGap)
}

func (r *run) heading(n *document.Node, f frame) {
	base := sans(HeadingSize(n.Level)).bold()
	ls := r.wrapSpans(spans(n, base, false), f.width)

	if n.Level <= 1 {
		if !r.cur.AtTop() {
			r.breakPage()
		}
	} else {
		r.gap(f, HeadingGapBefore)
		total := 0.0
		for _, l := range ls {
			total += l.height
		}
		if total <= r.cur.ContentHeight() {
			r.reserve(total)
		}
	}
	r.lines(ls, f, TextColor)
	r.gap(f, HeadingGapAfter)
}

func (r *run) list(n *document.Node, f frame) error {
	inner := f.indent(ListIndent)
	inner.tight = true
	index := 0
	for _, item := range n.Children {
		if item == nil || item.Kind != document.KindListItem {
			if item != nil {
				r.malformed(item, "list child is not a list item")
			}
			continue
		}
		m := &marker{text: document.ListMarker(n.Ordered, index), x: f.left}
		index++

		children := item.Children
		if len(children) == 0 || children[0] == nil || children[0].Kind != document.KindParagraph {
			// The marker gets a line of its own.
			r.marker = m
			r.lines([]line{{height: sans(BodySize).LineHeight()}}, inner, TextColor)
		} else {
			r.marker = m
		}
		for _, c := range children {
			if err := r.block(c, inner); err != nil {
				return err
			}
		}
		r.marker = nil
	}
	if !f.tight {
		r.gap(f, ParagraphGap)
	}
	return nil
}
