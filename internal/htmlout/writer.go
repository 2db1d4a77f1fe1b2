package htmlout

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-md2doc/internal/assets"
	"github.com/alnah/go-md2doc/internal/document"
	"github.com/alnah/go-md2doc/internal/pipeline"
	"github.com/alnah/go-md2doc/internal/sanitize"
)

// cssWriter is implemented by highlighters that ship their own stylesheet.
type cssWriter interface {
	WriteCSS(w io.Writer) error
}

// Options configures Write.
type Options struct {
	// Assets supplies the page skeleton and stylesheet. Nil uses the
	// embedded ones.
	Assets assets.AssetLoader
	// Highlighter colors code blocks. Nil renders plain pre blocks.
	Highlighter pipeline.Highlighter
	TitleBlock  bool
}

// Write renders root into an HTML page. Malformed nodes are reported as
// diagnostics and rendered as best they can be.
func Write(ctx context.Context, root *document.Node, meta document.Metadata, opts Options) ([]byte, []document.Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	loader := opts.Assets
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}

	page, err := loader.LoadTemplate(assets.PreviewTemplate)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	head := find(doc, func(n *html.Node) bool { return n.DataAtom == atom.Head })
	content := find(doc, func(n *html.Node) bool { return attr(n, "id") == "content" })
	if head == nil || content == nil {
		return nil, nil, fmt.Errorf("%w: needs a head and an element with id \"content\"", ErrTemplate)
	}

	title := meta.Title
	if title == "" {
		title = document.DefaultTitle
	}
	if t := find(head, func(n *html.Node) bool { return n.DataAtom == atom.Title }); t != nil {
		removeChildren(t)
		t.AppendChild(text(title))
	} else {
		head.AppendChild(elem(atom.Title, text(title)))
	}

	css, err := stylesheet(loader, opts.Highlighter)
	if err != nil {
		return nil, nil, err
	}
	head.AppendChild(elem(atom.Style, text(css)))

	w := &writer{ctx: ctx, hl: opts.Highlighter}
	if opts.TitleBlock {
		content.AppendChild(titleBlock(title, meta))
	}
	if root != nil {
		for _, b := range root.Children {
			if err := w.block(content, b); err != nil {
				return nil, nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), w.diags, nil
}

func stylesheet(loader assets.AssetLoader, hl pipeline.Highlighter) (string, error) {
	css, err := loader.LoadStyle(assets.PreviewStyle)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	cw, ok := hl.(cssWriter)
	if !ok {
		return css, nil
	}
	var b strings.Builder
	b.WriteString(css)
	b.WriteByte('\n')
	if err := cw.WriteCSS(&b); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return b.String(), nil
}

func titleBlock(title string, meta document.Metadata) *html.Node {
	h := elem(atom.Header, elem(atom.H1, text(title)))
	h.Attr = []html.Attribute{{Key: "class", Val: "title-block"}}
	if meta.Author != "" {
		h.AppendChild(elem(atom.P, text("Автор: "+meta.Author)))
	}
	if meta.Date != "" {
		h.AppendChild(elem(atom.P, text("Дата: "+meta.Date)))
	}
	return h
}

type writer struct {
	ctx      context.Context
	hl       pipeline.Highlighter
	diags    []document.Diagnostic
	diagrams int
}

func (w *writer) note(d document.Diagnostic) {
	w.diags = append(w.diags, d)
}

var headings = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func (w *writer) block(parent *html.Node, n *document.Node) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	if n == nil {
		return nil
	}

	switch n.Kind {
	case document.KindHeading:
		level := min(max(n.Level, 1), 6)
		parent.AppendChild(elem(headings[level-1], inline(n)...))

	case document.KindParagraph:
		parent.AppendChild(elem(atom.P, inline(n)...))

	case document.KindCodeBlock:
		return w.code(parent, n)

	case document.KindList:
		tag := atom.Ul
		if n.Ordered {
			tag = atom.Ol
		}
		list := elem(tag)
		for _, item := range n.Children {
			if item == nil || item.Kind != document.KindListItem {
				if item != nil {
					w.note(document.Note(document.DiagMalformedNode, "%s: list child is not a list item", item.Kind))
				}
				continue
			}
			li := elem(atom.Li)
			for _, c := range item.Children {
				if err := w.block(li, c); err != nil {
					return err
				}
			}
			list.AppendChild(li)
		}
		parent.AppendChild(list)

	case document.KindBlockquote:
		q := elem(atom.Blockquote)
		for _, c := range n.Children {
			if err := w.block(q, c); err != nil {
				return err
			}
		}
		parent.AppendChild(q)

	case document.KindTable:
		w.table(parent, n)

	case document.KindImage:
		img := elem(atom.Img)
		img.Attr = []html.Attribute{{Key: "src", Val: n.Src}, {Key: "alt", Val: sanitize.Text(n.Alt)}}
		parent.AppendChild(elem(atom.P, img))

	case document.KindDiagramArtifact:
		w.artifact(parent, n)

	case document.KindDiagramFallback:
		w.fallback(parent, n)

	case document.KindDiagramPlaceholder:
		w.note(document.Note(document.DiagMalformedNode, "%s: diagram was never substituted", n.Kind))
		w.fallback(parent, n)

	case document.KindRule:
		parent.AppendChild(elem(atom.Hr))

	default:
		if s := document.FlattenText(n); s != "" {
			parent.AppendChild(elem(atom.P, text(sanitize.Text(s))))
		}
	}
	return nil
}

// inline converts the text runs of n.
func inline(n *document.Node) []*html.Node {
	var out []*html.Node
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		if c.Kind != document.KindText {
			if s := document.FlattenText(c); s != "" {
				out = append(out, text(sanitize.Text(s)))
			}
			continue
		}
		node := text(sanitize.Text(c.Text))
		if c.Code {
			node = elem(atom.Code, node)
		}
		if c.Strike {
			node = elem(atom.Del, node)
		}
		if c.Italic {
			node = elem(atom.Em, node)
		}
		if c.Bold {
			node = elem(atom.Strong, node)
		}
		out = append(out, node)
	}
	return out
}

func (w *writer) code(parent *html.Node, n *document.Node) error {
	src := sanitize.Text(n.Text)
	if w.hl != nil && !n.Compact {
		highlighted, err := w.hl.Highlight(w.ctx, n.Language, src)
		if err == nil {
			if nodes, perr := fragment(highlighted); perr == nil && len(nodes) > 0 {
				for _, x := range nodes {
					parent.AppendChild(x)
				}
				return nil
			}
		} else if cerr := w.ctx.Err(); cerr != nil {
			return cerr
		}
	}

	code := elem(atom.Code, text(strings.TrimRight(src, "\n")))
	if n.Language != "" {
		code.Attr = []html.Attribute{{Key: "class", Val: "language-" + n.Language}}
	}
	pre := elem(atom.Pre, code)
	if n.Compact {
		pre.Attr = []html.Attribute{{Key: "class", Val: "compact"}}
	}
	parent.AppendChild(pre)
	return nil
}

func (w *writer) table(parent *html.Node, n *document.Node) {
	table := elem(atom.Table)
	var thead, tbody *html.Node
	body := 0
	for _, row := range n.Children {
		if row == nil || row.Kind != document.KindTableRow || len(row.Children) == 0 {
			if row != nil {
				w.note(document.Note(document.DiagMalformedNode, "%s: table row without cells", row.Kind))
			}
			continue
		}
		header := document.IsHeaderRow(row)
		tr := elem(atom.Tr)
		cellTag := atom.Td
		if header {
			cellTag = atom.Th
		}
		for _, c := range row.Children {
			if c == nil {
				tr.AppendChild(elem(cellTag))
				continue
			}
			tr.AppendChild(elem(cellTag, inline(c)...))
		}

		if header && tbody == nil {
			if thead == nil {
				thead = elem(atom.Thead)
				table.AppendChild(thead)
			}
			thead.AppendChild(tr)
			continue
		}
		if document.RowShading(body, header) == document.ShadeStripe {
			tr.Attr = []html.Attribute{{Key: "class", Val: "stripe"}}
		}
		if !header {
			body++
		}
		if tbody == nil {
			tbody = elem(atom.Tbody)
			table.AppendChild(tbody)
		}
		tbody.AppendChild(tr)
	}
	if table.FirstChild == nil {
		w.note(document.Note(document.DiagMalformedNode, "%s: table without rows", n.Kind))
		return
	}
	parent.AppendChild(table)
}

func (w *writer) artifact(parent *html.Node, n *document.Node) {
	d := n.Diagram
	if d == nil || d.Markup == "" {
		w.note(document.Note(document.DiagMalformedNode, "%s: artifact without markup", n.Kind))
		return
	}
	w.diagrams++

	fig := elem(atom.Figure)
	fig.Attr = []html.Attribute{{Key: "class", Val: "diagram"}, {Key: "id", Val: d.ID}}
	nodes, err := fragment(d.Markup)
	if err != nil {
		w.note(document.Note(document.DiagMalformedNode, "%s: unparsable markup: %v", n.Kind, err))
		return
	}
	for _, x := range nodes {
		scrub(x)
		fig.AppendChild(x)
	}
	parent.AppendChild(fig)
}

func (w *writer) fallback(parent *html.Node, n *document.Node) {
	d := n.Diagram
	if d == nil {
		w.note(document.Note(document.DiagMalformedNode, "%s: fallback without payload", n.Kind))
		return
	}
	w.diagrams++
	fig := elem(atom.Figure,
		elem(atom.Figcaption, text(d.FallbackCaption())),
		elem(atom.Pre, text(sanitize.Text(d.Raw))),
	)
	fig.Attr = []html.Attribute{
		{Key: "class", Val: "diagram diagram-fallback"},
		{Key: "data-ordinal", Val: strconv.Itoa(w.diagrams - 1)},
	}
	parent.AppendChild(fig)
}

// scrub drops scripts, event handlers and javascript URLs from diagram
// markup.
func scrub(n *html.Node) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if strings.HasPrefix(key, "on") {
			continue
		}
		if (key == "href" || strings.HasSuffix(key, ":href")) &&
			strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && strings.EqualFold(c.Data, "script") {
			n.RemoveChild(c)
		} else {
			scrub(c)
		}
		c = next
	}
}
