package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/alnah/go-md2doc/internal/document"
)

// Parser abstracts markdown to document tree conversion.
type Parser interface {
	Parse(ctx context.Context, markdown string) (*document.Node, error)
}

// GoldmarkParser parses markdown with Goldmark and maps its AST to a
// document tree.
type GoldmarkParser struct {
	md    goldmark.Markdown
	ascii ASCIIMode
}

// Compile-time interface implementation check.
var _ Parser = (*GoldmarkParser)(nil)

// NewGoldmarkParser creates a parser with GFM tables, strikethrough, task
// lists and linkify enabled.
func NewGoldmarkParser(mode ASCIIMode) *GoldmarkParser {
	if mode == "" {
		mode = ASCIIImage
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
			extension.Linkify,
		),
	)
	return &GoldmarkParser{md: md, ascii: mode}
}

// Parse converts markdown to a document tree. Goldmark has no context
// support, so parsing runs in a goroutine raced against ctx.
func (p *GoldmarkParser) Parse(ctx context.Context, markdown string) (*document.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		root *document.Node
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrParse, r)}
			}
		}()
		src := []byte(markdown)
		doc := p.md.Parser().Parse(text.NewReader(src))
		m := &mapper{src: src, ascii: p.ascii}
		root := &document.Node{Kind: document.KindDocument}
		root.Children = m.blocks(doc)
		done <- result{root: root}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.root, r.err
	}
}

// mapper walks one Goldmark AST.
type mapper struct {
	src   []byte
	ascii ASCIIMode
}

// inlineStyle accumulates emphasis while descending inline nodes.
type inlineStyle struct {
	bold, italic, code, strike bool
}

func (m *mapper) blocks(parent ast.Node) []*document.Node {
	var out []*document.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := m.block(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (m *mapper) block(n ast.Node) *document.Node {
	switch node := n.(type) {
	case *ast.Heading:
		return &document.Node{
			Kind:     document.KindHeading,
			Level:    node.Level,
			Children: m.inlines(node, inlineStyle{}),
		}

	case *ast.Paragraph, *ast.TextBlock:
		if img := m.soleImage(node); img != nil {
			return img
		}
		runs := m.inlines(node, inlineStyle{})
		if len(runs) == 0 {
			return nil
		}
		return &document.Node{Kind: document.KindParagraph, Children: runs}

	case *ast.FencedCodeBlock:
		lang := ""
		if node.Info != nil {
			lang = strings.ToLower(string(node.Language(m.src)))
		}
		return m.code(lang, m.lines(node))

	case *ast.CodeBlock:
		return m.code("", m.lines(node))

	case *ast.Blockquote:
		return &document.Node{Kind: document.KindBlockquote, Children: m.blocks(node)}

	case *ast.List:
		list := &document.Node{Kind: document.KindList, Ordered: node.IsOrdered()}
		for it := node.FirstChild(); it != nil; it = it.NextSibling() {
			list.Children = append(list.Children, &document.Node{
				Kind:     document.KindListItem,
				Children: m.blocks(it),
			})
		}
		return list

	case *east.Table:
		return m.table(node)

	case *ast.ThematicBreak:
		return &document.Node{Kind: document.KindRule}

	case *ast.HTMLBlock:
		raw := m.lines(node)
		if node.HasClosure() {
			raw += string(node.ClosureLine.Value(m.src))
		}
		flat, err := FlattenHTML(raw)
		if err != nil || flat == "" {
			return nil
		}
		return document.NewParagraph(flat)
	}

	// Unknown block: keep its text so nothing is lost.
	if t := strings.TrimSpace(m.plain(n)); t != "" {
		return document.NewParagraph(t)
	}
	return nil
}

// code maps a code block, turning diagram fences into placeholders.
func (m *mapper) code(lang, body string) *document.Node {
	body = strings.TrimSuffix(body, "\n")
	trimmed := strings.TrimSpace(body)

	switch lang {
	case "mermaid":
		if trimmed == "" {
			return document.NewCodeBlock(lang, body)
		}
		return document.NewPlaceholder(document.SourceMermaid, body)
	case "dot", "graphviz":
		if trimmed == "" {
			return document.NewCodeBlock(lang, body)
		}
		return document.NewPlaceholder(document.SourceGraphviz, body)
	}

	if !asciiLanguages[lang] || trimmed == "" {
		return document.NewCodeBlock(lang, body)
	}
	if lang != "ascii" && !IsASCIIArt(body) {
		return document.NewCodeBlock(lang, body)
	}

	switch m.ascii {
	case ASCIIImage:
		return document.NewPlaceholder(document.SourceASCII, body)
	case ASCIIOptimize:
		cb := document.NewCodeBlock(lang, body)
		cb.Compact = true
		return cb
	default:
		return document.NewCodeBlock(lang, body)
	}
}

func (m *mapper) table(t *east.Table) *document.Node {
	out := &document.Node{Kind: document.KindTable}
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		_, header := r.(*east.TableHeader)
		row := &document.Node{Kind: document.KindTableRow}
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			row.Children = append(row.Children, &document.Node{
				Kind:     document.KindTableCell,
				Header:   header,
				Children: m.inlines(c, inlineStyle{bold: header}),
			})
		}
		out.Children = append(out.Children, row)
	}
	return out
}

// soleImage returns an image node when the paragraph holds exactly one
// image and nothing else.
func (m *mapper) soleImage(p ast.Node) *document.Node {
	first := p.FirstChild()
	if first == nil || first.NextSibling() != nil {
		return nil
	}
	img, ok := first.(*ast.Image)
	if !ok {
		return nil
	}
	return &document.Node{
		Kind: document.KindImage,
		Src:  string(img.Destination),
		Alt:  m.plain(img),
	}
}

func (m *mapper) inlines(parent ast.Node, st inlineStyle) []*document.Node {
	var out []*document.Node
	emit := func(s string, st inlineStyle) {
		if s == "" {
			return
		}
		out = append(out, &document.Node{
			Kind:   document.KindText,
			Text:   s,
			Bold:   st.bold,
			Italic: st.italic,
			Code:   st.code,
			Strike: st.strike,
		})
	}

	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Text:
			s := string(node.Value(m.src))
			switch {
			case node.HardLineBreak():
				s += "\n"
			case node.SoftLineBreak():
				s += " "
			}
			emit(s, st)
		case *ast.String:
			emit(string(node.Value), st)
		case *ast.CodeSpan:
			inner := st
			inner.code = true
			emit(m.plain(node), inner)
		case *ast.Emphasis:
			inner := st
			if node.Level >= 2 {
				inner.bold = true
			} else {
				inner.italic = true
			}
			out = append(out, m.inlines(node, inner)...)
		case *east.Strikethrough:
			inner := st
			inner.strike = true
			out = append(out, m.inlines(node, inner)...)
		case *ast.AutoLink:
			emit(string(node.Label(m.src)), st)
		case *ast.Image:
			emit(m.plain(node), st)
		case *east.TaskCheckBox:
			if node.IsChecked {
				emit("☑ ", st)
			} else {
				emit("☐ ", st)
			}
		case *ast.RawHTML:
			var raw bytes.Buffer
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				raw.Write(seg.Value(m.src))
			}
			if flat, err := FlattenHTML(raw.String()); err == nil {
				emit(flat, st)
			}
		default:
			// Links and any other container: keep the children.
			out = append(out, m.inlines(node, st)...)
		}
	}
	return out
}

// lines concatenates the raw lines of a block node.
func (m *mapper) lines(n ast.Node) string {
	var b strings.Builder
	ls := n.Lines()
	for i := 0; i < ls.Len(); i++ {
		seg := ls.At(i)
		b.Write(seg.Value(m.src))
	}
	return b.String()
}

// plain returns the text of n without styling.
func (m *mapper) plain(n ast.Node) string {
	var b strings.Builder
	for _, r := range m.inlines(n, inlineStyle{}) {
		b.WriteString(r.Text)
	}
	if b.Len() == 0 && n.Type() == ast.TypeBlock {
		return m.lines(n)
	}
	return b.String()
}
