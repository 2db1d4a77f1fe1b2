package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// DefaultHighlightStyle is the Chroma style used by the HTML preview.
const DefaultHighlightStyle = "github"

// Highlighter renders a code block to HTML with Chroma CSS classes.
type Highlighter interface {
	Highlight(ctx context.Context, lang, code string) (string, error)
}

// GoldmarkHighlighter highlights code by feeding a single fenced block
// through Goldmark with the highlighting extension.
type GoldmarkHighlighter struct {
	md    goldmark.Markdown
	style string
}

// Compile-time interface implementation check.
var _ Highlighter = (*GoldmarkHighlighter)(nil)

// NewGoldmarkHighlighter creates a highlighter emitting class-based markup.
func NewGoldmarkHighlighter() *GoldmarkHighlighter {
	md := goldmark.New(
		goldmark.WithExtensions(
			highlighting.NewHighlighting(
				highlighting.WithStyle(DefaultHighlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
	)
	return &GoldmarkHighlighter{md: md, style: DefaultHighlightStyle}
}

// Highlight returns the HTML for one code block. Unknown languages fall
// back to a plain pre block.
func (h *GoldmarkHighlighter) Highlight(ctx context.Context, lang, code string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := h.md.Convert([]byte(fence(lang, code)), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHighlight, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// WriteCSS writes the stylesheet matching the class names Highlight emits.
func (h *GoldmarkHighlighter) WriteCSS(w io.Writer) error {
	style := styles.Get(h.style)
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(w, style); err != nil {
		return fmt.Errorf("%w: %v", ErrHighlight, err)
	}
	return nil
}

// fence wraps code in a backtick fence long enough not to collide with
// any run of backticks inside it.
func fence(lang, code string) string {
	longest, run := 0, 0
	for _, r := range code {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	marker := strings.Repeat("`", max(3, longest+1))
	return marker + lang + "\n" + strings.TrimSuffix(code, "\n") + "\n" + marker + "\n"
}
