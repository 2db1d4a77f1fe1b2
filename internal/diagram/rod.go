package diagram

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"

	"github.com/alnah/go-md2doc/internal/document"
)

// Pager hands out browser pages scoped to one call.
type Pager interface {
	Page(ctx context.Context) (*rod.Page, func(), error)
	Available() error
}

// renderMermaidJS waits for mermaid.js, then renders src to an SVG string.
const renderMermaidJS = `async (id, src) => {
	for (let i = 0; i < 200 && !window.mermaid; i++) {
		await new Promise(r => setTimeout(r, 50));
	}
	if (!window.mermaid) {
		throw new Error("mermaid.js did not load");
	}
	window.mermaid.initialize({startOnLoad: false, securityLevel: "strict", theme: "default"});
	const { svg } = await window.mermaid.render(id, src);
	return svg;
}`

// RodMermaid renders mermaid in headless Chrome using the host page from
// the asset loader.
type RodMermaid struct {
	pager    Pager
	hostPage string
}

// Compile-time interface implementation check.
var _ Renderer = (*RodMermaid)(nil)

// NewRodMermaid creates the browser mermaid renderer. hostPage is the HTML
// document that loads mermaid.js.
func NewRodMermaid(pager Pager, hostPage string) *RodMermaid {
	return &RodMermaid{pager: pager, hostPage: hostPage}
}

func (r *RodMermaid) Name() string              { return "rod" }
func (r *RodMermaid) Kind() document.SourceKind { return document.SourceMermaid }

func (r *RodMermaid) Available() error {
	if r.pager == nil {
		return errors.New("no browser configured")
	}
	if r.hostPage == "" {
		return errors.New("no mermaid host page")
	}
	return r.pager.Available()
}

// Render loads the host page in a fresh tab and evaluates mermaid.render.
func (r *RodMermaid) Render(ctx context.Context, source string) (string, error) {
	page, release, err := r.pager.Page(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	if err := page.SetDocumentContent(r.hostPage); err != nil {
		return "", fmt.Errorf("loading host page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for host page: %w", err)
	}

	res, err := page.Eval(renderMermaidJS, "md2doc-mermaid", source)
	if err != nil {
		return "", fmt.Errorf("evaluating mermaid: %w", err)
	}
	return res.Value.Str(), nil
}
