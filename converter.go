package md2doc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-md2doc/internal/assets"
	"github.com/alnah/go-md2doc/internal/browser"
	"github.com/alnah/go-md2doc/internal/diagram"
	"github.com/alnah/go-md2doc/internal/document"
	"github.com/alnah/go-md2doc/internal/docxout"
	"github.com/alnah/go-md2doc/internal/htmlout"
	"github.com/alnah/go-md2doc/internal/layout"
	"github.com/alnah/go-md2doc/internal/pdfout"
	"github.com/alnah/go-md2doc/internal/pipeline"
	"github.com/alnah/go-md2doc/internal/raster"
	"github.com/alnah/go-md2doc/internal/structured"
)

// Compile-time interface implementation checks.
// These ensure implementations satisfy their interfaces at compile time,
// catching signature mismatches before runtime.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.Parser               = (*pipeline.GoldmarkParser)(nil)
	_ pipeline.Highlighter          = (*pipeline.GoldmarkHighlighter)(nil)
	_ diagram.Pager                 = (*browser.Browser)(nil)
	_ raster.Pager                  = (*browser.Browser)(nil)
	_ layout.Measurer               = (*pdfout.Measurer)(nil)
	_ layout.Measurer               = (*layout.FaceMeasurer)(nil)
)

// Converter turns markdown into PDF, DOCX or HTML.
// Create with NewConverter, use Convert for conversion, and Close when done.
// A Converter owns at most one headless browser, launched on first use.
type Converter struct {
	cfg          converterConfig
	assetLoader  assets.AssetLoader
	preprocessor pipeline.MarkdownPreprocessor
	parser       pipeline.Parser
	highlighter  pipeline.Highlighter
	substituter  *diagram.Substituter
	rasterizer   raster.Rasterizer
	measurer     layout.Measurer
	browser      *browser.Browser
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithPageSpec, WithRenderers).
// Returns error if the page spec, ASCII mode, asset path or renderer names are invalid.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:          defaultConfig(),
		assetLoader:  assets.NewEmbeddedLoader(),
		preprocessor: &pipeline.CommonMarkPreprocessor{},
		highlighter:  pipeline.NewGoldmarkHighlighter(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.cfg.page.Validate(); err != nil {
		return nil, err
	}
	mode, err := pipeline.ParseASCIIMode(string(c.cfg.asciiMode))
	if err != nil {
		return nil, err
	}
	c.cfg.asciiMode = mode
	c.parser = pipeline.NewGoldmarkParser(mode)

	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.assetLoader = resolver
	}

	renderers := c.cfg.renderers
	if renderers == nil {
		renderers, err = c.builtinRenderers()
		if err != nil {
			return nil, err
		}
	}
	gateway := diagram.NewGateway(renderers, diagram.WithAttemptTimeout(c.cfg.diagramTimeout))
	c.substituter = diagram.NewSubstituter(gateway, diagram.WithParallelism(c.cfg.parallelism))

	if c.cfg.rasterizers != nil {
		c.rasterizer = raster.Chain(c.cfg.rasterizers)
	} else {
		c.rasterizer = raster.Chain{raster.NewBrowser(c.ensureBrowser()), raster.NewVector()}
	}

	if c.cfg.measurerSet {
		c.measurer = c.cfg.measurer
	} else {
		c.measurer = defaultMeasurer()
	}

	return c, nil
}

// ensureBrowser returns the converter's browser, creating the handle on first
// call. Chrome itself only starts when a page is requested.
func (c *Converter) ensureBrowser() *browser.Browser {
	if c.browser == nil {
		c.browser = browser.New(c.cfg.timeout)
	}
	return c.browser
}

// builtinRenderers assembles the configured renderer chain. The ASCII-art
// renderer is always appended: it has no external requirement.
func (c *Converter) builtinRenderers() ([]Renderer, error) {
	s := c.cfg.builtins
	order := s.Order
	if len(order) == 0 {
		order = DefaultRendererOrder
	}

	out := make([]Renderer, 0, len(order)+1)
	for _, name := range order {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case RendererRod:
			host, err := c.assetLoader.LoadTemplate(assets.MermaidTemplate)
			if err != nil {
				return nil, fmt.Errorf("loading mermaid host page: %w", err)
			}
			out = append(out, diagram.NewRodMermaid(c.ensureBrowser(), host))
		case RendererMMDC:
			out = append(out, diagram.NewMMDC(s.MMDCBin))
		case RendererInk:
			out = append(out, diagram.NewInk(s.InkURL, nil))
		case RendererDot:
			out = append(out, diagram.NewDot(s.DotBin))
		default:
			return nil, fmt.Errorf("%w: %q (want %s)", ErrUnknownRenderer, name, strings.Join(DefaultRendererOrder, ", "))
		}
	}
	return append(out, diagram.NewASCII()), nil
}

// defaultMeasurer prefers the serializer's own metrics, then the embedded
// Go fonts. Nil means paginated output is estimated.
func defaultMeasurer() layout.Measurer {
	if m, err := pdfout.NewMeasurer(); err == nil {
		return m
	}
	if m, err := layout.NewFaceMeasurer(); err == nil {
		return m
	}
	return nil
}

// Convert runs the full pipeline and returns the encoded document.
// Diagram, measurement, image and node problems are reported in
// Result.Diagnostics; only invalid input, cancellation and serialization
// failures are errors.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	kind, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	var diags []Diagnostic

	// Preprocess markdown
	md := c.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Split front matter; a broken block is dropped, the body kept
	body, fm, err := pipeline.ExtractFrontMatter(md)
	if err != nil {
		diags = append(diags, document.Note(document.DiagFrontMatter, "%v", err))
	}
	meta := pipeline.ResolveMetadata(fm, pipeline.MetadataOptions{
		SourceName: input.SourceName,
		DateFormat: c.cfg.dateFormat,
		Now:        c.cfg.now(),
	})
	if meta.Author == "" {
		meta.Author = c.cfg.author
	}

	parser := c.parser
	if input.ASCIIMode != "" {
		if mode, _ := pipeline.ParseASCIIMode(string(input.ASCIIMode)); mode != c.cfg.asciiMode {
			parser = pipeline.NewGoldmarkParser(mode)
		}
	}
	root, err := parser.Parse(ctx, body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("parsing markdown: %w", err)
	}

	report, err := c.substituter.Substitute(ctx, root)
	if err != nil {
		return nil, err
	}
	diags = append(diags, report.Diagnostics...)

	var blob []byte
	var more []Diagnostic
	switch kind {
	case Structured:
		blob, more, err = c.structured(ctx, root, meta, input)
	case Preview:
		blob, more, err = c.preview(ctx, root, meta)
	default:
		blob, more, err = c.paginated(ctx, root, meta, input)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Blob:        blob,
		Filename:    Filename(meta.Title, kind),
		Kind:        kind,
		Metadata:    meta,
		Diagnostics: append(diags, more...),
	}, nil
}

func (c *Converter) paginated(ctx context.Context, root *document.Node, meta Metadata, input Input) ([]byte, []Diagnostic, error) {
	opts := []layout.Option{
		layout.WithMeasurer(c.measurer),
		layout.WithRasterizer(c.rasterizer),
		layout.WithImageDir(input.SourceDir),
		layout.WithAbsoluteImages(input.AllowAbsoluteImages),
	}
	if c.cfg.titlePage {
		opts = append(opts, layout.WithTitle(&meta))
	}

	doc, err := layout.NewEngine(opts...).Layout(ctx, root, c.cfg.page)
	if err != nil {
		return nil, nil, err
	}

	blob, err := pdfout.Write(doc, meta, pdfout.WithCreationDate(c.cfg.now()))
	if err != nil {
		return nil, doc.Diagnostics, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return blob, doc.Diagnostics, nil
}

func (c *Converter) structured(ctx context.Context, root *document.Node, meta Metadata, input Input) ([]byte, []Diagnostic, error) {
	acc, err := structured.Export(ctx, root, structured.Options{
		Rasterizer:          c.rasterizer,
		ImageDir:            input.SourceDir,
		AllowAbsoluteImages: input.AllowAbsoluteImages,
		ContentWidth:        c.cfg.page.ContentWidth(),
	})
	if err != nil {
		return nil, nil, err
	}

	opts := []docxout.Option{docxout.WithPageSpec(c.cfg.page)}
	if c.cfg.titlePage {
		opts = append(opts, docxout.WithTitleBlock())
	}
	blob, err := docxout.Write(acc, meta, opts...)
	if err != nil {
		return nil, acc.Diagnostics, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return blob, acc.Diagnostics, nil
}

func (c *Converter) preview(ctx context.Context, root *document.Node, meta Metadata) ([]byte, []Diagnostic, error) {
	blob, diags, err := htmlout.Write(ctx, root, meta, htmlout.Options{
		Assets:      c.assetLoader,
		Highlighter: c.highlighter,
		TitleBlock:  c.cfg.titlePage,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, err
		}
		return nil, diags, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return blob, diags, nil
}

// Close releases the headless browser, if one was started.
func (c *Converter) Close() error {
	if c.browser != nil {
		return c.browser.Close()
	}
	return nil
}

// validateInput checks the input before any work is done.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// CLI and server inputs are size-checked earlier, but both paths converge here.
func validateInput(input Input) (OutputKind, error) {
	if strings.TrimSpace(input.Markdown) == "" {
		return "", ErrEmptyMarkdown
	}
	if len(input.Markdown) > MaxInputSize {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(input.Markdown), MaxInputSize)
	}
	if _, err := pipeline.ParseASCIIMode(string(input.ASCIIMode)); err != nil {
		return "", err
	}
	return ParseOutputKind(string(input.Kind))
}
