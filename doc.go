// Package md2doc converts Markdown documents with embedded diagrams to PDF,
// DOCX or a standalone HTML preview.
//
// # Quick Start
//
// Create a converter, convert markdown, and close when done:
//
//	conv, err := md2doc.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, md2doc.Input{
//	    Markdown: "# Hello\n\nWorld",
//	    Kind:     md2doc.Paginated,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.Filename, result.Blob, 0644)
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Markdown preprocessing and front matter extraction (title, author, date)
//  2. Markdown to document tree via Goldmark (GFM tables, strikethrough)
//  3. Diagram substitution: every mermaid, graphviz and ASCII-art block is
//     sent through a chain of renderers; the first to succeed wins, and a
//     block no renderer can convert is kept as its source text
//  4. Encoding: a paginated layout painted with gofpdf, a structured flow
//     written with go-docx, or an HTML page
//
// Problems that do not stop the conversion (diagram fallbacks, estimated
// text widths, unreadable images) are listed in Result.Diagnostics.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := md2doc.NewConverter(
//	    md2doc.WithTimeout(2 * time.Minute),
//	    md2doc.WithPageSpec(md2doc.PageLetter),
//	    md2doc.WithRendererSettings(md2doc.RendererSettings{Order: []string{"mmdc", "dot"}}),
//	    md2doc.WithASCIIMode(md2doc.ASCIIOptimize),
//	)
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool to manage multiple browser instances:
//
//	pool := md2doc.NewConverterPool(4)
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//	result, err := conv.Convert(ctx, input)
//
// # Renderer Requirements
//
// Mermaid renders in headless Chrome (go-rod), through mermaid-cli (mmdc), or
// through the mermaid.ink service, in that order. Graphviz needs dot on PATH.
// ASCII art renders without external tools.
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package md2doc
