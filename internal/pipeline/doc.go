// Package pipeline turns markdown source into a document tree.
//
// Stages, in order:
//   - Preprocessing (line endings, blank line compression outside fences)
//   - Front matter extraction and metadata defaults
//   - Markdown parsing via Goldmark and mapping of its AST to document.Node
//   - Diagram detection: mermaid and graphviz fences, ASCII-art heuristics
//
// Raw HTML blocks are flattened to text with golang.org/x/net/html so no
// content is lost. The package also hosts the code highlighter used by the
// HTML preview output.
//
// Diagram rendering and the export engines live in their own packages; this
// package only produces placeholders.
package pipeline
