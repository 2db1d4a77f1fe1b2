// Package diagram converts diagram source blocks into SVG artifacts and
// splices them back into a document tree.
//
// A Gateway holds an ordered chain of Renderers per source kind and tries
// them in turn until one returns usable markup. Failure is a value, not an
// error: the Substituter replaces the placeholder with a fallback node that
// keeps the raw source, records a diagnostic and moves on.
//
// Concrete renderers:
//   - mermaid: headless Chrome running mermaid.js, the mmdc CLI, mermaid.ink
//   - graphviz: the dot CLI
//   - ascii: a built-in monospace SVG text renderer
package diagram
