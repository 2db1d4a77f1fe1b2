// Package htmlout renders a substituted document tree as a standalone HTML
// preview: highlighted code, inline SVG diagrams and visible fallback
// blocks, styled by the preview stylesheet.
//
// The page is assembled as an x/net/html node tree so user text is always
// escaped by the renderer and diagram markup is parsed, not pasted.
package htmlout
