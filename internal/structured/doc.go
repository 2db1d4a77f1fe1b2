// Package structured maps a document tree to a flat sequence of styled
// blocks for flow formats such as DOCX.
//
// Export decides what every block looks like and records it as a Style
// value. Serializers (internal/docxout) only interpret those values, so
// the mapping can be tested without producing a file.
package structured
