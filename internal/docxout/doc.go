// Package docxout writes structured exports as Office Open XML documents
// using go-docx.
//
// Each block becomes one paragraph, table or inline picture in source
// order. Word reflows the text itself, so nothing here measures glyphs.
package docxout
