// Package pdfout paints paginated layouts into PDF files with gofpdf.
//
// Fonts are the Go font family, embedded as UTF-8 TrueType so Cyrillic and
// box-drawing text survive. The same fonts back Measurer, which keeps the
// widths the layout engine wraps with identical to the widths drawn here.
package pdfout
