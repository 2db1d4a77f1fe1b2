// Package layout paginates a document tree into pages of draw operations.
//
// All coordinates are millimetres measured from the top-left corner of the
// page. Font sizes stay in points on Font values and are converted with
// PtToMM where a height or width is needed.
//
// The engine never draws. It decides where each line, rule, shaded box and
// picture goes, and leaves painting to a writer such as internal/pdfout.
// Every placement goes through a PageCursor, so the sum of heights placed on
// a page never exceeds the page's content height.
package layout
