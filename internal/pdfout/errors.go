package pdfout

import "errors"

var (
	ErrWrite   = errors.New("PDF write failed")
	ErrFont    = errors.New("font setup failed")
	ErrNoPages = errors.New("layout has no pages")
)
