package pipeline

import "errors"

// Sentinel errors for parsing.
var (
	ErrParse          = errors.New("markdown parsing failed")
	ErrHighlight      = errors.New("code highlighting failed")
	ErrInvalidASCII   = errors.New("invalid ASCII art mode")
	ErrFrontMatter    = errors.New("invalid front matter")
	ErrHTMLConversion = errors.New("HTML flattening failed")
)
