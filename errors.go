package md2doc

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown     = errors.New("markdown content cannot be empty")
	ErrInvalidOutputKind = errors.New("invalid output kind")
	ErrInputTooLarge     = errors.New("markdown input too large")
	ErrSerialization     = errors.New("document serialization failed")

	// Converter construction errors.
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrUnknownRenderer  = errors.New("unknown diagram renderer")
)
