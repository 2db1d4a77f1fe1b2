package main

import (
	"errors"
	"os"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/browser"
	"github.com/alnah/go-md2doc/internal/config"
	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/layout"
	"github.com/alnah/go-md2doc/internal/pipeline"
)

// Exit codes for the md2doc CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser or renderer errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, browser.ErrConnect) ||
		errors.Is(err, browser.ErrPageCreate) ||
		errors.Is(err, browser.ErrClosed) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, fileutil.ErrNoSources) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, fileutil.ErrNotSource) ||
		errors.Is(err, md2doc.ErrEmptyMarkdown) ||
		errors.Is(err, md2doc.ErrInputTooLarge) ||
		errors.Is(err, md2doc.ErrInvalidOutputKind) ||
		errors.Is(err, md2doc.ErrInvalidAssetPath) ||
		errors.Is(err, md2doc.ErrUnknownRenderer) ||
		errors.Is(err, layout.ErrInvalidPageSpec) ||
		errors.Is(err, pipeline.ErrInvalidASCII) {
		return ExitUsage
	}

	return ExitGeneral
}
