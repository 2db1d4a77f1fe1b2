// Package hints builds the "hint:" lines printed under CLI errors.
package hints

import (
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-md2doc/internal/fileutil"
)

// IsInContainer reports a container host: MD2DOC_CONTAINER=1 or Docker's
// /.dockerenv marker.
var IsInContainer = func() bool {
	return os.Getenv("MD2DOC_CONTAINER") == "1" || fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for Chrome launch failures. Diagrams
// still render through mmdc or mermaid.ink when Chrome is unusable, so the
// last hint points there.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 inside containers and CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "point ROD_BROWSER_BIN at a Chrome binary")
	}
	hints = append(hints, "or drop rod with --renderers mmdc,ink,dot")
	return formatHints(hints)
}

// ForRendererExhausted returns what to install so diagrams of kind render
// instead of falling back to their source text.
func ForRendererExhausted(kind string) string {
	switch kind {
	case "mermaid":
		return format("install Chrome or @mermaid-js/mermaid-cli (mmdc), or allow network access to mermaid.ink")
	case "graphviz":
		return format("install graphviz so that `dot` is on PATH")
	}
	return ""
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents or many diagrams, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/md2doc/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(filepathSlash(p), ".config/md2doc") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForInputTooLarge returns a hint for sources over the size limit.
func ForInputTooLarge(limit int64) string {
	return format(fmt.Sprintf("split the document; the limit is %d MiB", limit>>20))
}

// ForUnsupportedInput lists the accepted source extensions.
func ForUnsupportedInput() string {
	return format("accepted extensions: " + strings.Join(fileutil.SourceExtensions, ", "))
}

func filepathSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
