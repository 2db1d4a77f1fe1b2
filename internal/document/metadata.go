package document

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-md2doc/internal/fileutil"
)

// DefaultTitle is used when neither front matter nor a source name gives one.
const DefaultTitle = "Документ"

// Metadata describes the document as a whole.
type Metadata struct {
	Title  string
	Author string
	Date   string
	Order  float64
	Extra  map[string]any
}

// TitleFromSource derives a title from a source file name.
// Returns DefaultTitle when name is empty.
func TitleFromSource(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" {
		return DefaultTitle
	}
	lower := strings.ToLower(base)
	for _, ext := range fileutil.SourceExtensions {
		if strings.HasSuffix(lower, ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	if strings.TrimSpace(base) == "" {
		return DefaultTitle
	}
	return base
}
