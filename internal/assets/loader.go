package assets

import (
	"fmt"
	"strings"
)

// AssetLoader loads stylesheets and HTML pages by name.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads an HTML page by name (without .html extension).
	// Returns ErrTemplateNotFound if the page doesn't exist.
	LoadTemplate(name string) (string, error)
}

// ValidateAssetName rejects empty names and names containing path
// separators or dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
