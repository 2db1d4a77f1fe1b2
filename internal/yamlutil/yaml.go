// Package yamlutil decodes the two YAML inputs md2doc reads: config files
// and markdown front matter.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// Size limits per input kind.
const (
	MaxConfigSize      = 1 << 20
	MaxFrontMatterSize = 64 << 10
)

var (
	ErrEmpty          = errors.New("yamlutil: empty input")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrTooLarge       = errors.New("yamlutil: input exceeds maximum size")
)

// DecodeConfig decodes a config file into v, rejecting unknown keys.
// Syntax errors carry their line and column.
func DecodeConfig(data []byte, v any) error {
	if v == nil {
		return ErrNilDestination
	}
	if err := checkSize(data, MaxConfigSize); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %s", yaml.FormatError(err, false, false))
	}
	return nil
}

// DecodeFrontMatter decodes a front matter block into a key/value map.
// Keys keep their original case; a block that is not a mapping is an
// error.
func DecodeFrontMatter(raw string) (map[string]any, error) {
	if err := checkSize([]byte(raw), MaxFrontMatterSize); err != nil {
		return nil, err
	}
	var out map[string]any
	if err := yaml.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("yamlutil: %s", yaml.FormatError(err, false, false))
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func checkSize(data []byte, limit int) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	if len(data) > limit {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), limit)
	}
	return nil
}
