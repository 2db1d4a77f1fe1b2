// Package config loads md2doc YAML configuration files and applies
// MD2DOC_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-md2doc/internal/dateutil"
	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits for multi-tenant safety.
const (
	MaxNameLength       = 100  // Author name
	MaxDateFormatLength = 30   // "DD.MM.YYYY"
	MaxURLLength        = 2048 // Browser limit
	MaxPathLength       = 4096 // PATH_MAX
	MaxPageSizeLength   = 10   // "letter", "a4", "legal"
	MaxAddrLength       = 100  // ":8080", "127.0.0.1:8080"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MD2DOC_"

// Config holds all configuration for document generation.
type Config struct {
	Page     PageConfig     `yaml:"page"`
	Diagrams DiagramsConfig `yaml:"diagrams"`
	ASCII    ASCIIConfig    `yaml:"ascii"`
	Output   OutputConfig   `yaml:"output"`
	Server   ServerConfig   `yaml:"server"`
	Document DocumentConfig `yaml:"document"`
	Assets   AssetsConfig   `yaml:"assets"`
}

// PageConfig defines page geometry for both document formats.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "a4", "letter", "legal" (default: "a4")
	Orientation string  `yaml:"orientation"` // "portrait", "landscape" (default: "portrait")
	Margin      float64 `yaml:"margin"`      // millimetres (0 = page size default)
}

// DiagramsConfig defines the renderer chain.
type DiagramsConfig struct {
	Renderers   []string `yaml:"renderers"`   // subset of rod, mmdc, ink, dot in try order (empty = all)
	Timeout     string   `yaml:"timeout"`     // per-attempt, Go duration (empty = converter default)
	Parallelism int      `yaml:"parallelism"` // concurrent renders (0 = sequential)
	MMDCBin     string   `yaml:"mmdcBin"`
	DotBin      string   `yaml:"dotBin"`
	InkURL      string   `yaml:"inkURL"`
}

// ASCIIConfig defines ASCII-art handling.
type ASCIIConfig struct {
	Mode string `yaml:"mode"` // "image", "optimize", "preserve" (default: "image")
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
	Format     string `yaml:"format"`     // "pdf", "docx", "html", "both" (default: "pdf")
}

// ServerConfig defines the HTTP server.
type ServerConfig struct {
	Addr        string `yaml:"addr"`        // listen address (default: ":8080")
	MaxUploadMB int    `yaml:"maxUploadMB"` // request body limit (default: 16)
	Workers     int    `yaml:"workers"`     // converters in the pool (0 = CPU based)
}

// DocumentConfig defines metadata defaults.
type DocumentConfig struct {
	Author     string `yaml:"author"`     // used when front matter has none
	DateFormat string `yaml:"dateFormat"` // dateutil tokens (default: "DD.MM.YYYY")
	TitlePage  *bool  `yaml:"titlePage"`  // nil = enabled
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// Known values for enumerated fields.
var (
	PageSizes    = []string{"a4", "letter", "legal"}
	Orientations = []string{"portrait", "landscape"}
	Renderers    = []string{"rod", "mmdc", "ink", "dot"}
	ASCIIModes   = []string{"image", "optimize", "preserve"}
	Formats      = []string{"pdf", "docx", "html", "both"}
)

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually (e.g., API adapters, library users).
func (c *Config) Validate() error {
	// Validate page fields
	if err := validateFieldLength("page.size", c.Page.Size, MaxPageSizeLength); err != nil {
		return err
	}
	if err := validateEnum("page.size", c.Page.Size, PageSizes); err != nil {
		return err
	}
	if err := validateEnum("page.orientation", c.Page.Orientation, Orientations); err != nil {
		return err
	}
	if c.Page.Margin < 0 || c.Page.Margin > 100 {
		return fmt.Errorf("%w: page.margin must be between 0 and 100 mm, got %g", ErrInvalidValue, c.Page.Margin)
	}

	// Validate diagram fields
	seen := make(map[string]bool, len(c.Diagrams.Renderers))
	for i, r := range c.Diagrams.Renderers {
		if err := validateEnum(fmt.Sprintf("diagrams.renderers[%d]", i), r, Renderers); err != nil {
			return err
		}
		if seen[strings.ToLower(r)] {
			return fmt.Errorf("%w: diagrams.renderers lists %q twice", ErrInvalidValue, r)
		}
		seen[strings.ToLower(r)] = true
	}
	if c.Diagrams.Timeout != "" {
		d, err := time.ParseDuration(c.Diagrams.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: diagrams.timeout %q is not a positive duration", ErrInvalidValue, c.Diagrams.Timeout)
		}
	}
	if c.Diagrams.Parallelism < 0 || c.Diagrams.Parallelism > 64 {
		return fmt.Errorf("%w: diagrams.parallelism must be between 0 and 64, got %d", ErrInvalidValue, c.Diagrams.Parallelism)
	}
	if err := validateFieldLength("diagrams.mmdcBin", c.Diagrams.MMDCBin, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("diagrams.dotBin", c.Diagrams.DotBin, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("diagrams.inkURL", c.Diagrams.InkURL, MaxURLLength); err != nil {
		return err
	}
	if c.Diagrams.InkURL != "" && !fileutil.IsURL(c.Diagrams.InkURL) {
		return fmt.Errorf("%w: diagrams.inkURL %q is not an http(s) URL", ErrInvalidValue, c.Diagrams.InkURL)
	}

	if err := validateEnum("ascii.mode", c.ASCII.Mode, ASCIIModes); err != nil {
		return err
	}

	// Validate output fields
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateEnum("output.format", c.Output.Format, Formats); err != nil {
		return err
	}

	// Validate server fields
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Server.MaxUploadMB < 0 || c.Server.MaxUploadMB > 256 {
		return fmt.Errorf("%w: server.maxUploadMB must be between 0 and 256, got %d", ErrInvalidValue, c.Server.MaxUploadMB)
	}
	if c.Server.Workers < 0 || c.Server.Workers > 64 {
		return fmt.Errorf("%w: server.workers must be between 0 and 64, got %d", ErrInvalidValue, c.Server.Workers)
	}

	// Validate document fields
	if err := validateFieldLength("document.author", c.Document.Author, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("document.dateFormat", c.Document.DateFormat, MaxDateFormatLength); err != nil {
		return err
	}
	if c.Document.DateFormat != "" {
		if _, err := dateutil.Compile(c.Document.DateFormat); err != nil {
			return fmt.Errorf("%w: document.dateFormat: %v", ErrInvalidValue, err)
		}
	}

	return validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateEnum accepts an empty value or one of allowed, case-insensitively.
func validateEnum(fieldName, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q (must be one of %s)", ErrInvalidValue, fieldName, value, strings.Join(allowed, ", "))
}

// TitlePage reports whether the title block is enabled.
func (c *Config) TitlePage() bool {
	return c.Document.TitlePage == nil || *c.Document.TitlePage
}

// DiagramTimeout returns the parsed per-attempt timeout, zero when unset.
// Validate guarantees the value parses.
func (c *Config) DiagramTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Diagrams.Timeout)
	return d
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Page:   PageConfig{Size: "a4", Orientation: "portrait"},
		ASCII:  ASCIIConfig{Mode: "image"},
		Output: OutputConfig{Format: "pdf"},
		Server: ServerConfig{Addr: ":8080", MaxUploadMB: 16},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
// Fields absent from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeConfig(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists where a config name is looked up, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "md2doc", name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries the current directory, then the user config directory.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// envSetters maps MD2DOC_* variable suffixes to the field they override.
var envSetters = map[string]func(c *Config, v string) error{
	"PAGE_SIZE":   func(c *Config, v string) error { c.Page.Size = v; return nil },
	"ORIENTATION": func(c *Config, v string) error { c.Page.Orientation = v; return nil },
	"MARGIN": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		c.Page.Margin = f
		return err
	},
	"RENDERERS": func(c *Config, v string) error { c.Diagrams.Renderers = SplitList(v); return nil },
	"TIMEOUT":   func(c *Config, v string) error { c.Diagrams.Timeout = v; return nil },
	"PARALLELISM": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		c.Diagrams.Parallelism = n
		return err
	},
	"MMDC_BIN":    func(c *Config, v string) error { c.Diagrams.MMDCBin = v; return nil },
	"DOT_BIN":     func(c *Config, v string) error { c.Diagrams.DotBin = v; return nil },
	"INK_URL":     func(c *Config, v string) error { c.Diagrams.InkURL = v; return nil },
	"ASCII_MODE":  func(c *Config, v string) error { c.ASCII.Mode = v; return nil },
	"OUTPUT_DIR":  func(c *Config, v string) error { c.Output.DefaultDir = v; return nil },
	"FORMAT":      func(c *Config, v string) error { c.Output.Format = v; return nil },
	"ADDR":        func(c *Config, v string) error { c.Server.Addr = v; return nil },
	"AUTHOR":      func(c *Config, v string) error { c.Document.Author = v; return nil },
	"DATE_FORMAT": func(c *Config, v string) error { c.Document.DateFormat = v; return nil },
	"ASSETS":      func(c *Config, v string) error { c.Assets.BasePath = v; return nil },
	"TITLE_PAGE": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Document.TitlePage = &b
		return err
	},
	// Read by the CLI before a config is loaded.
	"CONFIG": func(*Config, string) error { return nil },
}

// ApplyEnv overrides cfg from MD2DOC_* entries of environ (os.Environ
// format). Unknown MD2DOC_* names are returned as warnings. The result is
// validated.
func ApplyEnv(cfg *Config, environ []string) ([]string, error) {
	var warnings []string
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		name := strings.TrimPrefix(key, EnvPrefix)
		set, known := envSetters[name]
		if !known {
			warnings = append(warnings, fmt.Sprintf("unknown environment variable %s ignored", key))
			continue
		}
		if err := set(cfg, strings.TrimSpace(value)); err != nil {
			return warnings, fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, key, value, err)
		}
	}
	return warnings, cfg.Validate()
}

// SplitList splits a comma-separated value, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
