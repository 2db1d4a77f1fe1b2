package config

// Notes:
// - LoadConfig-by-name tests change the working directory with t.Chdir and
//   point the user config directory at a temp dir through HOME and
//   XDG_CONFIG_HOME, so they cannot run in parallel.
// - Validation and ApplyEnv tests are pure and run in parallel.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestDefaultConfig
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Page.Size != "a4" {
		t.Errorf("Page.Size = %q, want a4", cfg.Page.Size)
	}
	if cfg.ASCII.Mode != "image" {
		t.Errorf("ASCII.Mode = %q, want image", cfg.ASCII.Mode)
	}
	if cfg.Output.Format != "pdf" {
		t.Errorf("Output.Format = %q, want pdf", cfg.Output.Format)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.MaxUploadMB != 16 {
		t.Errorf("Server = %+v, want :8080 and 16 MiB", cfg.Server)
	}
	if !cfg.TitlePage() {
		t.Error("TitlePage() = false, want true")
	}
	if cfg.DiagramTimeout() != 0 {
		t.Errorf("DiagramTimeout() = %v, want 0", cfg.DiagramTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestConfig_Validate
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	no := false
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "letter landscape", mutate: func(c *Config) { c.Page.Size = "Letter"; c.Page.Orientation = "landscape" }},
		{name: "unknown page size", mutate: func(c *Config) { c.Page.Size = "a5" }, wantErr: ErrInvalidValue},
		{name: "page size too long", mutate: func(c *Config) { c.Page.Size = strings.Repeat("a", MaxPageSizeLength+1) }, wantErr: ErrFieldTooLong},
		{name: "negative margin", mutate: func(c *Config) { c.Page.Margin = -1 }, wantErr: ErrInvalidValue},
		{name: "renderer subset", mutate: func(c *Config) { c.Diagrams.Renderers = []string{"ink", "dot"} }},
		{name: "unknown renderer", mutate: func(c *Config) { c.Diagrams.Renderers = []string{"kroki"} }, wantErr: ErrInvalidValue},
		{name: "duplicate renderer", mutate: func(c *Config) { c.Diagrams.Renderers = []string{"rod", "ROD"} }, wantErr: ErrInvalidValue},
		{name: "valid timeout", mutate: func(c *Config) { c.Diagrams.Timeout = "45s" }},
		{name: "bad timeout", mutate: func(c *Config) { c.Diagrams.Timeout = "soon" }, wantErr: ErrInvalidValue},
		{name: "zero timeout", mutate: func(c *Config) { c.Diagrams.Timeout = "0s" }, wantErr: ErrInvalidValue},
		{name: "parallelism too high", mutate: func(c *Config) { c.Diagrams.Parallelism = 65 }, wantErr: ErrInvalidValue},
		{name: "ink url not http", mutate: func(c *Config) { c.Diagrams.InkURL = "file:///tmp" }, wantErr: ErrInvalidValue},
		{name: "unknown ascii mode", mutate: func(c *Config) { c.ASCII.Mode = "sketch" }, wantErr: ErrInvalidValue},
		{name: "format both", mutate: func(c *Config) { c.Output.Format = "both" }},
		{name: "unknown format", mutate: func(c *Config) { c.Output.Format = "odt" }, wantErr: ErrInvalidValue},
		{name: "upload limit too high", mutate: func(c *Config) { c.Server.MaxUploadMB = 1024 }, wantErr: ErrInvalidValue},
		{name: "author too long", mutate: func(c *Config) { c.Document.Author = strings.Repeat("я", MaxNameLength) }, wantErr: ErrFieldTooLong},
		{name: "title page disabled", mutate: func(c *Config) { c.Document.TitlePage = &no }},
		{name: "date format preset", mutate: func(c *Config) { c.Document.DateFormat = "ru-long" }},
		{name: "date format unclosed bracket", mutate: func(c *Config) { c.Document.DateFormat = "[DD.MM" }, wantErr: ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Accessors(t *testing.T) {
	t.Parallel()

	no := false
	cfg := DefaultConfig()
	cfg.Document.TitlePage = &no
	cfg.Diagrams.Timeout = "1m30s"

	if cfg.TitlePage() {
		t.Error("TitlePage() = true, want false")
	}
	if got := cfg.DiagramTimeout(); got != 90*time.Second {
		t.Errorf("DiagramTimeout() = %v, want 1m30s", got)
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig
// ---------------------------------------------------------------------------

func TestLoadConfig(t *testing.T) {
	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("file path loads every section", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "work.yaml", `page:
  size: letter
  margin: 20
diagrams:
  renderers: [ink, dot]
  timeout: 10s
  parallelism: 4
ascii:
  mode: optimize
output:
  format: both
server:
  addr: "127.0.0.1:9000"
document:
  author: "Иван Петров"
  dateFormat: "YYYY-MM-DD"
  titlePage: false
assets:
  basePath: ./assets
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Page.Size != "letter" || cfg.Page.Margin != 20 {
			t.Errorf("Page = %+v", cfg.Page)
		}
		if strings.Join(cfg.Diagrams.Renderers, ",") != "ink,dot" || cfg.DiagramTimeout() != 10*time.Second || cfg.Diagrams.Parallelism != 4 {
			t.Errorf("Diagrams = %+v", cfg.Diagrams)
		}
		if cfg.ASCII.Mode != "optimize" || cfg.Output.Format != "both" {
			t.Errorf("ASCII = %+v, Output = %+v", cfg.ASCII, cfg.Output)
		}
		if cfg.Server.Addr != "127.0.0.1:9000" {
			t.Errorf("Server.Addr = %q", cfg.Server.Addr)
		}
		if cfg.Server.MaxUploadMB != 16 {
			t.Errorf("Server.MaxUploadMB = %d, want default 16", cfg.Server.MaxUploadMB)
		}
		if cfg.Document.Author != "Иван Петров" || cfg.TitlePage() {
			t.Errorf("Document = %+v", cfg.Document)
		}
		if cfg.Assets.BasePath != "./assets" {
			t.Errorf("Assets.BasePath = %q", cfg.Assets.BasePath)
		}
	})

	t.Run("unknown field returns ErrConfigParse", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "bad.yaml", "watermark:\n  enabled: true\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value is rejected", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "bad.yaml", "ascii:\n  mode: sketch\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("config name resolves yaml in current directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "myconfig.yaml", "output:\n  format: docx\n")
		t.Chdir(dir)

		cfg, err := LoadConfig("myconfig")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Output.Format != "docx" {
			t.Errorf("Output.Format = %q, want docx", cfg.Output.Format)
		}
	})

	t.Run("config name resolves yml in user config directory", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
		t.Setenv("AppData", filepath.Join(home, ".config"))
		writeConfig(t, filepath.Join(home, ".config", "md2doc"), "team.yml", "page:\n  size: legal\n")
		t.Chdir(t.TempDir())

		cfg, err := LoadConfig("team")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Page.Size != "legal" {
			t.Errorf("Page.Size = %q, want legal", cfg.Page.Size)
		}
	})

	t.Run("missing name lists searched paths", func(t *testing.T) {
		t.Chdir(t.TempDir())

		_, err := LoadConfig("nowhere")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "nowhere.yaml") || !strings.Contains(err.Error(), "nowhere.yml") {
			t.Errorf("error %q does not list searched paths", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestApplyEnv
// ---------------------------------------------------------------------------

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	t.Run("overrides known variables", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		warnings, err := ApplyEnv(cfg, []string{
			"PATH=/usr/bin",
			"MD2DOC_PAGE_SIZE=letter",
			"MD2DOC_MARGIN=15",
			"MD2DOC_RENDERERS= ink , dot ,",
			"MD2DOC_ASCII_MODE=preserve",
			"MD2DOC_TITLE_PAGE=false",
			"MD2DOC_CONFIG=work",
		})
		if err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if len(warnings) != 0 {
			t.Errorf("warnings = %v, want none", warnings)
		}
		if cfg.Page.Size != "letter" || cfg.Page.Margin != 15 {
			t.Errorf("Page = %+v", cfg.Page)
		}
		if strings.Join(cfg.Diagrams.Renderers, ",") != "ink,dot" {
			t.Errorf("Renderers = %v", cfg.Diagrams.Renderers)
		}
		if cfg.ASCII.Mode != "preserve" || cfg.TitlePage() {
			t.Errorf("ASCII = %+v, TitlePage = %v", cfg.ASCII, cfg.TitlePage())
		}
	})

	t.Run("unknown variable warns", func(t *testing.T) {
		t.Parallel()

		warnings, err := ApplyEnv(DefaultConfig(), []string{"MD2DOC_COLOUR=red"})
		if err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}
		if len(warnings) != 1 || !strings.Contains(warnings[0], "MD2DOC_COLOUR") {
			t.Errorf("warnings = %v, want one about MD2DOC_COLOUR", warnings)
		}
	})

	t.Run("unparsable number fails", func(t *testing.T) {
		t.Parallel()

		if _, err := ApplyEnv(DefaultConfig(), []string{"MD2DOC_PARALLELISM=many"}); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("ApplyEnv() error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("result is validated", func(t *testing.T) {
		t.Parallel()

		if _, err := ApplyEnv(DefaultConfig(), []string{"MD2DOC_FORMAT=odt"}); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("ApplyEnv() error = %v, want ErrInvalidValue", err)
		}
	})
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "rod", want: "rod"},
		{in: "Rod, MMDC ,,ink", want: "rod,mmdc,ink"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := strings.Join(SplitList(tt.in), ","); got != tt.want {
				t.Errorf("SplitList(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
