package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestNewAssetResolver(t *testing.T) {
	t.Parallel()

	t.Run("empty path uses embedded only", func(t *testing.T) {
		t.Parallel()

		resolver, err := NewAssetResolver("")
		if err != nil {
			t.Fatalf("NewAssetResolver(\"\") error = %v", err)
		}
		if resolver.HasCustomLoader() {
			t.Error("expected no custom loader for empty path")
		}
	})

	t.Run("valid custom path", func(t *testing.T) {
		t.Parallel()

		resolver, err := NewAssetResolver(t.TempDir())
		if err != nil {
			t.Fatalf("NewAssetResolver() error = %v", err)
		}
		if !resolver.HasCustomLoader() {
			t.Error("expected custom loader for valid path")
		}
	})

	t.Run("invalid custom path returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewAssetResolver("/nonexistent/path/abc123xyz")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewAssetResolver() error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestAssetResolver_Fallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAsset(t, dir, "templates", "mermaid.html", "custom host page")

	resolver, err := NewAssetResolver(dir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	t.Run("custom asset wins", func(t *testing.T) {
		t.Parallel()

		got, err := resolver.LoadTemplate(MermaidTemplate)
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		if got != "custom host page" {
			t.Errorf("LoadTemplate() = %q, want custom content", got)
		}
	})

	t.Run("missing custom asset falls back to embedded", func(t *testing.T) {
		t.Parallel()

		got, err := resolver.LoadStyle(PreviewStyle)
		if err != nil {
			t.Fatalf("LoadStyle() error = %v", err)
		}
		if !strings.Contains(got, "figure.diagram") {
			t.Error("expected embedded preview stylesheet")
		}
	})

	t.Run("invalid name is not masked", func(t *testing.T) {
		t.Parallel()

		if _, err := resolver.LoadStyle("../preview"); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadStyle() error = %v, want ErrInvalidAssetName", err)
		}
	})

	t.Run("unknown everywhere", func(t *testing.T) {
		t.Parallel()

		if _, err := resolver.LoadTemplate("nonexistent"); !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("LoadTemplate() error = %v, want ErrTemplateNotFound", err)
		}
	})
}
