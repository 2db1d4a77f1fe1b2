package main

import (
	"fmt"
	"strings"
	"time"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/config"
)

// formatBoth selects PDF and DOCX in one run.
const formatBoth = "both"

// configName returns the config requested by flag, else by environment.
func configName(common *commonFlags, env *Environment) string {
	if common.config != "" {
		return common.config
	}
	return strings.TrimSpace(env.Getenv(config.EnvPrefix + "CONFIG"))
}

// loadConfig resolves the config file and environment layers.
// Command flags are applied by the caller afterwards.
func loadConfig(common *commonFlags, env *Environment) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if name := configName(common, env); name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	warnings, err := config.ApplyEnv(cfg, env.Environ())
	if !common.quiet {
		for _, w := range warnings {
			fmt.Fprintf(env.Stderr, "warning: %s\n", w)
		}
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// formatKinds maps an output format name to the kinds it produces.
func formatKinds(format string) ([]md2doc.OutputKind, error) {
	if strings.EqualFold(strings.TrimSpace(format), formatBoth) {
		return []md2doc.OutputKind{md2doc.Paginated, md2doc.Structured}, nil
	}
	kind, err := md2doc.ParseOutputKind(format)
	if err != nil {
		return nil, err
	}
	return []md2doc.OutputKind{kind}, nil
}

// pageSpec builds page geometry from the page section.
func pageSpec(p config.PageConfig) (md2doc.PageSpec, error) {
	spec, err := md2doc.PageSizeByName(p.Size)
	if err != nil {
		return md2doc.PageSpec{}, err
	}
	if p.Orientation == "landscape" {
		spec = spec.Landscape()
	}
	if p.Margin > 0 {
		spec.Margin = p.Margin
	}
	return spec, spec.Validate()
}

// converterOptions translates a resolved config into converter options.
// A zero timeout keeps the converter default.
func converterOptions(cfg *config.Config, timeout time.Duration) ([]md2doc.Option, error) {
	spec, err := pageSpec(cfg.Page)
	if err != nil {
		return nil, err
	}
	mode, err := md2doc.ParseASCIIMode(cfg.ASCII.Mode)
	if err != nil {
		return nil, err
	}

	opts := []md2doc.Option{
		md2doc.WithPageSpec(spec),
		md2doc.WithASCIIMode(mode),
		md2doc.WithRendererSettings(md2doc.RendererSettings{
			Order:   cfg.Diagrams.Renderers,
			MMDCBin: cfg.Diagrams.MMDCBin,
			DotBin:  cfg.Diagrams.DotBin,
			InkURL:  cfg.Diagrams.InkURL,
		}),
		md2doc.WithDiagramTimeout(cfg.DiagramTimeout()),
		md2doc.WithDiagramParallelism(cfg.Diagrams.Parallelism),
		md2doc.WithTitlePage(cfg.TitlePage()),
	}
	if timeout > 0 {
		opts = append(opts, md2doc.WithTimeout(timeout))
	}
	if cfg.Document.Author != "" {
		opts = append(opts, md2doc.WithDefaultAuthor(cfg.Document.Author))
	}
	if cfg.Document.DateFormat != "" {
		opts = append(opts, md2doc.WithDateFormat(cfg.Document.DateFormat))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, md2doc.WithAssetPath(cfg.Assets.BasePath))
	}
	return opts, nil
}
