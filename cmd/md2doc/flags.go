package main

import (
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2doc/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// diagramFlags holds diagram and ASCII-art flags.
type diagramFlags struct {
	renderers []string
	asciiMode string
}

// outputFlags holds output destination flags.
type outputFlags struct {
	path        string
	format      string
	noTitlePage bool
}

// convertFlags holds every flag of the convert command.
type convertFlags struct {
	page     pageFlags
	diagrams diagramFlags
	output   outputFlags
	timeout  time.Duration
	workers  int
}

// serveFlags holds flags of the serve command.
type serveFlags struct {
	addr    string
	timeout time.Duration
	workers int
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config name or path (also "+config.EnvPrefix+"CONFIG)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only print errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "print timings and diagnostics")
}

func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: a4, letter, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in millimetres")
}

func addDiagramFlags(fs *flag.FlagSet, f *diagramFlags) {
	fs.StringSliceVar(&f.renderers, "renderers", nil, "diagram renderers in try order: rod,mmdc,ink,dot")
	fs.StringVar(&f.asciiMode, "ascii-mode", "", "ASCII-art handling: image, optimize, preserve")
}

func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.path, "output", "o", "", "output directory, or file for a single input")
	fs.StringVarP(&f.format, "format", "f", "", "output format: pdf, docx, html, both")
	fs.BoolVar(&f.noTitlePage, "no-title-page", false, "omit the title block on the first page")
}

func addConvertFlags(fs *flag.FlagSet, f *convertFlags) {
	addPageFlags(fs, &f.page)
	addDiagramFlags(fs, &f.diagrams)
	addOutputFlags(fs, &f.output)
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "per-document conversion timeout (e.g. 30s, 2m)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel conversions (0 = CPU based)")
}

func addServeFlags(fs *flag.FlagSet, f *serveFlags) {
	fs.StringVar(&f.addr, "addr", "", "listen address (default from config, :8080)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "per-request conversion timeout")
	fs.IntVarP(&f.workers, "workers", "w", 0, "converters in the pool (0 = CPU based)")
}

// apply copies explicitly set flags over cfg. Flags left at their zero
// value never override the environment or the config file.
func (f *convertFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	if fs.Changed("page-size") {
		cfg.Page.Size = f.page.size
	}
	if fs.Changed("orientation") {
		cfg.Page.Orientation = f.page.orientation
	}
	if fs.Changed("margin") {
		cfg.Page.Margin = f.page.margin
	}
	if fs.Changed("renderers") {
		cfg.Diagrams.Renderers = normalizeList(f.diagrams.renderers)
	}
	if fs.Changed("ascii-mode") {
		cfg.ASCII.Mode = f.diagrams.asciiMode
	}
	if fs.Changed("format") {
		cfg.Output.Format = f.output.format
	}
	if fs.Changed("no-title-page") {
		enabled := !f.output.noTitlePage
		cfg.Document.TitlePage = &enabled
	}
}

func (f *serveFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	if fs.Changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if fs.Changed("workers") {
		cfg.Server.Workers = f.workers
	}
}

func normalizeList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, config.SplitList(v)...)
	}
	return out
}
