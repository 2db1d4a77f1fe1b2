package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/fileutil"
)

func newConvertCmd(env *Environment, common *commonFlags) *cobra.Command {
	var f convertFlags

	cmd := &cobra.Command{
		Use:   "convert <files|dirs...>",
		Short: "Convert markdown files to PDF, DOCX or HTML",
		Long: `Convert reads markdown files (.md, .markdown, .txt), directories of them,
or a mix, and writes one document per file and format. Output files are
named after the document title.

Settings are resolved as flags > MD2DOC_* environment > config file > defaults.`,
		Example: `  md2doc convert report.md
  md2doc convert docs/ -o build/ -f both
  md2doc convert notes.md -o notes.docx --ascii-mode preserve
  md2doc convert spec.md --renderers mmdc,ink --page-size letter`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), cmd.Flags(), args, common, &f, env)
		},
	}
	addConvertFlags(cmd.Flags(), &f)
	return cmd
}

// runConvert resolves settings, plans the jobs and converts them in
// parallel. Per-file failures are printed; the returned error reflects the
// first one.
func runConvert(ctx context.Context, fs *flag.FlagSet, args []string, common *commonFlags, f *convertFlags, env *Environment) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: pass markdown files or directories", ErrNoInput)
	}

	cfg, err := loadConfig(common, env)
	if err != nil {
		return err
	}
	f.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	kinds, err := formatKinds(cfg.Output.Format)
	if err != nil {
		return err
	}
	opts, err := converterOptions(cfg, f.timeout)
	if err != nil {
		return err
	}
	sources, err := fileutil.CollectSources(args)
	if err != nil {
		return err
	}
	jobs := planJobs(sources, kinds, f.output.path, cfg.Output.DefaultDir)

	pool := env.NewPool(md2doc.ResolvePoolSize(f.workers), opts...)
	defer func() { _ = pool.Close() }()

	if common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", pool.Size())
		fmt.Fprintf(env.Stderr, "Converting %d %s...\n", len(jobs), plural(len(jobs), "document", "documents"))
	}

	results := convertBatch(ctx, pool, jobs, env.Now)
	printResults(results, common.quiet, common.verbose, env)
	return batchErr(results)
}
