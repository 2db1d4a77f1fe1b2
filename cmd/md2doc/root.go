package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/browser"
	"github.com/alnah/go-md2doc/internal/config"
	"github.com/alnah/go-md2doc/internal/fileutil"
	"github.com/alnah/go-md2doc/internal/hints"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// newRootCmd builds the command tree bound to env.
func newRootCmd(env *Environment) *cobra.Command {
	var common commonFlags

	root := &cobra.Command{
		Use:   "md2doc",
		Short: "md2doc - convert markdown with diagrams to PDF, DOCX or HTML",
		Long: `md2doc converts markdown documents into paginated PDF, structured DOCX
or an HTML preview. Mermaid and graphviz diagrams are rendered through a
chain of renderers; a diagram none of them can draw is kept as its source
text, and the document is still produced.

Usage:
  md2doc convert <files|dirs...> [flags]
  md2doc serve [flags]`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
			}
			return cmd.Help()
		},
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})
	addCommonFlags(root.PersistentFlags(), &common)

	root.AddCommand(
		newConvertCmd(env, &common),
		newServeCmd(env, &common),
		newDoctorCmd(env),
		newVersionCmd(env),
	)
	return root
}

// run executes the CLI and returns the process exit code.
func run(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	root := newRootCmd(env)
	// A nil slice makes cobra fall back to os.Args.
	root.SetArgs(append([]string{}, args...))
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	// A single failed conversion was already reported with its hint.
	var be *batchError
	if errors.As(err, &be) && be.total == 1 {
		return exitCodeFor(err)
	}
	name, _ := root.PersistentFlags().GetString("config")
	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, name))
	return exitCodeFor(err)
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, configName string) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(configName))
	case errors.Is(err, browser.ErrConnect), errors.Is(err, browser.ErrPageCreate):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, md2doc.ErrInputTooLarge):
		return hints.ForInputTooLarge(md2doc.MaxInputSize)
	case errors.Is(err, fileutil.ErrNotSource), errors.Is(err, fileutil.ErrNoSources):
		return hints.ForUnsupportedInput()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}

// setMaxProcs matches GOMAXPROCS to the container CPU quota.
func setMaxProcs(w io.Writer, verbose bool) {
	logf := func(string, ...any) {}
	if verbose {
		logf = func(format string, args ...any) {
			fmt.Fprintf(w, format+"\n", args...)
		}
	}
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(logf))
}

// verboseRequested scans raw arguments for -v/--verbose before cobra parses
// them, so GOMAXPROCS is settled before any command runs.
func verboseRequested(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-v", "--verbose", "--verbose=true":
			return true
		}
	}
	return false
}
