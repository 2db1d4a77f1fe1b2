package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrNoInput      = errors.New("no input specified")
	ErrReadMarkdown = errors.New("failed to read markdown file")
	ErrWriteOutput  = errors.New("failed to write output file")
	ErrPoolInit     = errors.New("failed to initialize converter")
)

// job is one source rendered into one output kind.
type job struct {
	Source  string
	Kind    md2doc.OutputKind
	OutDir  string // directory for the title-derived file name
	OutFile string // explicit output path, overrides OutDir
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath   string
	OutputPath  string
	Kind        md2doc.OutputKind
	Diagnostics []md2doc.Diagnostic
	Fallbacks   int
	Err         error
	Duration    time.Duration
}

// planJobs pairs every source with every kind and picks where each output
// goes. out is the -o value, defaultDir the configured output directory.
func planJobs(sources []string, kinds []md2doc.OutputKind, out, defaultDir string) []job {
	single := len(sources) == 1 && len(kinds) == 1
	jobs := make([]job, 0, len(sources)*len(kinds))
	for _, src := range sources {
		for _, kind := range kinds {
			j := job{Source: src, Kind: kind}
			switch {
			case out != "" && single && strings.EqualFold(filepath.Ext(out), kind.Extension()):
				j.OutFile = out
			case out != "":
				j.OutDir = out
			case defaultDir != "":
				j.OutDir = defaultDir
			default:
				j.OutDir = filepath.Dir(src)
			}
			jobs = append(jobs, j)
		}
	}
	return jobs
}

// pathClaims hands out output paths, suffixing duplicates so two documents
// with the same title never overwrite each other in one run.
type pathClaims struct {
	mu    sync.Mutex
	taken map[string]bool
}

func newPathClaims() *pathClaims {
	return &pathClaims{taken: make(map[string]bool)}
}

func (c *pathClaims) claim(path string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidate := path
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 2; c.taken[candidate]; n++ {
		candidate = stem + "_" + strconv.Itoa(n) + ext
	}
	c.taken[candidate] = true
	return candidate
}

// convertBatch processes jobs concurrently using the converter pool.
func convertBatch(ctx context.Context, pool Pool, jobs []job, now func() time.Time) []ConversionResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(jobs))
	results := make([]ConversionResult, len(jobs))
	claims := newPathClaims()
	queue := make(chan int, len(jobs))
	var wg sync.WaitGroup

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				// Converter creation failed, mark remaining jobs as failed
				for idx := range queue {
					results[idx] = failed(jobs[idx], fmt.Errorf("%w: %v", ErrPoolInit, err))
				}
				return
			}
			defer pool.Release(conv)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = failed(jobs[idx], ctx.Err())
					continue
				}
				results[idx] = convertFile(ctx, conv, jobs[idx], claims, now)
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

func failed(j job, err error) ConversionResult {
	return ConversionResult{InputPath: j.Source, Kind: j.Kind, Err: err}
}

// convertFile converts one job and writes the blob.
func convertFile(ctx context.Context, conv Converter, j job, claims *pathClaims, now func() time.Time) ConversionResult {
	start := now()
	result := ConversionResult{InputPath: j.Source, Kind: j.Kind}
	done := func(err error) ConversionResult {
		result.Err = err
		result.Duration = now().Sub(start)
		return result
	}

	content, err := os.ReadFile(j.Source) // #nosec G304 -- discovered path
	if err != nil {
		return done(fmt.Errorf("%w: %v", ErrReadMarkdown, err))
	}

	// Local files are the user's own, so absolute image paths may resolve.
	res, err := conv.Convert(ctx, md2doc.Input{
		Markdown:            string(content),
		SourceName:          filepath.Base(j.Source),
		SourceDir:           filepath.Dir(j.Source),
		Kind:                j.Kind,
		AllowAbsoluteImages: true,
	})
	if err != nil {
		return done(err)
	}
	result.Diagnostics = res.Diagnostics
	result.Fallbacks = res.Fallbacks()

	path := j.OutFile
	if path == "" {
		path = filepath.Join(j.OutDir, res.Filename)
	}
	result.OutputPath = claims.claim(path)

	if err := os.MkdirAll(filepath.Dir(result.OutputPath), dirPermissions); err != nil {
		return done(fmt.Errorf("%w: creating output directory: %v", ErrWriteOutput, err))
	}
	// #nosec G306 -- documents are meant to be readable
	if err := os.WriteFile(result.OutputPath, res.Blob, filePermissions); err != nil {
		return done(fmt.Errorf("%w: %v", ErrWriteOutput, err))
	}
	return done(nil)
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// batchError reports a partially failed batch. It unwraps to the first
// failure so the exit code reflects its cause.
type batchError struct {
	failed, total int
	first         error
}

func (e *batchError) Error() string {
	if e.total == 1 {
		return e.first.Error()
	}
	return fmt.Sprintf("%d of %d conversions failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error { return e.first }

// batchErr returns nil when every conversion succeeded.
func batchErr(results []ConversionResult) error {
	summary := countResults(results)
	if summary.Failed == 0 {
		return nil
	}
	for _, r := range results {
		if r.Err != nil {
			return &batchError{failed: summary.Failed, total: len(results), first: r.Err}
		}
	}
	return nil
}

// printResults outputs conversion results and returns the failure count.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err, ""))
			continue
		}

		if quiet {
			continue
		}

		switch {
		case verbose:
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
			printDiagnostics(env, r.Diagnostics)
		case r.Fallbacks > 0:
			fmt.Fprintf(env.Stdout, "Created %s (%d %s kept as source text)\n", r.OutputPath, r.Fallbacks, plural(r.Fallbacks, "diagram", "diagrams"))
		default:
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// printDiagnostics lists diagnostics, with one install hint per diagram
// source kind that ran out of renderers.
func printDiagnostics(env *Environment, diags []md2doc.Diagnostic) {
	hinted := make(map[string]bool)
	for _, d := range diags {
		fmt.Fprintf(env.Stdout, "  %s\n", d)
		if d.Kind != md2doc.DiagRendererExhaustion || hinted[string(d.Source)] {
			continue
		}
		hinted[string(d.Source)] = true
		if h := hints.ForRendererExhausted(string(d.Source)); h != "" {
			fmt.Fprintf(env.Stdout, "%s\n", strings.TrimPrefix(h, "\n"))
		}
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
