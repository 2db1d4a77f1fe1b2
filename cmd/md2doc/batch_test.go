package main

// Notes:
// - convertBatch runs against mockPool/mockConverter and writes into
//   t.TempDir; the written bytes are the mock's blob.
// - Output lines are asserted by substring; exact spacing is not part of
//   the contract.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	md2doc "github.com/alnah/go-md2doc"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestPlanJobs - Output placement
// ---------------------------------------------------------------------------

func TestPlanJobs(t *testing.T) {
	t.Parallel()

	pdf := []md2doc.OutputKind{md2doc.Paginated}
	both := []md2doc.OutputKind{md2doc.Paginated, md2doc.Structured}

	tests := []struct {
		name       string
		sources    []string
		kinds      []md2doc.OutputKind
		out        string
		defaultDir string
		wantDirs   []string
		wantFiles  []string
	}{
		{
			name:     "next to the source by default",
			sources:  []string{"docs/a.md"},
			kinds:    pdf,
			wantDirs: []string{"docs"},
		},
		{
			name:       "configured default directory",
			sources:    []string{"docs/a.md"},
			kinds:      pdf,
			defaultDir: "build",
			wantDirs:   []string{"build"},
		},
		{
			name:      "explicit file for one source and kind",
			sources:   []string{"a.md"},
			kinds:     pdf,
			out:       "out/report.pdf",
			wantFiles: []string{"out/report.pdf"},
		},
		{
			name:     "explicit path with another extension is a directory",
			sources:  []string{"a.md"},
			kinds:    pdf,
			out:      "out/report.docx",
			wantDirs: []string{"out/report.docx"},
		},
		{
			name:     "both formats go into the directory",
			sources:  []string{"a.md"},
			kinds:    both,
			out:      "out",
			wantDirs: []string{"out", "out"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			jobs := planJobs(tt.sources, tt.kinds, tt.out, tt.defaultDir)
			if len(jobs) != len(tt.sources)*len(tt.kinds) {
				t.Fatalf("planJobs() = %d jobs, want %d", len(jobs), len(tt.sources)*len(tt.kinds))
			}
			for i, j := range jobs {
				if tt.wantFiles != nil && j.OutFile != tt.wantFiles[i] {
					t.Errorf("job %d OutFile = %q, want %q", i, j.OutFile, tt.wantFiles[i])
				}
				if tt.wantDirs != nil && j.OutDir != tt.wantDirs[i] {
					t.Errorf("job %d OutDir = %q, want %q", i, j.OutDir, tt.wantDirs[i])
				}
			}
			if len(tt.kinds) == 2 && (jobs[0].Kind != md2doc.Paginated || jobs[1].Kind != md2doc.Structured) {
				t.Errorf("kinds = %s, %s; want paginated then structured", jobs[0].Kind, jobs[1].Kind)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPathClaims - Duplicate titles do not overwrite each other
// ---------------------------------------------------------------------------

func TestPathClaims(t *testing.T) {
	t.Parallel()

	c := newPathClaims()
	got := []string{
		c.claim("out/report.pdf"),
		c.claim("out/report.pdf"),
		c.claim("out/report.pdf"),
		c.claim("out/report.docx"),
	}
	want := []string{"out/report.pdf", "out/report_2.pdf", "out/report_3.pdf", "out/report.docx"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("claims = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestConvertBatch
// ---------------------------------------------------------------------------

func TestConvertBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeSource(t, dir, "a.md", "# A")
	b := writeSource(t, dir, "sub/b.md", "# B")
	out := filepath.Join(dir, "out")

	conv := okConverter()
	pool := &mockPool{conv: conv, size: 4}
	jobs := planJobs([]string{a, b}, []md2doc.OutputKind{md2doc.Paginated, md2doc.Structured}, out, "")

	results := convertBatch(context.Background(), pool, jobs, func() time.Time { return testNow })

	if len(results) != 4 {
		t.Fatalf("results = %d, want 4", len(results))
	}
	wantPaths := []string{"a.pdf", "a.docx", "b.pdf", "b.docx"}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("result %d error: %v", i, r.Err)
		}
		if filepath.Base(r.OutputPath) != wantPaths[i] {
			t.Errorf("result %d path = %s, want %s", i, filepath.Base(r.OutputPath), wantPaths[i])
		}
		data, err := os.ReadFile(r.OutputPath)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if string(data) != "%PDF-1.4 test" {
			t.Errorf("output %d = %q", i, data)
		}
	}
	if conv.called() != 4 {
		t.Errorf("Convert called %d times, want 4", conv.called())
	}
	if pool.acquired != pool.released {
		t.Errorf("acquired %d, released %d", pool.acquired, pool.released)
	}
	for _, in := range conv.inputs {
		if in.SourceDir == "" || in.SourceName == "" {
			t.Errorf("input missing source info: %+v", in)
		}
		if !in.AllowAbsoluteImages {
			t.Errorf("local input refuses absolute images: %+v", in)
		}
	}
}

func TestConvertBatch_Failures(t *testing.T) {
	t.Parallel()

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		jobs := []job{{Source: filepath.Join(dir, "nope.md"), Kind: md2doc.Paginated, OutDir: dir}}
		results := convertBatch(context.Background(), &mockPool{conv: okConverter()}, jobs, time.Now)
		if !errors.Is(results[0].Err, ErrReadMarkdown) {
			t.Errorf("error = %v, want ErrReadMarkdown", results[0].Err)
		}
	})

	t.Run("converter error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeSource(t, dir, "a.md", "# A")
		jobs := []job{{Source: src, Kind: md2doc.Paginated, OutDir: dir}}
		results := convertBatch(context.Background(), &mockPool{conv: &mockConverter{err: md2doc.ErrSerialization}}, jobs, time.Now)
		if !errors.Is(results[0].Err, md2doc.ErrSerialization) {
			t.Errorf("error = %v, want ErrSerialization", results[0].Err)
		}
	})

	t.Run("pool init failure fails every job", func(t *testing.T) {
		t.Parallel()

		jobs := []job{{Source: "a.md"}, {Source: "b.md"}, {Source: "c.md"}}
		results := convertBatch(context.Background(), &mockPool{acquireErr: errBoom, size: 2}, jobs, time.Now)
		for i, r := range results {
			if !errors.Is(r.Err, ErrPoolInit) {
				t.Errorf("result %d error = %v, want ErrPoolInit", i, r.Err)
			}
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		conv := okConverter()
		jobs := []job{{Source: "a.md"}}
		results := convertBatch(ctx, &mockPool{conv: conv}, jobs, time.Now)
		if !errors.Is(results[0].Err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", results[0].Err)
		}
		if conv.called() != 0 {
			t.Error("converter called after cancellation")
		}
	})

	t.Run("unwritable output", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeSource(t, dir, "a.md", "# A")
		blocker := writeSource(t, dir, "file", "x")
		jobs := []job{{Source: src, Kind: md2doc.Paginated, OutDir: filepath.Join(blocker, "sub")}}
		results := convertBatch(context.Background(), &mockPool{conv: okConverter()}, jobs, time.Now)
		if !errors.Is(results[0].Err, ErrWriteOutput) {
			t.Errorf("error = %v, want ErrWriteOutput", results[0].Err)
		}
	})

	t.Run("empty job list", func(t *testing.T) {
		t.Parallel()

		if got := convertBatch(context.Background(), &mockPool{}, nil, time.Now); got != nil {
			t.Errorf("convertBatch(nil) = %v, want nil", got)
		}
	})
}

// ---------------------------------------------------------------------------
// TestPrintResults
// ---------------------------------------------------------------------------

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.md", OutputPath: "a.pdf"},
		{InputPath: "b.md", OutputPath: "b.pdf", Fallbacks: 2, Diagnostics: []md2doc.Diagnostic{
			{Kind: md2doc.DiagRendererExhaustion, Block: 0, Source: "mermaid", Message: "no renderer"},
			{Kind: md2doc.DiagRendererExhaustion, Block: 1, Source: "mermaid", Message: "no renderer"},
		}},
		{InputPath: "c.md", Err: ErrWriteOutput},
	}

	tests := []struct {
		name       string
		quiet      bool
		verbose    bool
		wantOut    []string
		notWantOut []string
		wantErr    []string
	}{
		{
			name:    "default",
			wantOut: []string{"Created a.pdf", "Created b.pdf (2 diagrams kept as source text)", "2 succeeded, 1 failed"},
			wantErr: []string{"FAILED c.md", "hint:"},
		},
		{
			name:       "quiet",
			quiet:      true,
			notWantOut: []string{"Created", "succeeded"},
			wantErr:    []string{"FAILED c.md"},
		},
		{
			name:    "verbose lists diagnostics with one hint per source kind",
			verbose: true,
			wantOut: []string{"a.md -> a.pdf", "renderer_exhaustion #0 mermaid: no renderer", "renderer_exhaustion #1 mermaid", "hint: install Chrome"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(t, nil)
			failed := printResults(results, tt.quiet, tt.verbose, te.Environment)
			if failed != 1 {
				t.Errorf("printResults() = %d, want 1", failed)
			}
			out := te.stdout.String()
			for _, w := range tt.wantOut {
				if !strings.Contains(out, w) {
					t.Errorf("stdout missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWantOut {
				if strings.Contains(out, w) {
					t.Errorf("stdout contains %q:\n%s", w, out)
				}
			}
			for _, w := range tt.wantErr {
				if !strings.Contains(te.stderr.String(), w) {
					t.Errorf("stderr missing %q:\n%s", w, te.stderr.String())
				}
			}
			if tt.verbose && strings.Count(out, "hint:") != 1 {
				t.Errorf("want exactly one hint:\n%s", out)
			}
		})
	}
}

func TestBatchErr(t *testing.T) {
	t.Parallel()

	if err := batchErr([]ConversionResult{{}, {}}); err != nil {
		t.Errorf("batchErr(all ok) = %v, want nil", err)
	}

	err := batchErr([]ConversionResult{{}, {Err: ErrReadMarkdown}, {Err: errBoom}})
	if err == nil || err.Error() != "2 of 3 conversions failed" {
		t.Errorf("batchErr() = %v", err)
	}
	if !errors.Is(err, ErrReadMarkdown) {
		t.Errorf("batchErr() does not unwrap to the first failure: %v", err)
	}

	single := batchErr([]ConversionResult{{Err: errBoom}})
	if single == nil || single.Error() != "boom" {
		t.Errorf("single batchErr() = %v, want the failure itself", single)
	}
}
