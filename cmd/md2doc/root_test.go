package main

// Notes:
// - run() is driven end to end with the mock pool injected through
//   Environment.NewPool; exit codes and printed lines are asserted.
// - Signal handling is not exercised: notifyContext is a thin wrapper over
//   signal.NotifyContext.

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/config"
)

// ---------------------------------------------------------------------------
// TestRun_Convert
// ---------------------------------------------------------------------------

func TestRun_Convert(t *testing.T) {
	t.Parallel()

	t.Run("single file into a directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeSource(t, dir, "notes.md", "# Notes")
		out := filepath.Join(dir, "build")
		conv := okConverter()
		te := newTestEnv(t, conv)

		code := run([]string{"convert", src, "-o", out}, te.Environment)

		if code != ExitSuccess {
			t.Fatalf("run() = %d, stderr: %s", code, te.stderr.String())
		}
		if _, err := os.Stat(filepath.Join(out, "notes.pdf")); err != nil {
			t.Errorf("output missing: %v", err)
		}
		if !strings.Contains(te.stdout.String(), "Created "+filepath.Join(out, "notes.pdf")) {
			t.Errorf("stdout = %q", te.stdout.String())
		}
		if !te.pool.closed {
			t.Error("pool not closed")
		}
		if te.pool.opts == 0 {
			t.Error("pool created without converter options")
		}
	})

	t.Run("both formats from a directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeSource(t, dir, "docs/a.md", "# A")
		writeSource(t, dir, "docs/b.markdown", "# B")
		writeSource(t, dir, "docs/skip.png", "")
		conv := okConverter()
		te := newTestEnv(t, conv)

		code := run([]string{"convert", filepath.Join(dir, "docs"), "-f", "both", "-q"}, te.Environment)

		if code != ExitSuccess {
			t.Fatalf("run() = %d, stderr: %s", code, te.stderr.String())
		}
		for _, name := range []string{"a.pdf", "a.docx", "b.pdf", "b.docx"} {
			if _, err := os.Stat(filepath.Join(dir, "docs", name)); err != nil {
				t.Errorf("%s missing: %v", name, err)
			}
		}
		if te.stdout.Len() != 0 {
			t.Errorf("quiet run printed %q", te.stdout.String())
		}
	})

	t.Run("ascii mode flag reaches the converter options", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeSource(t, dir, "a.md", "# A")
		te := newTestEnv(t, okConverter())

		if code := run([]string{"convert", src, "--ascii-mode", "sketch"}, te.Environment); code != ExitUsage {
			t.Errorf("run() = %d, want %d", code, ExitUsage)
		}
	})

	t.Run("failed conversion", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeSource(t, dir, "a.md", "# A")
		te := newTestEnv(t, &mockConverter{err: md2doc.ErrEmptyMarkdown})

		code := run([]string{"convert", src}, te.Environment)

		if code != ExitUsage {
			t.Errorf("run() = %d, want %d", code, ExitUsage)
		}
		if strings.Count(te.stderr.String(), md2doc.ErrEmptyMarkdown.Error()) != 1 {
			t.Errorf("single failure should be reported once:\n%s", te.stderr.String())
		}
	})
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeSource(t, dir, "a.md", "# A")
	txt := writeSource(t, dir, "a.pdf", "")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{name: "unknown command", args: []string{"render"}, wantCode: ExitUsage, wantErr: "unknown command"},
		{name: "unknown flag", args: []string{"convert", "--nope", src}, wantCode: ExitUsage, wantErr: "unknown flag"},
		{name: "no input", args: []string{"convert"}, wantCode: ExitIO, wantErr: "no input"},
		{name: "missing file", args: []string{"convert", filepath.Join(dir, "none.md")}, wantCode: ExitIO},
		{name: "not markdown", args: []string{"convert", txt}, wantCode: ExitUsage, wantErr: "hint: accepted extensions"},
		{name: "bad format", args: []string{"convert", src, "-f", "odt"}, wantCode: ExitUsage},
		{name: "bad page size", args: []string{"convert", src, "--page-size", "a0"}, wantCode: ExitUsage},
		{name: "duplicate renderer", args: []string{"convert", src, "--renderers", "mmdc,mmdc"}, wantCode: ExitUsage},
		{name: "missing config", args: []string{"convert", src, "-c", filepath.Join(dir, "none.yaml")}, wantCode: ExitUsage, wantErr: "hint:"},
		{name: "version takes no args", args: []string{"version", "x"}, wantCode: ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(t, okConverter())
			code := run(tt.args, te.Environment)
			if code != tt.wantCode {
				t.Errorf("run(%v) = %d, want %d; stderr: %s", tt.args, code, tt.wantCode, te.stderr.String())
			}
			if tt.wantErr != "" && !strings.Contains(te.stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want %q", te.stderr.String(), tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRun_Version, TestRun_Help
// ---------------------------------------------------------------------------

func TestRun_Version(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, nil)
	if code := run([]string{"version"}, te.Environment); code != ExitSuccess {
		t.Fatalf("run(version) = %d", code)
	}
	want := "md2doc " + Version + " (" + runtime.Version()
	if !strings.HasPrefix(te.stdout.String(), want) {
		t.Errorf("stdout = %q, want prefix %q", te.stdout.String(), want)
	}
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, nil)
	if code := run(nil, te.Environment); code != ExitSuccess {
		t.Fatalf("run() = %d", code)
	}
	for _, cmd := range []string{"convert", "serve", "doctor", "version"} {
		if !strings.Contains(te.stdout.String(), cmd) {
			t.Errorf("help missing %q", cmd)
		}
	}
}

// ---------------------------------------------------------------------------
// TestHintFor, TestVerboseRequested
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "timeout", err: context.DeadlineExceeded, want: "--timeout"},
		{name: "too large", err: md2doc.ErrInputTooLarge, want: "10 MiB"},
		{name: "output", err: ErrWriteOutput, want: "hint:"},
		{name: "config", err: config.ErrConfigNotFound, want: "--config"},
		{name: "unrelated", err: errBoom, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err, "md2doc")
			if tt.want == "" {
				if got != "" {
					t.Errorf("hintFor() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("hintFor() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestVerboseRequested(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{args: []string{"convert", "-v", "a.md"}, want: true},
		{args: []string{"--verbose", "serve"}, want: true},
		{args: []string{"convert", "a.md"}, want: false},
		{args: []string{"convert", "--", "-v"}, want: false},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			t.Parallel()

			if got := verboseRequested(tt.args); got != tt.want {
				t.Errorf("verboseRequested(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}
