package main

// Notes:
// - Shared test infrastructure: mock converter and pool, and an Environment
//   writing into buffers with a fixed clock and an empty process environment.
// - The mocks never start a browser; end-to-end conversions live in the
//   root package tests.

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	md2doc "github.com/alnah/go-md2doc"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

// mockConverter implements Converter for testing.
type mockConverter struct {
	mu     sync.Mutex
	inputs []md2doc.Input
	output *md2doc.Result
	err    error
}

func (m *mockConverter) Convert(_ context.Context, input md2doc.Input) (*md2doc.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	res := *m.output
	res.Kind = input.Kind
	if res.Filename == "" {
		res.Filename = md2doc.Filename(strings.TrimSuffix(input.SourceName, filepath.Ext(input.SourceName)), input.Kind)
	}
	return &res, nil
}

func (m *mockConverter) called() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// mockPool implements Pool for testing.
type mockPool struct {
	mu         sync.Mutex
	conv       Converter
	acquireErr error
	size       int
	acquired   int
	released   int
	closed     bool
	opts       int // options received from NewPool
}

func (p *mockPool) Acquire() (Converter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired++
	return p.conv, nil
}

func (p *mockPool) Release(Converter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
}

func (p *mockPool) Size() int {
	if p.size < 1 {
		return 1
	}
	return p.size
}

func (p *mockPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// ---------------------------------------------------------------------------
// Environment helpers
// ---------------------------------------------------------------------------

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

// testEnv returns an environment with captured output and pool.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	pool   *mockPool
	vars   map[string]string
}

func newTestEnv(t *testing.T, conv Converter) *testEnv {
	t.Helper()
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		pool:   &mockPool{conv: conv, size: 2},
		vars:   map[string]string{},
	}
	te.Environment = &Environment{
		Now:    func() time.Time { return testNow },
		Stdout: te.stdout,
		Stderr: te.stderr,
		Environ: func() []string {
			out := make([]string, 0, len(te.vars))
			for k, v := range te.vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		Getenv: func(k string) string { return te.vars[k] },
		NewPool: func(n int, opts ...md2doc.Option) Pool {
			te.pool.opts = len(opts)
			return te.pool
		},
	}
	return te
}

func okConverter() *mockConverter {
	return &mockConverter{output: &md2doc.Result{Blob: []byte("%PDF-1.4 test")}}
}

var errBoom = errors.New("boom")
