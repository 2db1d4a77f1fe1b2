package main

import (
	"io"
	"os"
	"time"

	md2doc "github.com/alnah/go-md2doc"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Environ func() []string // os.Environ format, read for MD2DOC_* overrides
	Getenv  func(string) string
	NewPool func(n int, opts ...md2doc.Option) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Environ: os.Environ,
		Getenv:  os.Getenv,
		NewPool: newConverterPool,
	}
}
