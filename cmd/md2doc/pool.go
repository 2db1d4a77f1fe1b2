package main

import (
	"context"

	md2doc "github.com/alnah/go-md2doc"
)

// Converter is the conversion surface the commands depend on.
type Converter interface {
	Convert(ctx context.Context, input md2doc.Input) (*md2doc.Result, error)
}

// Compile-time interface implementation check.
var _ Converter = (*md2doc.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (Converter, error)
	Release(Converter)
	Size() int
	Close() error
}

// converterPool adapts md2doc.ConverterPool to Pool.
type converterPool struct {
	pool *md2doc.ConverterPool
}

// Compile-time check that converterPool implements Pool.
var _ Pool = (*converterPool)(nil)

// newConverterPool creates a pool of n lazily built converters.
func newConverterPool(n int, opts ...md2doc.Option) Pool {
	return &converterPool{pool: md2doc.NewConverterPool(n, opts...)}
}

func (p *converterPool) Acquire() (Converter, error) {
	conv, err := p.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (p *converterPool) Release(c Converter) {
	if conv, ok := c.(*md2doc.Converter); ok {
		p.pool.Release(conv)
	}
}

func (p *converterPool) Size() int    { return p.pool.Size() }
func (p *converterPool) Close() error { return p.pool.Close() }
