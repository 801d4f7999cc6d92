package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	syllabify "github.com/alnah/go-syllabify"
)

// Converter annotates one document or text. *syllabify.Annotator implements it.
type Converter interface {
	Annotate(ctx context.Context, in syllabify.Input) (*syllabify.Result, error)
	Segment(text string) (string, error)
}

// Annotator is the full annotator surface used by single-document commands.
type Annotator interface {
	Converter
	FetchPage(ctx context.Context, url string) (string, error)
	NewSession(ctx context.Context, content string) (*syllabify.Session, error)
	Close() error
}

// Compile-time interface implementation checks.
var (
	_ Converter = (*syllabify.Annotator)(nil)
	_ Annotator = (*syllabify.Annotator)(nil)
)

// Pool abstracts annotator pool operations for testability.
type Pool interface {
	Acquire() (Converter, error)
	Release(Converter)
	Size() int
	Close() error
}

// Environment holds injectable dependencies for testability.
// Includes I/O, time, and annotator construction.
type Environment struct {
	Now          func() time.Time
	Stdin        io.Reader
	Stdout       io.Writer
	Stderr       io.Writer
	NewAnnotator func(opts ...syllabify.Option) (Annotator, error)
	NewPool      func(size int, opts ...syllabify.Option) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewAnnotator: func(opts ...syllabify.Option) (Annotator, error) {
			return syllabify.NewAnnotator(opts...)
		},
		NewPool: func(size int, opts ...syllabify.Option) Pool {
			return &poolAdapter{pool: syllabify.NewAnnotatorPool(size, opts...)}
		},
	}
}

// poolAdapter exposes *syllabify.AnnotatorPool through the Pool interface.
type poolAdapter struct {
	pool *syllabify.AnnotatorPool
}

// Compile-time check that poolAdapter implements Pool.
var _ Pool = (*poolAdapter)(nil)

func (p *poolAdapter) Acquire() (Converter, error) {
	a, err := p.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Release panics when c did not come from this adapter (programmer error).
func (p *poolAdapter) Release(c Converter) {
	a, ok := c.(*syllabify.Annotator)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", c))
	}
	p.pool.Release(a)
}

func (p *poolAdapter) Size() int {
	return p.pool.Size()
}

func (p *poolAdapter) Close() error {
	return p.pool.Close()
}
