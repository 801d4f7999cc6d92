// Package syllable segments English words into syllable-like chunks joined by
// a visible separator.
//
// Two backends implement Backend: Heuristic, a vowel-cluster splitter with a
// small morphological merge pass, and Patterns, which drives a TeX hyphenation
// pattern set. Both are pure functions of their input and idempotent: text that
// already carries the separator is returned unchanged.
package syllable

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-syllabify/internal/hyphen"
)

// Separator is the middle dot placed between chunks.
const Separator = "·"

// Minimum word lengths below which words are left alone.
const (
	DefaultMinWordLength         = 3
	DefaultPatternsMinWordLength = 5
)

// Backend kinds accepted by New.
const (
	KindHeuristic = "heuristic"
	KindPatterns  = "patterns"
)

// Sentinel errors.
var (
	ErrUnknownBackend     = errors.New("unknown segmentation backend")
	ErrBackendUnavailable = errors.New("segmentation backend unavailable")
	ErrSegmentPanic       = errors.New("segmentation backend panicked")
)

// Backend turns plain text into text with separators inserted.
type Backend interface {
	Segment(text string) string
}

// Readier is implemented by backends that need resources before use.
type Readier interface {
	Ready() error
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(text string) string

// Segment calls f.
func (f BackendFunc) Segment(text string) string {
	return f(text)
}

// Compile-time interface checks.
var (
	_ Backend = (*Heuristic)(nil)
	_ Backend = (*Patterns)(nil)
	_ Backend = BackendFunc(nil)
	_ Readier = (*Patterns)(nil)
)

// Kinds lists the backend kinds accepted by New.
func Kinds() []string {
	return []string{KindHeuristic, KindPatterns}
}

// New builds a backend by kind. patterns is required for KindPatterns.
func New(kind string, patterns *hyphen.Patterns, opts ...Option) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindHeuristic:
		return NewHeuristic(opts...), nil
	case KindPatterns:
		p, err := NewPatterns(patterns, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownBackend, kind, strings.Join(Kinds(), ", "))
	}
}

// Ready reports whether b can be used.
func Ready(b Backend) error {
	if b == nil {
		return ErrBackendUnavailable
	}
	if r, ok := b.(Readier); ok {
		if err := r.Ready(); err != nil {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	}
	return nil
}

// Apply runs b on text and turns a panic inside the backend into ErrSegmentPanic.
func Apply(b Backend, text string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = text, fmt.Errorf("%w: %v", ErrSegmentPanic, r)
		}
	}()
	return b.Segment(text), nil
}

// Option configures a backend.
type Option func(*settings)

type settings struct {
	separator     string
	minWordLength int
	merge         bool
}

func defaultSettings(minWordLength int) settings {
	return settings{
		separator:     Separator,
		minWordLength: minWordLength,
		merge:         true,
	}
}

// WithSeparator replaces the middle dot. Empty values are ignored.
func WithSeparator(sep string) Option {
	return func(s *settings) {
		if sep != "" {
			s.separator = sep
		}
	}
}

// WithMinWordLength sets the length at or below which words are left alone.
// Negative values are ignored.
func WithMinWordLength(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.minWordLength = n
		}
	}
}

// WithMerge toggles the ending merge pass of the heuristic backend.
func WithMerge(on bool) Option {
	return func(s *settings) {
		s.merge = on
	}
}
