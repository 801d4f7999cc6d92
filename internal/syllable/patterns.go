package syllable

import (
	"strings"
	"unicode/utf8"

	"github.com/alnah/go-syllabify/internal/hyphen"
)

// Patterns segments words with a TeX hyphenation pattern set.
type Patterns struct {
	patterns      *hyphen.Patterns
	separator     string
	minWordLength int
}

// NewPatterns wraps a compiled pattern set. A nil set yields ErrBackendUnavailable.
func NewPatterns(p *hyphen.Patterns, opts ...Option) (*Patterns, error) {
	if p == nil {
		return nil, ErrBackendUnavailable
	}
	s := defaultSettings(DefaultPatternsMinWordLength)
	for _, opt := range opts {
		opt(&s)
	}
	return &Patterns{
		patterns:      p,
		separator:     s.separator,
		minWordLength: s.minWordLength,
	}, nil
}

// Ready reports whether a pattern set is loaded.
func (p *Patterns) Ready() error {
	if p == nil || p.patterns == nil || p.patterns.Len() == 0 {
		return hyphen.ErrNoPatterns
	}
	return nil
}

// Segment hyphenates every whitespace-delimited word of text.
func (p *Patterns) Segment(text string) string {
	return mapWords(text, p.Word)
}

// Word hyphenates a single word, keeping its punctuation affixes.
func (p *Patterns) Word(word string) string {
	if strings.Contains(word, p.separator) {
		return word
	}
	m := affixPattern.FindStringSubmatch(word)
	if m == nil {
		return word
	}
	prefix, core, suffix := m[1], m[2], m[3]
	if utf8.RuneCountInString(core) <= p.minWordLength {
		return word
	}
	return prefix + Translate(core, p.patterns.Hyphenate(core), hyphen.SoftHyphen, p.separator) + suffix
}

// Translate rewrites the break markers an engine inserted into in, producing
// out, into sep. Markers already present in the input are kept. When out is
// not in plus inserted markers, in is returned unchanged.
func Translate(in, out, marker, sep string) string {
	if marker == "" || out == in {
		return out
	}

	var b strings.Builder
	b.Grow(len(out))
	i, j := 0, 0
	for j < len(out) {
		if strings.HasPrefix(out[j:], marker) && !strings.HasPrefix(in[i:], marker) {
			b.WriteString(sep)
			j += len(marker)
			continue
		}
		if i >= len(in) || in[i] != out[j] {
			return in
		}
		b.WriteByte(out[j])
		i++
		j++
	}
	if i != len(in) {
		return in
	}
	return b.String()
}
