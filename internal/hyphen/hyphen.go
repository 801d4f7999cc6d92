// Package hyphen implements Liang's hyphenation algorithm over TeX pattern files.
//
// Patterns use the format of the hyph-utf8 project (hyph-*.pat.txt): one
// pattern per line, '%' starts a comment, and an optional \patterns{...} block
// may be followed by a \hyphenation{...} block of exception words written with
// explicit hyphens ("ta-ble"). Files ending in ".xz" are decompressed on load.
package hyphen

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Break limits used by most English TeX distributions.
const (
	DefaultLeftMin  = 2
	DefaultRightMin = 3
)

// SoftHyphen is the break marker produced by Hyphenate.
const SoftHyphen = "\u00ad"

// Sentinel errors.
var (
	ErrInvalidPattern = errors.New("invalid hyphenation pattern")
	ErrNoPatterns     = errors.New("no hyphenation patterns")
)

// Patterns is a compiled pattern set. It is safe for concurrent use once built.
type Patterns struct {
	values     map[string][]int
	exceptions map[string][]int
	maxLen     int

	// LeftMin and RightMin bound the break positions counted from each end.
	LeftMin  int
	RightMin int
}

// Len returns the number of patterns.
func (p *Patterns) Len() int {
	return len(p.values)
}

// Exceptions returns the number of exception words.
func (p *Patterns) Exceptions() int {
	return len(p.exceptions)
}

// Breaks returns the rune offsets of permitted breaks in word, in ascending
// order. An offset k means a break may be placed before the k-th rune.
func (p *Patterns) Breaks(word string) []int {
	lower := strings.ToLower(word)
	n := utf8.RuneCountInString(lower)
	if n == 0 || n != utf8.RuneCountInString(word) {
		return nil
	}

	if positions, ok := p.exceptions[lower]; ok {
		out := make([]int, len(positions))
		copy(out, positions)
		return out
	}

	if n < p.LeftMin+p.RightMin {
		return nil
	}

	runes := make([]rune, 0, n+2)
	runes = append(runes, '.')
	for _, r := range lower {
		if !unicode.IsLetter(r) && r != '\'' {
			return nil
		}
		runes = append(runes, r)
	}
	runes = append(runes, '.')

	// scores[i] is the score of the boundary before runes[i].
	scores := make([]int, len(runes)+1)
	for i := range runes {
		for j := i + 1; j <= len(runes) && j-i <= p.maxLen; j++ {
			v, ok := p.values[string(runes[i:j])]
			if !ok {
				continue
			}
			for k, s := range v {
				if s > scores[i+k] {
					scores[i+k] = s
				}
			}
		}
	}

	var breaks []int
	for k := p.LeftMin; k <= n-p.RightMin; k++ {
		if scores[k+1]%2 == 1 {
			breaks = append(breaks, k)
		}
	}
	return breaks
}

// Insert returns word with marker placed at every permitted break.
func (p *Patterns) Insert(word, marker string) string {
	breaks := p.Breaks(word)
	if len(breaks) == 0 {
		return word
	}

	var b strings.Builder
	b.Grow(len(word) + len(breaks)*len(marker))
	next, idx := 0, 0
	for _, r := range word {
		if next < len(breaks) && breaks[next] == idx {
			b.WriteString(marker)
			next++
		}
		b.WriteRune(r)
		idx++
	}
	return b.String()
}

// Hyphenate returns word with soft hyphens at every permitted break.
func (p *Patterns) Hyphenate(word string) string {
	return p.Insert(word, SoftHyphen)
}
