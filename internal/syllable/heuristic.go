package syllable

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// lengthPunctuation is removed before a word's length is measured.
const lengthPunctuation = ".,/#!$%^&*;:{}=_`~()?\"'"

// affixPattern splits a word into leading punctuation, core, trailing punctuation.
var affixPattern = regexp.MustCompile(`^([^\w]*)(\w+)([^\w]*)$`)

// Heuristic splits words at vowel-cluster boundaries, then folds common
// English endings back into the stem.
type Heuristic struct {
	separator     string
	minWordLength int
	merge         bool
}

// NewHeuristic returns the vowel-cluster backend.
func NewHeuristic(opts ...Option) *Heuristic {
	s := defaultSettings(DefaultMinWordLength)
	for _, opt := range opts {
		opt(&s)
	}
	return &Heuristic{
		separator:     s.separator,
		minWordLength: s.minWordLength,
		merge:         s.merge,
	}
}

// Segment segments every whitespace-delimited word of text.
func (h *Heuristic) Segment(text string) string {
	return mapWords(text, h.Word)
}

// Word segments a single word. Words of at most minWordLength letters after
// punctuation removal, words already carrying the separator, and words that are
// not a single alphanumeric core wrapped in punctuation come back unchanged.
func (h *Heuristic) Word(word string) string {
	if utf8.RuneCountInString(stripPunctuation(word)) <= h.minWordLength {
		return word
	}
	if strings.Contains(word, h.separator) {
		return word
	}

	m := affixPattern.FindStringSubmatch(word)
	if m == nil {
		return word
	}
	prefix, core, suffix := m[1], m[2], m[3]

	chunks := Chunks(core)
	if len(chunks) < 2 {
		return word
	}
	if h.merge {
		chunks = mergeEnding(chunks)
	}
	return prefix + strings.Join(chunks, h.separator) + suffix
}

// Chunks splits an ASCII word core into vowel-cluster chunks. Each chunk is a
// run of non-vowels, a run of vowels, then either every remaining non-vowel when
// no vowel follows, or a single non-vowel when two non-vowels come next.
// Joining the chunks yields core again; a core without vowels yields no chunks.
func Chunks(core string) []string {
	var chunks []string
	n := len(core)
	for i := 0; i < n; {
		start := i
		for i < n && !isVowel(core[i]) {
			i++
		}
		if i == n {
			break
		}
		for i < n && isVowel(core[i]) {
			i++
		}

		next := i
		for next < n && !isVowel(core[next]) {
			next++
		}
		switch {
		case next == n:
			i = n
		case next-i >= 2:
			i++
		}
		chunks = append(chunks, core[start:i])
	}
	return chunks
}

// mergeEnding applies the first matching rule to the final chunk: silent e,
// then -ed, then -es. A consonant plus -les ending stays its own syllable.
func mergeEnding(chunks []string) []string {
	last := len(chunks) - 1
	prev, final := chunks[last-1], chunks[last]
	head := chunks[:last-1]
	lower := strings.ToLower(final)

	if isSilentE(lower) {
		return append(head, prev+final)
	}

	if onset, ok := endingOnset(lower, "ed"); ok {
		stem := prev + final[:onset]
		if endsWithAny(strings.ToLower(stem), "t", "d") {
			return append(head, stem, final[onset:])
		}
		return append(head, prev+final)
	}

	if onset, ok := endingOnset(lower, "es"); ok {
		stem := prev + final[:onset]
		if syllabicL(strings.ToLower(stem)) {
			return chunks
		}
		if endsWithAny(strings.ToLower(stem), "s", "sh", "ch", "x", "z", "g", "c") {
			return append(head, stem, final[onset:])
		}
		return append(head, prev+final)
	}

	return chunks
}

// isSilentE reports whether chunk is a consonant followed by e, "le" excepted.
func isSilentE(chunk string) bool {
	if len(chunk) != 2 || chunk[1] != 'e' || chunk == "le" {
		return false
	}
	return strings.IndexByte("bcdfghjklmnpqrstvwxz", chunk[0]) >= 0
}

// syllabicL reports whether stem ends in a consonant followed by l, as in
// "tabl" or "circl", where the -les ending is pronounced on its own.
func syllabicL(stem string) bool {
	n := len(stem)
	if n < 2 || stem[n-1] != 'l' {
		return false
	}
	c := stem[n-2]
	return c != 'l' && !isVowel(c) && c >= 'a' && c <= 'z'
}

// endingOnset reports whether chunk is zero or more non-vowels followed by
// ending, and returns the length of that non-vowel onset.
func endingOnset(chunk, ending string) (int, bool) {
	if !strings.HasSuffix(chunk, ending) {
		return 0, false
	}
	onset := len(chunk) - len(ending)
	for i := 0; i < onset; i++ {
		if isVowel(chunk[i]) {
			return 0, false
		}
	}
	return onset, true
}

func endsWithAny(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func isVowel(b byte) bool {
	switch b | 0x20 {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func stripPunctuation(word string) string {
	if !strings.ContainsAny(word, lengthPunctuation) {
		return word
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(lengthPunctuation, r) {
			return -1
		}
		return r
	}, word)
}
