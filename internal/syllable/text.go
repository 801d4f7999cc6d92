package syllable

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// mapWords applies fn to every maximal non-whitespace run of text. Whitespace
// is copied through byte for byte.
func mapWords(text string, fn func(string) string) string {
	var b strings.Builder
	changed := false
	start := -1

	flush := func(end int) {
		word := text[start:end]
		out := fn(word)
		if out != word {
			changed = true
		}
		b.WriteString(out)
		start = -1
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			if start >= 0 {
				flush(i)
			}
			b.WriteString(text[i : i+size])
		} else if start < 0 {
			start = i
		}
		i += size
	}
	if start >= 0 {
		flush(len(text))
	}

	if !changed {
		return text
	}
	return b.String()
}
