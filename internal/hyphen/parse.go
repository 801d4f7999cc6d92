package hyphen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ulikunitz/xz"
)

// maxPatternFileSize bounds pattern input (full TeX sets are under 1 MB).
const maxPatternFileSize = 16 * 1024 * 1024

type section int

const (
	sectionPatterns section = iota
	sectionExceptions
)

// Parse reads a TeX pattern file.
func Parse(r io.Reader) (*Patterns, error) {
	p := &Patterns{
		values:     make(map[string][]int),
		exceptions: make(map[string][]int),
		LeftMin:    DefaultLeftMin,
		RightMin:   DefaultRightMin,
	}

	sc := bufio.NewScanner(io.LimitReader(r, maxPatternFileSize))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	current := sectionPatterns
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '%'); i >= 0 {
			line = line[:i]
		}

		for _, tok := range strings.Fields(line) {
			switch {
			case strings.HasPrefix(tok, `\patterns{`):
				current = sectionPatterns
				tok = strings.TrimPrefix(tok, `\patterns{`)
			case strings.HasPrefix(tok, `\hyphenation{`):
				current = sectionExceptions
				tok = strings.TrimPrefix(tok, `\hyphenation{`)
			case strings.HasPrefix(tok, `\`):
				continue
			}

			closing := strings.HasSuffix(tok, "}")
			tok = strings.TrimSuffix(tok, "}")
			if tok != "" {
				var err error
				if current == sectionExceptions {
					err = p.addException(tok)
				} else {
					err = p.addPattern(tok)
				}
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
			}
			if closing {
				current = sectionPatterns
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading patterns: %w", err)
	}
	if len(p.values) == 0 && len(p.exceptions) == 0 {
		return nil, ErrNoPatterns
	}
	return p, nil
}

// LoadFile reads patterns from path, decompressing ".xz" files.
func LoadFile(path string) (*Patterns, error) {
	cleanPath := filepath.Clean(path)
	f, err := os.Open(cleanPath) // #nosec G304 -- path is user-provided
	if err != nil {
		return nil, fmt.Errorf("opening pattern file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(cleanPath), ".xz") {
		zr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPattern, cleanPath, err)
		}
		r = zr
	}

	p, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return p, nil
}

// addPattern compiles a pattern such as ".ach4" or "1b2l".
func (p *Patterns) addPattern(tok string) error {
	letters := make([]rune, 0, len(tok))
	scores := []int{0}
	for _, r := range strings.ToLower(tok) {
		switch {
		case r >= '0' && r <= '9':
			scores[len(scores)-1] = int(r - '0')
		case r == '.' || r == '\'' || unicode.IsLetter(r):
			letters = append(letters, r)
			scores = append(scores, 0)
		default:
			return fmt.Errorf("%w: %q", ErrInvalidPattern, tok)
		}
	}
	if len(letters) == 0 {
		return fmt.Errorf("%w: %q has no letters", ErrInvalidPattern, tok)
	}
	for i, r := range letters {
		if r == '.' && i != 0 && i != len(letters)-1 {
			return fmt.Errorf("%w: %q has an inner word boundary", ErrInvalidPattern, tok)
		}
	}

	key := string(letters)
	p.values[key] = scores
	if len(letters) > p.maxLen {
		p.maxLen = len(letters)
	}
	return nil
}

// addException records an exception word such as "ta-ble".
func (p *Patterns) addException(tok string) error {
	var word strings.Builder
	var breaks []int
	idx := 0
	for _, r := range strings.ToLower(tok) {
		if r == '-' {
			if idx == 0 {
				return fmt.Errorf("%w: exception %q starts with a hyphen", ErrInvalidPattern, tok)
			}
			breaks = append(breaks, idx)
			continue
		}
		if !unicode.IsLetter(r) && r != '\'' {
			return fmt.Errorf("%w: exception %q", ErrInvalidPattern, tok)
		}
		word.WriteRune(r)
		idx++
	}
	if n := len(breaks); n > 0 && breaks[n-1] == idx {
		return fmt.Errorf("%w: exception %q ends with a hyphen", ErrInvalidPattern, tok)
	}
	p.exceptions[word.String()] = breaks
	return nil
}
