package syllabify

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/go-syllabify/internal/pipeline"
)

// Format identifies the kind of input content.
type Format string

// Input formats.
const (
	FormatAuto     Format = ""
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat parses a format name. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "html", "htm":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q (want html, markdown, or text)", ErrUnknownFormat, s)
	}
}

// FormatForPath returns the format implied by a file extension, or
// FormatAuto when the extension is not recognized.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML
	case ".md", ".markdown":
		return FormatMarkdown
	case ".txt", ".text":
		return FormatText
	default:
		return FormatAuto
	}
}

// detect guesses the format of content that carries no explicit format.
func detect(content string) Format {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "<") {
		return FormatHTML
	}
	return FormatText
}

// Input contains the content to annotate.
type Input struct {
	Content string // required
	Format  Format // FormatAuto guesses HTML or text
	Title   string // document title for Markdown and text input

	// SourceDir resolves relative image and link paths to file:// URLs.
	SourceDir string
	// BaseURL is inserted as <base href> so a page fetched from the web keeps
	// its relative resources when rendered offline.
	BaseURL string
	// CSS is appended after the annotator style, so it can override it.
	CSS string
	// PDF requests a PDF rendering of the annotated document.
	PDF bool
}

// Stats counts the work done on a document.
type Stats struct {
	Regions int // regions tagged as processed
	Units   int // text units segmented
	Written int // text units whose content changed
	Failed  int // text units left alone after a segmenter failure
}

func statsFrom(s pipeline.Stats) Stats {
	return Stats{Regions: s.Regions, Units: s.Units, Written: s.Written, Failed: s.Failed}
}

// Result contains the annotated outputs.
type Result struct {
	HTML  []byte
	PDF   []byte // nil unless Input.PDF was set
	Stats Stats
}
