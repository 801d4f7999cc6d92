package syllabify

// Notes:
// - Annotate is tested end to end with the real segmenter and goldmark; only
//   the browser is replaced by fakeRenderer, injected with withRenderer.
// - Expected segmentations use words whose heuristic output is pinned by the
//   syllable package tests ("wanted" -> "want·ed", "bushes" -> "bush·es").
// - Browser behavior itself (rodRenderer) is not covered here; it needs Chrome.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeRenderer struct {
	mu       sync.Mutex
	snapshot string
	pdf      []byte
	err      error
	gotURL   string
	gotHTML  string
	calls    int
	closed   int
}

func (f *fakeRenderer) Snapshot(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotURL = url
	return f.snapshot, f.err
}

func (f *fakeRenderer) PDF(_ context.Context, htmlContent string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotHTML = htmlContent
	if f.err != nil {
		return nil, f.err
	}
	return f.pdf, nil
}

func (f *fakeRenderer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func withRenderer(r renderer) Option {
	return func(a *Annotator) {
		a.renderer = r
	}
}

func newTestAnnotator(t *testing.T, opts ...Option) (*Annotator, *fakeRenderer) {
	t.Helper()
	fake := &fakeRenderer{}
	a, err := NewAnnotator(append([]Option{withRenderer(fake)}, opts...)...)
	if err != nil {
		t.Fatalf("NewAnnotator() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a, fake
}

// ---------------------------------------------------------------------------
// TestNewAnnotator
// ---------------------------------------------------------------------------

func TestNewAnnotator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{"defaults", nil, nil},
		{"patterns backend", []Option{WithBackend("patterns")}, nil},
		{"regions", []Option{WithRegions(`[data-lyrics-container="true"]`)}, nil},
		{"debounced with regions", []Option{WithRegions(".lyrics"), WithLiveMode("debounced")}, nil},
		{"unknown backend", []Option{WithBackend("neural")}, ErrUnknownBackend},
		{"missing patterns", []Option{WithBackend("patterns"), WithPatterns("klingon")}, ErrBackendUnavailable},
		{"invalid selector", []Option{WithRegions("[[")}, ErrInvalidSelector},
		{"unknown live mode", []Option{WithLiveMode("lazy")}, ErrInvalidOption},
		{"debounced without regions", []Option{WithLiveMode("debounced")}, ErrInvalidOption},
		{"negative min text length", []Option{WithMinTextLength(-1)}, ErrInvalidOption},
		{"unknown style", []Option{WithStyle("baroque")}, ErrStyleNotFound},
		{"missing asset path", []Option{WithAssetPath(filepath.Join(t.TempDir(), "nope"))}, ErrInvalidAssetPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, err := NewAnnotator(append([]Option{withRenderer(&fakeRenderer{})}, tt.opts...)...)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("NewAnnotator() error = %v", err)
				}
				_ = a.Close()
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewAnnotator() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) did not panic")
		}
	}()
	WithTimeout(0)
}

// ---------------------------------------------------------------------------
// TestAnnotate - Formats
// ---------------------------------------------------------------------------

func TestAnnotate_Formats(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnnotator(t)

	tests := []struct {
		name     string
		input    Input
		contains []string
		excludes []string
	}{
		{
			name:     "plain text",
			input:    Input{Content: "I wanted the bushes", Format: FormatText, Title: "Garden"},
			contains: []string{"<title>Garden</title>", "I want·ed the bush·es", "<style>"},
		},
		{
			name:     "markdown",
			input:    Input{Content: "# Notes\n\nThe bushes wanted.\n", Format: FormatMarkdown},
			contains: []string{"<h1", "The bush·es want·ed.", "<style>"},
		},
		{
			name:     "html fragment",
			input:    Input{Content: "<p>the bushes</p><script>wanted()</script>", Format: FormatHTML},
			contains: []string{"<p>the bush·es</p>", "<script>wanted()</script>"},
			excludes: []string{"<html>", "<style>"},
		},
		{
			name:     "auto detects html",
			input:    Input{Content: "  <p>wanted things</p>"},
			contains: []string{"<p>want·ed things</p>"},
		},
		{
			name:     "auto detects text",
			input:    Input{Content: "wanted <b>"},
			contains: []string{"want·ed &lt;b&gt;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := a.Annotate(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Annotate() error = %v", err)
			}
			got := string(res.HTML)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("output contains %q:\n%s", unwanted, got)
				}
			}
			if res.PDF != nil {
				t.Error("PDF set without Input.PDF")
			}
		})
	}
}

func TestAnnotate_MarkdownCodeUntouched(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnnotator(t)
	md := "Everything wanted.\n\n```\nwanted := true\n```\n\nInline `wanted` too.\n"

	res, err := a.Annotate(context.Background(), Input{Content: md, Format: FormatMarkdown})
	if err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}
	if got := strings.Count(string(res.HTML), "want·ed"); got != 1 {
		t.Errorf("segmented %d occurrences of \"wanted\", want 1 (code excluded):\n%s", got, res.HTML)
	}
}

func TestAnnotate_Idempotent(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnnotator(t, WithStyle(StyleNone))
	first, err := a.Annotate(context.Background(), Input{Content: "<p>the bushes wanted water</p>"})
	if err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}
	second, err := a.Annotate(context.Background(), Input{Content: string(first.HTML)})
	if err != nil {
		t.Fatalf("Annotate() second error = %v", err)
	}
	if string(first.HTML) != string(second.HTML) {
		t.Errorf("second pass changed output:\n%s\n%s", first.HTML, second.HTML)
	}
	if second.Stats.Written != 0 {
		t.Errorf("second pass Written = %d, want 0", second.Stats.Written)
	}
}

// ---------------------------------------------------------------------------
// TestAnnotate - Errors
// ---------------------------------------------------------------------------

func TestAnnotate_Errors(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnnotator(t)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		input   Input
		wantErr error
	}{
		{"empty", context.Background(), Input{Content: ""}, ErrEmptyInput},
		{"whitespace", context.Background(), Input{Content: " \n\t"}, ErrEmptyInput},
		{"unknown format", context.Background(), Input{Content: "x", Format: "docx"}, ErrUnknownFormat},
		{"cancelled", cancelled, Input{Content: "wanted"}, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := a.Annotate(tt.ctx, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Annotate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnnotate_SegmenterPanicRecovered(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnnotator(t, WithSegmenter(func(string) string { panic("boom") }))

	res, err := a.Annotate(context.Background(), Input{Content: "<p>the bushes wanted</p>"})
	if err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}
	if res.Stats.Failed != 1 || res.Stats.Written != 0 {
		t.Errorf("Stats = %+v, want one failed unit", res.Stats)
	}
	if !strings.Contains(string(res.HTML), "the bushes wanted") {
		t.Errorf("failed unit was modified:\n%s", res.HTML)
	}
}

// ---------------------------------------------------------------------------
// TestAnnotate - Regions
// ---------------------------------------------------------------------------

func TestAnnotate_Regions(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnnotator(t,
		WithRegions(`[data-lyrics-container="true"]`),
		WithSkipBracketed(true),
		WithMinTextLength(1),
		WithStyle(StyleNone),
	)
	page := `<!DOCTYPE html><html><head></head><body>` +
		`<p>wanted outside</p>` +
		`<div data-lyrics-container="true">[Chorus]<br/>wanted bushes</div>` +
		`</body></html>`

	res, err := a.Annotate(context.Background(), Input{Content: page})
	if err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}
	got := string(res.HTML)
	for _, want := range []string{
		"<p>wanted outside</p>",
		"[Chorus]",
		"want·ed bush·es",
		`class="syllabified-processed"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if res.Stats.Regions != 1 || res.Stats.Written != 1 {
		t.Errorf("Stats = %+v, want 1 region and 1 written unit", res.Stats)
	}
}

// ---------------------------------------------------------------------------
// TestAnnotate - Styles, base URL and source paths
// ---------------------------------------------------------------------------

func TestAnnotate_Styles(t *testing.T) {
	t.Parallel()

	cssFile := filepath.Join(t.TempDir(), "custom.css")
	if err := os.WriteFile(cssFile, []byte("body { color: teal; }"), 0o644); err != nil {
		t.Fatal(err)
	}
	page := "<!DOCTYPE html><html><head><title>t</title></head><body><p>wanted</p></body></html>"

	tests := []struct {
		name     string
		style    string
		css      string
		contains []string
		excludes []string
	}{
		{"default style", "", "", []string{"<style>"}, nil},
		{"none", StyleNone, "", nil, []string{"<style>"}},
		{"file", cssFile, "", []string{"color: teal"}, nil},
		{"inline css", "p { margin: 0; }", "", []string{"p { margin: 0; }"}, nil},
		{"input css only", StyleNone, "h1{x:y}", []string{"<style>h1{x:y}</style>"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, _ := newTestAnnotator(t, WithStyle(tt.style))
			res, err := a.Annotate(context.Background(), Input{Content: page, CSS: tt.css})
			if err != nil {
				t.Fatalf("Annotate() error = %v", err)
			}
			got := string(res.HTML)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("output contains %q:\n%s", unwanted, got)
				}
			}
		})
	}
}

func TestAnnotate_InputCSSAfterStyle(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnnotator(t, WithStyle("p { color: red; }"))
	res, err := a.Annotate(context.Background(), Input{
		Content: "<html><head></head><body><p>wanted</p></body></html>",
		CSS:     "p { color: blue; }",
	})
	if err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}
	got := string(res.HTML)
	red, blue := strings.Index(got, "color: red"), strings.Index(got, "color: blue")
	if red < 0 || blue < 0 || blue < red {
		t.Errorf("input CSS must follow the annotator style:\n%s", got)
	}
}

func TestAnnotate_BaseURLAndSourceDir(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnnotator(t, WithStyle(StyleNone))
	dir := t.TempDir()

	res, err := a.Annotate(context.Background(), Input{
		Content:   `<html><head></head><body><img src="cover.png"><p>wanted</p></body></html>`,
		SourceDir: dir,
		BaseURL:   "https://example.com/songs/",
	})
	if err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}
	got := string(res.HTML)
	if !strings.Contains(got, `<base href="https://example.com/songs/"/>`) {
		t.Errorf("base element missing:\n%s", got)
	}
	if !strings.Contains(got, `src="file://`) {
		t.Errorf("relative image path not rewritten:\n%s", got)
	}
}

// ---------------------------------------------------------------------------
// TestAnnotate - PDF
// ---------------------------------------------------------------------------

func TestAnnotate_PDF(t *testing.T) {
	t.Parallel()

	a, fake := newTestAnnotator(t)
	fake.pdf = []byte("%PDF-1.7")

	res, err := a.Annotate(context.Background(), Input{Content: "wanted", Format: FormatText, PDF: true})
	if err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}
	if string(res.PDF) != "%PDF-1.7" {
		t.Errorf("PDF = %q, want renderer output", res.PDF)
	}
	if fake.gotHTML != string(res.HTML) {
		t.Error("renderer did not receive the annotated HTML")
	}
}

func TestAnnotate_PDFError(t *testing.T) {
	t.Parallel()

	a, fake := newTestAnnotator(t)
	fake.err = ErrPDFGeneration

	_, err := a.Annotate(context.Background(), Input{Content: "wanted", PDF: true})
	if !errors.Is(err, ErrPDFGeneration) {
		t.Errorf("Annotate() error = %v, want ErrPDFGeneration", err)
	}
}

// ---------------------------------------------------------------------------
// TestSegment
// ---------------------------------------------------------------------------

func TestAnnotator_Segment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
		in   string
		want string
	}{
		{"default", nil, "I wanted the bushes", "I want·ed the bush·es"},
		{"separator", []Option{WithSeparator("-")}, "I wanted", "I want-ed"},
		{"merge disabled", []Option{WithMerge(false)}, "hate", "ha·te"},
		{"min word length", []Option{WithMinWordLength(7)}, "wanted", "wanted"},
		{"custom segmenter", []Option{WithSegmenter(strings.ToUpper)}, "wanted", "WANTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, _ := newTestAnnotator(t, tt.opts...)
			got, err := a.Segment(tt.in)
			if err != nil {
				t.Fatalf("Segment() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Segment(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFetchPage
// ---------------------------------------------------------------------------

func TestFetchPage(t *testing.T) {
	t.Parallel()

	a, fake := newTestAnnotator(t)
	fake.snapshot = "<html><body><p>rendered</p></body></html>"

	got, err := a.FetchPage(context.Background(), "https://example.com/song")
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if got != fake.snapshot || fake.gotURL != "https://example.com/song" {
		t.Errorf("FetchPage() = %q from %q", got, fake.gotURL)
	}
}

func TestFetchPage_InvalidURL(t *testing.T) {
	t.Parallel()

	a, fake := newTestAnnotator(t)
	for _, u := range []string{"", "example.com", "file:///etc/passwd", "https://"} {
		if _, err := a.FetchPage(context.Background(), u); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("FetchPage(%q) error = %v, want ErrInvalidURL", u, err)
		}
	}
	if fake.calls != 0 {
		t.Errorf("renderer called %d times for invalid URLs", fake.calls)
	}
}

func TestAnnotator_Close(t *testing.T) {
	t.Parallel()

	fake := &fakeRenderer{}
	a, err := NewAnnotator(withRenderer(fake))
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if fake.closed != 1 {
		t.Errorf("renderer closed %d times, want 1", fake.closed)
	}
}
