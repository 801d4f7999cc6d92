package syllabify

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/alnah/go-syllabify/internal/assets"
	"github.com/alnah/go-syllabify/internal/fileutil"
	"github.com/alnah/go-syllabify/internal/logger"
	"github.com/alnah/go-syllabify/internal/pipeline"
	"github.com/alnah/go-syllabify/internal/region"
	"github.com/alnah/go-syllabify/internal/syllable"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownConverter = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.StyleInjector     = pipeline.StyleInjection{}
	_ renderer                   = (*rodRenderer)(nil)
)

// Annotator inserts syllable separators into documents.
// Create with NewAnnotator, use Annotate, and Close when done.
//
// Annotate, Segment and FetchPage are safe for concurrent use. PDF rendering
// and page fetches share one browser and run one at a time; use an
// AnnotatorPool for parallel browser work.
type Annotator struct {
	cfg         annotatorConfig
	assetLoader assets.AssetLoader
	backend     syllable.Backend
	regions     *region.Finder
	live        pipeline.LiveConfig
	style       string
	markdown    pipeline.MarkdownConverter
	styler      pipeline.StyleInjector
	renderer    renderer
	log         logger.Logger
}

// NewAnnotator creates an Annotator. With no options it segments the whole
// body of a document with the heuristic backend.
// Returns an error when the backend, its patterns, the region selector or the
// style cannot be resolved.
func NewAnnotator(opts ...Option) (*Annotator, error) {
	a := &Annotator{
		cfg:      defaultAnnotatorConfig(),
		markdown: pipeline.NewGoldmarkConverter(),
		styler:   pipeline.StyleInjection{},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.cfg.logger

	resolver, err := assets.NewAssetResolver(a.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	a.assetLoader = resolver

	if err := a.resolveBackend(); err != nil {
		return nil, err
	}

	a.regions, err = region.NewFinder(a.cfg.selector)
	if err != nil {
		return nil, err
	}

	mode, err := pipeline.ParseMode(a.cfg.liveMode)
	if err != nil {
		return nil, err
	}
	if mode == pipeline.ModeDebounced && a.regions.WholePage() {
		return nil, fmt.Errorf("%w: debounced mode requires a region selector", ErrInvalidOption)
	}
	a.live = pipeline.LiveConfig{Mode: mode, Debounce: a.cfg.debounce, InitialDelay: a.cfg.initialDelay}

	// Surface configuration errors now rather than on the first document.
	if _, err := pipeline.New(a.pipelineConfig()); err != nil {
		return nil, err
	}

	if err := a.resolveStyle(); err != nil {
		return nil, err
	}

	// Create the renderer if not injected (e.g., by tests). The browser itself
	// starts on first use.
	if a.renderer == nil {
		a.renderer = newRodRenderer(a.cfg.timeout, a.cfg.settle, a.log)
	}
	return a, nil
}

// resolveBackend builds the segmentation backend from the options.
func (a *Annotator) resolveBackend() error {
	if a.cfg.segmenter != nil {
		a.backend = a.cfg.segmenter
		return nil
	}

	var opts []syllable.Option
	if a.cfg.separator != "" {
		opts = append(opts, syllable.WithSeparator(a.cfg.separator))
	}
	if a.cfg.minWordLength > 0 {
		opts = append(opts, syllable.WithMinWordLength(a.cfg.minWordLength))
	}
	if a.cfg.merge != nil {
		opts = append(opts, syllable.WithMerge(*a.cfg.merge))
	}

	kind := strings.ToLower(strings.TrimSpace(a.cfg.backend))
	if kind == syllable.KindPatterns {
		patterns, err := assets.LoadPatternSet(a.assetLoader, a.cfg.patterns)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		backend, err := syllable.New(kind, patterns, opts...)
		if err != nil {
			return err
		}
		a.backend = backend
		return nil
	}

	backend, err := syllable.New(kind, nil, opts...)
	if err != nil {
		return err
	}
	a.backend = backend
	return nil
}

// resolveStyle resolves the style option (name, path, or CSS content) to CSS.
func (a *Annotator) resolveStyle() error {
	input := strings.TrimSpace(a.cfg.style)
	switch {
	case strings.EqualFold(input, StyleNone):
		return nil
	case input == "":
		input = assets.DefaultStyleName
	}

	// File path? (contains / or \)
	if fileutil.IsFilePath(input) && !strings.Contains(input, "{") {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		a.style = string(content)
		return nil
	}

	// CSS content? (contains {)
	if strings.Contains(input, "{") {
		a.style = input
		return nil
	}

	css, err := a.assetLoader.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("loading style %q: %w", input, err)
	}
	a.style = css
	return nil
}

// pipelineConfig returns the settings of a fresh pipeline annotator. Each
// document gets its own, since the processed table is per tree.
func (a *Annotator) pipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig(a.backend)
	if a.cfg.separator != "" {
		cfg.Separator = a.cfg.separator
	}
	if a.cfg.minTextLength != nil {
		cfg.MinTextLength = *a.cfg.minTextLength
	}
	cfg.ExcludeTags = a.cfg.excludeTags
	cfg.Regions = a.regions
	if a.cfg.skipBracketed {
		cfg.SkipLine = region.Bracketed
	}
	cfg.Logger = a.log
	return cfg
}

// Segment inserts separators into plain text, word by word.
func (a *Annotator) Segment(text string) (string, error) {
	return syllable.Apply(a.backend, text)
}

// Annotate runs the full pipeline and returns the annotated document.
// The context is used for cancellation and timeout.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (a *Annotator) Annotate(ctx context.Context, in Input) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := a.toHTML(ctx, in)
	if err != nil {
		return nil, err
	}

	m, err := pipeline.ParseMarkup(content)
	if err != nil {
		return nil, err
	}
	if in.SourceDir != "" {
		if err := m.RewriteRelativePaths(in.SourceDir); err != nil {
			return nil, fmt.Errorf("rewriting relative paths: %w", err)
		}
	}
	m.SetBase(in.BaseURL)

	pa, err := pipeline.New(a.pipelineConfig())
	if err != nil {
		return nil, err
	}
	st := pa.Annotate(m.Root)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Annotator style first (base), input CSS last (can override).
	// Fragments are embedded by the caller, so they only get input CSS.
	if !m.Fragment {
		a.styler.InjectStyle(m, a.style)
	}
	a.styler.InjectStyle(m, in.CSS)

	rendered, err := m.Render()
	if err != nil {
		return nil, err
	}
	res = &Result{HTML: []byte(rendered), Stats: statsFrom(st)}

	a.log.Debug("document annotated",
		logger.Int("regions", st.Regions),
		logger.Int("units", st.Units),
		logger.Int("written", st.Written),
		logger.Int("failed", st.Failed),
	)

	if !in.PDF {
		return res, nil
	}
	pdf, err := a.renderer.PDF(ctx, rendered)
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}
	res.PDF = pdf
	return res, nil
}

// toHTML converts the input to HTML according to its format.
func (a *Annotator) toHTML(ctx context.Context, in Input) (string, error) {
	format := in.Format
	if format == FormatAuto {
		format = detect(in.Content)
	}
	switch format {
	case FormatHTML:
		return in.Content, nil
	case FormatMarkdown:
		out, err := a.markdown.ToHTML(ctx, in.Content, in.Title)
		if err != nil {
			return "", fmt.Errorf("converting to HTML: %w", err)
		}
		return out, nil
	case FormatText:
		return pipeline.TextToHTML(in.Content, in.Title), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
}

// FetchPage loads rawURL in the browser, waits for its scripts to settle and
// returns the rendered DOM as HTML. Pass the result to Annotate with the URL
// as Input.BaseURL.
func (a *Annotator) FetchPage(ctx context.Context, rawURL string) (string, error) {
	if !fileutil.IsURL(rawURL) {
		return "", fmt.Errorf("%w: %q (want http or https)", ErrInvalidURL, rawURL)
	}
	if u, err := url.Parse(rawURL); err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return a.renderer.Snapshot(ctx, rawURL)
}

// Close releases resources (headless Chrome browser).
func (a *Annotator) Close() error {
	if a.renderer != nil {
		return a.renderer.Close()
	}
	return nil
}
