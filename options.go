package syllabify

import (
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-syllabify/internal/logger"
	"github.com/alnah/go-syllabify/internal/syllable"
)

// Option configures an Annotator.
type Option func(*Annotator)

// annotatorConfig holds the settings collected from options.
type annotatorConfig struct {
	backend       string
	patterns      string
	segmenter     syllable.Backend
	separator     string
	minWordLength int
	merge         *bool
	minTextLength *int
	excludeTags   []string
	selector      string
	skipBracketed bool
	style         string
	assetPath     string
	timeout       time.Duration
	settle        time.Duration
	liveMode      string
	debounce      time.Duration
	initialDelay  time.Duration
	logger        logger.Logger
}

// Defaults for browser work.
const (
	defaultTimeout = 30 * time.Second
	defaultSettle  = time.Second
)

// StyleNone disables the built-in stylesheet.
const StyleNone = "none"

func defaultAnnotatorConfig() annotatorConfig {
	return annotatorConfig{
		backend:       syllable.KindHeuristic,
		timeout:       defaultTimeout,
		settle:        defaultSettle,
		logger:        logger.NewNop(),
	}
}

// WithBackend selects the segmentation backend by kind: "heuristic" (the
// default) or "patterns".
func WithBackend(kind string) Option {
	return func(a *Annotator) {
		a.cfg.backend = kind
	}
}

// WithPatterns selects the hyphenation pattern set used by the "patterns"
// backend: an embedded set name or a path to a .pat.txt(.xz) file.
func WithPatterns(nameOrPath string) Option {
	return func(a *Annotator) {
		a.cfg.patterns = nameOrPath
	}
}

// WithSegmenter replaces the built-in backends with fn. fn must be idempotent:
// text that already contains the separator must come back unchanged.
func WithSegmenter(fn func(text string) string) Option {
	return func(a *Annotator) {
		if fn != nil {
			a.cfg.segmenter = syllable.BackendFunc(fn)
		}
	}
}

// WithSeparator replaces the middle dot placed between syllables.
func WithSeparator(sep string) Option {
	return func(a *Annotator) {
		a.cfg.separator = sep
	}
}

// WithMinWordLength leaves words shorter than n letters unsplit.
func WithMinWordLength(n int) Option {
	return func(a *Annotator) {
		a.cfg.minWordLength = n
	}
}

// WithMerge toggles the heuristic backend's "-ed"/"-es" merge rules.
func WithMerge(on bool) Option {
	return func(a *Annotator) {
		a.cfg.merge = &on
	}
}

// WithMinTextLength sets the shortest trimmed text unit, in runes, that is
// segmented.
func WithMinTextLength(n int) Option {
	return func(a *Annotator) {
		a.cfg.minTextLength = &n
	}
}

// WithExcludeTags replaces the set of elements whose text is never touched.
func WithExcludeTags(tags ...string) Option {
	return func(a *Annotator) {
		a.cfg.excludeTags = append([]string{}, tags...)
	}
}

// WithRegions restricts annotation to elements matching a CSS selector.
// Matching elements are tagged once processed and skipped afterwards.
func WithRegions(selector string) Option {
	return func(a *Annotator) {
		a.cfg.selector = selector
	}
}

// WithSkipBracketed leaves section labels such as "[Chorus]" untouched.
func WithSkipBracketed(on bool) Option {
	return func(a *Annotator) {
		a.cfg.skipBracketed = on
	}
}

// WithStyle sets the stylesheet injected into full documents: a built-in
// style name, a CSS file path, or CSS content. StyleNone disables it.
func WithStyle(style string) Option {
	return func(a *Annotator) {
		a.cfg.style = style
	}
}

// WithAssetPath sets a directory that overrides embedded styles and pattern
// sets. Missing assets fall back to the embedded ones.
func WithAssetPath(path string) Option {
	return func(a *Annotator) {
		a.cfg.assetPath = path
	}
}

// WithTimeout sets the per-page browser timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("syllabify: WithTimeout duration must be positive")
	}
	return func(a *Annotator) {
		a.cfg.timeout = d
	}
}

// WithSettle sets how long a fetched page's DOM must stay unchanged before
// it is captured. Zero captures right after load.
func WithSettle(d time.Duration) Option {
	if d < 0 {
		panic("syllabify: WithSettle duration must not be negative")
	}
	return func(a *Annotator) {
		a.cfg.settle = d
	}
}

// WithLiveMode selects how sessions react to inserted content: "immediate"
// (the default) annotates each insertion, "debounced" rescans regions once
// insertions stop for the debounce delay. Debounced mode needs WithRegions.
func WithLiveMode(mode string) Option {
	return func(a *Annotator) {
		a.cfg.liveMode = mode
	}
}

// WithDebounce sets the quiet period of debounced sessions.
func WithDebounce(d time.Duration) Option {
	return func(a *Annotator) {
		a.cfg.debounce = d
	}
}

// WithInitialDelay postpones the first scan of debounced sessions.
func WithInitialDelay(d time.Duration) Option {
	return func(a *Annotator) {
		a.cfg.initialDelay = d
	}
}

// WithLogger sends diagnostics to z. By default nothing is logged.
func WithLogger(z *zap.Logger) Option {
	return func(a *Annotator) {
		if z != nil {
			a.cfg.logger = logger.FromZap(z)
		}
	}
}
