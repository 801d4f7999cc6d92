// Package config loads and validates syllabify configuration files.
//
// A configuration file may name a profile; the file's fields are applied on
// top of that profile. Durations are written as Go duration strings ("500ms").
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alnah/go-syllabify/internal/assets"
	"github.com/alnah/go-syllabify/internal/fileutil"
	"github.com/alnah/go-syllabify/internal/pipeline"
	"github.com/alnah/go-syllabify/internal/region"
	"github.com/alnah/go-syllabify/internal/syllable"
	"github.com/alnah/go-syllabify/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
	ErrUnknownProfile  = errors.New("unknown profile")
)

// Field length limits.
const (
	MaxSelectorLength  = 500
	MaxSeparatorLength = 8 // runes
	MaxNameLength      = 100
	MaxPathLength      = 4096
	MaxExcludeTags     = 64
)

// Profile names.
const (
	ProfileDefault = "default"
	ProfilePage    = "page"
	ProfileLyrics  = "lyrics"
)

// Output formats.
const (
	FormatAuto = ""
	FormatHTML = "html"
	FormatPDF  = "pdf"
	FormatText = "text"
)

// DefaultOutputDir is the mirror folder written by batch conversion.
const DefaultOutputDir = "syllabified"

// Config holds all run-time settings.
type Config struct {
	Profile   string          `yaml:"profile"`
	Segmenter SegmenterConfig `yaml:"segmenter"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Regions   RegionsConfig   `yaml:"regions"`
	Output    OutputConfig    `yaml:"output"`
	Assets    AssetsConfig    `yaml:"assets"`
	Browser   BrowserConfig   `yaml:"browser"`
	Log       LogConfig       `yaml:"log"`
}

// SegmenterConfig selects and tunes the segmentation backend.
type SegmenterConfig struct {
	Backend       string `yaml:"backend"`       // "heuristic" or "patterns"
	Patterns      string `yaml:"patterns"`      // embedded set name or file path
	Separator     string `yaml:"separator"`     // default "·"
	MinWordLength int    `yaml:"minWordLength"` // 0 = backend default
	Merge         *bool  `yaml:"merge"`         // heuristic suffix merging, default on
}

// PipelineConfig tunes unit eligibility and live scheduling.
type PipelineConfig struct {
	MinTextLength int      `yaml:"minTextLength"`
	ExcludeTags   []string `yaml:"excludeTags"` // empty = built-in set
	Mode          string   `yaml:"mode"`        // "immediate" or "debounced"
	Debounce      string   `yaml:"debounce"`
	InitialDelay  string   `yaml:"initialDelay"`
}

// RegionsConfig designates the annotated content regions.
type RegionsConfig struct {
	Selector      string `yaml:"selector"` // empty = document body
	SkipBracketed bool   `yaml:"skipBracketed"`
}

// OutputConfig defines output destination and presentation.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // "", "html", "pdf", "text"
	Style  string `yaml:"style"`  // CSS style name or path, "none" disables
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets only
}

// BrowserConfig tunes headless Chrome work.
type BrowserConfig struct {
	Timeout string `yaml:"timeout"` // per page
	Settle  string `yaml:"settle"`  // DOM quiet period before snapshot
	Workers int    `yaml:"workers"` // 0 = automatic
}

// LogConfig defines diagnostics output.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the whole-page heuristic configuration.
func DefaultConfig() *Config {
	return &Config{
		Profile: ProfileDefault,
		Segmenter: SegmenterConfig{
			Backend:   syllable.KindHeuristic,
			Patterns:  assets.DefaultPatternsName,
			Separator: syllable.Separator,
		},
		Pipeline: PipelineConfig{
			MinTextLength: pipeline.DefaultMinTextLength,
			Mode:          pipeline.ModeImmediate.String(),
			Debounce:      pipeline.DefaultDebounce.String(),
			InitialDelay:  "0s",
		},
		Output: OutputConfig{
			Dir:   DefaultOutputDir,
			Style: assets.DefaultStyleName,
		},
		Browser: BrowserConfig{
			Timeout: "30s",
			Settle:  "1s",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Profiles lists the built-in profile names.
func Profiles() []string {
	return []string{ProfileDefault, ProfileLyrics, ProfilePage}
}

// Profile returns a built-in profile.
//   - page: whole body, pattern backend, words under six letters untouched.
//   - lyrics: lyric containers only, heuristic backend, debounced rescans,
//     section labels such as "[Chorus]" skipped.
func Profile(name string) (*Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProfileDefault:
		return cfg, nil
	case ProfilePage:
		cfg.Profile = ProfilePage
		cfg.Segmenter.Backend = syllable.KindPatterns
		cfg.Segmenter.MinWordLength = syllable.DefaultPatternsMinWordLength
		return cfg, nil
	case ProfileLyrics:
		cfg.Profile = ProfileLyrics
		cfg.Segmenter.Backend = syllable.KindHeuristic
		cfg.Regions.Selector = region.LyricsSelector
		cfg.Regions.SkipBracketed = true
		cfg.Pipeline.MinTextLength = 1
		cfg.Pipeline.Mode = pipeline.ModeDebounced.String()
		cfg.Pipeline.InitialDelay = "1s"
		return cfg, nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownProfile, name, strings.Join(Profiles(), ", "))
	}
}

// Validate checks every field. Called by LoadConfig; available to callers that
// build or override a Config themselves.
func (c *Config) Validate() error {
	if c.Segmenter.Backend != "" && !slices.Contains(syllable.Kinds(), strings.ToLower(c.Segmenter.Backend)) {
		return fmt.Errorf("%w: segmenter.backend %q (must be one of %s)",
			ErrInvalidValue, c.Segmenter.Backend, strings.Join(syllable.Kinds(), ", "))
	}
	if err := validateFieldLength("segmenter.patterns", c.Segmenter.Patterns, MaxPathLength); err != nil {
		return err
	}
	if n := utf8.RuneCountInString(c.Segmenter.Separator); n > MaxSeparatorLength {
		return fmt.Errorf("%w: segmenter.separator (%d runes, max %d)", ErrFieldTooLong, n, MaxSeparatorLength)
	}
	if c.Segmenter.Separator != "" && strings.TrimSpace(c.Segmenter.Separator) == "" {
		return fmt.Errorf("%w: segmenter.separator cannot be whitespace", ErrInvalidValue)
	}
	if c.Segmenter.MinWordLength < 0 {
		return fmt.Errorf("%w: segmenter.minWordLength must be >= 0, got %d", ErrInvalidValue, c.Segmenter.MinWordLength)
	}

	if c.Pipeline.MinTextLength < 0 {
		return fmt.Errorf("%w: pipeline.minTextLength must be >= 0, got %d", ErrInvalidValue, c.Pipeline.MinTextLength)
	}
	if len(c.Pipeline.ExcludeTags) > MaxExcludeTags {
		return fmt.Errorf("%w: pipeline.excludeTags (%d entries, max %d)", ErrFieldTooLong, len(c.Pipeline.ExcludeTags), MaxExcludeTags)
	}
	for i, tag := range c.Pipeline.ExcludeTags {
		if strings.TrimSpace(tag) == "" || strings.ContainsAny(tag, " <>/") {
			return fmt.Errorf("%w: pipeline.excludeTags[%d] %q is not a tag name", ErrInvalidValue, i, tag)
		}
	}
	mode, err := pipeline.ParseMode(c.Pipeline.Mode)
	if err != nil {
		return fmt.Errorf("%w: pipeline.mode: %v", ErrInvalidValue, err)
	}
	for _, d := range []struct{ name, value string }{
		{"pipeline.debounce", c.Pipeline.Debounce},
		{"pipeline.initialDelay", c.Pipeline.InitialDelay},
		{"browser.timeout", c.Browser.Timeout},
		{"browser.settle", c.Browser.Settle},
	} {
		if _, err := parseDuration(d.name, d.value); err != nil {
			return err
		}
	}

	if err := validateFieldLength("regions.selector", c.Regions.Selector, MaxSelectorLength); err != nil {
		return err
	}
	if _, err := region.NewFinder(c.Regions.Selector); err != nil {
		return fmt.Errorf("%w: regions.selector: %v", ErrInvalidValue, err)
	}
	if mode == pipeline.ModeDebounced && strings.TrimSpace(c.Regions.Selector) == "" {
		return fmt.Errorf("%w: pipeline.mode debounced requires regions.selector", ErrInvalidValue)
	}

	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}
	switch strings.ToLower(c.Output.Format) {
	case FormatAuto, FormatHTML, FormatPDF, FormatText:
	default:
		return fmt.Errorf("%w: output.format %q (must be html, pdf, or text)", ErrInvalidValue, c.Output.Format)
	}
	if err := validateFieldLength("output.style", c.Output.Style, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	if c.Browser.Workers < 0 {
		return fmt.Errorf("%w: browser.workers must be >= 0, got %d", ErrInvalidValue, c.Browser.Workers)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
	}
	return nil
}

// LiveConfig converts the pipeline section to live pipeline settings.
// The receiver must have passed Validate.
func (c *Config) LiveConfig() pipeline.LiveConfig {
	mode, _ := pipeline.ParseMode(c.Pipeline.Mode)
	debounce, _ := parseDuration("", c.Pipeline.Debounce)
	delay, _ := parseDuration("", c.Pipeline.InitialDelay)
	return pipeline.LiveConfig{Mode: mode, Debounce: debounce, InitialDelay: delay}
}

// BrowserTimeout returns browser.timeout as a duration, zero when unset.
func (c *Config) BrowserTimeout() time.Duration {
	d, _ := parseDuration("", c.Browser.Timeout)
	return d
}

// BrowserSettle returns browser.settle as a duration, zero when unset.
func (c *Config) BrowserSettle() time.Duration {
	d, _ := parseDuration("", c.Browser.Settle)
	return d
}

func parseDuration(field, value string) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a duration", ErrInvalidValue, field, value)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, field)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's searched as name.yaml or name.yml in the current directory,
// then in the user config directory. There is no silent fallback.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := yamlutil.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a configuration document on top of the profile it names.
func Parse(data []byte) (*Config, error) {
	var head struct {
		Profile string `yaml:"profile"`
	}
	if err := yamlutil.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg, err := Profile(head.Profile)
	if err != nil {
		return nil, err
	}
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths returns the candidate files for a config name, in search order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, "go-syllabify", name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
