package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	syllabify "github.com/alnah/go-syllabify"
	"github.com/alnah/go-syllabify/internal/config"
	"github.com/alnah/go-syllabify/internal/hints"
	"github.com/alnah/go-syllabify/internal/logger"
	"github.com/alnah/go-syllabify/internal/manifest"
	"github.com/alnah/go-syllabify/internal/yamlutil"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// loadSettings resolves the run configuration.
// Precedence: flags > SYLLABIFY_* env vars > config file or profile > defaults.
func loadSettings(fs *flag.FlagSet, common *commonFlags, env *Environment) (*config.Config, error) {
	if err := loadDotEnv(dotEnvFile); err != nil {
		return nil, err
	}
	if !common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}
	envCfg, err := loadEnvConfig()
	if err != nil {
		return nil, err
	}

	cfg, err := baseConfig(common, envCfg)
	if err != nil {
		return nil, err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(fs, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// baseConfig loads the config file, or the selected profile without one.
func baseConfig(common *commonFlags, envCfg *envConfig) (*config.Config, error) {
	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	profile := common.profile
	if profile == "" {
		profile = envCfg.Profile
	}

	if name == "" {
		return config.Profile(profile)
	}
	if common.profile != "" {
		return nil, fmt.Errorf("%w: --profile cannot be combined with a config file; set profile in the file", ErrUsage)
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges explicitly set flags into cfg. Flags a command does not
// register are never changed.
func mergeFlags(fs *flag.FlagSet, cfg *config.Config) {
	str := func(name string, dst *string) {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	integer := func(name string, dst *int) {
		if fs.Changed(name) {
			*dst, _ = fs.GetInt(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if fs.Changed(name) {
			*dst, _ = fs.GetBool(name)
		}
	}
	duration := func(name string, dst *string) {
		if fs.Changed(name) {
			d, _ := fs.GetDuration(name)
			*dst = d.String()
		}
	}

	// Segmenter
	str("backend", &cfg.Segmenter.Backend)
	str("patterns", &cfg.Segmenter.Patterns)
	str("separator", &cfg.Segmenter.Separator)
	integer("min-word-length", &cfg.Segmenter.MinWordLength)
	if fs.Changed("no-merge") {
		noMerge, _ := fs.GetBool("no-merge")
		merge := !noMerge
		cfg.Segmenter.Merge = &merge
	}

	// Pipeline and regions
	integer("min-text-length", &cfg.Pipeline.MinTextLength)
	if fs.Changed("exclude") {
		cfg.Pipeline.ExcludeTags, _ = fs.GetStringSlice("exclude")
	}
	str("mode", &cfg.Pipeline.Mode)
	duration("debounce", &cfg.Pipeline.Debounce)
	duration("initial-delay", &cfg.Pipeline.InitialDelay)
	str("regions", &cfg.Regions.Selector)
	boolean("skip-bracketed", &cfg.Regions.SkipBracketed)

	// Output and assets
	str("format", &cfg.Output.Format)
	if pdf, _ := fs.GetBool("pdf"); fs.Changed("pdf") && pdf {
		cfg.Output.Format = config.FormatPDF
	}
	str("style", &cfg.Output.Style)
	if noStyle, _ := fs.GetBool("no-style"); fs.Changed("no-style") && noStyle {
		cfg.Output.Style = syllabify.StyleNone
	}
	str("asset-path", &cfg.Assets.BasePath)

	// Browser
	duration("timeout", &cfg.Browser.Timeout)
	duration("settle", &cfg.Browser.Settle)
	integer("workers", &cfg.Browser.Workers)

	// Logging
	if v, _ := fs.GetBool("verbose"); fs.Changed("verbose") && v {
		cfg.Log.Level = "debug"
	}
	if q, _ := fs.GetBool("quiet"); fs.Changed("quiet") && q {
		cfg.Log.Level = "error"
	}
	boolean("log-json", &cfg.Log.JSON)
}

// newLogger creates the diagnostics logger for cfg, writing to env.Stderr.
func newLogger(cfg *config.Config, env *Environment) *zap.Logger {
	return logger.NewZap(logger.Config{
		Level:  cfg.Log.Level,
		JSON:   cfg.Log.JSON,
		Output: env.Stderr,
	})
}

// annotatorOptions translates a validated configuration into annotator options.
func annotatorOptions(cfg *config.Config, z *zap.Logger) []syllabify.Option {
	live := cfg.LiveConfig()
	opts := []syllabify.Option{
		syllabify.WithBackend(cfg.Segmenter.Backend),
		syllabify.WithPatterns(cfg.Segmenter.Patterns),
		syllabify.WithSeparator(cfg.Segmenter.Separator),
		syllabify.WithMinWordLength(cfg.Segmenter.MinWordLength),
		syllabify.WithMinTextLength(cfg.Pipeline.MinTextLength),
		syllabify.WithRegions(cfg.Regions.Selector),
		syllabify.WithSkipBracketed(cfg.Regions.SkipBracketed),
		syllabify.WithStyle(cfg.Output.Style),
		syllabify.WithAssetPath(cfg.Assets.BasePath),
		syllabify.WithLiveMode(cfg.Pipeline.Mode),
		syllabify.WithDebounce(live.Debounce),
		syllabify.WithInitialDelay(live.InitialDelay),
		syllabify.WithSettle(cfg.BrowserSettle()),
		syllabify.WithLogger(z),
	}
	if cfg.Segmenter.Merge != nil {
		opts = append(opts, syllabify.WithMerge(*cfg.Segmenter.Merge))
	}
	if len(cfg.Pipeline.ExcludeTags) > 0 {
		opts = append(opts, syllabify.WithExcludeTags(cfg.Pipeline.ExcludeTags...))
	}
	if d := cfg.BrowserTimeout(); d > 0 {
		opts = append(opts, syllabify.WithTimeout(d))
	}
	return opts
}

// settingsDigest hashes the settings that change converted output, so a
// manifest written under other settings is discarded.
func settingsDigest(cfg *config.Config) string {
	data, _ := yamlutil.Marshal(struct {
		Segmenter config.SegmenterConfig `yaml:"segmenter"`
		Pipeline  config.PipelineConfig  `yaml:"pipeline"`
		Regions   config.RegionsConfig   `yaml:"regions"`
		Format    string                 `yaml:"format"`
		Style     string                 `yaml:"style"`
		Assets    config.AssetsConfig    `yaml:"assets"`
	}{cfg.Segmenter, cfg.Pipeline, cfg.Regions, cfg.Output.Format, cfg.Output.Style, cfg.Assets})
	return manifest.HashSettings(Version, string(data))
}
