package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/alnah/go-syllabify/internal/config"
	"github.com/alnah/go-syllabify/internal/fileutil"
)

// envPrefix namespaces every recognized environment variable.
const envPrefix = "SYLLABIFY_"

// dotEnvFile is loaded from the working directory when present. Variables
// already set in the environment win over the file.
const dotEnvFile = ".env"

// ErrEnvConfig wraps malformed environment values.
var ErrEnvConfig = errors.New("invalid environment variable")

// envConfig holds configuration from SYLLABIFY_* environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath    string        `env:"CONFIG"`
	Profile       string        `env:"PROFILE"`
	Backend       string        `env:"BACKEND"`
	Patterns      string        `env:"PATTERNS"`
	Separator     string        `env:"SEPARATOR"`
	MinWordLength int           `env:"MIN_WORD_LENGTH"`
	MinTextLength int           `env:"MIN_TEXT_LENGTH"`
	Regions       string        `env:"REGIONS"`
	SkipBracketed bool          `env:"SKIP_BRACKETED"`
	Mode          string        `env:"MODE"`
	Debounce      time.Duration `env:"DEBOUNCE"`
	Style         string        `env:"STYLE"`
	AssetPath     string        `env:"ASSET_PATH"`
	OutputDir     string        `env:"OUTPUT_DIR"`
	Format        string        `env:"FORMAT"`
	Timeout       time.Duration `env:"TIMEOUT"`
	Workers       int           `env:"WORKERS"`
	LogLevel      string        `env:"LOG_LEVEL"`
	LogJSON       bool          `env:"LOG_JSON"`

	// set records the variables present with a non-empty value.
	set map[string]bool
}

// has reports whether the variable with the given suffix was set.
func (e *envConfig) has(suffix string) bool {
	return e.set[envPrefix+suffix]
}

// loadDotEnv loads path into the process environment if it exists.
func loadDotEnv(path string) error {
	if !fileutil.FileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: loading %s: %v", ErrEnvConfig, path, err)
	}
	return nil
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() (*envConfig, error) {
	cfg := &envConfig{set: make(map[string]bool)}
	err := env.ParseWithOptions(cfg, env.Options{
		Prefix: envPrefix,
		OnSet: func(tag string, value interface{}, _ bool) {
			if s, ok := value.(string); ok && s != "" {
				cfg.set[tag] = true
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvConfig, err)
	}
	return cfg, nil
}

// knownEnvVars lists the recognized SYLLABIFY_* variable names.
func knownEnvVars() map[string]bool {
	known := map[string]bool{envPrefix + "CONTAINER": true} // read by doctor
	params, err := env.GetFieldParamsWithOptions(&envConfig{}, env.Options{Prefix: envPrefix})
	if err != nil {
		return known
	}
	for _, p := range params {
		known[p.Key] = true
	}
	return known
}

// warnUnknownEnvVars warns about unrecognized SYLLABIFY_* variables.
// Helps catch typos like SYLLABIFY_BAKCEND.
func warnUnknownEnvVars(w io.Writer) {
	known := knownEnvVars()
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !known[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overrides cfg with every variable that was set.
// Precedence: flags > env vars > config file > defaults
// (flags are applied later via mergeFlags).
func applyEnvConfig(e *envConfig, cfg *config.Config) {
	if e.has("BACKEND") {
		cfg.Segmenter.Backend = e.Backend
	}
	if e.has("PATTERNS") {
		cfg.Segmenter.Patterns = e.Patterns
	}
	if e.has("SEPARATOR") {
		cfg.Segmenter.Separator = e.Separator
	}
	if e.has("MIN_WORD_LENGTH") {
		cfg.Segmenter.MinWordLength = e.MinWordLength
	}
	if e.has("MIN_TEXT_LENGTH") {
		cfg.Pipeline.MinTextLength = e.MinTextLength
	}
	if e.has("REGIONS") {
		cfg.Regions.Selector = e.Regions
	}
	if e.has("SKIP_BRACKETED") {
		cfg.Regions.SkipBracketed = e.SkipBracketed
	}
	if e.has("MODE") {
		cfg.Pipeline.Mode = e.Mode
	}
	if e.has("DEBOUNCE") {
		cfg.Pipeline.Debounce = e.Debounce.String()
	}
	if e.has("STYLE") {
		cfg.Output.Style = e.Style
	}
	if e.has("ASSET_PATH") {
		cfg.Assets.BasePath = e.AssetPath
	}
	if e.has("OUTPUT_DIR") {
		cfg.Output.Dir = e.OutputDir
	}
	if e.has("FORMAT") {
		cfg.Output.Format = e.Format
	}
	if e.has("TIMEOUT") {
		cfg.Browser.Timeout = e.Timeout.String()
	}
	if e.has("WORKERS") {
		cfg.Browser.Workers = e.Workers
	}
	if e.has("LOG_LEVEL") {
		cfg.Log.Level = e.LogLevel
	}
	if e.has("LOG_JSON") {
		cfg.Log.JSON = e.LogJSON
	}
}
