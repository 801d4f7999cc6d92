package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-syllabify/internal/pipeline"
	"github.com/alnah/go-syllabify/internal/region"
	"github.com/alnah/go-syllabify/internal/syllable"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.Segmenter.Backend != syllable.KindHeuristic {
		t.Errorf("Segmenter.Backend = %q, want heuristic", cfg.Segmenter.Backend)
	}
	if cfg.Pipeline.MinTextLength != pipeline.DefaultMinTextLength {
		t.Errorf("Pipeline.MinTextLength = %d, want %d", cfg.Pipeline.MinTextLength, pipeline.DefaultMinTextLength)
	}
	if cfg.Regions.Selector != "" {
		t.Errorf("Regions.Selector = %q, want empty", cfg.Regions.Selector)
	}
	if cfg.Output.Dir != DefaultOutputDir {
		t.Errorf("Output.Dir = %q, want %q", cfg.Output.Dir, DefaultOutputDir)
	}
}

// ---------------------------------------------------------------------------
// TestProfile - Built-in profiles
// ---------------------------------------------------------------------------

func TestProfile(t *testing.T) {
	t.Parallel()

	t.Run("lyrics", func(t *testing.T) {
		t.Parallel()

		cfg, err := Profile("Lyrics")
		if err != nil {
			t.Fatal(err)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate() = %v", err)
		}
		live := cfg.LiveConfig()
		if live.Mode != pipeline.ModeDebounced || live.Debounce != 500*time.Millisecond || live.InitialDelay != time.Second {
			t.Errorf("LiveConfig() = %+v", live)
		}
		if cfg.Regions.Selector != region.LyricsSelector || !cfg.Regions.SkipBracketed {
			t.Errorf("Regions = %+v", cfg.Regions)
		}
		if cfg.Pipeline.MinTextLength != 1 {
			t.Errorf("MinTextLength = %d, want 1", cfg.Pipeline.MinTextLength)
		}
	})

	t.Run("page", func(t *testing.T) {
		t.Parallel()

		cfg, err := Profile(ProfilePage)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Segmenter.Backend != syllable.KindPatterns {
			t.Errorf("Backend = %q, want patterns", cfg.Segmenter.Backend)
		}
		if cfg.LiveConfig().Mode != pipeline.ModeImmediate {
			t.Error("page profile should be immediate")
		}
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()

		if _, err := Profile("karaoke"); !errors.Is(err, ErrUnknownProfile) {
			t.Errorf("Profile() error = %v, want ErrUnknownProfile", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestConfig_Validate - Field checks
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.Segmenter.Backend = "neural" }, wantErr: ErrInvalidValue},
		{name: "backend case insensitive", mutate: func(c *Config) { c.Segmenter.Backend = "Patterns" }},
		{name: "long separator", mutate: func(c *Config) { c.Segmenter.Separator = strings.Repeat("·", 9) }, wantErr: ErrFieldTooLong},
		{name: "whitespace separator", mutate: func(c *Config) { c.Segmenter.Separator = " " }, wantErr: ErrInvalidValue},
		{name: "custom separator", mutate: func(c *Config) { c.Segmenter.Separator = "-" }},
		{name: "negative word length", mutate: func(c *Config) { c.Segmenter.MinWordLength = -1 }, wantErr: ErrInvalidValue},
		{name: "negative text length", mutate: func(c *Config) { c.Pipeline.MinTextLength = -2 }, wantErr: ErrInvalidValue},
		{name: "zero text length", mutate: func(c *Config) { c.Pipeline.MinTextLength = 0 }},
		{name: "bad exclude tag", mutate: func(c *Config) { c.Pipeline.ExcludeTags = []string{"<pre>"} }, wantErr: ErrInvalidValue},
		{name: "unknown mode", mutate: func(c *Config) { c.Pipeline.Mode = "lazy" }, wantErr: ErrInvalidValue},
		{name: "debounced without selector", mutate: func(c *Config) { c.Pipeline.Mode = "debounced" }, wantErr: ErrInvalidValue},
		{name: "debounced with selector", mutate: func(c *Config) {
			c.Pipeline.Mode = "debounced"
			c.Regions.Selector = "main article"
		}},
		{name: "bad duration", mutate: func(c *Config) { c.Pipeline.Debounce = "soon" }, wantErr: ErrInvalidValue},
		{name: "negative duration", mutate: func(c *Config) { c.Browser.Timeout = "-1s" }, wantErr: ErrInvalidValue},
		{name: "empty duration", mutate: func(c *Config) { c.Browser.Settle = "" }},
		{name: "bad selector", mutate: func(c *Config) { c.Regions.Selector = "div[" }, wantErr: ErrInvalidValue},
		{name: "long selector", mutate: func(c *Config) { c.Regions.Selector = strings.Repeat("a", MaxSelectorLength+1) }, wantErr: ErrFieldTooLong},
		{name: "unknown format", mutate: func(c *Config) { c.Output.Format = "docx" }, wantErr: ErrInvalidValue},
		{name: "pdf format", mutate: func(c *Config) { c.Output.Format = "PDF" }},
		{name: "negative workers", mutate: func(c *Config) { c.Browser.Workers = -1 }, wantErr: ErrInvalidValue},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	if err := validateFieldLength("f", "1234567890", 10); err != nil {
		t.Errorf("at limit: %v", err)
	}
	err := validateFieldLength("regions.selector", "12345678901", 10)
	if !errors.Is(err, ErrFieldTooLong) {
		t.Fatalf("over limit: %v", err)
	}
	if !strings.Contains(err.Error(), "regions.selector") || !strings.Contains(err.Error(), "max 10") {
		t.Errorf("error should name the field and limit: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig - Files and name resolution
// ---------------------------------------------------------------------------

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr error
		check   func(t *testing.T, c *Config)
	}{
		{
			name: "profile with overrides",
			content: `profile: lyrics
pipeline:
  debounce: 250ms
segmenter:
  separator: "-"
`,
			check: func(t *testing.T, c *Config) {
				if c.Regions.Selector != region.LyricsSelector {
					t.Errorf("Selector = %q, want profile value", c.Regions.Selector)
				}
				if c.LiveConfig().Debounce != 250*time.Millisecond {
					t.Errorf("Debounce = %v, want 250ms", c.LiveConfig().Debounce)
				}
				if c.Segmenter.Separator != "-" {
					t.Errorf("Separator = %q, want -", c.Segmenter.Separator)
				}
			},
		},
		{
			name: "unknown top-level field",
			content: `output:
  format: pdf
merge: false
`,
			wantErr: ErrConfigParse,
		},
		{
			name: "merge disabled",
			content: `segmenter:
  merge: false
`,
			check: func(t *testing.T, c *Config) {
				if c.Segmenter.Merge == nil || *c.Segmenter.Merge {
					t.Errorf("Merge = %v, want false", c.Segmenter.Merge)
				}
				if c.Pipeline.MinTextLength != pipeline.DefaultMinTextLength {
					t.Errorf("MinTextLength = %d, want default", c.Pipeline.MinTextLength)
				}
			},
		},
		{name: "unknown profile", content: "profile: karaoke\n", wantErr: ErrUnknownProfile},
		{name: "invalid value", content: "pipeline:\n  mode: debounced\n", wantErr: ErrInvalidValue},
		{name: "syntax error", content: "pipeline: [\n", wantErr: ErrConfigParse},
		{name: "empty file", content: "", wantErr: ErrConfigParse},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfig(t, dir, "cfg"+string(rune('a'+i))+".yaml", tt.content)
			cfg, err := LoadConfig(path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LoadConfig() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig() unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfig_NotFound(t *testing.T) {
	t.Parallel()

	if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
		t.Errorf("LoadConfig(\"\") error = %v, want ErrEmptyConfigName", err)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml")); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig(missing path) error = %v, want ErrConfigNotFound", err)
	}
	_, err := LoadConfig("syllabify-test-config-that-does-not-exist")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("LoadConfig(missing name) error = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), ".yml") {
		t.Errorf("error should list tried paths: %v", err)
	}
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("lyrics")
	if len(paths) < 2 || paths[0] != "lyrics.yaml" || paths[1] != "lyrics.yml" {
		t.Fatalf("SearchPaths() = %v", paths)
	}
	for _, p := range paths[2:] {
		if !strings.Contains(filepath.ToSlash(p), "go-syllabify/lyrics.") {
			t.Errorf("user path %q not under go-syllabify", p)
		}
	}
}
