package main

// Notes:
// - convertBatch/convertFile: we test with a fake pool and converter so the
//   batch mechanics (concurrency, skipping, failures) are isolated from
//   annotation itself.
// - printResults: we test the output of each verbosity level.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	syllabify "github.com/alnah/go-syllabify"
	"github.com/alnah/go-syllabify/internal/config"
	"github.com/alnah/go-syllabify/internal/logger"
	"github.com/alnah/go-syllabify/internal/manifest"
)

// newBatch returns files for each name under a fresh input directory and the
// params of a batch writing to a fresh output directory.
func newBatch(t *testing.T, contents map[string]string) ([]FileToConvert, *conversionParams) {
	t.Helper()

	in, out := t.TempDir(), t.TempDir()
	var files []FileToConvert
	for name, content := range contents {
		path := filepath.Join(in, name)
		writeFile(t, path, content)
		files = append(files, newFileToConvert(path, out, in, ""))
	}

	m, err := manifest.Load(out, "test")
	if err != nil {
		t.Fatalf("manifest.Load() error = %v", err)
	}
	return files, &conversionParams{
		manifest: m,
		log:      logger.NewNop(),
		env:      newTestEnv("").Environment,
	}
}

// ---------------------------------------------------------------------------
// TestConvertBatch - Concurrent conversion
// ---------------------------------------------------------------------------

func TestConvertBatch(t *testing.T) {
	t.Parallel()

	files, params := newBatch(t, map[string]string{
		"a.txt":  "alpha",
		"b.md":   "beta",
		"c.html": "<p>gamma</p>",
		"d.txt":  "fail here",
	})
	pool := &fakePool{size: 3}

	results := convertBatch(context.Background(), pool, files, params)
	if len(results) != len(files) {
		t.Fatalf("got %d results, want %d", len(results), len(files))
	}

	for i, r := range results {
		f := files[i]
		if r.InputPath != f.InputPath {
			t.Errorf("result %d is for %s, want %s", i, r.InputPath, f.InputPath)
		}
		if strings.HasSuffix(f.InputPath, "d.txt") {
			if !errors.Is(r.Err, errFake) {
				t.Errorf("d.txt error = %v, want errFake", r.Err)
			}
			continue
		}
		if r.Err != nil {
			t.Errorf("%s error = %v", f.InputPath, r.Err)
			continue
		}
		if r.Duration <= 0 {
			t.Errorf("%s duration = %v, want > 0", f.InputPath, r.Duration)
		}

		got := readFile(t, f.OutputPath)
		switch f.Output {
		case config.FormatText:
			if got != "segmented alpha" {
				t.Errorf("%s = %q, want segmented text", f.OutputPath, got)
			}
		case config.FormatHTML:
			if !strings.HasPrefix(got, "<p>annotated ") {
				t.Errorf("%s = %q, want annotated HTML", f.OutputPath, got)
			}
		}
	}

	if pool.acquired != pool.released {
		t.Errorf("acquired %d, released %d", pool.acquired, pool.released)
	}
	if pool.acquired > 3 {
		t.Errorf("acquired %d converters, want at most pool size 3", pool.acquired)
	}
	if summary := countResults(results); summary != (ResultSummary{Succeeded: 3, Failed: 1}) {
		t.Errorf("countResults() = %+v", summary)
	}
}

func TestConvertBatch_SkipsUnchanged(t *testing.T) {
	t.Parallel()

	files, params := newBatch(t, map[string]string{"a.txt": "alpha"})
	pool := &fakePool{size: 1}
	ctx := context.Background()

	first := convertBatch(ctx, pool, files, params)
	if first[0].Err != nil || first[0].Skipped {
		t.Fatalf("first run = %+v, want converted", first[0])
	}
	second := convertBatch(ctx, pool, files, params)
	if !second[0].Skipped {
		t.Errorf("second run = %+v, want skipped", second[0])
	}

	params.force = true
	third := convertBatch(ctx, pool, files, params)
	if third[0].Skipped || third[0].Err != nil {
		t.Errorf("forced run = %+v, want converted", third[0])
	}
}

func TestConvertBatch_AcquireFailure(t *testing.T) {
	t.Parallel()

	files, params := newBatch(t, map[string]string{"a.txt": "alpha", "b.txt": "beta"})
	pool := &fakePool{size: 2, acquireErr: syllabify.ErrUnknownBackend}

	for _, r := range convertBatch(context.Background(), pool, files, params) {
		if !errors.Is(r.Err, syllabify.ErrUnknownBackend) {
			t.Errorf("%s error = %v, want ErrUnknownBackend", r.InputPath, r.Err)
		}
	}
}

func TestConvertBatch_Cancelled(t *testing.T) {
	t.Parallel()

	files, params := newBatch(t, map[string]string{"a.txt": "alpha"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := convertBatch(ctx, &fakePool{size: 1}, files, params)
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", results[0].Err)
	}
}

func TestConvertBatch_Empty(t *testing.T) {
	t.Parallel()

	if results := convertBatch(context.Background(), &fakePool{size: 1}, nil, nil); results != nil {
		t.Errorf("convertBatch(nil) = %v, want nil", results)
	}
}

// ---------------------------------------------------------------------------
// TestPrintResults - Result reporting
// ---------------------------------------------------------------------------

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.txt", OutputPath: "out/a.txt", Duration: 12 * time.Millisecond, Stats: syllabify.Stats{Written: 4}},
		{InputPath: "b.md", OutputPath: "out/b.html", Skipped: true},
		{InputPath: "c.html", Err: errFake},
	}

	tests := []struct {
		name        string
		quiet       bool
		verbose     bool
		wantOut     []string
		wantMissing []string
	}{
		{
			name:        "default",
			wantOut:     []string{"Created out/a.txt", "1 succeeded, 1 unchanged, 1 failed"},
			wantMissing: []string{"Unchanged b.md"},
		},
		{
			name:    "verbose",
			verbose: true,
			wantOut: []string{"a.txt -> out/a.txt (4 units, 12ms)", "Unchanged b.md"},
		},
		{
			name:        "quiet",
			quiet:       true,
			wantMissing: []string{"Created", "succeeded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv("")
			failed := printResults(results, tt.quiet, tt.verbose, env.Environment)
			if failed != 1 {
				t.Errorf("printResults() = %d, want 1", failed)
			}
			if !strings.Contains(env.stderr.String(), "FAILED c.html") {
				t.Errorf("stderr missing failure: %q", env.stderr.String())
			}
			out := env.stdout.String()
			for _, want := range tt.wantOut {
				if !strings.Contains(out, want) {
					t.Errorf("stdout missing %q:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.wantMissing {
				if strings.Contains(out, unwanted) {
					t.Errorf("stdout contains %q:\n%s", unwanted, out)
				}
			}
		})
	}
}
