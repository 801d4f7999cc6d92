package main

// Notes:
// - runStream: we test fragments read line by line from stdin, the --full
//   document output, an initial --document and the debounced lyrics profile.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunStream_Fragments(t *testing.T) {
	t.Parallel()

	env := newTestEnv("<p>the bushes</p>\n\n<p>wanted rain</p>\n")
	if err := runStream(context.Background(), []string{"-q"}, env.Environment); err != nil {
		t.Fatalf("runStream() error = %v", err)
	}

	want := "<p>the bush·es</p>\n<p>want·ed rain</p>\n"
	if got := env.stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRunStream_FullDocument(t *testing.T) {
	t.Parallel()

	doc := filepath.Join(t.TempDir(), "page.html")
	writeFile(t, doc, `<html><body><h1>wanted bushes</h1></body></html>`)

	env := newTestEnv("<p>the bushes</p>\n")
	args := []string{"-q", "--full", "--document", doc}
	if err := runStream(context.Background(), args, env.Environment); err != nil {
		t.Fatalf("runStream() error = %v", err)
	}

	got := env.stdout.String()
	for _, want := range []string{"<h1>want·ed bush·es</h1>", "<p>the bush·es</p></body>"} {
		if !strings.Contains(got, want) {
			t.Errorf("document missing %q:\n%s", want, got)
		}
	}
}

func TestRunStream_LyricsProfile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(`<div data-lyrics-container="true">[Chorus]<br/>wanted</div>` + "\n<p>wanted outside</p>\n")
	args := []string{"-q", "--profile", "lyrics", "--initial-delay", "1h", "--debounce", "1h"}
	if err := runStream(context.Background(), args, env.Environment); err != nil {
		t.Fatalf("runStream() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(env.stdout.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), env.stdout.String())
	}
	if !strings.Contains(lines[0], "[Chorus]<br/>want·ed") || !strings.Contains(lines[0], "syllabified-processed") {
		t.Errorf("lyric region not annotated: %q", lines[0])
	}
	if lines[1] != "<p>wanted outside</p>" {
		t.Errorf("content outside regions changed: %q", lines[1])
	}
}

func TestRunStream_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"arguments", []string{"file.html"}, ErrUsage},
		{"missing document", []string{"--document", filepath.Join(t.TempDir(), "none.html")}, ErrReadInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv("")
			if err := runStream(context.Background(), tt.args, env.Environment); !errors.Is(err, tt.wantErr) {
				t.Errorf("runStream(%v) error = %v, want %v", tt.args, err, tt.wantErr)
			}
		})
	}
}
