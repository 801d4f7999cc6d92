package main

// Notes:
// - Test infrastructure shared by the command tests: a buffered Environment
//   with a fixed clock, and fakes for the Pool and Converter interfaces.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	syllabify "github.com/alnah/go-syllabify"
)

// ---------------------------------------------------------------------------
// Environment
// ---------------------------------------------------------------------------

// testEnv holds an Environment writing to buffers.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestEnv returns an Environment with real annotators, stdin, buffered
// output and a clock that advances one millisecond per call.
func newTestEnv(stdin string) *testEnv {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := DefaultEnv()
	env.Stdin = strings.NewReader(stdin)
	env.Stdout = stdout
	env.Stderr = stderr

	var mu sync.Mutex
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	env.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Millisecond)
		return now
	}
	return &testEnv{Environment: env, stdout: stdout, stderr: stderr}
}

// writeFile creates path with content, creating parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("MkdirAll(%s) error = %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

// readFile returns the content of path.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return string(data)
}

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

var errFake = errors.New("fake failure")

// fakeConverter marks its output and fails for inputs containing "fail".
type fakeConverter struct{}

func (fakeConverter) Annotate(_ context.Context, in syllabify.Input) (*syllabify.Result, error) {
	if strings.Contains(in.Content, "fail") {
		return nil, errFake
	}
	return &syllabify.Result{
		HTML:  []byte("<p>annotated " + in.Title + "</p>"),
		PDF:   []byte("%PDF-1.7 " + in.Title),
		Stats: syllabify.Stats{Regions: 1, Units: 1, Written: 1},
	}, nil
}

func (fakeConverter) Segment(text string) (string, error) {
	if strings.Contains(text, "fail") {
		return "", errFake
	}
	return "segmented " + text, nil
}

// fakePool hands out fakeConverter values, or fails every Acquire.
type fakePool struct {
	size       int
	acquireErr error

	mu       sync.Mutex
	acquired int
	released int
}

func (p *fakePool) Acquire() (Converter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.mu.Lock()
	p.acquired++
	p.mu.Unlock()
	return fakeConverter{}, nil
}

func (p *fakePool) Release(Converter) {
	p.mu.Lock()
	p.released++
	p.mu.Unlock()
}

func (p *fakePool) Size() int    { return p.size }
func (p *fakePool) Close() error { return nil }
