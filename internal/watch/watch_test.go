package watch_test

// Notes:
// - These tests use the real file system notifications of the host with a
//   short debounce; each waits at most a few seconds for a batch.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alnah/go-syllabify/internal/watch"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	write(t, file, "x")

	if _, err := watch.New(file, watch.Config{}); !errors.Is(err, watch.ErrNotDirectory) {
		t.Errorf("New(file) error = %v, want ErrNotDirectory", err)
	}
	if _, err := watch.New(filepath.Join(dir, "missing"), watch.Config{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("New(missing) error = %v, want ErrNotExist", err)
	}
}

func TestWatcher_Accepts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	out := filepath.Join(root, "syllabified")
	w, err := watch.New(root, watch.Config{
		Extensions: []string{"txt", ".MD"},
		Ignore:     []string{out},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Close() }()

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "song.txt"), true},
		{filepath.Join(root, "notes", "readme.md"), true},
		{filepath.Join(root, "page.html"), false},
		{filepath.Join(out, "song.txt"), false},
		{filepath.Join(root, ".git", "x.txt"), false},
		{filepath.Join(root, "a", "node_modules", "x.txt"), false},
		{filepath.Join(root, ".hidden", "x.txt"), false},
	}
	for _, tt := range tests {
		if got := w.Accepts(tt.path); got != tt.want {
			t.Errorf("Accepts(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_Run(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	out := filepath.Join(root, "syllabified")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := watch.New(root, watch.Config{
		Debounce:   50 * time.Millisecond,
		Extensions: []string{".txt"},
		Ignore:     []string{out},
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	batches := make(chan []watch.Event, 4)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(b []watch.Event) { batches <- b }) }()

	write(t, filepath.Join(out, "ignored.txt"), "x")
	write(t, filepath.Join(root, "skip.html"), "x")
	write(t, filepath.Join(root, "song.txt"), "wanted")

	select {
	case b := <-batches:
		if len(b) != 1 || filepath.Base(b[0].Path) != "song.txt" || b[0].Removed {
			t.Errorf("batch = %+v, want song.txt only", b)
		}
	case <-ctx.Done():
		t.Fatal("no batch delivered")
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() after Close = %v, want nil", err)
		}
	case <-ctx.Done():
		t.Fatal("Run() did not return after Close")
	}
}

func TestWatcher_Run_MovedDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	staging := filepath.Join(t.TempDir(), "album")
	write(t, filepath.Join(staging, "one.txt"), "wanted")
	write(t, filepath.Join(staging, "disc2", "two.txt"), "bushes")
	write(t, filepath.Join(staging, "cover.png"), "x")

	w, err := watch.New(root, watch.Config{
		Debounce:   50 * time.Millisecond,
		Extensions: []string{".txt"},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	batches := make(chan []watch.Event, 8)
	go func() { _ = w.Run(ctx, func(b []watch.Event) { batches <- b }) }()

	if err := os.Rename(staging, filepath.Join(root, "album")); err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{"one.txt": false, "two.txt": false}
	for seen := 0; seen < len(want); {
		select {
		case b := <-batches:
			for _, ev := range b {
				name := filepath.Base(ev.Path)
				done, ok := want[name]
				if !ok {
					t.Errorf("unexpected event %+v", ev)
					continue
				}
				if ev.Removed {
					t.Errorf("%s reported as removed", name)
				}
				if !done {
					want[name] = true
					seen++
				}
			}
		case <-ctx.Done():
			t.Fatalf("files of the moved directory not reported: %v", want)
		}
	}
}
