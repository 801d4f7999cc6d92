package syllabify

// Notes:
// - Sessions run their own loop goroutine with the real clock. Debounced
//   tests use hour-long delays and rely on Flush, so no test waits on time.

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestSession(t *testing.T, page string, opts ...Option) *Session {
	t.Helper()
	a, _ := newTestAnnotator(t, opts...)
	s, err := a.NewSession(context.Background(), page)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func sessionHTML(t *testing.T, s *Session) string {
	t.Helper()
	out, err := s.HTML(context.Background())
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	return out
}

// ---------------------------------------------------------------------------
// Immediate mode
// ---------------------------------------------------------------------------

func TestSession_InitialPassAndAppend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestSession(t, "<html><body><p>wanted bushes</p></body></html>")

	if got := sessionHTML(t, s); !strings.Contains(got, "<p>want·ed bush·es</p>") {
		t.Errorf("initial pass missing:\n%s", got)
	}

	got, err := s.Append(ctx, "<p>the bushes</p><pre>wanted code</pre>")
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if want := "<p>the bush·es</p><pre>wanted code</pre>"; got != want {
		t.Errorf("Append() = %q, want %q", got, want)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if st.Units != 2 || st.Written != 2 {
		t.Errorf("Stats = %+v, want 2 units written", st)
	}
}

func TestSession_InsertAndSetText(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestSession(t, `<html><body><h2 id="title"></h2><div id="box"></div></body></html>`)

	if err := s.Insert(ctx, "#box", "<span>wanted bushes</span>"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := s.SetText(ctx, "#title", "wanted things"); err != nil {
		t.Fatalf("SetText() error = %v", err)
	}

	got := sessionHTML(t, s)
	for _, want := range []string{
		`<div id="box"><span>want·ed bush·es</span></div>`,
		`<h2 id="title">want·ed things</h2>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("document missing %q:\n%s", want, got)
		}
	}
}

func TestSession_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestSession(t, "<html><body></body></html>")

	if err := s.Insert(ctx, "#missing", "<p>x</p>"); !errors.Is(err, ErrNoMatch) {
		t.Errorf("Insert(missing) error = %v, want ErrNoMatch", err)
	}
	if err := s.SetText(ctx, "[[", "x"); !errors.Is(err, ErrInvalidSelector) {
		t.Errorf("SetText(invalid) error = %v, want ErrInvalidSelector", err)
	}
}

func TestSession_Close(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestSession(t, "<html><body></body></html>")
	s.Close()
	s.Close()

	if _, err := s.Append(ctx, "<p>wanted</p>"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Append() after Close error = %v, want ErrSessionClosed", err)
	}
	if _, err := s.HTML(ctx); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("HTML() after Close error = %v, want ErrSessionClosed", err)
	}
}

// ---------------------------------------------------------------------------
// Debounced mode
// ---------------------------------------------------------------------------

func TestSession_Debounced(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	page := `<html><body><div class="lyrics">wanted bushes</div><p>wanted outside</p></body></html>`
	s := newTestSession(t, page,
		WithRegions(".lyrics"),
		WithLiveMode("debounced"),
		WithDebounce(time.Hour),
		WithInitialDelay(time.Hour),
	)

	if got := sessionHTML(t, s); strings.Contains(got, "·") {
		t.Fatalf("scan ran before its delay:\n%s", got)
	}
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	got := sessionHTML(t, s)
	if !strings.Contains(got, "want·ed bush·es") || !strings.Contains(got, "<p>wanted outside</p>") {
		t.Errorf("flushed scan wrong:\n%s", got)
	}

	appended, err := s.Append(ctx, `<div class="lyrics">the bushes</div>`)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if !strings.Contains(appended, "the bush·es") || !strings.Contains(appended, "syllabified-processed") {
		t.Errorf("Append() = %q, want annotated and tagged region", appended)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if st.Regions != 2 {
		t.Errorf("Stats.Regions = %d, want 2", st.Regions)
	}
}

func TestNewSession_CancelledContext(t *testing.T) {
	t.Parallel()

	a, _ := newTestAnnotator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.NewSession(ctx, "<p>wanted</p>"); !errors.Is(err, context.Canceled) {
		t.Errorf("NewSession() error = %v, want context.Canceled", err)
	}
}
