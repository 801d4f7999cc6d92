package syllabify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/alnah/go-syllabify/internal/dom"
	"github.com/alnah/go-syllabify/internal/logger"
	"github.com/alnah/go-syllabify/internal/pipeline"
)

// Session is a live document kept annotated while content is inserted into
// it, the way a page script keeps a dynamic page annotated. The document is
// owned by a private event loop; every method hands its work to that loop, so
// a Session is safe for concurrent use.
type Session struct {
	loop   *dom.Loop
	doc    *dom.Document
	live   *pipeline.Live
	log    logger.Logger
	cancel context.CancelFunc
	done   chan struct{}

	closed    atomic.Bool
	closeOnce sync.Once
}

// NewSession parses content as an HTML document, annotates it according to
// the live mode and starts watching it for insertions. Close the session when
// done.
func (a *Annotator) NewSession(ctx context.Context, content string) (*Session, error) {
	log := a.log.With(logger.String("component", "session"))
	loop := dom.NewLoop(dom.WithPanicHandler(func(v any) {
		log.Error("session task panicked", logger.Any("panic", v))
	}))

	doc, err := dom.ParseString(content, loop)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarkupParse, err)
	}
	pa, err := pipeline.New(a.pipelineConfig())
	if err != nil {
		return nil, err
	}
	live, err := pipeline.NewLive(pa, doc, loop, a.live)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		loop:   loop,
		doc:    doc,
		live:   live,
		log:    log,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		_ = loop.Run(runCtx)
	}()

	var startErr error
	if err := s.do(ctx, func() { startErr = live.Start() }); err != nil {
		s.Close()
		return nil, err
	}
	if startErr != nil {
		s.Close()
		return nil, startErr
	}
	return s, nil
}

// do runs fn on the session loop and waits for it and the notifications it
// caused to be handled.
func (s *Session) do(ctx context.Context, fn func()) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.loop.Do(ctx, fn)
	if errors.Is(err, dom.ErrLoopClosed) {
		return ErrSessionClosed
	}
	return err
}

// compileTarget compiles selector. An empty selector yields nil, the body.
func compileTarget(selector string) (cascadia.Selector, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSelector, selector, err)
	}
	return sel, nil
}

// find returns the first element matching sel, or the body for a nil sel.
// It must run on the loop.
func (s *Session) find(sel cascadia.Selector, selector string) (*html.Node, error) {
	if sel == nil {
		return s.doc.Body(), nil
	}
	n := sel.MatchFirst(s.doc.Root())
	if n == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, selector)
	}
	return n, nil
}

// Insert parses fragment and appends it to the first element matching
// selector, or to the body when selector is empty.
func (s *Session) Insert(ctx context.Context, selector, fragment string) error {
	_, err := s.insert(ctx, selector, fragment)
	return err
}

func (s *Session) insert(ctx context.Context, selector, fragment string) ([]*html.Node, error) {
	sel, err := compileTarget(selector)
	if err != nil {
		return nil, err
	}

	var nodes []*html.Node
	var opErr error
	err = s.do(ctx, func() {
		target, err := s.find(sel, selector)
		if err != nil {
			opErr = err
			return
		}
		parsed, err := dom.ParseFragment(fragment, target)
		if err != nil {
			opErr = fmt.Errorf("%w: %v", ErrMarkupParse, err)
			return
		}
		for _, n := range parsed {
			s.doc.AppendChild(target, n)
		}
		nodes = parsed
	})
	if err != nil {
		return nil, err
	}
	return nodes, opErr
}

// Append inserts fragment at the end of the body and returns it as annotated.
// In debounced mode the pending scan is run at once.
func (s *Session) Append(ctx context.Context, fragment string) (string, error) {
	nodes, err := s.insert(ctx, "", fragment)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var renderErr error
	err = s.do(ctx, func() {
		s.live.Flush()
		for _, n := range nodes {
			if err := html.Render(&b, n); err != nil {
				renderErr = err
				return
			}
		}
	})
	if err != nil {
		return "", err
	}
	return b.String(), renderErr
}

// SetText replaces the children of the first element matching selector with
// a single text node.
func (s *Session) SetText(ctx context.Context, selector, text string) error {
	sel, err := compileTarget(selector)
	if err != nil {
		return err
	}

	var opErr error
	err = s.do(ctx, func() {
		target, err := s.find(sel, selector)
		if err != nil {
			opErr = err
			return
		}
		for c := target.FirstChild; c != nil; c = target.FirstChild {
			s.doc.RemoveChild(target, c)
		}
		s.doc.AppendChild(target, dom.NewText(text))
	})
	if err != nil {
		return err
	}
	return opErr
}

// Flush runs a pending debounced scan now.
func (s *Session) Flush(ctx context.Context) error {
	return s.do(ctx, s.live.Flush)
}

// HTML renders the current document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var out string
	var renderErr error
	err := s.do(ctx, func() {
		var b strings.Builder
		renderErr = s.doc.Render(&b)
		out = b.String()
	})
	if err != nil {
		return "", err
	}
	return out, renderErr
}

// Stats returns the work done since the session started.
func (s *Session) Stats(ctx context.Context) (Stats, error) {
	var st pipeline.Stats
	if err := s.do(ctx, func() { st = s.live.Stats() }); err != nil {
		return Stats{}, err
	}
	return statsFrom(st), nil
}

// Close stops the live pipeline and the session loop. It is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		_ = s.loop.Do(context.Background(), s.live.Close)
		s.closed.Store(true)
		s.loop.Close()
		s.cancel()
		<-s.done
		s.log.Debug("session closed")
	})
}
