package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/alnah/go-syllabify/internal/dom"
	"github.com/alnah/go-syllabify/internal/logger"
	"github.com/alnah/go-syllabify/internal/syllable"
)

// DefaultDebounce is the quiet period of debounced mode.
const DefaultDebounce = 500 * time.Millisecond

// Sentinel errors for the live pipeline.
var (
	ErrAlreadyStarted = errors.New("live pipeline already started")
	ErrClosed         = errors.New("live pipeline closed")
)

// Mode selects how change notifications are handled.
type Mode int

// Modes.
const (
	// ModeImmediate segments added nodes in the batch that reports them.
	ModeImmediate Mode = iota
	// ModeDebounced waits for a quiet period, then scans untagged regions.
	ModeDebounced
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeImmediate:
		return "immediate"
	case ModeDebounced:
		return "debounced"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "immediate" or "debounced". An empty string is immediate.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "immediate":
		return ModeImmediate, nil
	case "debounced":
		return ModeDebounced, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q (want immediate or debounced)", ErrInvalidConfig, s)
	}
}

// State is the phase of a live pipeline.
type State int

// States. Writes happen only in StateMutating.
const (
	StateIdle State = iota
	StateCollecting
	StateMutating
	StateClosed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateMutating:
		return "mutating"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// LiveConfig configures a Live pipeline.
type LiveConfig struct {
	Mode Mode
	// Debounce is the quiet period of debounced mode. Defaults to DefaultDebounce.
	Debounce time.Duration
	// InitialDelay postpones the first scan of debounced mode.
	InitialDelay time.Duration
}

var observeChildList = dom.ObserveOptions{ChildList: true, Subtree: true}

// Live keeps a document annotated while its host changes it. It owns one
// observer on the document body and, in debounced mode, a debounce timer and
// an initial scan timer that host changes never reset.
//
// All methods must run on the loop that drives the document.
type Live struct {
	annotator *Annotator
	doc       *dom.Document
	loop      *dom.Loop
	cfg       LiveConfig
	log       logger.Logger

	root     *html.Node
	observer *dom.Observer
	timer    dom.Timer
	initial  dom.Timer
	gen      uint64
	state    State
	started  bool
	stats    Stats
	batches  int
}

// NewLive creates a live pipeline for doc. Debounced mode needs a region
// selector because tagged regions are what makes its rescans idempotent.
func NewLive(a *Annotator, doc *dom.Document, loop *dom.Loop, cfg LiveConfig) (*Live, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: no annotator", ErrBackendUnavailable)
	}
	if doc == nil || loop == nil {
		return nil, fmt.Errorf("%w: document and loop are required", ErrInvalidConfig)
	}
	if cfg.Mode != ModeImmediate && cfg.Mode != ModeDebounced {
		return nil, fmt.Errorf("%w: unknown mode %v", ErrInvalidConfig, cfg.Mode)
	}
	if cfg.Mode == ModeDebounced && a.Regions().WholePage() {
		return nil, fmt.Errorf("%w: debounced mode requires a region selector", ErrInvalidConfig)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = 0
	}
	l := &Live{
		annotator: a,
		doc:       doc,
		loop:      loop,
		cfg:       cfg,
		log:       a.log.With(logger.String("mode", cfg.Mode.String())),
	}
	l.observer = doc.NewObserver(l.handle)
	return l, nil
}

// Start checks the backend, runs the initial pass and subscribes to child
// list changes of the body. On failure nothing is subscribed and the
// document is untouched.
func (l *Live) Start() error {
	if l.state == StateClosed {
		return ErrClosed
	}
	if l.started {
		return ErrAlreadyStarted
	}
	if err := syllable.Ready(l.annotator.Backend()); err != nil {
		l.log.Error("backend unavailable, pipeline not activated", logger.Error(err))
		return err
	}
	l.started = true
	l.root = l.doc.Body()

	switch {
	case l.cfg.Mode == ModeImmediate:
		l.mutate(func(st *Stats) { *st = l.annotator.Pass(l.root, l.doc) })
	case l.cfg.InitialDelay > 0:
		l.observer.Observe(l.root, observeChildList)
		l.initial = l.loop.AfterFunc(l.cfg.InitialDelay, l.initialScan)
	default:
		l.mutate(func(st *Stats) { *st = l.annotator.Pass(l.root, l.doc) })
	}

	l.log.Info("syllabification active",
		logger.String("regions", regionName(l.annotator)),
		logger.Int("units", l.stats.Units),
	)
	return nil
}

// Close disconnects the observer and cancels any pending scan. It is
// idempotent.
func (l *Live) Close() {
	if l.state == StateClosed {
		return
	}
	l.observer.Disconnect()
	l.cancel()
	l.stopInitial()
	l.state = StateClosed
	l.log.Debug("live pipeline closed", logger.Int("batches", l.batches))
}

// Flush runs the scheduled scans now instead of waiting for their timers.
// It does nothing when no scan is pending.
func (l *Live) Flush() {
	if l.state != StateIdle || !l.Pending() {
		return
	}
	l.cancel()
	l.stopInitial()
	l.mutate(func(st *Stats) { *st = l.annotator.Pass(l.root, l.doc) })
}

// Pending reports whether a debounced or initial scan is scheduled.
func (l *Live) Pending() bool {
	return l.timer != nil || l.initial != nil
}

// State returns the current phase.
func (l *Live) State() State {
	return l.state
}

// Stats returns the work done so far.
func (l *Live) Stats() Stats {
	return l.stats
}

// handle is the observer callback.
func (l *Live) handle(records []dom.MutationRecord, _ *dom.Observer) {
	if l.state != StateIdle {
		l.log.Debug("notification ignored", logger.String("state", l.state.String()))
		return
	}
	l.state = StateCollecting
	l.batches++
	added := l.collect(records)

	if l.cfg.Mode == ModeDebounced {
		l.state = StateIdle
		l.schedule(l.cfg.Debounce)
		return
	}
	if len(added) == 0 {
		l.state = StateIdle
		return
	}
	l.mutate(func(st *Stats) {
		for _, n := range added {
			l.annotator.Added(n, l.doc, st)
		}
	})
}

// collect forgets removed nodes and returns the added nodes still attached
// under the root, deduplicated, in record order.
func (l *Live) collect(records []dom.MutationRecord) []*html.Node {
	var added []*html.Node
	seen := make(map[*html.Node]struct{})
	for _, rec := range records {
		for _, n := range rec.Removed {
			l.annotator.Forget(n)
		}
		for _, n := range rec.Added {
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			added = append(added, n)
		}
	}
	attached := added[:0]
	for _, n := range added {
		if dom.Contains(l.root, n) {
			attached = append(attached, n)
		}
	}
	return attached
}

// mutate runs fn with the observer disconnected, then observes again.
// Records produced by fn are dropped with the disconnection.
func (l *Live) mutate(fn func(*Stats)) {
	l.state = StateMutating
	l.observer.Disconnect()

	var st Stats
	fn(&st)
	l.stats.Add(st)

	l.observer.Observe(l.root, observeChildList)
	l.state = StateIdle

	if st.Units > 0 || st.Regions > 0 {
		l.log.Debug("batch annotated",
			logger.Int("regions", st.Regions),
			logger.Int("units", st.Units),
			logger.Int("written", st.Written),
			logger.Int("failed", st.Failed),
		)
	}
}

// schedule restarts the scan timer. A generation counter discards a timer
// that fires after being replaced or cancelled.
func (l *Live) schedule(d time.Duration) {
	l.cancel()
	gen := l.gen
	l.timer = l.loop.AfterFunc(d, func() {
		if gen != l.gen || l.state != StateIdle {
			return
		}
		l.timer = nil
		l.mutate(func(st *Stats) { *st = l.annotator.Pass(l.root, l.doc) })
	})
}

// initialScan is the callback of the initial delay timer.
func (l *Live) initialScan() {
	if l.initial == nil || l.state != StateIdle {
		return
	}
	l.initial = nil
	l.mutate(func(st *Stats) { *st = l.annotator.Pass(l.root, l.doc) })
}

func (l *Live) stopInitial() {
	if l.initial != nil {
		l.initial.Stop()
		l.initial = nil
	}
}

func (l *Live) cancel() {
	l.gen++
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func regionName(a *Annotator) string {
	if a.Regions().WholePage() {
		return "body"
	}
	return a.Regions().Selector()
}
