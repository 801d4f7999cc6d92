package syllabify

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("annotator pool closed")

// AnnotatorPool manages Annotator instances for parallel processing.
// Each annotator owns its browser, so PDF renderings and page fetches run in
// parallel. Annotators are created lazily on first acquire to avoid startup
// delay, all with the same options.
type AnnotatorPool struct {
	size       int
	opts       []Option
	annotators []*Annotator
	sem        chan *Annotator
	mu         sync.Mutex
	created    int
	closed     bool
}

// NewAnnotatorPool creates a pool with capacity for n annotators built with
// opts. Options are checked by the first Acquire.
func NewAnnotatorPool(n int, opts ...Option) *AnnotatorPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &AnnotatorPool{
		size:       n,
		opts:       opts,
		annotators: make([]*Annotator, 0, n),
		sem:        make(chan *Annotator, n),
	}
}

// Acquire gets an annotator from the pool, creating one if needed.
// Blocks if all annotators are in use.
func (p *AnnotatorPool) Acquire() (*Annotator, error) {
	if p.isClosed() {
		return nil, ErrPoolClosed
	}

	// Try to get an existing annotator (non-blocking)
	select {
	case a, ok := <-p.sem:
		return p.received(a, ok)
	default:
	}

	p.mu.Lock()
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock; assets and patterns are loaded here.
		a, err := NewAnnotator(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		p.annotators = append(p.annotators, a)
		p.mu.Unlock()
		return a, nil
	}
	p.mu.Unlock()

	// All annotators created, wait for one to be released
	a, ok := <-p.sem
	return p.received(a, ok)
}

// received checks an annotator taken from the channel. Annotators still
// buffered when the pool closes are not handed out.
func (p *AnnotatorPool) received(a *Annotator, ok bool) (*Annotator, error) {
	if !ok || p.isClosed() {
		return nil, ErrPoolClosed
	}
	return a, nil
}

func (p *AnnotatorPool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Release returns an annotator to the pool. The channel can hold every
// annotator the pool creates, so sending under the lock never blocks.
func (p *AnnotatorPool) Release(a *Annotator) {
	if a == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.sem <- a:
	default:
	}
}

// Close releases all browser resources.
// Returns an aggregated error if multiple annotators fail to close.
func (p *AnnotatorPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	annotators := p.annotators
	p.mu.Unlock()

	var errs []error
	for _, a := range annotators {
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *AnnotatorPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
