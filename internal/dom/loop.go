package dom

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrLoopClosed is returned when work is submitted to a closed loop.
var ErrLoopClosed = errors.New("event loop closed")

// defaultTaskQueue bounds queued tasks before Post blocks.
const defaultTaskQueue = 1024

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks after a delay.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

type task struct {
	fn   func()
	done chan struct{}
}

// Loop runs tasks one at a time on a single goroutine. After each task the
// microtask queue is drained, including microtasks queued while draining.
type Loop struct {
	tasks     chan task
	micro     []func()
	clock     Clock
	onPanic   func(any)
	closed    chan struct{}
	closeOnce sync.Once
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithClock replaces the wall clock used by AfterFunc.
func WithClock(c Clock) LoopOption {
	return func(l *Loop) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithPanicHandler receives values recovered from panicking tasks.
func WithPanicHandler(fn func(any)) LoopOption {
	return func(l *Loop) {
		l.onPanic = fn
	}
}

// NewLoop creates a loop. Call Run to start processing.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		tasks:  make(chan task, defaultTaskQueue),
		clock:  realClock{},
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run processes tasks until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.closed:
			return nil
		case t := <-l.tasks:
			l.runTask(t)
		}
	}
}

// Post queues fn as a task. It reports false if the loop is closed.
func (l *Loop) Post(fn func()) bool {
	return l.post(task{fn: fn})
}

// Do runs fn on the loop and waits until it and the microtasks it queued
// have finished.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.post(task{fn: fn, done: done}) {
		return ErrLoopClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.closed:
		return ErrLoopClosed
	}
}

// QueueMicrotask queues fn to run after the current task. It must be called
// from the loop goroutine.
func (l *Loop) QueueMicrotask(fn func()) {
	l.micro = append(l.micro, fn)
}

// AfterFunc posts fn to the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return l.clock.AfterFunc(d, func() { l.Post(fn) })
}

// Close stops the loop. Queued tasks are discarded.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.closed) })
}

// Closed reports whether Close has been called.
func (l *Loop) Closed() bool {
	select {
	case <-l.closed:
		return true
	default:
		return false
	}
}

func (l *Loop) post(t task) bool {
	if l.Closed() {
		return false
	}
	select {
	case l.tasks <- t:
		return true
	case <-l.closed:
		return false
	}
}

func (l *Loop) runTask(t task) {
	l.call(t.fn)
	for len(l.micro) > 0 {
		fn := l.micro[0]
		l.micro[0] = nil
		l.micro = l.micro[1:]
		l.call(fn)
	}
	if t.done != nil {
		close(t.done)
	}
}

func (l *Loop) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if l.onPanic != nil {
				l.onPanic(r)
				return
			}
			panic(fmt.Sprintf("dom: unhandled panic in loop task: %v", r))
		}
	}()
	fn()
}

// Compile-time interface check.
var _ Scheduler = (*Loop)(nil)
