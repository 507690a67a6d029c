// Package loop implements the single cooperative event loop a Client owns:
// one goroutine drains a task queue, so every task submitted to it executes
// serialized with respect to every other. txn.Client submits its per-query
// timeout firings here; its sends run on the calling goroutine and its
// receives and decoding on a separate receive goroutine, not on this loop.
// Submit is callable from any goroutine — it queues a task and waits for
// its result.
package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrClosed is returned by Submit/TrySubmit after Close.
	ErrClosed = errors.New("loop: closed")
	// ErrQueueFull is returned by TrySubmit when the queue has no room.
	ErrQueueFull = errors.New("loop: queue full")
)

// Task is one unit of loop-serialized work.
type Task interface {
	Run(ctx context.Context) error
}

// TaskFunc adapts a plain function to Task.
type TaskFunc func(ctx context.Context) error

func (f TaskFunc) Run(ctx context.Context) error { return f(ctx) }

// Config configures a Loop. The zero Config is usable.
type Config struct {
	// QueueSize bounds how many tasks may be waiting for the loop
	// goroutine at once. Default 256, generous for one client's own
	// traffic (sends, timeout firings, inbound dispatch).
	QueueSize int
	// PanicHandler, if set, is invoked with the recovered value when a
	// Task panics; the loop goroutine itself always keeps running.
	PanicHandler func(interface{})
}

type taskWrapper struct {
	task     Task
	ctx      context.Context
	resultCh chan error
}

// Loop runs tasks one at a time on a single dedicated goroutine.
type Loop struct {
	queue        chan *taskWrapper
	ctx          context.Context
	cancel       context.CancelFunc
	closed       atomic.Bool
	wg           sync.WaitGroup
	panicHandler func(interface{})

	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
}

// New starts the loop's goroutine and returns the handle used to submit
// work to it.
func New(cfg Config) *Loop {
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 256
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop{
		queue:        make(chan *taskWrapper, cfg.QueueSize),
		ctx:          ctx,
		cancel:       cancel,
		panicHandler: cfg.PanicHandler,
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.ctx.Done():
			return
		case w, ok := <-l.queue:
			if !ok {
				return
			}
			l.execute(w)
		}
	}
}

func (l *Loop) execute(w *taskWrapper) {
	defer func() {
		if r := recover(); r != nil {
			if l.panicHandler != nil {
				l.panicHandler(r)
			}
			select {
			case w.resultCh <- errors.New("loop: task panicked"):
			default:
			}
			l.failed.Add(1)
		}
	}()

	err := w.task.Run(w.ctx)
	select {
	case w.resultCh <- err:
	default:
	}
	if err != nil {
		l.failed.Add(1)
	} else {
		l.completed.Add(1)
	}
}

// Submit queues task and blocks until it has run, returning its error (or
// ctx's error if ctx is cancelled first).
func (l *Loop) Submit(ctx context.Context, task Task) error {
	if l.closed.Load() {
		return ErrClosed
	}
	l.submitted.Add(1)
	w := &taskWrapper{task: task, ctx: ctx, resultCh: make(chan error, 1)}

	select {
	case l.queue <- w:
		select {
		case err := <-w.resultCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	case <-ctx.Done():
		return ctx.Err()
	case <-l.ctx.Done():
		return ErrClosed
	}
}

// TrySubmit queues task without blocking if the queue has room, and
// otherwise fails fast with ErrQueueFull — used for fire-and-forget work
// (e.g. a timeout callback) that must never stall the caller.
func (l *Loop) TrySubmit(ctx context.Context, task Task) error {
	if l.closed.Load() {
		return ErrClosed
	}
	l.submitted.Add(1)
	w := &taskWrapper{task: task, ctx: ctx, resultCh: make(chan error, 1)}

	select {
	case l.queue <- w:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting new tasks and waits for the queued backlog to
// drain before returning.
func (l *Loop) Close() error {
	if l.closed.Swap(true) {
		return ErrClosed
	}
	close(l.queue)
	l.wg.Wait()
	l.cancel()
	return nil
}

// Stats reports simple counters useful for tests and diagnostics.
type Stats struct {
	Submitted uint64
	Completed uint64
	Failed    uint64
	Depth     int
}

func (l *Loop) Stats() Stats {
	return Stats{
		Submitted: l.submitted.Load(),
		Completed: l.completed.Load(),
		Failed:    l.failed.Load(),
		Depth:     len(l.queue),
	}
}

// AfterFunc schedules fn to run on the loop goroutine after d, returning a
// timer whose Stop cancels the firing if it hasn't happened yet. This is
// how the transaction engine schedules per-query timeouts so they execute
// serialized with every other loop task rather than on their own
// goroutine (spec.md §5 "Timeouts run on the transport's event loop").
func (l *Loop) AfterFunc(d time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(d, func() {
		_ = l.TrySubmit(context.Background(), TaskFunc(func(context.Context) error {
			fn()
			return nil
		}))
	})
}
