package runloop

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Dispatcher marshals a function onto a designated execution context.
type Dispatcher interface {
	// Dispatch queues fn to run on the dispatcher's context. It must be
	// safe to call from any goroutine and must preserve FIFO order for
	// functions dispatched from the same goroutine.
	Dispatch(fn func())
}

// Inline runs dispatched functions immediately on the calling goroutine.
// It is the zero-cost Dispatcher for single-goroutine programs and tests.
type Inline struct{}

// Dispatch implements Dispatcher.
func (Inline) Dispatch(fn func()) {
	fn()
}

// defaultQueueSize bounds the pending work queue. The default matches
// typical per-session event queues; raise it via WithQueueSize for
// bursty producers.
const defaultQueueSize = 256

// Loop is a single-goroutine run loop. Functions queued via Dispatch
// execute one at a time, in order, on the loop's goroutine.
type Loop struct {
	work   chan func()
	done   chan struct{}
	closed atomic.Bool
	logger *slog.Logger
	wg     sync.WaitGroup
}

// LoopOption configures a Loop.
type LoopOption func(*loopConfig)

type loopConfig struct {
	queueSize int
	logger    *slog.Logger
}

// WithQueueSize sets the pending work queue capacity.
func WithQueueSize(n int) LoopOption {
	return func(c *loopConfig) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithLogger sets the loop's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) LoopOption {
	return func(c *loopConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Loop and starts its goroutine.
func New(opts ...LoopOption) *Loop {
	cfg := loopConfig{
		queueSize: defaultQueueSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	l := &Loop{
		work:   make(chan func(), cfg.queueSize),
		done:   make(chan struct{}),
		logger: cfg.logger,
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		select {
		case fn := <-l.work:
			fn()
		case <-l.done:
			// Drain work already queued before shutdown was requested.
			for {
				select {
				case fn := <-l.work:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Dispatch queues fn to run on the loop goroutine. It never blocks:
// if the loop is closed the function is discarded silently, and if the
// queue is full the function is discarded with a warning.
func (l *Loop) Dispatch(fn func()) {
	if fn == nil || l.closed.Load() {
		return
	}
	select {
	case l.work <- fn:
	case <-l.done:
		// Loop is closing, discard.
	default:
		l.logger.Warn("runloop queue full, discarding callback")
	}
}

// Sync blocks until every function dispatched before the call has run.
// It returns immediately on a closed loop.
func (l *Loop) Sync() {
	if l.closed.Load() {
		return
	}
	settled := make(chan struct{})
	select {
	case l.work <- func() { close(settled) }:
	case <-l.done:
		return
	}
	select {
	case <-settled:
	case <-l.done:
	}
}

// Close stops the loop after draining work queued so far. It is
// idempotent and blocks until the loop goroutine exits. Functions
// dispatched after Close are discarded.
func (l *Loop) Close() {
	if l.closed.Swap(true) {
		return
	}
	close(l.done)
	l.wg.Wait()
}
