// Package schedule coalesces grid update requests into one ordered pass per
// frame.
//
// Mutating grid calls OR phases into a pending mask. The first request in a
// frame queues a single flush; the flush runs the handlers in a fixed order
// and, when handlers leave work behind, queues itself again.
package schedule

import (
	"github.com/dshills/gridstorm/internal/logging"
)

// Stats counts scheduler activity.
type Stats struct {
	// Requests is the number of RequestUpdate calls with a non-empty mask.
	Requests int

	// Flushes is the number of flush passes executed.
	Flushes int

	// Runs counts handler executions per phase.
	Runs map[Phase]int
}

// Scheduler owns the pending phase mask and the deferred task queue.
// It is single-threaded.
type Scheduler struct {
	frames   FrameRequester
	handlers map[Phase]func()
	logger   *logging.Logger

	pending  Phase
	queued   bool
	flushing bool

	deferred []func()

	stats Stats
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for flush tracing.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scheduler) { s.logger = l.WithComponent("schedule") }
}

// New creates a scheduler that queues its flushes on frames.
func New(frames FrameRequester, opts ...Option) *Scheduler {
	s := &Scheduler{
		frames:   frames,
		handlers: make(map[Phase]func()),
		logger:   logging.Nop(),
		stats:    Stats{Runs: make(map[Phase]int)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle registers the handler for a single phase, replacing any previous one.
func (s *Scheduler) Handle(p Phase, fn func()) {
	s.handlers[p] = fn
}

// Pending returns the phases waiting for the next flush.
func (s *Scheduler) Pending() Phase {
	return s.pending
}

// Queued reports whether a flush is waiting on the frame requester.
func (s *Scheduler) Queued() bool {
	return s.queued
}

// RequestUpdate marks phases dirty. At most one flush is queued at a time.
// Requests made by a running handler are picked up by the same flush when
// their phase comes later in Order, and by a follow-up flush otherwise.
func (s *Scheduler) RequestUpdate(mask Phase) {
	mask &= PhaseAll
	if mask == 0 {
		return
	}
	s.stats.Requests++
	s.pending |= mask
	if s.flushing {
		return
	}
	s.queue()
}

func (s *Scheduler) queue() {
	if s.queued {
		return
	}
	s.queued = true
	s.frames.RequestFrame(s.Flush)
}

// Flush runs one pass over the pending phases in Order. Each bit is cleared
// before its handler runs, so a handler may request its own phase again.
func (s *Scheduler) Flush() {
	s.queued = false
	if s.pending == 0 {
		return
	}
	s.flushing = true
	s.stats.Flushes++
	s.logger.Debug("flush %s", s.pending)

	for _, p := range []Phase{PhaseSort, PhaseColumns, PhaseRows, PhaseBuildRows} {
		s.run(p)
	}
	if s.pending&PhaseResize != 0 {
		s.pending &^= PhaseResizeHeight | PhaseResizeWidth
		s.run(PhaseResize)
	} else {
		s.run(PhaseResizeHeight)
		s.run(PhaseResizeWidth)
	}

	s.flushing = false
	if s.pending != 0 {
		s.queue()
	}
}

func (s *Scheduler) run(p Phase) {
	if s.pending&p == 0 {
		return
	}
	s.pending &^= p
	s.stats.Runs[p]++
	if fn := s.handlers[p]; fn != nil {
		fn()
	}
}

// Defer queues fn to run after the current event has been handled, before
// the next frame.
func (s *Scheduler) Defer(fn func()) {
	if fn != nil {
		s.deferred = append(s.deferred, fn)
	}
}

// RunDeferred drains the deferred queue, including tasks queued while it
// runs. It returns the number of tasks executed.
func (s *Scheduler) RunDeferred() int {
	n := 0
	for len(s.deferred) > 0 {
		fn := s.deferred[0]
		s.deferred = s.deferred[1:]
		fn()
		n++
	}
	return n
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	runs := make(map[Phase]int, len(s.stats.Runs))
	for p, n := range s.stats.Runs {
		runs[p] = n
	}
	return Stats{Requests: s.stats.Requests, Flushes: s.stats.Flushes, Runs: runs}
}
