package schedule

// FrameRequester queues a callback for the next frame.
type FrameRequester interface {
	RequestFrame(fn func())
}

// FrameQueue is a manual frame clock. Callbacks requested before a Tick run
// on that Tick; callbacks requested while it runs wait for the next one.
type FrameQueue struct {
	pending []func()
	frames  int
}

// NewFrameQueue creates an empty frame queue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

// RequestFrame queues fn for the next Tick.
func (q *FrameQueue) RequestFrame(fn func()) {
	if fn != nil {
		q.pending = append(q.pending, fn)
	}
}

// Pending returns the number of queued callbacks.
func (q *FrameQueue) Pending() int {
	return len(q.pending)
}

// Frames returns how many ticks ran at least one callback.
func (q *FrameQueue) Frames() int {
	return q.frames
}

// Tick runs one frame's worth of callbacks and returns how many ran.
func (q *FrameQueue) Tick() int {
	batch := q.pending
	q.pending = nil
	for _, fn := range batch {
		fn()
	}
	if len(batch) > 0 {
		q.frames++
	}
	return len(batch)
}
