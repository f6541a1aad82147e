package mouse

import "time"

// Default double-click thresholds.
const (
	DefaultDoubleClickTime     = 400 * time.Millisecond
	DefaultDoubleClickDistance = 1
)

// ClickTracker tracks click patterns for double-click detection.
type ClickTracker struct {
	maxTime     time.Duration
	maxDistance int

	lastPos   Position
	lastTime  time.Time
	lastCount int
}

// NewClickTracker creates a click tracker with the given thresholds.
func NewClickTracker(maxTime time.Duration, maxDistance int) *ClickTracker {
	return &ClickTracker{
		maxTime:     maxTime,
		maxDistance: maxDistance,
	}
}

// Record records a click and returns the click count (1 or 2).
// A third click in the sequence starts a new single click.
// If timestamp is zero, uses time.Now() as fallback.
func (t *ClickTracker) Record(pos Position, timestamp time.Time) int {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	if t.isPartOfSequence(pos, timestamp) {
		t.lastCount++
		if t.lastCount > 2 {
			t.lastCount = 1
		}
	} else {
		t.lastCount = 1
	}

	t.lastPos = pos
	t.lastTime = timestamp
	return t.lastCount
}

// isPartOfSequence checks if a click is part of the current click sequence.
func (t *ClickTracker) isPartOfSequence(pos Position, timestamp time.Time) bool {
	if t.lastCount == 0 || t.lastTime.IsZero() {
		return false
	}

	// Clock skew: a negative elapsed time starts a new sequence.
	elapsed := timestamp.Sub(t.lastTime)
	if elapsed < 0 || elapsed > t.maxTime {
		return false
	}

	return pos.Near(t.lastPos, t.maxDistance)
}

// Reset clears the click tracking state.
func (t *ClickTracker) Reset() {
	t.lastCount = 0
	t.lastTime = time.Time{}
	t.lastPos = Position{}
}
