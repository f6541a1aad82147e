// Package notify delivers grid events to host subscribers.
//
// Subscribers register for one topic or for all of them. Delivery is
// synchronous and in subscription order, on the goroutine that emits.
package notify

// Topic names a kind of grid event.
type Topic string

// Grid event topics.
const (
	SelectionChanged Topic = "selection-changed"
	RowClick         Topic = "row-click"
	RowDoubleClick   Topic = "row-dblclick"
	CellClick        Topic = "cell-click"
	CellDoubleClick  Topic = "cell-dblclick"
	DeleteRow        Topic = "delete-row"
	ValueChanged     Topic = "value-changed"
)

// Topics lists every topic the grid emits.
var Topics = []Topic{
	SelectionChanged,
	RowClick,
	RowDoubleClick,
	CellClick,
	CellDoubleClick,
	DeleteRow,
	ValueChanged,
}

// Event is one notification. Fields that do not apply to a topic are zero,
// with indices set to -1.
type Event struct {
	Topic Topic

	// Position is the view position involved.
	Position int

	// DataIndex is the top-level row index; for child rows, the parent.
	DataIndex int

	// ChildIndex is the child index under DataIndex, or -1.
	ChildIndex int

	// Column is the column ordinal for cell events.
	Column int

	// Property is the edited row slot for value-changed.
	Property string

	NewValue any
	OldValue any

	// Payload is the row's host payload.
	Payload any

	// Selected is the selection snapshot for selection-changed.
	Selected []int
}

// Observer receives events.
type Observer func(Event)

// Subscription is an active registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes the registration. It is safe to call twice.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
		s.notifier = nil
	}
}

type entry struct {
	id       uint64
	topic    Topic
	observer Observer
}

// Notifier fans events out to subscribers. It is not safe for concurrent use.
type Notifier struct {
	entries []entry
	nextID  uint64
	counts  map[Topic]int
	muted   int
}

// New creates a notifier with no subscribers.
func New() *Notifier {
	return &Notifier{counts: make(map[Topic]int)}
}

// Subscribe registers observer for every topic.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.On("", observer)
}

// On registers observer for one topic. An empty topic matches all.
func (n *Notifier) On(topic Topic, observer Observer) *Subscription {
	id := n.nextID
	n.nextID++
	n.entries = append(n.entries, entry{id: id, topic: topic, observer: observer})
	return &Subscription{id: id, notifier: n}
}

// Emit delivers ev to matching observers unless the notifier is muted.
func (n *Notifier) Emit(ev Event) {
	if n.muted > 0 {
		return
	}
	n.counts[ev.Topic]++
	// Observers may unsubscribe while being called.
	snapshot := append([]entry(nil), n.entries...)
	for _, e := range snapshot {
		if e.topic == "" || e.topic == ev.Topic {
			e.observer(ev)
		}
	}
}

// Count returns how many events of topic have been emitted.
func (n *Notifier) Count(topic Topic) int {
	return n.counts[topic]
}

// Mute suppresses delivery until the returned function is called. Mutes nest.
func (n *Notifier) Mute() (unmute func()) {
	n.muted++
	done := false
	return func() {
		if !done {
			done = true
			n.muted--
		}
	}
}

func (n *Notifier) unsubscribe(id uint64) {
	for i, e := range n.entries {
		if e.id == id {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			return
		}
	}
}
