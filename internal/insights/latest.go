package insights

import "sync"

// Ticket identifies one initiated computation.
type Ticket struct {
	gen uint64
}

// Latest keeps the result of the most recently initiated computation. A
// result from an older ticket that resolves after a newer one has published
// is discarded; nothing is aborted.
type Latest[T any] struct {
	mu        sync.Mutex
	issued    uint64
	published uint64
	value     T
	has       bool
}

// Begin starts a new computation and returns its ticket.
func (l *Latest[T]) Begin() Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issued++
	return Ticket{gen: l.issued}
}

// Publish stores v if no newer ticket has already published. It reports
// whether v was kept.
func (l *Latest[T]) Publish(t Ticket, v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t.gen <= l.published {
		return false
	}
	l.published = t.gen
	l.value = v
	l.has = true
	return true
}

// Superseded reports whether a newer computation has been initiated since t.
// Callers may use it to skip work whose result would be discarded anyway.
func (l *Latest[T]) Superseded(t Ticket) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return t.gen < l.issued
}

// Get returns the current value.
func (l *Latest[T]) Get() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.has
}
