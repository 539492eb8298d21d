package handoff

import (
	"runtime"
	"sync"
)

// Sink accumulates the records consumers read, in order.
type Sink[V Value] interface {
	Append(r Record[V])
	Snapshot() []Record[V]
	Clear()
}

// Log is the default Sink. It is safe for concurrent use, so that the only
// anomalies a run shows are the ones its strategy lets through the slot.
//
// Appends go through a lock-free ring; the mutex only guards the draining
// side, which moves published records into the ordered backlog.
type Log[V Value] struct {
	ring *recordRing[V]

	mu      sync.Mutex
	backlog []Record[V]
}

// NewLog creates a log whose append ring holds capacity records before it
// must be drained. Capacity must be a power of two (1<<k).
func NewLog[V Value](capacity uint64) *Log[V] {
	return &Log[V]{
		ring:    newRecordRing[V](capacity),
		backlog: make([]Record[V], 0, capacity),
	}
}

// Append adds r after every record appended before it.
func (l *Log[V]) Append(r Record[V]) {
	for !l.ring.push(r) {
		// ring is full: drain it and retry
		l.mu.Lock()
		n := l.drainLocked()
		l.mu.Unlock()
		if n == 0 {
			// a reserved cell is still being published
			runtime.Gosched()
		}
	}
}

// Snapshot returns a copy of every published record.
func (l *Log[V]) Snapshot() []Record[V] {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.drainLocked()
	out := make([]Record[V], len(l.backlog))
	copy(out, l.backlog)
	return out
}

// Len returns the number of published records.
func (l *Log[V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.drainLocked()
	return len(l.backlog)
}

// Clear drops every record.
func (l *Log[V]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.drainLocked()
	l.backlog = l.backlog[:0]
}

func (l *Log[V]) drainLocked() int {
	n := 0
	for {
		r, ok := l.ring.pop()
		if !ok {
			return n
		}
		l.backlog = append(l.backlog, r)
		n++
	}
}
