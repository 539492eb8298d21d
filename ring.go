package handoff

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Sequence-slot ring after Dmitry Vyukov's bounded queue:
// https://www.1024cores.net/home/lock-free-algorithms/queues/bounded-mpmc-queue

type cell[V Value] struct {
	seq atomic.Uint64 // owner of the cell: pos when free, pos+1 when published
	rec Record[V]
}

// recordRing is a bounded, lock-free, multi-producer single-consumer ring of
// records. Any number of goroutines may push; pop must be called by one
// goroutine at a time.
type recordRing[V Value] struct {
	_     cpu.CacheLinePad
	mask  uint64
	cells []cell[V]
	_     cpu.CacheLinePad
	tail  atomic.Uint64 // updated by pushers
	_     cpu.CacheLinePad
	head  uint64 // updated by the single popper
	_     cpu.CacheLinePad
}

func newRecordRing[V Value](capacity uint64) *recordRing[V] {
	if capacity == 0 || (capacity&(capacity-1)) != 0 {
		panic("capacity must be power of 2 and > 0")
	}

	cells := make([]cell[V], capacity)
	for i := uint64(0); i < capacity; i++ {
		cells[i].seq.Store(i)
	}

	return &recordRing[V]{
		mask:  capacity - 1,
		cells: cells,
	}
}

// push appends r. Returns false if the ring is full.
func (q *recordRing[V]) push(r Record[V]) bool {
	for {
		pos := q.tail.Load()
		c := &q.cells[pos&q.mask]

		diff := int64(c.seq.Load()) - int64(pos)
		switch {
		case diff == 0:
			if q.tail.CompareAndSwap(pos, pos+1) {
				c.rec = r
				c.seq.Store(pos + 1)
				return true
			}
		case diff < 0:
			// not yet popped from the previous lap
			return false
		}
		// diff > 0: another pusher took pos, reload
	}
}

// pop removes the oldest published record. It returns false when the ring
// is empty or the oldest reserved cell is not published yet.
func (q *recordRing[V]) pop() (Record[V], bool) {
	pos := q.head
	c := &q.cells[pos&q.mask]

	if int64(c.seq.Load())-int64(pos+1) != 0 {
		return Record[V]{}, false
	}

	q.head = pos + 1
	r := c.rec
	c.seq.Store(pos + uint64(len(q.cells)))
	return r, true
}

func (q *recordRing[V]) capacity() uint64 {
	return uint64(len(q.cells))
}
