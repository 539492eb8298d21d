package handoff

import "sync/atomic"

// The lockstep strategy waits on the handoff predicate in a loop. A wakeup
// that finds the predicate unchanged, lost or spurious, just waits again, so
// production and consumption alternate strictly whatever the scheduling.
//
// Every step pauses; none of the pauses can break the protocol.

func (c *Coordinator[V]) produceLockstep(t *task) error {
	c.acquire(t)
	defer c.mu.Unlock()
	t.pause()

	for c.produced {
		c.await(t, c.prodCond)
	}

	c.enter(t, Acting)
	t.pause()
	err := c.write(t)
	t.pause()
	c.slot.AdvanceIndex()
	t.pause()

	if err != nil {
		// abort the unit: one consumer leaves empty-handed and the empty
		// slot goes to the next producer
		c.pending++
		c.enter(t, Signaling)
		c.signalLocked(Consumer)
		c.signalLocked(Producer)
		c.enter(t, Idle)
		return err
	}

	c.flip(true)
	t.pause()
	c.enter(t, Signaling)
	c.signalLocked(Consumer)
	t.pause()
	c.enter(t, Idle)
	return nil
}

func (c *Coordinator[V]) consumeLockstep(t *task) {
	c.acquire(t)
	defer c.mu.Unlock()
	t.pause()

	for !c.produced && c.pending == 0 {
		c.await(t, c.consCond)
	}

	if !c.produced {
		c.pending--
		atomic.AddUint64(&c.stats.abandoned, 1)
		c.enter(t, Idle)
		return
	}

	c.enter(t, Acting)
	t.pause()
	c.read(t)
	t.pause()

	c.flip(false)
	t.pause()
	c.enter(t, Signaling)
	c.signalLocked(Producer)
	t.pause()
	c.enter(t, Idle)
}

// flip sets the handoff predicate and records it. c.mu must be held.
func (c *Coordinator[V]) flip(produced bool) {
	c.produced = produced
	c.trace = append(c.trace, produced)
}
