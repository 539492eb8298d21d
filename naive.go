package handoff

// The naive-wait strategy parks every task exactly once on its side's
// condition, with no predicate, and hands the baton to the other side after
// releasing the lock. Producers start on a single kick from the driver.
//
// Two failures are part of the contract:
//   - a signal sent while nobody on the other side is parked is lost, and
//     the task it was meant for, and every task after it, waits forever;
//   - a wakeup without a signal sends the task straight at the slot,
//     whatever the slot holds.

func (c *Coordinator[V]) produceNaive(t *task) error {
	c.acquire(t)
	t.pause()
	c.await(t, c.prodCond)

	c.enter(t, Acting)
	t.pause()
	err := c.write(t)
	c.slot.AdvanceIndex()
	c.mu.Unlock()

	// a failed producer still passes the baton so the chain keeps moving
	t.pause()
	c.enter(t, Signaling)
	c.signal(Consumer)
	c.enter(t, Idle)
	return err
}

func (c *Coordinator[V]) consumeNaive(t *task) {
	c.acquire(t)
	t.pause()
	c.await(t, c.consCond)

	c.enter(t, Acting)
	t.pause()
	c.read(t)
	c.mu.Unlock()

	t.pause()
	c.enter(t, Signaling)
	c.signal(Producer)
	c.enter(t, Idle)
}

// kick sends the start signal to the producer side. If no producer is
// parked yet the signal is lost and the run hangs.
func (c *Coordinator[V]) kick() {
	if c.hooks.BeforeKick != nil {
		c.hooks.BeforeKick()
	}
	c.mu.Lock()
	c.signalLocked(Producer)
	c.mu.Unlock()
}
