package handoff

// The unsynchronized strategy touches the slot with no lock and no ordering.
// Run inline it is the single-threaded oracle; run as goroutines it is a
// deliberate data race.

func (c *Coordinator[V]) produceUnsync(t *task) error {
	c.enter(t, Acting)
	err := c.write(t)
	t.pause() // widens the window in which two producers see the same index
	c.slot.AdvanceIndex()
	c.enter(t, Idle)
	return err
}

func (c *Coordinator[V]) consumeUnsync(t *task) {
	t.pause()
	c.enter(t, Acting)
	c.read(t)
	c.enter(t, Idle)
}
