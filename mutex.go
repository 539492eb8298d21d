package handoff

// The mutex-only strategy holds the lock around each slot access and does
// nothing else. Accesses never overlap, but nothing stops a consumer from
// taking the lock before the producer it was meant to follow.

func (c *Coordinator[V]) produceMutex(t *task) error {
	c.acquire(t)
	defer c.mu.Unlock()

	c.enter(t, Acting)
	err := c.write(t)
	c.slot.AdvanceIndex()
	c.enter(t, Idle)
	return err
}

func (c *Coordinator[V]) consumeMutex(t *task) {
	c.acquire(t)
	defer c.mu.Unlock()

	c.enter(t, Acting)
	c.read(t)
	c.enter(t, Idle)
}
