package handoff

import "sync/atomic"

// counters are updated atomically because the unsynchronized strategy
// touches them from racing goroutines.
type counters struct {
	produced        uint64
	consumed        uint64
	failed          uint64
	abandoned       uint64
	waits           uint64
	wakeups         uint64
	spuriousWakeups uint64
	signals         uint64
	lostSignals     uint64
}

// Stats is a snapshot of a coordinator's counters.
type Stats struct {
	Produced        uint64 // completed producer writes
	Consumed        uint64 // records appended to the sink
	Failed          uint64 // producers whose generator failed
	Abandoned       uint64 // consumers released without a value after a failed producer
	Waits           uint64 // condition waits entered
	Wakeups         uint64 // condition waits returned
	SpuriousWakeups uint64 // waits that returned without a signal
	Signals         uint64 // signals sent, the naive-wait kick included
	LostSignals     uint64 // signals sent under the lock while nobody was parked
}

func (c *counters) snapshot() Stats {
	return Stats{
		Produced:        atomic.LoadUint64(&c.produced),
		Consumed:        atomic.LoadUint64(&c.consumed),
		Failed:          atomic.LoadUint64(&c.failed),
		Abandoned:       atomic.LoadUint64(&c.abandoned),
		Waits:           atomic.LoadUint64(&c.waits),
		Wakeups:         atomic.LoadUint64(&c.wakeups),
		SpuriousWakeups: atomic.LoadUint64(&c.spuriousWakeups),
		Signals:         atomic.LoadUint64(&c.signals),
		LostSignals:     atomic.LoadUint64(&c.lostSignals),
	}
}

func (c *counters) reset() {
	for _, p := range []*uint64{
		&c.produced, &c.consumed, &c.failed, &c.abandoned, &c.waits,
		&c.wakeups, &c.spuriousWakeups, &c.signals, &c.lostSignals,
	} {
		atomic.StoreUint64(p, 0)
	}
}
