package handoff

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/fastrand"
	"golang.org/x/sys/cpu"
)

// Coordinator is the coordination context of one run: the shared slot, the
// handoff predicate, the sink and the lock and conditions that guard them.
// Every task of a run shares one Coordinator; how much the guards are
// actually used is up to the Strategy each task runs under.
type Coordinator[V Value] struct {
	_        cpu.CacheLinePad
	mu       sync.Mutex
	prodCond *sync.Cond // producers wait here for the slot to drain
	consCond *sync.Cond // consumers wait here for the slot to fill
	produced bool       // handoff predicate
	pending  int        // units aborted by a failed producer, not yet picked up by a consumer
	parked   [2]int     // tasks blocked in a condition wait, by side
	trace    []bool     // every value produced has held since Reset
	_        cpu.CacheLinePad
	slot     Slot[V]
	_        cpu.CacheLinePad
	stats    counters
	_        cpu.CacheLinePad

	sink      Sink[V]
	gen       Generator[V]
	hooks     Hooks[V]
	first     int
	seed      uint32
	maxJitter time.Duration
}

// NewCoordinator creates a reset coordination context from cfg.
func NewCoordinator[V Value](cfg Config[V]) *Coordinator[V] {
	cfg = cfg.withDefaults()
	if cfg.Generator == nil {
		panic("generator is required")
	}

	c := &Coordinator[V]{
		sink:      cfg.NewSink(),
		gen:       cfg.Generator,
		hooks:     cfg.Hooks,
		first:     cfg.FirstIndex,
		seed:      cfg.Seed,
		maxJitter: cfg.MaxJitter,
	}
	c.prodCond = sync.NewCond(&c.mu)
	c.consCond = sync.NewCond(&c.mu)
	c.Reset()
	return c
}

// Reset clears the slot, reseeds the work index, clears the sink and puts
// the handoff predicate back to false. It must not be called while tasks
// are running.
func (c *Coordinator[V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slot.Reset(c.first)
	c.sink.Clear()
	c.produced = false
	c.pending = 0
	c.parked = [2]int{}
	c.trace = append(c.trace[:0], false)
	c.stats.reset()
}

// Produce runs one producer task tagged tag under strategy s.
func (c *Coordinator[V]) Produce(s Strategy, tag Tag) error {
	t := c.newTask(Producer, tag)
	switch s {
	case SingleThreaded:
		t.max = 0
		return c.produceUnsync(t)
	case Unsynchronized:
		return c.produceUnsync(t)
	case MutexOnly:
		return c.produceMutex(t)
	case NaiveWait:
		return c.produceNaive(t)
	case Lockstep:
		return c.produceLockstep(t)
	}
	return fmt.Errorf("%v: %w", s, ErrUnknownStrategy)
}

// Consume runs one consumer task tagged tag under strategy s.
func (c *Coordinator[V]) Consume(s Strategy, tag Tag) error {
	t := c.newTask(Consumer, tag)
	switch s {
	case SingleThreaded:
		t.max = 0
		c.consumeUnsync(t)
	case Unsynchronized:
		c.consumeUnsync(t)
	case MutexOnly:
		c.consumeMutex(t)
	case NaiveWait:
		c.consumeNaive(t)
	case Lockstep:
		c.consumeLockstep(t)
	default:
		return fmt.Errorf("%v: %w", s, ErrUnknownStrategy)
	}
	return nil
}

// Release wakes every task parked on either condition. A harness that gave
// up on a hung run calls it so the run's goroutines can finish.
func (c *Coordinator[V]) Release() {
	c.mu.Lock()
	c.prodCond.Broadcast()
	c.consCond.Broadcast()
	c.mu.Unlock()
}

// Slot returns the current record and the next work index.
func (c *Coordinator[V]) Slot() (Record[V], int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot.Record(), c.slot.Index()
}

// Produced returns the handoff predicate.
func (c *Coordinator[V]) Produced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.produced
}

// Trace returns every value the handoff predicate has held since Reset,
// starting with the initial false.
func (c *Coordinator[V]) Trace() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bool(nil), c.trace...)
}

// Parked returns the number of tasks blocked in a condition wait on side.
func (c *Coordinator[V]) Parked(side Side) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parked[side]
}

func (c *Coordinator[V]) Sink() Sink[V] { return c.sink }

func (c *Coordinator[V]) Stats() Stats { return c.stats.snapshot() }

// write generates the value of the slot's current index and stores it under
// t's tag. The index is left alone: callers advance it whether or not the
// generator failed, so a failing index is never handed to the next producer.
func (c *Coordinator[V]) write(t *task) error {
	v, err := c.gen(c.slot.Index())
	if err != nil {
		atomic.AddUint64(&c.stats.failed, 1)
		return fmt.Errorf("producer %d: %w", t.tag, err)
	}
	c.slot.Write(v, t.tag)
	atomic.AddUint64(&c.stats.produced, 1)
	if c.hooks.Wrote != nil {
		c.hooks.Wrote(Record[V]{Value: v, Producer: t.tag, Consumer: Unset})
	}
	return nil
}

// read tags the slot with t and appends what it holds to the sink.
func (c *Coordinator[V]) read(t *task) {
	c.sink.Append(c.slot.Read(t.tag))
	atomic.AddUint64(&c.stats.consumed, 1)
}

// acquire takes the lock after the pre-acquisition hook and a pause.
func (c *Coordinator[V]) acquire(t *task) {
	if c.hooks.PreAcquire != nil {
		c.hooks.PreAcquire(t.side, t.tag)
	}
	t.pause()
	c.mu.Lock()
}

// await blocks t on cond once, with c.mu held. An injected spurious wakeup
// returns without a signal but still drops and retakes the lock.
func (c *Coordinator[V]) await(t *task, cond *sync.Cond) {
	c.parked[t.side]++
	atomic.AddUint64(&c.stats.waits, 1)
	c.enter(t, AwaitingSignal)

	if c.hooks.Spurious != nil && c.hooks.Spurious(t.side, t.tag) {
		atomic.AddUint64(&c.stats.spuriousWakeups, 1)
		c.mu.Unlock()
		t.yield()
		c.mu.Lock()
	} else {
		cond.Wait()
	}

	c.parked[t.side]--
	atomic.AddUint64(&c.stats.wakeups, 1)
	c.enter(t, Woken)
}

func (c *Coordinator[V]) cond(side Side) *sync.Cond {
	if side == Producer {
		return c.prodCond
	}
	return c.consCond
}

// signal wakes one task parked on side's condition. The lock may or may
// not be held.
func (c *Coordinator[V]) signal(side Side) {
	atomic.AddUint64(&c.stats.signals, 1)
	c.cond(side).Signal()
}

// signalLocked is signal with c.mu held, which makes it possible to tell
// whether the signal found anybody to wake.
func (c *Coordinator[V]) signalLocked(side Side) {
	if c.parked[side] == 0 {
		atomic.AddUint64(&c.stats.lostSignals, 1)
	}
	c.signal(side)
}

func (c *Coordinator[V]) enter(t *task, s State) {
	if c.hooks.Transition != nil {
		c.hooks.Transition(t.side, t.tag, s)
	}
}

// task is one producer or consumer invocation. It owns its jitter source so
// that the adversarial delays do not add a race of their own.
type task struct {
	side Side
	tag  Tag
	max  time.Duration
	rng  fastrand.RNG
}

func (c *Coordinator[V]) newTask(side Side, tag Tag) *task {
	t := &task{side: side, tag: tag, max: c.maxJitter}
	t.rng.Seed(taskSeed(c.seed, side, tag))
	return t
}

// pause sleeps for a random duration in [0, max].
func (t *task) pause() {
	if t.max <= 0 {
		return
	}
	us := uint32(t.max / time.Microsecond)
	if us == 0 {
		us = 1
	}
	time.Sleep(time.Duration(t.rng.Uint32n(us+1)) * time.Microsecond)
}

// yield stands in for the time a woken task spends off the lock.
func (t *task) yield() {
	if t.max > 0 {
		t.pause()
		return
	}
	runtime.Gosched()
}

// taskSeed derives a distinct, non-zero seed per task from the run seed.
func taskSeed(seed uint32, side Side, tag Tag) uint32 {
	h := seed ^ (uint32(tag)<<1 | uint32(side))
	// murmur3 finalizer
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	if h == 0 {
		h = 1
	}
	return h
}
