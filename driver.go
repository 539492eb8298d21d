package handoff

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/valyala/fastrand"
)

// ErrTimeout is returned by Run when a run's tasks did not all finish within
// Config.Timeout.
var ErrTimeout = fmt.Errorf("timeout")

// Config holds run parameters.
type Config[V Value] struct {
	// Generator produces the value of each unit of work. Required.
	Generator Generator[V]

	// FirstIndex is the work index a reset slot starts from.
	FirstIndex int

	// Shuffle dispatches units in a random order so that no strategy looks
	// correct just because goroutines happened to start in order.
	Shuffle bool

	// Seed drives the shuffle and the jitter of every task.
	Seed uint32

	// MaxJitter bounds the random pause injected at the defined points of
	// each task. Zero disables jitter.
	MaxJitter time.Duration

	// Timeout is how long Run waits for a run to finish. Zero waits forever,
	// which a naive-wait run may well do.
	Timeout time.Duration

	// SinkCapacity sizes the append ring of the default Log. Must be a
	// power of two; defaults to 1024.
	SinkCapacity uint64

	// NewSink creates the sink of each run. Defaults to a Log.
	NewSink func() Sink[V]

	Hooks Hooks[V]

	// Logger is used for run progress. If nil, log.Default() is used.
	Logger *log.Logger
}

func (c *Config[V]) withDefaults() Config[V] {
	out := *c
	if out.SinkCapacity == 0 {
		out.SinkCapacity = 1024
	}
	if out.NewSink == nil {
		capacity := out.SinkCapacity
		out.NewSink = func() Sink[V] { return NewLog[V](capacity) }
	}
	if out.Logger == nil {
		out.Logger = log.Default()
	}
	return out
}

// Report is what a run left behind.
type Report[V Value] struct {
	Strategy  Strategy
	Records   []Record[V] // sink contents, in append order
	Slot      Record[V]   // final slot record
	NextIndex int         // final work index
	Produced  bool        // final handoff predicate
	Trace     []bool      // handoff predicate history
	Stats     Stats
	Hung      bool // the run did not finish within Config.Timeout

	c *Coordinator[V]
}

// Release wakes the parked tasks of the run. Only useful on a hung report.
func (r Report[V]) Release() {
	if r.c != nil {
		r.c.Release()
	}
}

func newReport[V Value](s Strategy, c *Coordinator[V]) Report[V] {
	rec, next := c.Slot()
	return Report[V]{
		Strategy:  s,
		Records:   c.Sink().Snapshot(),
		Slot:      rec,
		NextIndex: next,
		Produced:  c.Produced(),
		Trace:     c.Trace(),
		Stats:     c.Stats(),
		c:         c,
	}
}

// Driver runs units of work under the strategies it is asked for.
// A Driver must not be used from several goroutines at once.
type Driver[V Value] struct {
	cfg Config[V]
	rng fastrand.RNG // dispatch order
}

// NewDriver creates a Driver. It panics if cfg has no Generator.
func NewDriver[V Value](cfg Config[V]) *Driver[V] {
	cfg = cfg.withDefaults()
	if cfg.Generator == nil {
		panic("generator is required")
	}

	d := &Driver[V]{cfg: cfg}
	d.rng.Seed(taskSeed(cfg.Seed, Consumer, Unset))
	return d
}

// RunAll runs n units of work under each strategy in turn, every strategy
// when none are given. A hung or failed run does not stop the ones after
// it; their errors are joined.
func (d *Driver[V]) RunAll(n int, strategies ...Strategy) ([]Report[V], error) {
	if len(strategies) == 0 {
		strategies = Strategies()
	}

	reports := make([]Report[V], 0, len(strategies))
	var errs []error
	for _, s := range strategies {
		r, err := d.Run(n, s)
		reports = append(reports, r)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return reports, errors.Join(errs...)
}

// Run resets a fresh coordination context, dispatches n units of work under
// s and waits for every task. The error joins the generator failures of the
// run, or is ErrTimeout if the run hung.
func (d *Driver[V]) Run(n int, s Strategy) (Report[V], error) {
	if s >= strategyCount {
		return Report[V]{Strategy: s}, fmt.Errorf("%v: %w", s, ErrUnknownStrategy)
	}
	if n < 0 {
		n = 0
	}

	c := NewCoordinator(d.cfg)
	order := d.order(n)
	errs := make([]error, n)

	d.cfg.Logger.Printf("[driver] %s: dispatching %d units (shuffle=%t, jitter=%s)",
		s, n, d.cfg.Shuffle, d.cfg.MaxJitter)
	start := time.Now()

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.dispatch(c, s, order, errs)
	}()

	if !d.wait(done) {
		d.cfg.Logger.Printf("[driver] %s: hung after %s (%d producers, %d consumers parked)",
			s, d.cfg.Timeout, c.Parked(Producer), c.Parked(Consumer))
		r := newReport(s, c)
		r.Hung = true
		return r, fmt.Errorf("%v: %w", s, ErrTimeout)
	}

	r := newReport(s, c)
	if err := errors.Join(errs...); err != nil {
		d.cfg.Logger.Printf("[driver] %s: %d producers failed", s, r.Stats.Failed)
		return r, fmt.Errorf("%v: %w", s, err)
	}
	d.cfg.Logger.Printf("[driver] %s: %d records in %s", s, len(r.Records), time.Since(start).Round(time.Microsecond))
	return r, nil
}

// dispatch runs one producer and one consumer per tag. Concurrent strategies
// get a goroutine per task and no ordering between units; dispatch returns
// once every task has.
func (d *Driver[V]) dispatch(c *Coordinator[V], s Strategy, order []Tag, errs []error) {
	if !s.Concurrent() {
		for i, tag := range order {
			errs[i] = c.Produce(s, tag)
			_ = c.Consume(s, tag)
		}
		return
	}

	var wg sync.WaitGroup
	for i, tag := range order {
		wg.Go(func() { errs[i] = c.Produce(s, tag) })
		wg.Go(func() { _ = c.Consume(s, tag) })
	}
	if s == NaiveWait {
		c.kick()
	}
	wg.Wait()
}

func (d *Driver[V]) wait(done <-chan struct{}) bool {
	if d.cfg.Timeout <= 0 {
		<-done
		return true
	}

	timer := time.NewTimer(d.cfg.Timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// order returns the tags 0..n-1, shuffled if configured.
func (d *Driver[V]) order(n int) []Tag {
	order := make([]Tag, n)
	for i := range order {
		order[i] = Tag(i)
	}
	if d.cfg.Shuffle {
		for i := n - 1; i > 0; i-- {
			j := int(d.rng.Uint32n(uint32(i + 1)))
			order[i], order[j] = order[j], order[i]
		}
	}
	return order
}
