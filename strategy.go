package handoff

import (
	"fmt"
	"strings"
)

// ErrUnknownStrategy is returned when a strategy name cannot be parsed.
var ErrUnknownStrategy = fmt.Errorf("unknown strategy")

// Strategy selects the coordination discipline producers and consumers
// follow over the shared slot. The values are ordered from no protection to
// full lockstep.
type Strategy uint8

const (
	// SingleThreaded runs every producer then its consumer inline on the
	// calling goroutine. Always correct; it is the oracle for the others.
	SingleThreaded Strategy = iota

	// Unsynchronized runs producers and consumers concurrently with no
	// protection at all. Data races on the slot are intended.
	Unsynchronized

	// MutexOnly guards every slot access with one mutex and nothing else.
	// Race-free, but a consumer may read before its producer has written.
	MutexOnly

	// NaiveWait waits once on a condition variable with no predicate.
	// Lost wakeups hang the run and spurious wakeups act on an unready slot.
	NaiveWait

	// Lockstep waits on the handoff predicate in a loop. Race-free,
	// loss-free and strictly alternating.
	Lockstep

	strategyCount
)

var strategyNames = [strategyCount]string{
	SingleThreaded: "single-threaded",
	Unsynchronized: "unsynchronized",
	MutexOnly:      "mutex-only",
	NaiveWait:      "naive-wait",
	Lockstep:       "lockstep",
}

func (s Strategy) String() string {
	if s < strategyCount {
		return strategyNames[s]
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// Concurrent reports whether the strategy dispatches tasks as goroutines.
func (s Strategy) Concurrent() bool {
	return s != SingleThreaded
}

// Strategies returns every strategy in escalation order.
func Strategies() []Strategy {
	out := make([]Strategy, 0, strategyCount)
	for s := SingleThreaded; s < strategyCount; s++ {
		out = append(out, s)
	}
	return out
}

// ParseStrategy maps a strategy name to its value.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range strategyNames {
		if n == name {
			return Strategy(s), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownStrategy)
}

// ParseStrategies parses a comma separated list of strategy names. "all" or
// an empty list selects every strategy.
func ParseStrategies(list string) ([]Strategy, error) {
	list = strings.TrimSpace(list)
	if list == "" || strings.EqualFold(list, "all") {
		return Strategies(), nil
	}
	var out []Strategy
	for _, name := range strings.Split(list, ",") {
		s, err := ParseStrategy(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
