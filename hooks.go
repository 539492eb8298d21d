package handoff

// Side tells producers from consumers.
type Side uint8

const (
	Producer Side = iota
	Consumer
)

func (s Side) String() string {
	if s == Producer {
		return "producer"
	}
	return "consumer"
}

// State is a step of a task's handoff cycle:
// Idle -> AwaitingSignal -> Woken -> Acting -> Signaling -> Idle.
// Strategies without condition variables skip the waiting and signaling
// steps.
type State uint8

const (
	Idle State = iota
	AwaitingSignal
	Woken
	Acting
	Signaling
)

var stateNames = [...]string{
	Idle:           "idle",
	AwaitingSignal: "awaiting-signal",
	Woken:          "woken",
	Acting:         "acting",
	Signaling:      "signaling",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "state(?)"
}

// Hooks are seams for adversarial scheduling. Every hook is optional. Hooks
// run on the task goroutines and may be called concurrently, so they must do
// their own synchronization.
type Hooks[V Value] struct {
	// PreAcquire runs before a task tries to take the lock. A delay here
	// biases the mutex-only strategy towards consumers reading stale data.
	PreAcquire func(side Side, tag Tag)

	// Transition reports every state change. AwaitingSignal and Woken are
	// reported with the lock held; by the time anyone else holds the lock,
	// a task that reported AwaitingSignal is parked on its condition.
	Transition func(side Side, tag Tag, s State)

	// Spurious is asked, with the lock held, before every condition wait.
	// Returning true makes the wait return without a signal. The lock is
	// still released and reacquired, as a real wait would.
	Spurious func(side Side, tag Tag) bool

	// BeforeKick runs on the driver goroutine right before the naive-wait
	// strategy sends its start signal to the producer side.
	BeforeKick func()

	// Wrote receives every record a producer finished writing.
	Wrote func(r Record[V])
}
