// Command handoff runs the pi-digit handoff under each coordination strategy
// and prints what every consumer received.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/aradilov/handoff"
)

type options struct {
	units      int
	first      int
	strategies []handoff.Strategy
	seed       uint
	jitter     time.Duration
	shuffle    bool
	timeout    time.Duration
	verbose    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var (
		o     options
		names string
	)

	fs := flag.NewFlagSet("handoff", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&o.units, "n", 7, "units of work per strategy")
	fs.IntVar(&o.first, "first", 0, "index of the first pi digit")
	fs.StringVar(&names, "strategies", "all", "comma separated strategies to run")
	fs.UintVar(&o.seed, "seed", 1, "seed for shuffling and jitter")
	fs.DurationVar(&o.jitter, "jitter", 25*time.Millisecond, "upper bound of injected pauses")
	fs.BoolVar(&o.shuffle, "shuffle", true, "dispatch units in a shuffled order")
	fs.DurationVar(&o.timeout, "timeout", 5*time.Second, "give up on a run after this long")
	fs.BoolVar(&o.verbose, "v", false, "log task state transitions")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if o.units < 0 {
		return o, fmt.Errorf("-n must not be negative, got %d", o.units)
	}
	if o.first < 0 || o.first+o.units > handoff.PiDigitCount {
		return o, fmt.Errorf("digits [%d, %d) are outside the %d known digits of pi",
			o.first, o.first+o.units, handoff.PiDigitCount)
	}

	var err error
	if o.strategies, err = handoff.ParseStrategies(names); err != nil {
		return o, err
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)

	cfg := handoff.Config[uint8]{
		Generator:  handoff.PiDigits,
		FirstIndex: o.first,
		Shuffle:    o.shuffle,
		Seed:       uint32(o.seed),
		MaxJitter:  o.jitter,
		Timeout:    o.timeout,
		Logger:     logger,
	}
	if o.verbose {
		cfg.Hooks.Transition = func(side handoff.Side, tag handoff.Tag, s handoff.State) {
			logger.Printf("[%s %s] %s", side, tag, s)
		}
	}

	reports, err := handoff.NewDriver(cfg).RunAll(o.units, o.strategies...)
	for _, r := range reports {
		printReport(logger, r)
		if r.Hung {
			r.Release()
		}
	}

	if err != nil && !onlyTimeouts(err) {
		logger.Printf("[main] %v", err)
		os.Exit(1)
	}
}

func printReport(logger *log.Logger, r handoff.Report[uint8]) {
	logger.Printf("[%s] %d records, next index %d, hung=%t", r.Strategy, len(r.Records), r.NextIndex, r.Hung)
	for _, rec := range r.Records {
		logger.Printf("[%s] consumer received %s", r.Strategy, rec)
	}
	s := r.Stats
	logger.Printf("[%s] stats: produced=%d consumed=%d failed=%d waits=%d spurious=%d signals=%d lost=%d",
		r.Strategy, s.Produced, s.Consumed, s.Failed, s.Waits, s.SpuriousWakeups, s.Signals, s.LostSignals)
}

// onlyTimeouts reports whether every joined error is a hang. A naive-wait
// hang is an expected outcome, not a failure of the program.
func onlyTimeouts(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !onlyTimeouts(e) {
				return false
			}
		}
		return true
	}
	return errors.Is(err, handoff.ErrTimeout)
}
