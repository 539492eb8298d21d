package handoff

import (
	"errors"
	"slices"
	"testing"
)

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		got, err := ParseStrategy(" " + s.String() + " ")
		if err != nil {
			t.Fatalf("%s: unexpected error %v", s, err)
		}
		if got != s {
			t.Fatalf("expected %s, got %s", s, got)
		}
	}

	if _, err := ParseStrategy("spinlock"); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
	if got := Strategy(42).String(); got != "strategy(42)" {
		t.Fatalf("expected strategy(42), got %q", got)
	}
}

func TestParseStrategies(t *testing.T) {
	for _, list := range []string{"", "all", "ALL"} {
		got, err := ParseStrategies(list)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", list, err)
		}
		if !slices.Equal(got, Strategies()) {
			t.Fatalf("%q: expected every strategy, got %v", list, got)
		}
	}

	got, err := ParseStrategies("lockstep,Mutex-Only")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if want := []Strategy{Lockstep, MutexOnly}; !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if _, err := ParseStrategies("lockstep,nope"); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestStrategiesEscalate(t *testing.T) {
	want := []Strategy{SingleThreaded, Unsynchronized, MutexOnly, NaiveWait, Lockstep}
	if got := Strategies(); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if SingleThreaded.Concurrent() || !Lockstep.Concurrent() {
		t.Fatalf("only the single-threaded strategy runs inline")
	}
}
