package handoff

import (
	"sync"
	"testing"
)

func TestLogKeepsOrderAcrossDrains(t *testing.T) {
	const (
		capacity = 8
		N        = 100
	)

	l := NewLog[int](capacity)
	for i := 0; i < N; i++ {
		l.Append(rec(i, Tag(i)))
		if i == N/2 {
			if got := l.Len(); got != i+1 {
				t.Fatalf("expected %d records mid-way, got %d", i+1, got)
			}
		}
	}

	got := l.Snapshot()
	if len(got) != N {
		t.Fatalf("expected %d records, got %d", N, len(got))
	}
	for i, r := range got {
		if r.Value != i || r.Producer != Tag(i) {
			t.Fatalf("record %d: expected value %d from %d, got %v", i, i, i, r)
		}
	}
}

func TestLogSnapshotIsACopy(t *testing.T) {
	l := NewLog[int](4)
	l.Append(rec(1, 1))

	snap := l.Snapshot()
	snap[0].Value = 42

	if got := l.Snapshot()[0].Value; got != 1 {
		t.Fatalf("expected the log to keep value 1, got %d", got)
	}
}

func TestLogClear(t *testing.T) {
	l := NewLog[int](4)
	for i := 0; i < 10; i++ {
		l.Append(rec(i, 0))
	}

	for i := 0; i < 2; i++ {
		l.Clear()
		if got := l.Snapshot(); len(got) != 0 {
			t.Fatalf("clear %d: expected an empty log, got %v", i, got)
		}
	}

	l.Append(rec(7, 3))
	if got := l.Snapshot(); len(got) != 1 || got[0].Value != 7 {
		t.Fatalf("expected one record after clear, got %v", got)
	}
}

// Concurrent appenders overflowing a small ring: nothing is lost or doubled.
func TestLogConcurrentAppend(t *testing.T) {
	const (
		capacity    = 16
		appenders   = 8
		perAppender = 2_000
	)

	l := NewLog[int](capacity)

	var wg sync.WaitGroup
	for a := 0; a < appenders; a++ {
		wg.Go(func() {
			for i := 0; i < perAppender; i++ {
				l.Append(rec(a*perAppender+i, Tag(a)))
			}
		})
	}
	wg.Wait()

	got := l.Snapshot()
	if len(got) != appenders*perAppender {
		t.Fatalf("expected %d records, got %d", appenders*perAppender, len(got))
	}

	seen := make([]int, appenders*perAppender)
	last := make([]int, appenders)
	for i := range last {
		last[i] = -1
	}
	for _, r := range got {
		seen[r.Value]++
		// each appender's records keep their relative order
		if r.Value <= last[r.Producer] {
			t.Fatalf("appender %d: %d logged after %d", r.Producer, r.Value, last[r.Producer])
		}
		last[r.Producer] = r.Value
	}
	for v, n := range seen {
		if n != 1 {
			t.Fatalf("value %d logged %d times (expected 1)", v, n)
		}
	}
}
