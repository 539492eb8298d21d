package handoff

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func rec(v int, producer Tag) Record[int] {
	return Record[int]{Value: v, Producer: producer, Consumer: Unset}
}

// Basic sanity: sequential push/pop.
func TestRingSequential(t *testing.T) {
	const capacity = 1024

	q := newRecordRing[int](capacity)
	if q.capacity() != capacity {
		t.Fatalf("expected capacity %d, got %d", capacity, q.capacity())
	}

	// several laps over the same cells
	for lap := 0; lap < 4; lap++ {
		for i := 0; i < capacity; i++ {
			if !q.push(rec(i, Tag(lap))) {
				t.Fatalf("lap %d: push failed at %d (ring unexpectedly full)", lap, i)
			}
		}
		for i := 0; i < capacity; i++ {
			r, ok := q.pop()
			if !ok {
				t.Fatalf("lap %d: pop failed at %d (ring unexpectedly empty)", lap, i)
			}
			if r.Value != i || r.Producer != Tag(lap) {
				t.Fatalf("lap %d: expected %d from %d, got %v (FIFO violated)", lap, i, lap, r)
			}
		}
	}

	if r, ok := q.pop(); ok {
		t.Fatalf("expected empty ring at the end, got %v", r)
	}
}

func TestRingOverflow(t *testing.T) {
	const capacity = 8
	q := newRecordRing[int](capacity)

	for i := 0; i < capacity; i++ {
		if !q.push(rec(i, 0)) {
			t.Fatalf("push failed at %d (ring unexpectedly full)", i)
		}
	}

	if q.push(rec(999, 0)) {
		t.Fatalf("expected overflow (push should return false), but got true")
	}

	q.pop()
	if !q.push(rec(999, 0)) {
		t.Fatalf("expected room for one record after a pop")
	}
}

func TestRingCapacityMustBePowerOfTwo(t *testing.T) {
	for _, capacity := range []uint64{0, 3, 1000} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("capacity %d: expected panic", capacity)
				}
			}()
			newRecordRing[int](capacity)
		}()
	}
}

// Many pushers, one popper: every record arrives exactly once.
func TestRingConcurrentPushers(t *testing.T) {
	const (
		capacity  = 1 << 10
		N         = 100_000
		pushers   = 8
		perPusher = N / pushers
	)

	q := newRecordRing[int](capacity)
	seen := make([]int32, N)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for received := 0; received < N; {
			r, ok := q.pop()
			if !ok {
				runtime.Gosched()
				continue
			}
			if r.Value < 0 || r.Value >= N {
				t.Errorf("popper: out-of-range value %d", r.Value)
				continue
			}
			atomic.AddInt32(&seen[r.Value], 1)
			received++
		}
	}()

	var pg sync.WaitGroup
	for p := 0; p < pushers; p++ {
		pg.Add(1)
		go func(from, to int) {
			defer pg.Done()
			for i := from; i < to; i++ {
				for !q.push(rec(i, Tag(p))) {
					runtime.Gosched()
				}
			}
		}(p*perPusher, (p+1)*perPusher)
	}

	pg.Wait()
	wg.Wait()

	for i := 0; i < N; i++ {
		if seen[i] != 1 {
			t.Fatalf("value %d seen %d times (expected 1)", i, seen[i])
		}
	}
}

func BenchmarkRing_1P1C(b *testing.B) {
	q := newRecordRing[int](1 << 16)
	done := make(chan struct{})

	go func() {
		for i := 0; i < b.N; i++ {
			for {
				if _, ok := q.pop(); ok {
					break
				}
				runtime.Gosched()
			}
		}
		close(done)
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for !q.push(rec(i, 0)) {
			runtime.Gosched()
		}
	}
	<-done
	b.StopTimer()
}
