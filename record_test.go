package handoff

import (
	"errors"
	"testing"
)

func TestRecordString(t *testing.T) {
	tests := []struct {
		rec  Record[uint8]
		want string
	}{
		{emptyRecord[uint8](), "{ value: 0; producer: unset; consumer: unset }"},
		{Record[uint8]{Value: 3, Producer: 0, Consumer: Unset}, "{ value: 3; producer: 0; consumer: unset }"},
		{Record[uint8]{Value: 9, Producer: 12, Consumer: 4}, "{ value: 9; producer: 12; consumer: 4 }"},
	}

	for _, tt := range tests {
		if got := tt.rec.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestSlot(t *testing.T) {
	s := NewSlot[uint8](5)

	if r := s.Record(); !r.Empty() || r.Consumer != Unset {
		t.Fatalf("expected an empty record, got %v", r)
	}

	// reading an unwritten slot is the defined empty state
	if r := s.Read(2); !r.Empty() || r.Consumer != 2 {
		t.Fatalf("expected an empty record read by 2, got %v", r)
	}

	s.Write(7, 1)
	if r := s.Read(3); r.Value != 7 || r.Producer != 1 || r.Consumer != 3 {
		t.Fatalf("expected value 7 from 1 read by 3, got %v", r)
	}

	if i := s.Index(); i != 5 {
		t.Fatalf("expected index 5, got %d", i)
	}
	if i := s.AdvanceIndex(); i != 5 {
		t.Fatalf("expected AdvanceIndex to return 5, got %d", i)
	}
	if i := s.Index(); i != 6 {
		t.Fatalf("expected index 6, got %d", i)
	}

	s.Reset(0)
	if r := s.Record(); !r.Empty() || r.Value != 0 || r.Consumer != Unset {
		t.Fatalf("expected an empty record after reset, got %v", r)
	}
	if i := s.Index(); i != 0 {
		t.Fatalf("expected index 0 after reset, got %d", i)
	}
}

func TestPiDigits(t *testing.T) {
	want := []uint8{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
	for i, w := range want {
		d, err := PiDigits(i)
		if err != nil {
			t.Fatalf("digit %d: unexpected error %v", i, err)
		}
		if d != w {
			t.Fatalf("digit %d: expected %d, got %d", i, w, d)
		}
	}

	if d, err := PiDigits(PiDigitCount - 1); err != nil || d != 9 {
		t.Fatalf("last digit: expected 9, got %d (%v)", d, err)
	}
	for _, i := range []int{-1, PiDigitCount} {
		if _, err := PiDigits(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("digit %d: expected ErrIndexOutOfRange, got %v", i, err)
		}
	}
}
