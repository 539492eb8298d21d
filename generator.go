package handoff

import "fmt"

// ErrIndexOutOfRange is returned by generators asked for a unit of work they
// cannot produce.
var ErrIndexOutOfRange = fmt.Errorf("index out of range")

// Generator produces the value of the unit of work at index. It must be pure
// and deterministic so that sink records can be checked against it.
type Generator[V Value] func(index int) (V, error)

// piDigits holds pi to 100 decimal places, leading 3 included.
const piDigits = "3" +
	"14159265358979323846264338327950288419716939937510" +
	"58209749445923078164062862089986280348253421170679"

// PiDigitCount is the number of indices PiDigits can serve.
const PiDigitCount = len(piDigits)

// PiDigits returns the index'th digit of pi, counting the leading 3 as
// index 0.
func PiDigits(index int) (uint8, error) {
	if index < 0 || index >= len(piDigits) {
		return 0, fmt.Errorf("pi digit %d: %w", index, ErrIndexOutOfRange)
	}
	return piDigits[index] - '0', nil
}
