package handoff

import (
	"fmt"
	"strconv"
)

// Value is the set of payload types a slot can carry. Payloads are opaque to
// the coordination layer; they are kept to a single machine word so the
// unsynchronized strategy can race on them without producing invalid values.
type Value interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Tag identifies the producer or consumer task instance that touched a record.
type Tag int

// Unset is the tag of a record side no task has touched yet.
const Unset Tag = -1

func (t Tag) String() string {
	if t == Unset {
		return "unset"
	}
	return strconv.Itoa(int(t))
}

// Record is one unit of handed-off work.
type Record[V Value] struct {
	Value    V   // payload written by the producer
	Producer Tag // task that wrote Value
	Consumer Tag // task that last read Value
}

func emptyRecord[V Value]() Record[V] {
	return Record[V]{Producer: Unset, Consumer: Unset}
}

// Empty reports whether no producer has written the record yet.
func (r Record[V]) Empty() bool {
	return r.Producer == Unset
}

// String renders the record the way consumers log it.
func (r Record[V]) String() string {
	b := make([]byte, 0, 48)
	b = append(b, "{ value: "...)
	b = fmt.Appendf(b, "%d", r.Value)
	b = append(b, "; producer: "...)
	b = append(b, r.Producer.String()...)
	b = append(b, "; consumer: "...)
	b = append(b, r.Consumer.String()...)
	b = append(b, " }"...)
	return string(b)
}
