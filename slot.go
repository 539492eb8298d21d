package handoff

// Slot is the single cell of in-flight data passed from a producer to a
// consumer, plus the index of the next unit of work to generate.
//
// Slot does no synchronization of its own. Whoever calls it is expected to
// follow the discipline of the active Strategy, and three of the four
// strategies deliberately fail to.
type Slot[V Value] struct {
	rec   Record[V] // current record
	index int       // next unit of work
}

// NewSlot creates an empty slot whose work index starts at first.
func NewSlot[V Value](first int) *Slot[V] {
	s := &Slot[V]{}
	s.Reset(first)
	return s
}

// Reset clears the record to its empty state and reseeds the work index.
func (s *Slot[V]) Reset(first int) {
	s.rec = emptyRecord[V]()
	s.index = first
}

// Write replaces the current value and its producer tag.
func (s *Slot[V]) Write(v V, producer Tag) {
	s.rec.Value = v
	s.rec.Producer = producer
}

// Read tags the record with the reading consumer and returns a copy of it.
// Reading an unwritten slot returns the empty record.
func (s *Slot[V]) Read(consumer Tag) Record[V] {
	s.rec.Consumer = consumer
	return s.rec
}

// Record returns a copy of the current record without tagging it.
func (s *Slot[V]) Record() Record[V] {
	return s.rec
}

// Index returns the next unit of work without consuming it.
func (s *Slot[V]) Index() int {
	return s.index
}

// AdvanceIndex returns the current work index and increments it.
func (s *Slot[V]) AdvanceIndex() int {
	i := s.index
	s.index++
	return i
}
