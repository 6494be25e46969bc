// Package collision detects repeated identifiers within one encoding unit.
package collision

import "fmt"

// Tracker records identifiers in first-seen order and rejects repeats.
//
// The routing encoder uses it for node IDs, where the first-seen index doubles
// as the node's position in the partition, and the map builder uses it for
// road IDs.
type Tracker struct {
	dup   error
	index map[uint64]int // id → first-seen index
	ids   []uint64       // ids in first-seen order
}

// NewTracker creates a tracker. Track wraps dup when it sees an id twice.
func NewTracker(dup error) *Tracker {
	return &Tracker{
		dup:   dup,
		index: make(map[uint64]int),
	}
}

// Track records id. It returns an error wrapping the tracker's duplicate
// error if id was tracked before.
func (t *Tracker) Track(id uint64) error {
	if first, exists := t.index[id]; exists {
		return fmt.Errorf("%w: id %d repeats entry %d", t.dup, id, first)
	}

	t.index[id] = len(t.ids)
	t.ids = append(t.ids, id)

	return nil
}

// Index returns the first-seen index of id.
func (t *Tracker) Index(id uint64) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

// Contains reports whether id was tracked.
func (t *Tracker) Contains(id uint64) bool {
	_, ok := t.index[id]
	return ok
}

// IDs returns the tracked ids in first-seen order.
func (t *Tracker) IDs() []uint64 {
	return t.ids
}

// Count returns the number of tracked ids.
func (t *Tracker) Count() int {
	return len(t.ids)
}

// Reset clears the tracker, keeping its allocations.
func (t *Tracker) Reset() {
	clear(t.index)
	t.ids = t.ids[:0]
}
