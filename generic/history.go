/*
history.go - Ordered, id-keyed record log

PURPOSE:
  History keeps the records that are currently counted in the balances.
  It is ordered by insertion (newest first for display) but behaves as a
  set keyed by record id: an id appears at most once.

CRITICAL INVARIANTS:
  1. UNIQUE: Prepend rejects an id that is already present
  2. IMMUTABLE: Prepend and Remove return a new History
  3. ORDERED: List() is newest-first, Chronological() is oldest-first

  Replaying Chronological() from the initial balances must reproduce the
  current balances. The leave package checks this in invariants.go.

EXAMPLE:
  h := NewHistory[Entry](nil)
  h, _ = h.Prepend(e1)
  h, _ = h.Prepend(e2)      // List() == [e2, e1]
  h, old, ok := h.Remove(e1.ID)

SEE ALSO:
  - balance.go: The balances history records are applied to
*/
package generic

// Record is anything with a stable identity.
type Record interface {
	RecordID() string
}

// History is an immutable newest-first list of records.
type History[T Record] struct {
	items []T // newest first
}

// NewHistory builds a history from newest-first records. Later duplicates
// of an id are dropped.
func NewHistory[T Record](newestFirst []T) History[T] {
	seen := make(map[string]bool, len(newestFirst))
	items := make([]T, 0, len(newestFirst))
	for _, r := range newestFirst {
		if seen[r.RecordID()] {
			continue
		}
		seen[r.RecordID()] = true
		items = append(items, r)
	}
	return History[T]{items: items}
}

func (h History[T]) Len() int { return len(h.items) }

// Get finds a record by id.
func (h History[T]) Get(id string) (T, bool) {
	for _, r := range h.items {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

func (h History[T]) Contains(id string) bool {
	_, ok := h.Get(id)
	return ok
}

// Prepend returns a copy with r as the newest record. ok is false when the
// id is already present; the history is then returned unchanged.
func (h History[T]) Prepend(r T) (History[T], bool) {
	if h.Contains(r.RecordID()) {
		return h, false
	}
	items := make([]T, 0, len(h.items)+1)
	items = append(items, r)
	items = append(items, h.items...)
	return History[T]{items: items}, true
}

// Remove returns a copy without the record with id, and the removed record.
func (h History[T]) Remove(id string) (History[T], T, bool) {
	for i, r := range h.items {
		if r.RecordID() != id {
			continue
		}
		items := make([]T, 0, len(h.items)-1)
		items = append(items, h.items[:i]...)
		items = append(items, h.items[i+1:]...)
		return History[T]{items: items}, r, true
	}
	var zero T
	return h, zero, false
}

// List returns a newest-first copy.
func (h History[T]) List() []T {
	out := make([]T, len(h.items))
	copy(out, h.items)
	return out
}

// Chronological returns an oldest-first copy.
func (h History[T]) Chronological() []T {
	out := make([]T, len(h.items))
	for i, r := range h.items {
		out[len(h.items)-1-i] = r
	}
	return out
}

// Filter returns the newest-first records matching keep.
func (h History[T]) Filter(keep func(T) bool) []T {
	var out []T
	for _, r := range h.items {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
