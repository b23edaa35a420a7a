package engine

import "github.com/justapithecus/sweep/source"

// slot holds the state of one declared parameter, keyed by its declaration
// ordinal within an iteration. Slots are pooled by the run state: the slot
// list only grows, and a slot is reused across iterations until an earlier
// parameter advances and forces a reset.
//
// Values are fetched one step ahead: the slot holds the current value plus a
// prefetched next value and an open cursor. This bounds memory regardless of
// source size and supports infinite sources.
type slot struct {
	// name is the declaration identity; empty means undeclared.
	name string
	src  source.Erased

	// cursor is the open cursor positioned after the prefetched value.
	// Nil means no further value is available without restarting the source.
	cursor source.ErasedIterator

	value   any
	next    any
	hasNext bool

	declared bool
	used     bool
}

// declare initializes a fresh slot from a new cursor, eagerly pulling the
// first value so that an empty source is detected at declaration time.
// Returns false, with no state mutated, when the source yields no values:
// the slot stays undeclared for a future attempt and the caller raises the
// skip signal.
//
// Must only be called on an undeclared slot; re-declaration of a live slot
// is the run state's concern (identity check, keep value).
func (s *slot) declare(name string, src source.Erased) bool {
	cursor := src.Iterate()
	first, ok := cursor.Next()
	if !ok {
		return false
	}
	s.name = name
	s.src = src
	s.value = first
	s.declared = true
	s.prefetch(cursor)
	return true
}

// prefetch pulls the value after the current one, releasing the cursor once
// exhausted.
func (s *slot) prefetch(cursor source.ErasedIterator) {
	n, ok := cursor.Next()
	if ok {
		s.next = n
		s.hasNext = true
		s.cursor = cursor
	} else {
		s.next = nil
		s.hasNext = false
		s.cursor = nil
	}
}

// advance moves the slot to its next argument. When the held cursor was
// already exhausted, a fresh cursor is created and the sequence restarts
// from its first value; this is the "loop back to start" used when an
// earlier parameter still has combinations left.
//
// The advanced value has not been read yet, so the used flag is cleared;
// only a value that carried over unchanged keeps it.
func (s *slot) advance() {
	s.used = false
	if s.hasNext {
		s.value = s.next
		s.prefetch(s.cursor)
		return
	}
	cursor := s.src.Iterate()
	first, ok := cursor.Next()
	if !ok {
		// The source yielded values before and none now; the determinism
		// contract on sources was violated.
		fatal(ErrInconsistentParameter,
			"Parameter `%s` has no arguments on replay; argument sources must yield the same values on every pass", s.name)
	}
	s.value = first
	s.prefetch(cursor)
}

// reset returns the slot to its pristine pre-declaration state so the
// ordinal position can be reused, possibly by a different parameter.
func (s *slot) reset() {
	*s = slot{}
}
