package engine

import (
	"github.com/google/uuid"
	"github.com/justapithecus/sweep/source"
)

// runState owns the ordered slot list for one run and decides which slot to
// advance between iterations. One instance exists per Execute call and is
// never shared across runs.
type runState struct {
	runID uuid.UUID

	slots         []*slot
	declaredCount int

	// advanceOrdinal marks the one slot to advance when it is re-declared in
	// the next iteration. -1 means no pending advance.
	advanceOrdinal int

	// iteration is the zero-based index of the current iteration; handles
	// carry it to detect reuse past their iteration.
	iteration int

	executed int
	skipped  int
	failures int
	recorded []*Failure

	stoppedEarly bool
	finished     bool

	// evaluating is the identity of the parameter whose arguments are being
	// pulled right now; non-empty rejects re-entrant declarations.
	evaluating string
}

func newRunState() *runState {
	return &runState{
		runID:          uuid.New(),
		advanceOrdinal: -1,
	}
}

// startIteration resets the per-iteration declaration count.
func (s *runState) startIteration() {
	s.declaredCount = 0
}

// declareParameter records one in-order parameter declaration and returns
// its ordinal. The ordinal is the count of declarations so far this
// iteration, so a parameter's position is its identity anchor: the same
// identity must appear at the same position every iteration.
func (s *runState) declareParameter(name string, src source.Erased) int {
	if s.finished {
		fatal(ErrWrongRun,
			"Parameter `%s` cannot be declared: run %s has completed", name, s.runID)
	}
	if s.evaluating != "" {
		fatal(ErrNestedDeclaration,
			"Nesting parameters is not currently supported: `%s` was declared within `%s`'s arguments",
			name, s.evaluating)
	}

	ordinal := s.declaredCount
	if ordinal == len(s.slots) {
		s.slots = append(s.slots, &slot{})
	}
	sl := s.slots[ordinal]

	if sl.declared {
		if sl.name != name {
			fatal(ErrInconsistentParameter,
				"Expected to be declaring `%s`, but got `%s`", sl.name, name)
		}
		if s.advanceOrdinal == ordinal {
			s.advanceOrdinal = -1
			s.evaluating = name
			sl.advance()
			s.evaluating = ""
		}
		// Same identity, not marked to advance: keep the current value and
		// cursor; the new source is assumed equivalent and discarded.
		s.declaredCount++
		return ordinal
	}

	s.evaluating = name
	ok := sl.declare(name, src)
	s.evaluating = ""
	if !ok {
		// Raised before any slot mutation; the position stays undeclared.
		panic(skipSignal{name: name})
	}
	s.declaredCount++
	return ordinal
}

// read returns the current value of the slot declared at ordinal, marking it
// used. The used flag persists until the slot is reset, so a value relied
// upon lazily across iterations stays attributable.
func (s *runState) read(ordinal, iteration int, name string) any {
	if s.finished {
		fatal(ErrWrongRun,
			"Parameter `%s` cannot be read: run %s has completed", name, s.runID)
	}
	if iteration != s.iteration {
		fatal(ErrStaleHandle,
			"Parameter `%s` was declared in a previous iteration; handles must not outlive their iteration", name)
	}
	if ordinal >= s.declaredCount {
		fatal(ErrStaleHandle,
			"Parameter `%s` has not been declared in the current iteration", name)
	}
	sl := s.slots[ordinal]
	if !sl.declared || sl.name != name {
		fatal(ErrStaleHandle,
			"Handle for parameter `%s` does not match the parameter declared at its position (`%s`)", name, sl.name)
	}
	sl.used = true
	return sl.value
}

// computeNext positions the run for the next combination. It scans the slots
// declared this iteration from the last backward, marks the first one with a
// remaining argument to advance, and resets every slot after it, since those
// may depend on the advanced value and must be recomputed. Returns false
// when no declared slot has a next argument, which after the mandatory first
// iteration means the combination space is exhausted.
func (s *runState) computeNext() bool {
	// A marker that survived a whole iteration means the body stopped
	// declaring before reaching it; only relevant when the iteration
	// completed normally (the failure path treats it as a fatal
	// nondeterminism fault before getting here).
	s.advanceOrdinal = -1

	for i := s.declaredCount - 1; i >= 0; i-- {
		if s.slots[i].hasNext {
			s.advanceOrdinal = i
			for j := i + 1; j < len(s.slots); j++ {
				s.slots[j].reset()
			}
			s.iteration++
			return true
		}
	}
	return false
}

// checkDeterminism faults when an iteration failed before re-declaring the
// slot that was marked to advance: the identical argument prefix executed
// past that point last iteration, so the body's control flow diverged for
// the same values.
func (s *runState) checkDeterminism() {
	if s.advanceOrdinal < 0 || s.declaredCount > s.advanceOrdinal {
		return
	}
	name := s.slots[s.advanceOrdinal].name
	fatal(ErrNondeterministic,
		"Iteration failed before reaching parameter `%s`, which was expected to advance; the body must be deterministic for identical parameter values", name)
}

// usedBindings snapshots the declared-and-read parameter bindings, in
// declaration order. Parameters that were declared but never read did not
// influence the outcome and are excluded.
func (s *runState) usedBindings() []Binding {
	var bindings []Binding
	for _, sl := range s.slots {
		if sl.declared && sl.used {
			bindings = append(bindings, Binding{Name: sl.name, Value: sl.value})
		}
	}
	return bindings
}

func (s *runState) summary() *Summary {
	return &Summary{
		RunID:          s.runID,
		Iterations:     s.executed,
		Skipped:        s.skipped,
		Failures:       s.failures,
		CompletedEarly: s.stoppedEarly,
		Recorded:       s.recorded,
	}
}
