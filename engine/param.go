package engine

import (
	"github.com/google/uuid"
	"github.com/justapithecus/sweep/source"
)

// Run is the per-run handle passed to the iteration body. Parameters are
// declared against it, in the same order on every iteration.
type Run struct {
	state *runState
}

// ID returns the run's identity. Each Execute call gets a fresh identity;
// parameter handles are bound to it and reject reuse across runs.
func (r *Run) ID() uuid.UUID {
	return r.state.runID
}

// Param is a typed handle to a declared parameter. Reading its value marks
// the parameter as used, which controls whether the binding appears in
// recorded failures.
//
// A handle is valid only within the run and iteration that declared it.
type Param[T any] struct {
	run       *Run
	name      string
	ordinal   int
	iteration int
}

// Name returns the declaration identity the handle was created with.
func (p Param[T]) Name() string { return p.name }

// Value returns the currently selected argument and marks the parameter
// used. Panics with a *UsageError if the handle is stale, belongs to a
// finished run, or does not match the parameter declared at its position.
func (p Param[T]) Value() T {
	v := p.run.state.read(p.ordinal, p.iteration, p.name)
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// Declare declares a parameter backed by src and returns its handle without
// reading the value. Use this when a parameter should only count as used if
// the body actually reads it.
//
// Declarations must happen in the same order with the same identities on
// every iteration of a run; a mismatch is a fatal usage fault. A source that
// yields no values abandons the current iteration as a skip.
func Declare[T any](r *Run, name string, src source.Source[T]) Param[T] {
	ordinal := r.state.declareParameter(name, source.Erase(src))
	return Param[T]{run: r, name: name, ordinal: ordinal, iteration: r.state.iteration}
}

// Parameter declares a parameter and immediately reads its value, marking it
// used. This is the common declaration form.
func Parameter[T any](r *Run, name string, src source.Source[T]) T {
	return Declare(r, name, src).Value()
}

// ParameterOf is shorthand for Parameter with an inline list of values.
func ParameterOf[T any](r *Run, name string, values ...T) T {
	return Parameter(r, name, source.Of(values...))
}
