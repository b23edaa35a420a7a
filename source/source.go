// Package source provides lazy, restartable argument sources for sweep
// parameters.
//
// A Source is a repeatable supply of candidate values: each call to Iterate
// returns a fresh cursor positioned before the first value. Sources may be
// infinite; values are produced on demand and never materialized up front.
//
// Determinism contract: two cursors obtained from the same Source must yield
// the same sequence of values. The engine replays sources under this
// assumption and does not verify it; a violation typically surfaces as an
// inconsistent-declaration fault.
package source

// Source is an ordered, repeatable supply of candidate values for one
// parameter.
type Source[T any] interface {
	// Iterate returns a fresh cursor over the values.
	Iterate() Iterator[T]
}

// Iterator is a cursor over a Source's values.
// Next returns the next value, or (zero, false) once exhausted.
type Iterator[T any] interface {
	Next() (T, bool)
}

// Of returns a Source backed by the given values, in order.
func Of[T any](values ...T) Source[T] {
	return sliceSource[T]{values: values}
}

// FromSlice returns a Source backed by the given slice, in order.
// The slice is not copied; callers must not mutate it while a run is active.
func FromSlice[T any](values []T) Source[T] {
	return sliceSource[T]{values: values}
}

// Empty returns a Source with no values. Declaring a parameter with an empty
// source skips the current iteration.
func Empty[T any]() Source[T] {
	return sliceSource[T]{}
}

type sliceSource[T any] struct {
	values []T
}

func (s sliceSource[T]) Iterate() Iterator[T] {
	return &sliceIterator[T]{values: s.values}
}

type sliceIterator[T any] struct {
	values []T
	pos    int
}

func (it *sliceIterator[T]) Next() (T, bool) {
	if it.pos >= len(it.values) {
		var zero T
		return zero, false
	}
	v := it.values[it.pos]
	it.pos++
	return v, true
}

// Generate returns a Source whose values come from next, called with the
// zero-based position of the value being requested. The sequence ends when
// next returns false; a next that never returns false yields an infinite
// source.
func Generate[T any](next func(i int) (T, bool)) Source[T] {
	return funcSource[T]{next: next}
}

type funcSource[T any] struct {
	next func(i int) (T, bool)
}

func (s funcSource[T]) Iterate() Iterator[T] {
	return &funcIterator[T]{next: s.next}
}

type funcIterator[T any] struct {
	next func(i int) (T, bool)
	pos  int
}

func (it *funcIterator[T]) Next() (T, bool) {
	v, ok := it.next(it.pos)
	if !ok {
		var zero T
		return zero, false
	}
	it.pos++
	return v, true
}

// Count returns an infinite Source of integers start, start+step, ...
func Count(start, step int) Source[int] {
	return Generate(func(i int) (int, bool) {
		return start + i*step, true
	})
}

// Span returns a Source of the integers in [lo, hi). An empty span yields an
// empty source.
func Span(lo, hi int) Source[int] {
	return Generate(func(i int) (int, bool) {
		v := lo + i
		return v, v < hi
	})
}

// Deferred returns a Source that invokes build on every Iterate call.
// This is the building block for dependent parameters: build may read the
// current values of previously declared parameters, and the source is
// re-evaluated whenever an earlier parameter advances.
func Deferred[T any](build func() Source[T]) Source[T] {
	return deferredSource[T]{build: build}
}

type deferredSource[T any] struct {
	build func() Source[T]
}

func (s deferredSource[T]) Iterate() Iterator[T] {
	return s.build().Iterate()
}
