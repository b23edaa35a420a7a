// Package engine implements the sweep parameter-combination iteration engine.
//
// Execute runs a body function once per combination of arguments for the
// parameters the body declares. Parameters are declared inline, in order,
// each backed by a lazy argument source; later parameters may depend on the
// values chosen for earlier ones. Combinations are visited in nested-loop
// order: the first-declared parameter is the outermost loop, the
// last-declared varies fastest.
package engine

import (
	"errors"
	"fmt"
)

// Sentinel kinds for fatal usage faults.
// Use errors.Is(err, ErrXxx) for typed assertions.
//
// Usage faults mean the engine's own invariants were violated by the caller:
// they propagate as panics carrying a *UsageError, bypass the failure and
// completion hooks entirely, and are never recorded.
var (
	// ErrInconsistentParameter indicates a parameter was re-declared with a
	// different identity at the same position.
	ErrInconsistentParameter = errors.New("inconsistent parameter declaration")

	// ErrNestedDeclaration indicates a parameter was declared while another
	// parameter's arguments were being evaluated.
	ErrNestedDeclaration = errors.New("nested parameter declaration")

	// ErrStaleHandle indicates a parameter handle was used outside the
	// iteration that created it.
	ErrStaleHandle = errors.New("stale parameter handle")

	// ErrWrongRun indicates a parameter handle from a finished run was used
	// in a new run, or after its run completed.
	ErrWrongRun = errors.New("parameter handle from another run")

	// ErrDecoratorCalls indicates a decorator invoked the iteration function
	// zero times or more than once.
	ErrDecoratorCalls = errors.New("decorator invocation count")

	// ErrNondeterministic indicates the body's control flow diverged between
	// iterations that had identical parameter values.
	ErrNondeterministic = errors.New("nondeterministic iteration")
)

// UsageError is a fatal engine-misuse fault. It is delivered by panic, never
// through the error-returning failure path.
type UsageError struct {
	// Kind is the sentinel classifying the fault.
	Kind error
	// Msg is the full diagnostic, naming the offending declarations.
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// Is reports whether the fault matches the target sentinel.
func (e *UsageError) Is(target error) bool { return errors.Is(e.Kind, target) }

// fatal panics with a classified UsageError.
func fatal(kind error, format string, args ...any) {
	panic(&UsageError{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// skipSignal is the internal control-flow signal raised when a parameter's
// source yields no values. It unwinds the current iteration, is counted as a
// skip, and never reaches the failure hook or the caller.
type skipSignal struct {
	name string
}

// PanicError wraps a non-error panic value recovered from an iteration body
// so it can travel the failure path.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("iteration panicked: %v", e.Value)
}

// Unwrap exposes a panicked error value to errors.Is/As chains.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
