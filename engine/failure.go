package engine

import (
	"fmt"
	"strings"
)

// Binding is one recorded parameter binding: the declaration identity and
// the value that was selected when it was read.
type Binding struct {
	Name  string
	Value any
}

// Failure is one captured body failure plus the parameter bindings that were
// in effect, limited to parameters that were actually read. Immutable once
// recorded.
type Failure struct {
	Err        error
	Parameters []Binding
}

// ArgumentsMessage renders the failure's bindings as diagnostic detail.
func (f *Failure) ArgumentsMessage() string {
	switch len(f.Parameters) {
	case 0:
		return "Failed with no arguments"
	case 1:
		b := f.Parameters[0]
		return fmt.Sprintf("Failed with argument: %s = %v", b.Name, b.Value)
	default:
		var sb strings.Builder
		sb.WriteString("Failed with arguments:")
		for _, b := range f.Parameters {
			fmt.Fprintf(&sb, "\n\t%s = %v", b.Name, b.Value)
		}
		return sb.String()
	}
}

// FailureContext is passed to the per-failure hook. The bindings list is
// computed lazily: hooks that never look at parameters pay nothing for them.
type FailureContext struct {
	// Err is the body failure.
	Err error
	// Iterations is the count of executed iterations so far, including the
	// failing one.
	Iterations int
	// Failures is the count of failures so far, including this one.
	Failures int

	state    *runState
	bindings []Binding
	built    bool
}

// Parameters returns the used parameter bindings in effect for the failing
// iteration, building them on first call.
func (c *FailureContext) Parameters() []Binding {
	if !c.built {
		c.bindings = c.state.usedBindings()
		c.built = true
	}
	return c.bindings
}

// FailureDecision is the per-failure hook's verdict: the two choices are
// independent.
type FailureDecision struct {
	// Record adds the failure, with its bindings, to the final summary.
	Record bool
	// Break stops iterating after this failure even though combinations may
	// remain.
	Break bool
}

// FailureHandler decides what to do with one body failure. Returning a
// non-nil error aborts the run immediately with that error, bypassing the
// completion hook; this is how strict mode surfaces the raw failure.
type FailureHandler func(ctx *FailureContext) (FailureDecision, error)

// CompletionHandler runs exactly once after the combination space is
// exhausted or the run broke early. The returned error is the result of the
// run.
type CompletionHandler func(s *Summary) error

// StrictHandler is the default per-failure behavior: the first failure
// aborts the run and Execute returns it unwrapped.
func StrictHandler(ctx *FailureContext) (FailureDecision, error) {
	return FailureDecision{}, ctx.Err
}

// RecordingHandler returns a lenient per-failure handler that records up to
// max failures and keeps iterating. Failures beyond the cap still count but
// carry no detail in the aggregate; max <= 0 means record everything.
func RecordingHandler(max int) FailureHandler {
	return func(ctx *FailureContext) (FailureDecision, error) {
		record := max <= 0 || ctx.Failures <= max
		return FailureDecision{Record: record}, nil
	}
}

// AggregateOnFailure is the default completion behavior: raise an aggregate
// error when any failures occurred, otherwise return nil.
func AggregateOnFailure(s *Summary) error {
	if s.Failures == 0 {
		return nil
	}
	return &AggregateError{Summary: s}
}
