package engine

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// Summary describes a finished run. It is handed to the completion hook and
// embedded in the aggregate error.
type Summary struct {
	RunID uuid.UUID

	// Iterations is the number of executed iterations (successes plus
	// failures; skips are not executions).
	Iterations int
	// Skipped counts iterations abandoned because a parameter had no
	// candidate arguments.
	Skipped int
	// Failures counts failing iterations, recorded or not.
	Failures int
	// CompletedEarly reports that a failure decision broke the run while
	// combinations may have remained. It reflects the break decision itself,
	// not post-hoc knowledge of whether the space happened to be exhausted.
	CompletedEarly bool
	// Recorded holds the failures the per-failure hook chose to keep.
	Recorded []*Failure
}

// AggregateError is the default completion failure: recorded body failures
// synthesized into a single error.
//
// The message is a summary line "Failed F/T cases" (with a trailing "+" when
// the run stopped early), one indented line per recorded failure with its
// type name and first message line, and a trailing "..." line when not all
// failures were recorded.
type AggregateError struct {
	Summary *Summary
}

func (e *AggregateError) Error() string {
	s := e.Summary

	var sb strings.Builder
	fmt.Fprintf(&sb, "Failed %d/%d", s.Failures, s.Iterations)
	if s.CompletedEarly {
		sb.WriteString("+")
	}
	sb.WriteString(" cases")
	for _, f := range s.Recorded {
		fmt.Fprintf(&sb, "\n\t%s: %s", typeName(f.Err), firstLine(f.Err.Error()))
	}
	if len(s.Recorded) < s.Failures {
		sb.WriteString("\n\t...")
	}
	return sb.String()
}

// Unwrap exposes the recorded failures to errors.Is/As chains.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, len(e.Summary.Recorded))
	for i, f := range e.Summary.Recorded {
		errs[i] = f.Err
	}
	return errs
}

// typeName returns the unqualified type name of err's dynamic type.
func typeName(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return "error"
}

// firstLine trims a message to its first line, appending an ellipsis when
// more lines follow.
func firstLine(msg string) string {
	line, rest, cut := strings.Cut(msg, "\n")
	line = strings.TrimSpace(line)
	if cut && strings.TrimSpace(rest) != "" {
		return line + " ..."
	}
	return line
}
