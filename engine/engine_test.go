package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/justapithecus/sweep/source"
)

type widgetError struct {
	id int
}

func (e *widgetError) Error() string {
	return fmt.Sprintf("widget %d failed", e.id)
}

// lenient returns a configuration that records every failure and keeps
// iterating, so a test can inspect the final summary.
func lenient(captured **Summary) *Configuration {
	return NewBuilder(nil).
		OnFailure(RecordingHandler(0)).
		OnComplete(func(s *Summary) error {
			if captured != nil {
				*captured = s
			}
			return AggregateOnFailure(s)
		}).
		Build()
}

// expectFault asserts that fn panics with a *UsageError of the given kind.
// An empty wantMsg skips the message comparison.
func expectFault(t *testing.T, kind error, wantMsg string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a usage fault, got none")
		}
		ue, ok := r.(*UsageError)
		if !ok {
			t.Fatalf("panic value = %T (%v), want *UsageError", r, r)
		}
		if !errors.Is(ue, kind) {
			t.Errorf("fault kind = %v, want %v", ue.Kind, kind)
		}
		if wantMsg != "" && ue.Msg != wantMsg {
			t.Errorf("fault message = %q, want %q", ue.Msg, wantMsg)
		}
	}()
	fn()
}

func TestExecute_NoParameters_RunsOnce(t *testing.T) {
	runs := 0
	err := Execute(func(r *Run) error {
		runs++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runs != 1 {
		t.Errorf("body ran %d times, want 1", runs)
	}
}

func TestExecute_SingleParameter_VisitsAllValuesInOrder(t *testing.T) {
	var got []int
	err := Execute(func(r *Run) error {
		got = append(got, ParameterOf(r, "i", 3, 1, 2))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visited %v, want %v", got, want)
		}
	}
}

func TestExecute_TwoParameters_NestedLoopOrder(t *testing.T) {
	var got []string
	err := Execute(func(r *Run) error {
		a := ParameterOf(r, "a", 1, 2)
		b := ParameterOf(r, "b", "x", "y", "z")
		got = append(got, fmt.Sprintf("%d%s", a, b))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"1x", "1y", "1z", "2x", "2y", "2z"}
	if len(got) != len(want) {
		t.Fatalf("visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visited %v, want %v", got, want)
		}
	}
}

func TestExecute_DependentParameter_RecomputedOnAdvance(t *testing.T) {
	var got [][2]int
	err := Execute(func(r *Run) error {
		a := ParameterOf(r, "a", 1, 2)
		b := Parameter(r, "b", source.Deferred(func() source.Source[int] {
			return source.Span(a+1, 4)
		}))
		got = append(got, [2]int{a, b})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][2]int{{1, 2}, {1, 3}, {2, 3}}
	if len(got) != len(want) {
		t.Fatalf("visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visited %v, want %v", got, want)
		}
	}
}

func TestExecute_EmptySource_SkipsOnlyIteration(t *testing.T) {
	var sum *Summary
	ran := false
	err := New(lenient(&sum)).Execute(func(r *Run) error {
		Parameter(r, "none", source.Empty[int]())
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran {
		t.Error("body continued past an empty parameter declaration")
	}
	if sum.Iterations != 0 || sum.Skipped != 1 {
		t.Errorf("iterations = %d, skipped = %d, want 0 and 1", sum.Iterations, sum.Skipped)
	}
}

func TestExecute_EmptyDependentSource_SkipsThatCombination(t *testing.T) {
	var sum *Summary
	var got [][2]int
	err := New(lenient(&sum)).Execute(func(r *Run) error {
		d1 := ParameterOf(r, "d1", 1, 2, 3)
		d2 := Parameter(r, "d2", source.Deferred(func() source.Source[int] {
			return source.Span(d1+1, 4)
		}))
		got = append(got, [2]int{d1, d2})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][2]int{{1, 2}, {1, 3}, {2, 3}}
	if len(got) != len(want) {
		t.Fatalf("visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visited %v, want %v", got, want)
		}
	}
	if sum.Iterations != 3 || sum.Skipped != 1 {
		t.Errorf("iterations = %d, skipped = %d, want 3 and 1", sum.Iterations, sum.Skipped)
	}
}

type countingSource struct {
	inner source.Source[int]
	calls int
}

func (c *countingSource) Iterate() source.Iterator[int] {
	c.calls++
	return c.inner.Iterate()
}

func TestExecute_SourcesMaterializedOncePerReset(t *testing.T) {
	a := &countingSource{inner: source.Of(1, 2)}
	b := &countingSource{inner: source.Of(10, 20)}
	pairs := 0
	err := Execute(func(r *Run) error {
		_ = Parameter[int](r, "a", a)
		_ = Parameter[int](r, "b", b)
		pairs++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pairs != 4 {
		t.Fatalf("visited %d combinations, want 4", pairs)
	}
	// The outer parameter never resets; the inner one resets once per outer
	// advance.
	if a.calls != 1 {
		t.Errorf("outer source materialized %d times, want 1", a.calls)
	}
	if b.calls != 2 {
		t.Errorf("inner source materialized %d times, want 2", b.calls)
	}
}

func TestExecute_InfiniteSource_StopsOnBreakDecision(t *testing.T) {
	var sum *Summary
	cfg := NewBuilder(nil).
		OnFailure(func(ctx *FailureContext) (FailureDecision, error) {
			return FailureDecision{Record: true, Break: true}, nil
		}).
		OnComplete(func(s *Summary) error {
			sum = s
			return AggregateOnFailure(s)
		}).
		Build()

	err := New(cfg).Execute(func(r *Run) error {
		i := Parameter(r, "i", source.Count(0, 1))
		if i >= 2 {
			return &widgetError{id: i}
		}
		return nil
	})
	var agg *AggregateError
	if !errors.As(err, &agg) {
		t.Fatalf("error = %v, want *AggregateError", err)
	}
	if sum.Iterations != 3 || sum.Failures != 1 {
		t.Errorf("iterations = %d, failures = %d, want 3 and 1", sum.Iterations, sum.Failures)
	}
	if !sum.CompletedEarly {
		t.Error("break decision should mark the run as completed early")
	}
}

func TestExecute_StrictDefault_ReturnsFirstFailureRaw(t *testing.T) {
	boom := errors.New("combo failed")
	visited := 0
	completions := 0
	cfg := NewBuilder(nil).
		OnComplete(func(*Summary) error {
			completions++
			return nil
		}).
		Build()

	err := New(cfg).Execute(func(r *Run) error {
		i := ParameterOf(r, "i", 1, 2, 3, 4)
		visited++
		if i == 2 {
			return boom
		}
		return nil
	})
	if err != boom {
		t.Fatalf("error = %v, want the raw body failure", err)
	}
	if visited != 2 {
		t.Errorf("visited %d combinations, want 2", visited)
	}
	if completions != 0 {
		t.Error("completion hook ran on the strict abort path")
	}
}

func TestExecute_RunIDStableWithinRun(t *testing.T) {
	var ids []string
	err := Execute(func(r *Run) error {
		_ = ParameterOf(r, "i", 1, 2, 3)
		ids = append(ids, r.ID().String())
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("visited %d combinations, want 3", len(ids))
	}
	if ids[0] != ids[1] || ids[1] != ids[2] {
		t.Errorf("run ID changed between iterations: %v", ids)
	}
}

func TestExecute_BodyPanic_TravelsFailurePath(t *testing.T) {
	var sum *Summary
	err := New(lenient(&sum)).Execute(func(r *Run) error {
		i := ParameterOf(r, "i", 1, 2)
		if i == 2 {
			panic("boom")
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected an aggregate error")
	}
	if len(sum.Recorded) != 1 {
		t.Fatalf("recorded %d failures, want 1", len(sum.Recorded))
	}
	pe, ok := sum.Recorded[0].Err.(*PanicError)
	if !ok {
		t.Fatalf("recorded failure = %T, want *PanicError", sum.Recorded[0].Err)
	}
	if pe.Error() != "iteration panicked: boom" {
		t.Errorf("panic message = %q", pe.Error())
	}
	if pe.Unwrap() != nil {
		t.Error("non-error panic value should not unwrap")
	}
}

func TestExecute_PanickedError_UnwrapsThroughAggregate(t *testing.T) {
	boom := errors.New("underlying")
	var sum *Summary
	err := New(lenient(&sum)).Execute(func(r *Run) error {
		_ = ParameterOf(r, "i", 1)
		panic(boom)
	})
	if !errors.Is(err, boom) {
		t.Errorf("errors.Is through aggregate and panic wrapper failed: %v", err)
	}
}

func TestExecute_UnreadParameterExcludedFromBindings(t *testing.T) {
	var sum *Summary
	err := New(lenient(&sum)).Execute(func(r *Run) error {
		a := ParameterOf(r, "a", 1)
		_ = Declare(r, "unused", source.Of(9))
		return &widgetError{id: a}
	})
	if err == nil {
		t.Fatal("expected an aggregate error")
	}
	f := sum.Recorded[0]
	if len(f.Parameters) != 1 || f.Parameters[0].Name != "a" {
		t.Fatalf("bindings = %v, want only `a`", f.Parameters)
	}
	if got := f.ArgumentsMessage(); got != "Failed with argument: a = 1" {
		t.Errorf("arguments message = %q", got)
	}
}

func TestExecute_InconsistentDeclaration_Faults(t *testing.T) {
	first := true
	expectFault(t, ErrInconsistentParameter,
		"Expected to be declaring `a`, but got `b`",
		func() {
			_ = Execute(func(r *Run) error {
				if first {
					first = false
					_ = ParameterOf(r, "a", 1, 2)
				} else {
					_ = ParameterOf(r, "b", 1)
				}
				return nil
			})
		})
}

func TestExecute_NestedDeclaration_Faults(t *testing.T) {
	expectFault(t, ErrNestedDeclaration,
		"Nesting parameters is not currently supported: `inner` was declared within `outer`'s arguments",
		func() {
			_ = Execute(func(r *Run) error {
				_ = Parameter(r, "outer", source.Deferred(func() source.Source[int] {
					_ = ParameterOf(r, "inner", 1)
					return source.Of(1)
				}))
				return nil
			})
		})
}

func TestExecute_NondeterministicFailure_Faults(t *testing.T) {
	n := 0
	expectFault(t, ErrNondeterministic, "", func() {
		_ = Execute(func(r *Run) error {
			_ = ParameterOf(r, "a", 1)
			n++
			if n == 2 {
				// Fail before reaching `b`, which is marked to advance.
				return errors.New("diverged")
			}
			_ = ParameterOf(r, "b", 1, 2)
			return nil
		})
	})
}

func TestParam_StaleAcrossIterations_Faults(t *testing.T) {
	var stale Param[int]
	n := 0
	expectFault(t, ErrStaleHandle, "", func() {
		_ = Execute(func(r *Run) error {
			p := Declare(r, "i", source.Of(1, 2))
			n++
			if n == 1 {
				stale = p
				_ = p.Value()
			} else {
				_ = stale.Value()
			}
			return nil
		})
	})
}

func TestParam_AfterRunFinished_Faults(t *testing.T) {
	var escaped Param[int]
	err := Execute(func(r *Run) error {
		escaped = Declare(r, "i", source.Of(1))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectFault(t, ErrWrongRun, "", func() {
		_ = escaped.Value()
	})
}

func TestExecute_AdvancedButUnreadValueNotInBindings(t *testing.T) {
	var sum *Summary
	n := 0
	err := New(lenient(&sum)).Execute(func(r *Run) error {
		pa := Declare(r, "a", source.Of(1, 2))
		_ = Declare(r, "b", source.Of(10, 11))
		n++
		if n <= 2 {
			// Read `a` only while it holds its first value.
			_ = pa.Value()
		}
		if n == 3 {
			// `a` just advanced to 2 and nothing was read this iteration.
			return &widgetError{id: n}
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected an aggregate error")
	}
	f := sum.Recorded[0]
	if len(f.Parameters) != 0 {
		t.Fatalf("bindings = %v, want none for an unread advanced value", f.Parameters)
	}
	if got := f.ArgumentsMessage(); got != "Failed with no arguments" {
		t.Errorf("arguments message = %q", got)
	}
}

func TestExecute_CarriedOverValueStaysBound(t *testing.T) {
	var sum *Summary
	n := 0
	err := New(lenient(&sum)).Execute(func(r *Run) error {
		pa := Declare(r, "a", source.Of(1, 2))
		_ = ParameterOf(r, "b", 10, 11)
		n++
		if n == 1 {
			_ = pa.Value()
		}
		if n == 2 {
			// `a` carried over unchanged; the earlier read keeps it bound.
			return &widgetError{id: n}
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected an aggregate error")
	}
	f := sum.Recorded[0]
	if len(f.Parameters) != 2 || f.Parameters[0].Name != "a" || f.Parameters[0].Value != 1 {
		t.Errorf("bindings = %v, want carried-over `a` = 1 and read `b`", f.Parameters)
	}
}

func TestExecute_RecordingHandlerCap(t *testing.T) {
	var sum *Summary
	cfg := NewBuilder(nil).
		OnFailure(RecordingHandler(3)).
		OnComplete(func(s *Summary) error {
			sum = s
			return AggregateOnFailure(s)
		}).
		Build()

	err := New(cfg).Execute(func(r *Run) error {
		i := ParameterOf(r, "i", 1, 2, 3, 4, 5)
		return &widgetError{id: i}
	})
	if err == nil {
		t.Fatal("expected an aggregate error")
	}
	if sum.Failures != 5 || len(sum.Recorded) != 3 {
		t.Errorf("failures = %d, recorded = %d, want 5 and 3", sum.Failures, len(sum.Recorded))
	}
}
