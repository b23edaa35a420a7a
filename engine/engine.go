package engine

// Body is one iteration of caller logic. It declares parameters in order
// against the Run and returns an error to report a failure for the current
// combination. A panic from the body is captured and routed through the
// failure path as well.
type Body func(*Run) error

// Engine executes bodies under a fixed configuration. Engines are cheap;
// each Execute call owns a fresh run state and never shares it.
type Engine struct {
	config *Configuration
}

// New returns an Engine with the given configuration.
// A nil configuration means Default.
func New(config *Configuration) *Engine {
	if config == nil {
		config = Default
	}
	return &Engine{config: config}
}

// Execute runs body with the default configuration.
func Execute(body Body) error {
	return New(nil).Execute(body)
}

// Execute runs body once per combination of declared parameter arguments.
//
// The loop executes the body, lets the failure hook steer on failures, then
// asks the run state for the next combination; it ends when no declared
// parameter has a remaining argument or a failure decision breaks early.
// The completion hook runs exactly once afterwards and its error is the
// result of the run. A body that declares no parameters executes exactly
// once.
//
// Fatal usage faults (see the Err sentinels) propagate as panics carrying a
// *UsageError and bypass both hooks.
func (e *Engine) Execute(body Body) error {
	cfg := e.config
	st := newRunState()
	run := &Run{state: st}

	cfg.Collector.IncRunStarted()
	cfg.Logger.Debug("starting run", map[string]any{
		"run_id": st.runID.String(),
	})

	for {
		st.startIteration()
		failure, skipped := e.runOne(run, body)

		switch {
		case skipped:
			st.skipped++
			cfg.Logger.Debug("iteration skipped", map[string]any{
				"iteration": st.iteration,
			})
		case failure != nil:
			st.checkDeterminism()
			st.executed++
			st.failures++

			ctx := &FailureContext{
				Err:        failure,
				Iterations: st.executed,
				Failures:   st.failures,
				state:      st,
			}
			decision, err := cfg.onFailure()(ctx)
			if err != nil {
				// Strict path: abort with the raw failure, skipping the
				// completion hook.
				st.stoppedEarly = true
				return e.finish(st, err)
			}
			if decision.Record {
				st.recorded = append(st.recorded, &Failure{Err: failure, Parameters: ctx.Parameters()})
				cfg.Logger.Debug("failure recorded", map[string]any{
					"iteration": st.iteration,
					"error":     failure.Error(),
				})
			}
			if decision.Break {
				st.stoppedEarly = true
			}
		default:
			st.executed++
		}

		if st.stoppedEarly || !st.computeNext() {
			break
		}
	}

	return e.finish(st, nil)
}

// finish seals the run state, publishes counters, and resolves the run's
// result: abort wins when set, otherwise the completion hook decides.
func (e *Engine) finish(st *runState, abort error) error {
	cfg := e.config
	st.finished = true
	summary := st.summary()

	cfg.Collector.AbsorbSummary(
		int64(summary.Iterations),
		int64(summary.Skipped),
		int64(summary.Failures),
		int64(len(summary.Recorded)),
		summary.CompletedEarly,
	)
	if summary.Failures > 0 {
		cfg.Collector.IncRunFailed()
	} else {
		cfg.Collector.IncRunCompleted()
	}
	cfg.Logger.Info("run completed", map[string]any{
		"iterations":      summary.Iterations,
		"skipped":         summary.Skipped,
		"failures":        summary.Failures,
		"completed_early": summary.CompletedEarly,
	})

	if abort != nil {
		return abort
	}
	return cfg.onComplete()(summary)
}

// runOne executes a single iteration through the decorator, capturing body
// failures and the internal skip signal before control returns to the
// decorator. Fatal usage faults are re-raised untouched.
func (e *Engine) runOne(run *Run, body Body) (failure error, skipped bool) {
	iteration := func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			switch v := r.(type) {
			case skipSignal:
				skipped = true
			case *UsageError:
				panic(v)
			default:
				failure = &PanicError{Value: v}
			}
		}()
		if err := body(run); err != nil {
			failure = err
		}
	}

	if e.config.Decorator != nil {
		e.config.Collector.IncDecoratedIteration()
	}
	decorate(e.config.Decorator, iteration)
	return failure, skipped
}
