// Package metrics provides per-process metrics collection for sweep runs.
//
// The Collector accumulates counters across runs. It is a leaf package with
// no internal dependencies. Per-run iteration counters are absorbed from the
// engine Summary at run completion rather than recorded live, avoiding
// double-counting when a run is retried.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all collected metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Run lifecycle
	RunsStarted   int64
	RunsCompleted int64
	RunsFailed    int64

	// Iterations (absorbed from engine Summary at run completion)
	IterationsExecuted int64
	IterationsSkipped  int64
	IterationsFailed   int64
	FailuresRecorded   int64
	RunsStoppedEarly   int64

	// Decorator
	DecoratedIterations int64
}

// Collector accumulates metrics across sweep runs.
// Thread-safe via sync.Mutex. All recording methods are nil-receiver safe,
// so the engine can call through an unset collector without guards.
type Collector struct {
	mu sync.Mutex

	runsStarted   int64
	runsCompleted int64
	runsFailed    int64

	iterationsExecuted int64
	iterationsSkipped  int64
	iterationsFailed   int64
	failuresRecorded   int64
	runsStoppedEarly   int64

	decoratedIterations int64
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// IncRunStarted records a run start.
func (c *Collector) IncRunStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.runsStarted++
	c.mu.Unlock()
}

// IncRunCompleted records a run that finished without failures.
func (c *Collector) IncRunCompleted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.runsCompleted++
	c.mu.Unlock()
}

// IncRunFailed records a run that finished with at least one failure.
func (c *Collector) IncRunFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.runsFailed++
	c.mu.Unlock()
}

// IncDecoratedIteration records one iteration executed through a decorator.
func (c *Collector) IncDecoratedIteration() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.decoratedIterations++
	c.mu.Unlock()
}

// AbsorbSummary folds a run's final iteration counters into the collector.
// Called once per run at completion.
func (c *Collector) AbsorbSummary(executed, skipped, failed, recorded int64, stoppedEarly bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.iterationsExecuted += executed
	c.iterationsSkipped += skipped
	c.iterationsFailed += failed
	c.failuresRecorded += recorded
	if stoppedEarly {
		c.runsStoppedEarly++
	}
}

// Snapshot returns an immutable copy of all counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		RunsStarted:         c.runsStarted,
		RunsCompleted:       c.runsCompleted,
		RunsFailed:          c.runsFailed,
		IterationsExecuted:  c.iterationsExecuted,
		IterationsSkipped:   c.iterationsSkipped,
		IterationsFailed:    c.iterationsFailed,
		FailuresRecorded:    c.failuresRecorded,
		RunsStoppedEarly:    c.runsStoppedEarly,
		DecoratedIterations: c.decoratedIterations,
	}
}
