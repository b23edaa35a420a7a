package engine

import (
	"github.com/justapithecus/sweep/log"
	"github.com/justapithecus/sweep/metrics"
)

// Configuration carries the three overridable behaviors of a run plus the
// ambient collaborators. The zero value (and a nil *Configuration) means all
// defaults: no decorator, strict failure handling, aggregate-on-failure
// completion, no logging, no metrics.
type Configuration struct {
	// Decorator, when set, wraps every iteration. It must invoke the
	// iteration function it is given exactly once.
	Decorator Decorator

	// OnFailure decides what to do with each body failure.
	// Nil means StrictHandler.
	OnFailure FailureHandler

	// OnComplete runs exactly once at the end of the run.
	// Nil means AggregateOnFailure.
	OnComplete CompletionHandler

	// Logger receives engine debug/info entries. Nil disables logging.
	Logger *log.Logger

	// Collector accumulates run counters. Nil disables metrics.
	Collector *metrics.Collector
}

// Default is the statically-defined default configuration. Runs that are
// not handed an explicit configuration use it.
var Default = &Configuration{}

// Builder assembles a Configuration by copying a base and overriding a
// subset of its behaviors.
type Builder struct {
	c Configuration
}

// NewBuilder returns a Builder seeded with a copy of base.
// A nil base seeds from Default.
func NewBuilder(base *Configuration) *Builder {
	if base == nil {
		base = Default
	}
	return &Builder{c: *base}
}

// Decorator overrides the iteration decorator.
func (b *Builder) Decorator(d Decorator) *Builder {
	b.c.Decorator = d
	return b
}

// OnFailure overrides the per-failure hook.
func (b *Builder) OnFailure(h FailureHandler) *Builder {
	b.c.OnFailure = h
	return b
}

// OnComplete overrides the completion hook.
func (b *Builder) OnComplete(h CompletionHandler) *Builder {
	b.c.OnComplete = h
	return b
}

// Logger overrides the run logger.
func (b *Builder) Logger(l *log.Logger) *Builder {
	b.c.Logger = l
	return b
}

// Collector overrides the metrics collector.
func (b *Builder) Collector(c *metrics.Collector) *Builder {
	b.c.Collector = c
	return b
}

// Build returns the assembled configuration. The builder can keep being
// used; each Build returns an independent copy.
func (b *Builder) Build() *Configuration {
	c := b.c
	return &c
}

func (c *Configuration) onFailure() FailureHandler {
	if c.OnFailure != nil {
		return c.OnFailure
	}
	return StrictHandler
}

func (c *Configuration) onComplete() CompletionHandler {
	if c.OnComplete != nil {
		return c.OnComplete
	}
	return AggregateOnFailure
}
