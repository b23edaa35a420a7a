// Package matrix provides YAML-defined parameter matrices for the sweep CLI.
//
// A matrix file names a set of axes, each with an ordered list of candidate
// values, plus optional exclude rules. Expansion drives the engine over the
// axes and collects the combinations in iteration order: the first axis is
// the outermost loop, the last varies fastest.
package matrix

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/justapithecus/sweep/engine"
	"github.com/justapithecus/sweep/source"
)

// Validation errors. Use errors.Is for assertions.
var (
	ErrNoAxes        = errors.New("matrix has no axes")
	ErrUnnamedAxis   = errors.New("axis has no name")
	ErrDuplicateAxis = errors.New("duplicate axis name")
	ErrUnknownAxis   = errors.New("exclude rule references unknown axis")
)

// File is a parsed matrix definition.
type File struct {
	// Name labels the matrix; informational.
	Name string `yaml:"name,omitempty"`
	// Axes are the parameters of the matrix, in declaration order.
	Axes []Axis `yaml:"axes"`
	// Exclude lists combinations to drop: a rule matches when every named
	// axis has the given value. Rules may bind a subset of the axes.
	Exclude []map[string]any `yaml:"exclude,omitempty"`
}

// Axis is one named parameter with its candidate values.
// An axis with no values contributes zero combinations (every iteration
// skips at its declaration).
type Axis struct {
	Name   string `yaml:"name"`
	Values []any  `yaml:"values"`
}

// Validate checks structural invariants: at least one axis, every axis
// named, names unique, exclude rules referencing known axes only.
func (f *File) Validate() error {
	if len(f.Axes) == 0 {
		return ErrNoAxes
	}
	names := make(map[string]bool, len(f.Axes))
	for i, axis := range f.Axes {
		if axis.Name == "" {
			return fmt.Errorf("%w: axis %d", ErrUnnamedAxis, i)
		}
		if names[axis.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateAxis, axis.Name)
		}
		names[axis.Name] = true
	}
	for i, rule := range f.Exclude {
		for name := range rule {
			if !names[name] {
				return fmt.Errorf("%w: rule %d references %q", ErrUnknownAxis, i, name)
			}
		}
	}
	return nil
}

// Combination is one full assignment of a value to every axis.
type Combination map[string]any

// Expand runs the engine over the matrix axes and returns every combination
// not dropped by an exclude rule, in iteration order. The configuration may
// be nil for defaults.
func Expand(f *File, config *engine.Configuration) ([]Combination, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var combos []Combination
	err := engine.New(config).Execute(func(r *engine.Run) error {
		combo := make(Combination, len(f.Axes))
		for _, axis := range f.Axes {
			combo[axis.Name] = engine.Parameter(r, axis.Name, source.FromSlice(axis.Values))
		}
		if !f.excluded(combo) {
			combos = append(combos, combo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return combos, nil
}

// Count returns the number of combinations Expand would produce, without
// retaining them.
func Count(f *File, config *engine.Configuration) (int, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}

	n := 0
	err := engine.New(config).Execute(func(r *engine.Run) error {
		combo := make(Combination, len(f.Axes))
		for _, axis := range f.Axes {
			combo[axis.Name] = engine.Parameter(r, axis.Name, source.FromSlice(axis.Values))
		}
		if !f.excluded(combo) {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// excluded reports whether any exclude rule matches the combination.
func (f *File) excluded(combo Combination) bool {
	for _, rule := range f.Exclude {
		matched := len(rule) > 0
		for name, want := range rule {
			if !reflect.DeepEqual(combo[name], want) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// AxisNames returns the axis names in declaration order.
func (f *File) AxisNames() []string {
	names := make([]string, len(f.Axes))
	for i, axis := range f.Axes {
		names[i] = axis.Name
	}
	return names
}
