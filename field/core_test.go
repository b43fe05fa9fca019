// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import (
	"fmt"
	"slices"
)

// constCore is a test field type with fixed values and zero derivatives.
type constCore struct {
	values []float64
}

func (c *constCore) TypeName() string { return "test_constant" }

func (c *constCore) NumComponents(sources []*Field) (int, error) {
	if len(sources) != 0 {
		return 0, fmt.Errorf("no sources allowed: %w", ErrInvalidArgument)
	}
	return len(c.values), nil
}

func (c *constCore) Evaluate(f *Field, ev *Evaluation) error {
	copy(ev.Values, c.values)
	return nil
}

func (c *constCore) CommandString(f *Field) string {
	return "test_constant " + FormatFloats(c.values)
}

func (c *constCore) Clone() Core { return &constCore{values: slices.Clone(c.values)} }

func (c *constCore) SupportsDerivatives() bool { return true }

// sumCore is a test field type adding its sources component-wise.
type sumCore struct{}

func (c *sumCore) TypeName() string { return "test_sum" }

func (c *sumCore) NumComponents(sources []*Field) (int, error) {
	if len(sources) == 0 {
		return 0, fmt.Errorf("need sources: %w", ErrInvalidArgument)
	}
	nc := sources[0].NumComponents()
	for _, s := range sources[1:] {
		if s.NumComponents() != nc {
			return 0, ErrDimensionMismatch
		}
	}
	return nc, nil
}

func (c *sumCore) Evaluate(f *Field, ev *Evaluation) error {
	for _, s := range f.Sources() {
		vals, derivs, err := ev.EvaluateSource(s)
		if err != nil {
			return err
		}
		for i, v := range vals {
			ev.Values[i] += v
		}
		for i, d := range derivs {
			ev.Derivatives[i] += d
		}
	}
	return nil
}

func (c *sumCore) CommandString(f *Field) string { return "test_sum fields " + SourceNames(f) }

func (c *sumCore) Clone() Core { return &sumCore{} }

func (c *sumCore) SupportsDerivatives() bool { return true }

// timeCore is a test field type returning the time, without derivatives.
type timeCore struct{}

func (c *timeCore) TypeName() string { return "test_time" }

func (c *timeCore) NumComponents([]*Field) (int, error) { return 1, nil }

func (c *timeCore) Evaluate(f *Field, ev *Evaluation) error {
	ev.Values[0] = ev.Location.Time()
	return nil
}

func (c *timeCore) CommandString(f *Field) string { return "test_time" }

func (c *timeCore) Clone() Core { return &timeCore{} }

// invalidatingCore counts the invalidations of its own cached data.
type invalidatingCore struct {
	constCore
	invalidations int
}

func (c *invalidatingCore) Invalidate() { c.invalidations++ }

func newConst(name string, values ...float64) *Field {
	f := New(name)
	if err := f.SetCore(&constCore{values: values}); err != nil {
		panic(err)
	}
	return f
}

var origin = CoordinateLocation{Coordinates: []float64{0, 0}}
