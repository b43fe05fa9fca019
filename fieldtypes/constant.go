// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fieldtypes provides the ordinary field types: constants,
// arithmetic, conditionals, component selection, coordinates and time,
// finite element interpolation and texture sampling.
package fieldtypes

import (
	"fmt"
	"slices"

	"github.com/hsorby/cmgui-sub001/field"
)

// Constant is a field type with fixed values, defined everywhere.
type Constant struct {
	Values []float64
}

// NewConstant returns a new constant core with the given values.
func NewConstant(values ...float64) *Constant {
	return &Constant{Values: slices.Clone(values)}
}

func (c *Constant) TypeName() string { return "constant" }

func (c *Constant) NumComponents(sources []*field.Field) (int, error) {
	if err := checkNumSources(c, sources, 0); err != nil {
		return 0, err
	}
	if len(c.Values) == 0 {
		return 0, fmt.Errorf("constant: no values: %w", field.ErrInvalidArgument)
	}
	return len(c.Values), nil
}

func (c *Constant) Evaluate(f *field.Field, ev *field.Evaluation) error {
	copy(ev.Values, c.Values)
	return nil
}

func (c *Constant) CommandString(f *field.Field) string {
	return "constant " + field.FormatFloats(c.Values)
}

func (c *Constant) Clone() field.Core { return NewConstant(c.Values...) }

func (c *Constant) SupportsDerivatives() bool { return true }

// checkNumSources returns an error if there are not exactly n sources.
func checkNumSources(c field.Core, sources []*field.Field, n int) error {
	if len(sources) != n {
		return fmt.Errorf("%s: %d sources, need %d: %w", c.TypeName(), len(sources), n, field.ErrInvalidArgument)
	}
	return nil
}

// sameComponents returns the number of components of the sources,
// or an error if they differ.
func sameComponents(c field.Core, sources []*field.Field) (int, error) {
	nc := sources[0].NumComponents()
	for _, s := range sources[1:] {
		if s.NumComponents() != nc {
			return 0, fmt.Errorf("%s: %v has %d components, %v has %d: %w", c.TypeName(), sources[0], nc, s, s.NumComponents(), field.ErrDimensionMismatch)
		}
	}
	return nc, nil
}

// checkValues returns an error if the values evaluated for src do not
// have n components.
func checkValues(c field.Core, src *field.Field, vals []float64, n int) error {
	if len(vals) != n {
		return fmt.Errorf("%s: %v evaluated %d components, need %d: %w", c.TypeName(), src, len(vals), n, field.ErrDimensionMismatch)
	}
	return nil
}
