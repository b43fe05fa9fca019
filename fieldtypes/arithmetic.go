// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fieldtypes

import (
	"fmt"
	"math"
	"slices"

	"github.com/hsorby/cmgui-sub001/field"
)

// Add is the weighted sum of two fields with the same number of
// components: ScaleFactors[0]*source1 + ScaleFactors[1]*source2.
type Add struct {
	ScaleFactors [2]float64
}

// NewAdd returns a new add core with unit weights.
func NewAdd() *Add { return &Add{ScaleFactors: [2]float64{1, 1}} }

func (c *Add) TypeName() string { return "add" }

func (c *Add) NumComponents(sources []*field.Field) (int, error) {
	if err := checkNumSources(c, sources, 2); err != nil {
		return 0, err
	}
	return sameComponents(c, sources)
}

func (c *Add) Evaluate(f *field.Field, ev *field.Evaluation) error {
	for i, s := range f.Sources() {
		vals, derivs, err := ev.EvaluateSource(s)
		if err != nil {
			return err
		}
		if err := checkValues(c, s, vals, len(ev.Values)); err != nil {
			return err
		}
		w := c.ScaleFactors[i]
		for j, v := range vals {
			ev.Values[j] += w * v
		}
		for j, d := range derivs {
			ev.Derivatives[j] += w * d
		}
	}
	return nil
}

func (c *Add) CommandString(f *field.Field) string {
	return fmt.Sprintf("add fields %s scale_factors %s", field.SourceNames(f), field.FormatFloats(c.ScaleFactors[:]))
}

func (c *Add) Clone() field.Core {
	cp := *c
	return &cp
}

func (c *Add) SupportsDerivatives() bool { return true }

// Multiply is the component-wise product of two fields with the same
// number of components.
type Multiply struct{}

func (c *Multiply) TypeName() string { return "multiply" }

func (c *Multiply) NumComponents(sources []*field.Field) (int, error) {
	if err := checkNumSources(c, sources, 2); err != nil {
		return 0, err
	}
	return sameComponents(c, sources)
}

func (c *Multiply) Evaluate(f *field.Field, ev *field.Evaluation) error {
	a, da, err := ev.EvaluateSource(f.Source(0))
	if err != nil {
		return err
	}
	b, db, err := ev.EvaluateSource(f.Source(1))
	if err != nil {
		return err
	}
	if err := checkValues(c, f.Source(0), a, len(ev.Values)); err != nil {
		return err
	}
	if err := checkValues(c, f.Source(1), b, len(ev.Values)); err != nil {
		return err
	}
	for i := range ev.Values {
		ev.Values[i] = a[i] * b[i]
		for j := range ev.NumXi {
			k := i*ev.NumXi + j
			ev.Derivatives[k] = da[k]*b[i] + a[i]*db[k]
		}
	}
	return nil
}

func (c *Multiply) CommandString(f *field.Field) string {
	return "multiply fields " + field.SourceNames(f)
}

func (c *Multiply) Clone() field.Core { return &Multiply{} }

func (c *Multiply) SupportsDerivatives() bool { return true }

// Scale multiplies each component of its source by the corresponding
// scale factor.
type Scale struct {
	ScaleFactors []float64
}

func (c *Scale) TypeName() string { return "scale" }

func (c *Scale) NumComponents(sources []*field.Field) (int, error) {
	if err := checkNumSources(c, sources, 1); err != nil {
		return 0, err
	}
	nc := sources[0].NumComponents()
	if len(c.ScaleFactors) != nc {
		return 0, fmt.Errorf("scale: %d scale factors for %d components: %w", len(c.ScaleFactors), nc, field.ErrDimensionMismatch)
	}
	return nc, nil
}

func (c *Scale) Evaluate(f *field.Field, ev *field.Evaluation) error {
	vals, derivs, err := ev.EvaluateSource(f.Source(0))
	if err != nil {
		return err
	}
	if err := checkValues(c, f.Source(0), vals, len(c.ScaleFactors)); err != nil {
		return err
	}
	for i, v := range vals {
		ev.Values[i] = c.ScaleFactors[i] * v
		for j := range ev.NumXi {
			k := i*ev.NumXi + j
			ev.Derivatives[k] = c.ScaleFactors[i] * derivs[k]
		}
	}
	return nil
}

func (c *Scale) CommandString(f *field.Field) string {
	return fmt.Sprintf("scale field %s scale_factors %s", field.SourceNames(f), field.FormatFloats(c.ScaleFactors))
}

func (c *Scale) Clone() field.Core { return &Scale{ScaleFactors: slices.Clone(c.ScaleFactors)} }

func (c *Scale) SupportsDerivatives() bool { return true }

// Magnitude is the Euclidean norm of its source.
type Magnitude struct{}

func (c *Magnitude) TypeName() string { return "magnitude" }

func (c *Magnitude) NumComponents(sources []*field.Field) (int, error) {
	if err := checkNumSources(c, sources, 1); err != nil {
		return 0, err
	}
	return 1, nil
}

func (c *Magnitude) Evaluate(f *field.Field, ev *field.Evaluation) error {
	vals, derivs, err := ev.EvaluateSource(f.Source(0))
	if err != nil {
		return err
	}
	sum := 0.0
	for _, v := range vals {
		sum += v * v
	}
	mag := math.Sqrt(sum)
	ev.Values[0] = mag
	if mag == 0 {
		return nil
	}
	for j := range ev.NumXi {
		d := 0.0
		for i, v := range vals {
			d += v * derivs[i*ev.NumXi+j]
		}
		ev.Derivatives[j] = d / mag
	}
	return nil
}

func (c *Magnitude) CommandString(f *field.Field) string {
	return "magnitude field " + field.SourceNames(f)
}

func (c *Magnitude) Clone() field.Core { return &Magnitude{} }

func (c *Magnitude) SupportsDerivatives() bool { return true }
