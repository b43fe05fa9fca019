// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fieldtypes

import (
	"fmt"
	"slices"

	"github.com/hsorby/cmgui-sub001/field"
)

// Component selects components of its source by index, in any order
// and possibly repeated.
type Component struct {
	Indices []int
}

func (c *Component) TypeName() string { return "component" }

func (c *Component) NumComponents(sources []*field.Field) (int, error) {
	if err := checkNumSources(c, sources, 1); err != nil {
		return 0, err
	}
	nc := sources[0].NumComponents()
	for _, idx := range c.Indices {
		if idx < 0 || idx >= nc {
			return 0, fmt.Errorf("component: index %d out of range for %v with %d components: %w", idx, sources[0], nc, field.ErrInvalidArgument)
		}
	}
	return len(c.Indices), nil
}

func (c *Component) Evaluate(f *field.Field, ev *field.Evaluation) error {
	vals, derivs, err := ev.EvaluateSource(f.Source(0))
	if err != nil {
		return err
	}
	nx := ev.NumXi
	for i, idx := range c.Indices {
		if idx >= len(vals) {
			return fmt.Errorf("component: index %d out of range for %v with %d components: %w", idx, f.Source(0), len(vals), field.ErrDimensionMismatch)
		}
		ev.Values[i] = vals[idx]
		if nx > 0 {
			copy(ev.Derivatives[i*nx:(i+1)*nx], derivs[idx*nx:])
		}
	}
	return nil
}

func (c *Component) CommandString(f *field.Field) string {
	return fmt.Sprintf("component field %s indices %s", field.SourceNames(f), field.FormatInts(c.Indices))
}

func (c *Component) Clone() field.Core { return &Component{Indices: slices.Clone(c.Indices)} }

func (c *Component) SupportsDerivatives() bool { return true }

// Composite concatenates the components of its sources.
type Composite struct{}

func (c *Composite) TypeName() string { return "composite" }

func (c *Composite) NumComponents(sources []*field.Field) (int, error) {
	if len(sources) == 0 {
		return 0, fmt.Errorf("composite: no sources: %w", field.ErrInvalidArgument)
	}
	nc := 0
	for _, s := range sources {
		nc += s.NumComponents()
	}
	return nc, nil
}

func (c *Composite) Evaluate(f *field.Field, ev *field.Evaluation) error {
	i := 0
	for _, s := range f.Sources() {
		vals, derivs, err := ev.EvaluateSource(s)
		if err != nil {
			return err
		}
		copy(ev.Values[i:], vals)
		copy(ev.Derivatives[i*ev.NumXi:], derivs)
		i += len(vals)
	}
	return nil
}

func (c *Composite) CommandString(f *field.Field) string {
	return "composite fields " + field.SourceNames(f)
}

func (c *Composite) Clone() field.Core { return &Composite{} }

func (c *Composite) SupportsDerivatives() bool { return true }
