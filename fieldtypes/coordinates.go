// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fieldtypes

import (
	"fmt"

	"github.com/hsorby/cmgui-sub001/field"
	"github.com/hsorby/cmgui-sub001/mesh"
)

// Xi is the location itself: the xi coordinates at element locations
// and the coordinates at coordinate locations, padded with zeros or
// truncated to Dimension components. It is not defined at nodes.
// As the coordinate field of an image field with no locator, it maps
// coordinates directly to texture coordinates.
type Xi struct {
	Dimension int
}

func (c *Xi) TypeName() string { return "xi" }

func (c *Xi) NumComponents(sources []*field.Field) (int, error) {
	if err := checkNumSources(c, sources, 0); err != nil {
		return 0, err
	}
	if c.Dimension < 1 || c.Dimension > 3 {
		return 0, fmt.Errorf("xi: dimension %d not in 1 to 3: %w", c.Dimension, field.ErrInvalidArgument)
	}
	return c.Dimension, nil
}

func (c *Xi) Evaluate(f *field.Field, ev *field.Evaluation) error {
	var coords []float64
	switch loc := ev.Location.(type) {
	case field.ElementLocation:
		coords = loc.Xi
	case field.CoordinateLocation:
		coords = loc.Coordinates
	default:
		return fmt.Errorf("xi: %v: %w", ev.Location, field.ErrNotDefined)
	}
	copy(ev.Values, coords)
	for i := range min(c.Dimension, ev.NumXi) {
		ev.Derivatives[i*ev.NumXi+i] = 1
	}
	return nil
}

func (c *Xi) IsDefinedAtNode(f *field.Field, node *mesh.Node) bool { return false }

func (c *Xi) CommandString(f *field.Field) string {
	return fmt.Sprintf("xi dimension %d", c.Dimension)
}

func (c *Xi) Clone() field.Core {
	cp := *c
	return &cp
}

func (c *Xi) SupportsDerivatives() bool { return true }

// TimeValue is the time of the location, defined everywhere.
type TimeValue struct{}

func (c *TimeValue) TypeName() string { return "time_value" }

func (c *TimeValue) NumComponents(sources []*field.Field) (int, error) {
	if err := checkNumSources(c, sources, 0); err != nil {
		return 0, err
	}
	return 1, nil
}

func (c *TimeValue) Evaluate(f *field.Field, ev *field.Evaluation) error {
	ev.Values[0] = ev.Location.Time()
	return nil
}

func (c *TimeValue) CommandString(f *field.Field) string { return "time_value" }

func (c *TimeValue) Clone() field.Core { return &TimeValue{} }

func (c *TimeValue) SupportsDerivatives() bool { return true }
