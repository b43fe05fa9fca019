// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fieldtypes

import (
	"fmt"
	"maps"
	"slices"

	"github.com/hsorby/cmgui-sub001/field"
	"github.com/hsorby/cmgui-sub001/mesh"
)

// FiniteElement has values stored at mesh nodes, interpolated over
// elements with multilinear Lagrange basis functions. It is defined at
// nodes with values and in elements all of whose nodes have values.
type FiniteElement struct {
	Components int

	values map[*mesh.Node][]float64
}

// NewFiniteElement returns a new finite element core with the given
// number of components and no node values.
func NewFiniteElement(components int) *FiniteElement {
	return &FiniteElement{Components: components, values: map[*mesh.Node][]float64{}}
}

func (c *FiniteElement) TypeName() string { return "finite_element" }

func (c *FiniteElement) NumComponents(sources []*field.Field) (int, error) {
	if err := checkNumSources(c, sources, 0); err != nil {
		return 0, err
	}
	if c.Components <= 0 {
		return 0, fmt.Errorf("finite_element: %d components: %w", c.Components, field.ErrInvalidArgument)
	}
	return c.Components, nil
}

func (c *FiniteElement) Evaluate(f *field.Field, ev *field.Evaluation) error {
	switch loc := ev.Location.(type) {
	case field.NodeLocation:
		vals, ok := c.values[loc.Node]
		if !ok {
			return fmt.Errorf("finite_element: %v: %w", loc.Node, field.ErrNotDefined)
		}
		copy(ev.Values, vals)
		return nil
	case field.ElementLocation:
		return c.evaluateInElement(loc, ev)
	}
	return fmt.Errorf("finite_element: %v: %w", ev.Location, field.ErrNotDefined)
}

func (c *FiniteElement) evaluateInElement(loc field.ElementLocation, ev *field.Evaluation) error {
	el := loc.Element
	dim := len(loc.Xi)
	if dim != el.Dimension {
		return fmt.Errorf("finite_element: %d xi in %v: %w", dim, el, field.ErrDimensionMismatch)
	}
	phi := make([]float64, len(el.Nodes))
	var dphi []float64
	if ev.NumXi > 0 {
		dphi = make([]float64, len(el.Nodes)*dim)
	}
	mesh.Basis(loc.Xi, phi, dphi)
	for i, nd := range el.Nodes {
		vals, ok := c.values[nd]
		if !ok {
			return fmt.Errorf("finite_element: %v of %v: %w", nd, el, field.ErrNotDefined)
		}
		for k, v := range vals {
			ev.Values[k] += phi[i] * v
			for j := range ev.NumXi {
				ev.Derivatives[k*ev.NumXi+j] += dphi[i*dim+j] * v
			}
		}
	}
	return nil
}

func (c *FiniteElement) IsDefinedAtNode(f *field.Field, node *mesh.Node) bool {
	_, ok := c.values[node]
	return ok
}

func (c *FiniteElement) IsDefinedInElement(f *field.Field, element *mesh.Element) bool {
	for _, nd := range element.Nodes {
		if _, ok := c.values[nd]; !ok {
			return false
		}
	}
	return true
}

// CommandString returns the command creating a finite element field
// with the same number of components. The node values are not part of
// it, so a field defined from it has none until they are set again.
func (c *FiniteElement) CommandString(f *field.Field) string {
	return fmt.Sprintf("finite_element number_of_components %d", c.Components)
}

func (c *FiniteElement) Clone() field.Core {
	cp := NewFiniteElement(c.Components)
	for nd, vals := range c.values {
		cp.values[nd] = slices.Clone(vals)
	}
	return cp
}

func (c *FiniteElement) SupportsDerivatives() bool { return true }

// Nodes returns the nodes with values, sorted by identifier.
func (c *FiniteElement) Nodes() []*mesh.Node {
	return slices.SortedFunc(maps.Keys(c.values), func(a, b *mesh.Node) int {
		return a.Identifier - b.Identifier
	})
}

func finiteElementCore(f *field.Field) (*FiniteElement, error) {
	if f == nil {
		return nil, fmt.Errorf("nil field: %w", field.ErrInvalidArgument)
	}
	fe, ok := f.Core().(*FiniteElement)
	if !ok {
		return nil, fmt.Errorf("%v is not a finite_element field: %w", f, field.ErrInvalidArgument)
	}
	return fe, nil
}

// SetNodeValues sets the values of the finite element field f at the
// given node, and notifies everything depending on f of the change.
func SetNodeValues(f *field.Field, node *mesh.Node, values ...float64) error {
	fe, err := finiteElementCore(f)
	if err != nil {
		return fmt.Errorf("fieldtypes.SetNodeValues: %w", err)
	}
	if node == nil {
		return fmt.Errorf("fieldtypes.SetNodeValues: nil node: %w", field.ErrInvalidArgument)
	}
	if len(values) != fe.Components {
		return fmt.Errorf("fieldtypes.SetNodeValues: %d values for %d components: %w", len(values), fe.Components, field.ErrDimensionMismatch)
	}
	if fe.values == nil {
		fe.values = map[*mesh.Node][]float64{}
	}
	fe.values[node] = slices.Clone(values)
	f.Changed()
	return nil
}

// NodeValues returns the values of the finite element field f at the
// given node, and whether it has any.
func NodeValues(f *field.Field, node *mesh.Node) ([]float64, bool) {
	fe, err := finiteElementCore(f)
	if err != nil {
		return nil, false
	}
	vals, ok := fe.values[node]
	return slices.Clone(vals), ok
}
