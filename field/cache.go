// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import "slices"

// Cache holds the most recently evaluated values of a field.
type Cache struct {

	// Values are the component values.
	Values []float64

	// Derivatives are the derivatives of each component with respect
	// to each xi, with Derivatives[c*NumXi+j] = d value_c / d xi_j.
	// It is nil if derivatives were not evaluated.
	Derivatives []float64

	// NumXi is the number of xi derivatives per component.
	NumXi int

	// Location is where the values were evaluated.
	Location Location

	// Valid is whether the values can be reused at Location.
	Valid bool

	// Evaluations counts the number of times the values
	// have actually been computed.
	Evaluations int
}

// matches returns whether the cache holds reusable values for the given
// location, including derivatives if they are wanted.
func (c *Cache) matches(loc Location, derivatives bool) bool {
	if !c.Valid || c.Location == nil || !c.Location.Equal(loc) {
		return false
	}
	return !derivatives || c.Derivatives != nil
}

// store copies the results of the evaluation into the cache and
// marks it valid.
func (c *Cache) store(ev *Evaluation) {
	c.Values = append(c.Values[:0], ev.Values...)
	if ev.Derivatives != nil {
		c.Derivatives = append(c.Derivatives[:0], ev.Derivatives...)
		c.NumXi = ev.NumXi
	} else {
		c.Derivatives = nil
		c.NumXi = 0
	}
	c.Location = ev.Location.clone()
	c.Valid = true
	c.Evaluations++
}

// invalidate marks the cache invalid, keeping its storage.
func (c *Cache) invalidate() {
	c.Valid = false
	c.Location = nil
}

// snapshot returns a copy of the cache that shares no storage.
func (c *Cache) snapshot() Cache {
	s := *c
	s.Values = slices.Clone(c.Values)
	s.Derivatives = slices.Clone(c.Derivatives)
	return s
}

// Evaluation is the working state of one evaluation of a field,
// which a [Core] fills in.
type Evaluation struct {

	// Location is where the field is being evaluated.
	Location Location

	// Values receives the component values; it has the length
	// of the number of components of the field.
	Values []float64

	// Derivatives receives the xi derivatives of each component,
	// laid out as in [Cache.Derivatives]. It is nil when derivatives
	// are not wanted.
	Derivatives []float64

	// NumXi is the number of xi derivatives per component.
	NumXi int
}

// WantDerivatives returns whether derivatives are to be computed.
func (ev *Evaluation) WantDerivatives() bool {
	return ev.Derivatives != nil
}

func newEvaluation(loc Location, components int, derivatives bool) *Evaluation {
	ev := &Evaluation{Location: loc, Values: make([]float64, components)}
	if derivatives {
		ev.NumXi = NumXi(loc)
		ev.Derivatives = make([]float64, components*ev.NumXi)
	}
	return ev
}

// EvaluateSource evaluates the given source field at the location of
// the evaluation, with derivatives if they are wanted, and returns copies
// of its values and derivatives, which stay valid when evaluating other
// sources evaluates src again elsewhere.
func (ev *Evaluation) EvaluateSource(src *Field) (values, derivatives []float64, err error) {
	if err := src.EvaluateAtLocation(ev.Location, ev.WantDerivatives()); err != nil {
		return nil, nil, err
	}
	values = slices.Clone(src.cache.Values)
	if ev.WantDerivatives() {
		derivatives = slices.Clone(src.cache.Derivatives)
	}
	return values, derivatives, nil
}
