// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package region provides [Region], which combines a mesh with the
// fields defined on it, and finds the mesh locations at which a
// coordinate field takes given values.
package region

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/hsorby/cmgui-sub001/base/findfast"
	"github.com/hsorby/cmgui-sub001/config"
	"github.com/hsorby/cmgui-sub001/field"
	"github.com/hsorby/cmgui-sub001/mesh"
)

// Region is a mesh with the manager of the fields defined on it.
type Region struct {

	// Name is the name of the region.
	Name string

	// Fields is the manager of the fields of the region.
	Fields *field.Manager

	// Mesh holds the nodes and elements of the region.
	Mesh *mesh.Mesh

	// Settings are used to find locations; if nil,
	// [config.Default] is used.
	Settings *config.Settings

	mu sync.Mutex

	// last is the index of the element in which a location was
	// last found.
	last int
}

// New returns a new empty region with the given name.
func New(name string) *Region {
	return &Region{Name: name, Fields: field.NewManager(), Mesh: mesh.New()}
}

func (r *Region) String() string {
	return fmt.Sprintf("region %q", r.Name)
}

func (r *Region) settings() *config.FindXi {
	if r.Settings != nil {
		return &r.Settings.FindXi
	}
	return &config.Default().FindXi
}

// FindLocation finds an element and xi at which the coordinate field
// takes the given values, using the first len(coords) components of
// the field. The element of the previous successful search is tried
// first, then the elements around it in the mesh. It returns false if
// no element contains the coordinates.
func (r *Region) FindLocation(coordinate *field.Field, coords []float64, time float64) (field.Location, bool, error) {
	if coordinate == nil {
		return nil, false, fmt.Errorf("region.FindLocation: nil coordinate field: %w", field.ErrInvalidArgument)
	}
	if nc := coordinate.NumComponents(); len(coords) == 0 || len(coords) > nc {
		return nil, false, fmt.Errorf("region.FindLocation: %d coordinates for %v with %d components: %w", len(coords), coordinate, nc, field.ErrDimensionMismatch)
	}
	r.mu.Lock()
	last := r.last
	r.mu.Unlock()
	s := r.settings()
	var xi []float64
	elements := r.Mesh.Elements()
	idx := findfast.FindFunc(elements, func(el *mesh.Element) bool {
		if !coordinate.IsDefinedInElement(el) {
			return false
		}
		var ok bool
		xi, ok = findXi(coordinate, el, coords, time, s)
		return ok
	}, last)
	if idx < 0 {
		return nil, false, nil
	}
	r.mu.Lock()
	r.last = idx
	r.mu.Unlock()
	el := elements[idx]
	return field.ElementLocation{Element: el, Xi: xi, TopLevel: el, T: time}, true, nil
}

// findXi finds the xi in the element at which the coordinate field
// takes the given values by Newton iteration, solving for each step in
// the least squares sense, with xi kept within the element.
func findXi(coordinate *field.Field, el *mesh.Element, coords []float64, time float64, s *config.FindXi) ([]float64, bool) {
	n, dim := len(coords), el.Dimension
	xi := make([]float64, dim)
	for j := range xi {
		xi[j] = 0.5
	}
	tol := s.Tolerance * (1 + floats.Norm(coords, 2))
	resid := make([]float64, n)
	jac := mat.NewDense(n, dim, nil)
	var step mat.Dense
	for range s.MaxIterations {
		if err := coordinate.EvaluateInElement(el, xi, time, el, true); err != nil {
			slog.Debug("region: find xi evaluation failed", "element", el, "err", err)
			return nil, false
		}
		vals, derivs := coordinate.Values(), coordinate.Derivatives()
		floats.SubTo(resid, coords, vals[:n])
		if floats.Norm(resid, 2) <= tol {
			return xi, inElement(xi, s.XiTolerance)
		}
		for c := range n {
			for j := range dim {
				jac.Set(c, j, derivs[c*dim+j])
			}
		}
		if err := step.Solve(jac, mat.NewVecDense(n, resid)); err != nil {
			return nil, false
		}
		moved := 0.0
		for j := range dim {
			nxi := min(max(xi[j]+step.At(j, 0), 0), 1)
			moved = max(moved, math.Abs(nxi-xi[j]))
			xi[j] = nxi
		}
		if moved == 0 {
			// stuck on the boundary
			return nil, false
		}
	}
	return nil, false
}

// inElement returns whether xi lies within the unit element,
// allowing for the given tolerance.
func inElement(xi []float64, tol float64) bool {
	for _, x := range xi {
		if x < -tol || x > 1+tol {
			return false
		}
	}
	return true
}
