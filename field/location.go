// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import (
	"fmt"
	"slices"

	"github.com/hsorby/cmgui-sub001/mesh"
)

// Location is a place and time at which fields are evaluated:
// a [NodeLocation], an [ElementLocation] or a [CoordinateLocation].
type Location interface {
	fmt.Stringer

	// Time returns the time of the location.
	Time() float64

	// Equal returns whether the location is identical to the other one,
	// which is the condition for reusing cached values.
	Equal(other Location) bool

	// clone returns a copy that does not share slices with the caller.
	clone() Location
}

// NodeLocation is a mesh node at a time.
type NodeLocation struct {
	Node *mesh.Node
	T    float64
}

func (l NodeLocation) Time() float64 { return l.T }

func (l NodeLocation) String() string { return fmt.Sprintf("%v at time %g", l.Node, l.T) }

func (l NodeLocation) Equal(other Location) bool {
	o, ok := other.(NodeLocation)
	return ok && o.Node == l.Node && o.T == l.T
}

func (l NodeLocation) clone() Location { return l }

// ElementLocation is a point within an element given by its local
// xi coordinates, at a time. TopLevel is the element that the
// evaluation is ultimately for, which may be nil.
type ElementLocation struct {
	Element  *mesh.Element
	Xi       []float64
	TopLevel *mesh.Element
	T        float64
}

func (l ElementLocation) Time() float64 { return l.T }

func (l ElementLocation) String() string {
	return fmt.Sprintf("%v xi %v at time %g", l.Element, l.Xi, l.T)
}

func (l ElementLocation) Equal(other Location) bool {
	o, ok := other.(ElementLocation)
	return ok && o.Element == l.Element && o.TopLevel == l.TopLevel && o.T == l.T && slices.Equal(o.Xi, l.Xi)
}

func (l ElementLocation) clone() Location {
	l.Xi = slices.Clone(l.Xi)
	return l
}

// CoordinateLocation is an arbitrary point given by coordinate values,
// at a time. Fields that are not functions of coordinates are
// not defined at such locations.
type CoordinateLocation struct {
	Coordinates []float64
	T           float64
}

func (l CoordinateLocation) Time() float64 { return l.T }

func (l CoordinateLocation) String() string {
	return fmt.Sprintf("coordinates %v at time %g", l.Coordinates, l.T)
}

func (l CoordinateLocation) Equal(other Location) bool {
	o, ok := other.(CoordinateLocation)
	return ok && o.T == l.T && slices.Equal(o.Coordinates, l.Coordinates)
}

func (l CoordinateLocation) clone() Location {
	l.Coordinates = slices.Clone(l.Coordinates)
	return l
}

// NumXi returns the number of xi coordinates of the location,
// which is zero for non-element locations.
func NumXi(loc Location) int {
	if el, ok := loc.(ElementLocation); ok {
		return len(el.Xi)
	}
	return 0
}
