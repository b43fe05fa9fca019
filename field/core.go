// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import "github.com/hsorby/cmgui-sub001/mesh"

// Core is the type-specific part of a [Field]: its type tag,
// parameters and evaluation. The behavior common to all field types
// lives on [Field]; a Core only implements the optional interfaces
// below when it needs something other than the default behavior.
type Core interface {

	// TypeName returns the type tag of the field, which is also the
	// keyword that starts its command string.
	TypeName() string

	// NumComponents returns the number of components of a field of
	// this type with the given sources, or an error if the sources are
	// not valid for this type.
	NumComponents(sources []*Field) (int, error)

	// Evaluate computes the values (and derivatives, if wanted) of the
	// field f at ev.Location. It evaluates any sources it needs through
	// [Field.EvaluateAtLocation] and must not modify them.
	Evaluate(f *Field, ev *Evaluation) error

	// CommandString returns the type command that reproduces the field,
	// such as "add fields a b scale_factors 1 1".
	CommandString(f *Field) string

	// Clone returns a deep copy of the type-specific data.
	Clone() Core
}

// NodeDefiner is implemented by cores that decide themselves whether
// the field is defined at a node.
type NodeDefiner interface {
	IsDefinedAtNode(f *Field, node *mesh.Node) bool
}

// ElementDefiner is implemented by cores that decide themselves whether
// the field is defined in an element.
type ElementDefiner interface {
	IsDefinedInElement(f *Field, element *mesh.Element) bool
}

// DerivativeSupporter is implemented by cores that can compute
// xi derivatives.
type DerivativeSupporter interface {
	SupportsDerivatives() bool
}

// Invalidator is implemented by cores that keep their own cached data,
// which must be invalidated whenever the cached values of the field are.
type Invalidator interface {
	Invalidate()
}

func supportsDerivatives(c Core) bool {
	ds, ok := c.(DerivativeSupporter)
	return ok && ds.SupportsDerivatives()
}
