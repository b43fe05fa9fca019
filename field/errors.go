// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import (
	"fmt"

	"github.com/hsorby/cmgui-sub001/base/errors"
)

var (
	// ErrInvalidArgument is returned for nil or mismatched fields and
	// non-positive dimensions, sizes or radii.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCycle is returned when a field would depend on itself, either
	// when it is defined or when evaluation revisits it.
	ErrCycle = errors.New("cyclic field dependency")

	// ErrDuplicateName is returned when registering a name that is
	// already used in the manager.
	ErrDuplicateName = errors.New("duplicate field name")

	// ErrInUse is returned when removing or redefining a field that
	// is still referenced by others.
	ErrInUse = errors.New("field in use")

	// ErrNotDefined is returned when a field is not defined at the
	// requested location.
	ErrNotDefined = errors.New("field not defined at location")

	// ErrNoDerivatives is returned when derivatives are requested from
	// a field type that cannot compute them.
	ErrNoDerivatives = errors.New("field type has no derivatives")

	// ErrUninitialized is returned when evaluating a field whose
	// type-specific data has not been set up.
	ErrUninitialized = errors.New("field not initialized")

	// ErrDimensionMismatch is returned for inconsistent component
	// counts or dimensions.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrDestroyed is returned when using a field whose last
	// reference has been released.
	ErrDestroyed = errors.New("field destroyed")

	// ErrNoCore is returned when evaluating a field that has no type.
	// It is also an [ErrUninitialized].
	ErrNoCore = fmt.Errorf("field has no type: %w", ErrUninitialized)
)
