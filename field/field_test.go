// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsorby/cmgui-sub001/base/errors"
	"github.com/hsorby/cmgui-sub001/mesh"
)

func TestFieldLifetime(t *testing.T) {
	f := newConst("a", 1)
	destroyed := 0
	f.OnDestroy(func(*Field) { destroyed++ })
	assert.Equal(t, 1, f.RefCount())

	for range 3 {
		require.NoError(t, f.Acquire())
	}
	assert.Equal(t, 4, f.RefCount())
	for range 3 {
		require.NoError(t, f.Release())
		assert.Equal(t, 0, destroyed)
	}
	require.NoError(t, f.Release())
	assert.Equal(t, 1, destroyed)
	assert.True(t, f.IsDestroyed())
	assert.Nil(t, f.Core())

	assert.ErrorIs(t, f.Release(), ErrDestroyed)
	assert.ErrorIs(t, f.Acquire(), ErrDestroyed)
	assert.Equal(t, 1, destroyed)
	_, err := f.Evaluate(origin)
	assert.ErrorIs(t, err, ErrDestroyed)
}

func TestFieldSourcesReferenced(t *testing.T) {
	a := newConst("a", 1, 2)
	b := New("b")
	require.NoError(t, b.SetCore(&sumCore{}, a, a))
	assert.Equal(t, 3, a.RefCount())

	require.NoError(t, a.Release())
	assert.False(t, a.IsDestroyed())
	require.NoError(t, b.Release())
	assert.True(t, b.IsDestroyed())
	assert.True(t, a.IsDestroyed())
}

func TestFieldSetCoreErrors(t *testing.T) {
	a := newConst("a", 1)
	v := newConst("v", 1, 2, 3)
	b := New("b")
	require.NoError(t, b.SetCore(&sumCore{}, a))

	assert.ErrorIs(t, b.SetCore(nil), ErrInvalidArgument)
	assert.ErrorIs(t, b.SetCore(&sumCore{}, a, nil), ErrInvalidArgument)
	assert.ErrorIs(t, b.SetCore(&sumCore{}, a, v), ErrDimensionMismatch)
	assert.ErrorIs(t, b.SetCore(&constCore{}), ErrInvalidArgument)

	// b keeps its prior definition
	assert.Equal(t, "test_sum", b.TypeName())
	assert.Equal(t, []*Field{a}, b.Sources())
	assert.Equal(t, 1, b.NumComponents())
	assert.Equal(t, 1, v.RefCount())
	assert.Equal(t, 2, a.RefCount())
}

func TestFieldCycle(t *testing.T) {
	a := newConst("a", 1)
	b := New("b")
	require.NoError(t, b.SetCore(&sumCore{}, a))
	c := New("c")
	require.NoError(t, c.SetCore(&sumCore{}, b))

	assert.ErrorIs(t, a.SetCore(&sumCore{}, c), ErrCycle)
	assert.ErrorIs(t, a.SetCore(&sumCore{}, a), ErrCycle)
	assert.Equal(t, "test_constant", a.TypeName())
	assert.True(t, c.DependsOn(a))
	assert.True(t, a.DependsOn(a))
	assert.False(t, a.DependsOn(c))
}

func TestFieldEvaluateCache(t *testing.T) {
	a := newConst("a", 1, 2)
	vals, err := a.Evaluate(origin)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, vals)
	assert.Equal(t, 1, a.Cache().Evaluations)

	// identical location and time reuse the cache
	_, err = a.Evaluate(CoordinateLocation{Coordinates: []float64{0, 0}})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Cache().Evaluations)

	_, err = a.Evaluate(CoordinateLocation{Coordinates: []float64{0, 0}, T: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, a.Cache().Evaluations)

	a.ClearCache()
	assert.False(t, a.Cache().Valid)
	_, err = a.Evaluate(CoordinateLocation{Coordinates: []float64{0, 0}, T: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, a.Cache().Evaluations)
}

func TestFieldEvaluateCacheCopiesLocation(t *testing.T) {
	a := newConst("a", 1)
	coords := []float64{0.5}
	_, err := a.Evaluate(CoordinateLocation{Coordinates: coords})
	require.NoError(t, err)
	coords[0] = 0.25
	_, err = a.Evaluate(CoordinateLocation{Coordinates: coords})
	require.NoError(t, err)
	assert.Equal(t, 2, a.Cache().Evaluations)
}

func TestFieldEvaluateInElement(t *testing.T) {
	m := mesh.New()
	errors.Must1(m.AddNode(1))
	errors.Must1(m.AddNode(2))
	el := errors.Must1(m.AddElement(1, 1, 1, 2))

	a := newConst("a", 1, 2)
	b := New("b")
	require.NoError(t, b.SetCore(&sumCore{}, a, a))
	require.NoError(t, b.EvaluateInElement(el, []float64{0.5}, 0, nil, true))
	assert.Equal(t, []float64{2, 4}, b.Values())
	assert.Equal(t, []float64{0, 0}, b.Derivatives())
	assert.Equal(t, 1, b.Cache().NumXi)

	// values without derivatives are not enough
	require.NoError(t, b.EvaluateInElement(el, []float64{0.25}, 0, nil, false))
	assert.Nil(t, b.Derivatives())
	evals := b.Cache().Evaluations
	require.NoError(t, b.EvaluateInElement(el, []float64{0.25}, 0, nil, true))
	assert.Equal(t, evals+1, b.Cache().Evaluations)

	assert.ErrorIs(t, b.EvaluateInElement(el, []float64{0.5, 0.5}, 0, nil, false), ErrDimensionMismatch)
	assert.ErrorIs(t, b.EvaluateInElement(nil, nil, 0, nil, false), ErrInvalidArgument)

	tm := New("time")
	require.NoError(t, tm.SetCore(&timeCore{}))
	assert.ErrorIs(t, tm.EvaluateInElement(el, []float64{0.5}, 2, nil, true), ErrNoDerivatives)
	require.NoError(t, tm.EvaluateInElement(el, []float64{0.5}, 2, nil, false))
	assert.Equal(t, []float64{2}, tm.Values())
	assert.ErrorIs(t, tm.EvaluateAtLocation(nil, false), ErrInvalidArgument)
}

func TestFieldNoCore(t *testing.T) {
	f := New("empty")
	assert.Equal(t, "", f.TypeName())
	assert.Equal(t, "", f.CommandString())
	_, err := f.Evaluate(origin)
	assert.ErrorIs(t, err, ErrNoCore)
	assert.ErrorIs(t, err, ErrUninitialized)
	assert.False(t, f.IsDefinedAtNode(&mesh.Node{Identifier: 1}))
}

func TestFieldInvalidator(t *testing.T) {
	f := New("x")
	core := &invalidatingCore{constCore: constCore{values: []float64{1}}}
	require.NoError(t, f.SetCore(core))
	n := core.invalidations
	f.ClearCache()
	assert.Equal(t, n+1, core.invalidations)
	f.Changed()
	assert.Equal(t, n+2, core.invalidations)
}

func TestFieldClone(t *testing.T) {
	a := newConst("a", 3, 4)
	b := New("b")
	require.NoError(t, b.SetCore(&sumCore{}, a))
	c, err := b.Clone("c")
	require.NoError(t, err)
	assert.Equal(t, "c", c.Name())
	assert.Equal(t, b.CommandString(), c.CommandString())
	assert.Nil(t, c.Manager())
	assert.Equal(t, 3, a.RefCount())
	vals, err := c.Evaluate(origin)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, vals)

	a2, err := a.Clone("a2")
	require.NoError(t, err)
	assert.NotSame(t, a.Core(), a2.Core())
	assert.Equal(t, a.CommandString(), a2.CommandString())
}

func TestCommandFormatting(t *testing.T) {
	assert.Equal(t, "a", QuoteName("a"))
	assert.Equal(t, `"a b"`, QuoteName("a b"))
	assert.Equal(t, `""`, QuoteName(""))
	assert.Equal(t, "1 -0.5 1e-09", FormatFloats([]float64{1, -0.5, 1e-9}))
	assert.Equal(t, "0 2", FormatInts([]int{0, 2}))
}

func TestFieldChangeComponentsWithDependents(t *testing.T) {
	src := newConst("src", 1)
	m := NewManager()
	sum := define(t, m, "sum", &sumCore{}, src, src)
	assert.ErrorIs(t, src.SetCore(&constCore{values: []float64{1, 2, 3}}), ErrInUse)
	assert.Equal(t, 1, src.NumComponents())
	vals, err := sum.Evaluate(origin)
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, vals)

	// dependents in another manager count too
	other := NewManager()
	shared := define(t, other, "shared", &constCore{values: []float64{1}})
	define(t, m, "user", &sumCore{}, shared)
	assert.ErrorIs(t, shared.SetCore(&constCore{values: []float64{1, 2}}), ErrInUse)

	// retyping the dependent frees the source
	define(t, m, "sum", &constCore{values: []float64{0}})
	require.NoError(t, src.SetCore(&constCore{values: []float64{1, 2, 3}}))
	assert.Equal(t, 3, src.NumComponents())
}

func TestFieldChangedReachesDependents(t *testing.T) {
	src := newConst("src", 1)
	m := NewManager()
	scaled := define(t, m, "scaled", &sumCore{}, src, src)
	vals, err := scaled.Evaluate(origin)
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, vals)

	require.NoError(t, src.SetCore(&constCore{values: []float64{5}}))
	assert.False(t, scaled.Cache().Valid)
	vals, err = scaled.Evaluate(origin)
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, vals)

	other := NewManager()
	top := define(t, other, "top", &sumCore{}, scaled)
	_, err = top.Evaluate(origin)
	require.NoError(t, err)
	require.NoError(t, src.SetCore(&constCore{values: []float64{2}}))
	vals, err = top.Evaluate(origin)
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, vals)
}

func TestFieldSharedSourceChain(t *testing.T) {
	const depth = 48
	m := NewManager()
	base := define(t, m, "base", &constCore{values: []float64{1}})
	unrelated := define(t, m, "unrelated", &constCore{values: []float64{0}})
	prev := base
	for i := range depth {
		prev = define(t, m, "level"+strconv.Itoa(i), &sumCore{}, prev, prev)
	}
	top := prev
	assert.True(t, top.DependsOn(base))
	assert.False(t, base.DependsOn(top))
	assert.False(t, top.DependsOn(unrelated))
	assert.ErrorIs(t, base.SetCore(&sumCore{}, top), ErrCycle)

	vals, err := top.Evaluate(origin)
	require.NoError(t, err)
	assert.Equal(t, []float64{math.Exp2(depth)}, vals)
	assert.Equal(t, 1, base.Cache().Evaluations)

	unrelated.Changed()
	assert.True(t, top.Cache().Valid)
	base.Changed()
	assert.False(t, top.Cache().Valid)
}
