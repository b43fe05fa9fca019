// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func define(t *testing.T, m *Manager, name string, core Core, sources ...*Field) *Field {
	t.Helper()
	f, err := m.Define(name, core, sources...)
	require.NoError(t, err)
	return f
}

func names(m *Manager) []string {
	var nms []string
	for f := range m.All() {
		nms = append(nms, f.Name())
	}
	return nms
}

func TestManagerDefine(t *testing.T) {
	m := NewManager()
	a := define(t, m, "a", &constCore{values: []float64{1, 2}})
	assert.Same(t, a, m.FindByName("a"))
	assert.Same(t, m, a.Manager())
	assert.Equal(t, 1, a.RefCount())
	assert.Equal(t, 1, m.Len())

	// redefining keeps the same field
	a2 := define(t, m, "a", &constCore{values: []float64{3}})
	assert.Same(t, a, a2)
	assert.Equal(t, 1, a.NumComponents())

	// the manager reference can only go through Remove
	assert.ErrorIs(t, a.Release(), ErrInUse)
	assert.False(t, a.IsDestroyed())

	_, err := m.Define("bad", &sumCore{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Nil(t, m.FindByName("bad"))
}

func TestManagerDuplicateName(t *testing.T) {
	m := NewManager()
	define(t, m, "a", &constCore{values: []float64{1}})
	f := newConst("a", 2)
	assert.ErrorIs(t, m.Add(f), ErrDuplicateName)
	assert.Nil(t, f.Manager())
	assert.Equal(t, 1, f.RefCount())
	assert.ErrorIs(t, m.Add(nil), ErrInvalidArgument)
	assert.ErrorIs(t, m.Add(New("")), ErrInvalidArgument)
}

func TestManagerRemove(t *testing.T) {
	m := NewManager()
	a := define(t, m, "a", &constCore{values: []float64{1}})
	b := define(t, m, "b", &sumCore{}, a)
	destroyed := 0
	a.OnDestroy(func(*Field) { destroyed++ })

	assert.ErrorIs(t, m.Remove(a), ErrInUse)
	assert.Same(t, a, m.FindByName("a"))

	require.NoError(t, m.Remove(b))
	assert.True(t, b.IsDestroyed())
	assert.Nil(t, m.FindByName("b"))
	assert.Equal(t, 1, a.RefCount())

	require.NoError(t, m.Remove(a))
	assert.Equal(t, 1, destroyed)
	assert.Equal(t, 0, m.Len())
	assert.ErrorIs(t, m.Remove(a), ErrInvalidArgument)
}

func TestManagerRemoveHeldByCaller(t *testing.T) {
	m := NewManager()
	a := define(t, m, "a", &constCore{values: []float64{1}})
	require.NoError(t, a.Acquire())
	assert.ErrorIs(t, m.Remove(a), ErrInUse)
	require.NoError(t, a.Release())
	require.NoError(t, m.Remove(a))
}

func TestManagerRemoveUnused(t *testing.T) {
	m := NewManager()
	a := define(t, m, "a", &constCore{values: []float64{1}})
	b := define(t, m, "b", &sumCore{}, a)
	define(t, m, "c", &sumCore{}, b)
	keep := define(t, m, "keep", &constCore{values: []float64{1}})
	require.NoError(t, keep.Acquire())

	assert.Equal(t, 3, m.RemoveUnused())
	assert.Equal(t, []string{"keep"}, names(m))
	assert.True(t, a.IsDestroyed())
}

func TestManagerChangeComponentsInUse(t *testing.T) {
	m := NewManager()
	a := define(t, m, "a", &constCore{values: []float64{1}})
	define(t, m, "b", &sumCore{}, a)
	_, err := m.Define("a", &constCore{values: []float64{1, 2}})
	assert.ErrorIs(t, err, ErrInUse)
	assert.Equal(t, 1, a.NumComponents())
	_, err = m.Define("a", &constCore{values: []float64{5}})
	assert.NoError(t, err)
}

func TestManagerInvalidation(t *testing.T) {
	m := NewManager()
	a := define(t, m, "a", &constCore{values: []float64{1}})
	b := define(t, m, "b", &sumCore{}, a)
	c := define(t, m, "c", &sumCore{}, b, b)
	d := define(t, m, "d", &constCore{values: []float64{7}})

	vals, err := c.Evaluate(origin)
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, vals)
	_, err = d.Evaluate(origin)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Cache().Evaluations)
	assert.Equal(t, 1, b.Cache().Evaluations)

	define(t, m, "a", &constCore{values: []float64{5}})
	assert.False(t, a.Cache().Valid)
	assert.False(t, b.Cache().Valid)
	assert.False(t, c.Cache().Valid)
	assert.True(t, d.Cache().Valid)

	vals, err = c.Evaluate(origin)
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, vals)

	// changing a leaf only affects fields depending on it
	c.ClearCache()
	_, err = c.Evaluate(origin)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Cache().Evaluations)
	d.Changed()
	assert.True(t, c.Cache().Valid)
}

func TestManagerCallbacks(t *testing.T) {
	m := NewManager()
	var msgs []*Message
	m.AddCallback("test", func(msg *Message, ctx any) {
		assert.Equal(t, "test", ctx)
		msgs = append(msgs, msg)
	})
	a := define(t, m, "a", &constCore{values: []float64{1}})
	require.Len(t, msgs, 1)
	assert.Equal(t, Added, msgs[0].KindsOf(a))
	assert.Equal(t, 2, m.NumCallbacks())

	a.Changed()
	require.Len(t, msgs, 2)
	assert.Equal(t, []*Field{a}, msgs[1].Fields(ChangedObject))

	require.NoError(t, m.Rename(a, "z"))
	require.Len(t, msgs, 3)
	assert.Equal(t, ChangedIdentifier, msgs[2].KindsOf(a))
	assert.Equal(t, "z", a.Name())
	assert.Same(t, a, m.FindByName("z"))
	assert.Nil(t, m.FindByName("a"))

	// replacing the connection with the same context
	n := 0
	m.AddCallback("test", func(*Message, any) { n++ })
	assert.Equal(t, 2, m.NumCallbacks())
	a.Changed()
	assert.Equal(t, 1, n)
	assert.Len(t, msgs, 3)

	assert.True(t, m.RemoveCallback("test"))
	assert.False(t, m.RemoveCallback("test"))
	a.Changed()
	assert.Equal(t, 1, n)

	require.NoError(t, m.Remove(a))
	assert.Equal(t, 0, m.NumCallbacks())
}

func TestManagerBatchChanges(t *testing.T) {
	m := NewManager()
	var msgs []*Message
	m.AddCallback(&msgs, func(msg *Message, _ any) { msgs = append(msgs, msg) })

	m.BeginChange()
	m.BeginChange()
	x := define(t, m, "x", &constCore{values: []float64{1}})
	y := define(t, m, "y", &constCore{values: []float64{2}})
	x.Changed()
	m.EndChange()
	assert.Empty(t, msgs)
	m.EndChange()

	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, 2, msg.Len())
	assert.Equal(t, Added|ChangedObject, msg.KindsOf(x))
	assert.Equal(t, Added, msg.KindsOf(y))
	assert.Equal(t, Added|ChangedObject, msg.Kinds())
	assert.Equal(t, []*Field{x}, msg.Fields(ChangedObject))
	assert.Equal(t, "added|changed-object", msg.KindsOf(x).String())

	// unbalanced calls are ignored
	m.EndChange()
	assert.Len(t, msgs, 1)
}

func TestManagerOrder(t *testing.T) {
	m := NewManager()
	for _, nm := range []string{"c", "a", "b"} {
		define(t, m, nm, &constCore{values: []float64{1}})
	}
	assert.Equal(t, []string{"c", "a", "b"}, names(m))

	var visited []string
	m.ForEach(func(f *Field) bool {
		visited = append(visited, f.Name())
		return f.Name() != "a"
	})
	assert.Equal(t, []string{"c", "a"}, visited)

	require.NoError(t, m.Remove(m.FindByName("c")))
	assert.Equal(t, []string{"a", "b"}, names(m))
	assert.Same(t, m.FindByName("b"), slices.Collect(m.All())[1])

	assert.Equal(t, "d", m.UniqueName("d"))
	assert.Equal(t, "a1", m.UniqueName("a"))
	define(t, m, "a1", &constCore{values: []float64{1}})
	assert.Equal(t, "a2", m.UniqueName("a"))
	assert.ErrorIs(t, m.Rename(m.FindByName("a"), "b"), ErrDuplicateName)
}
