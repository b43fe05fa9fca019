// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package command

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsorby/cmgui-sub001/base/errors"
	"github.com/hsorby/cmgui-sub001/base/iox/imagex"
	"github.com/hsorby/cmgui-sub001/field"
	"github.com/hsorby/cmgui-sub001/fieldtypes"
	"github.com/hsorby/cmgui-sub001/mesh"
)

// newManager returns a manager with the fields a, b, cond and tex.
func newManager(t *testing.T) *field.Manager {
	t.Helper()
	m := field.NewManager()
	require.NoError(t, Run(m, `
# sources used by the tests
define a constant 1 2
define b constant 3 4
define cond constant 1 0

define tex xi dimension 2
`, nil))
	return m
}

const imageParams = "field a texture_coordinate_field tex dimension 2 sizes 4 8 minimums 0 0 maximums 1 1"

func TestRoundTrip(t *testing.T) {
	m := newManager(t)
	cmds := []string{
		"constant 1 2.5 -3",
		"add fields a b scale_factors 1 -1",
		"multiply fields a b",
		"scale field a scale_factors 2 -1",
		"magnitude field b",
		"if fields cond a b",
		"component field a indices 1 0 1",
		"composite fields a b a",
		"xi dimension 2",
		"time_value",
		"finite_element number_of_components 3",
		"sobel_filter " + imageParams + " radius 2",
		"power_spectrum " + imageParams,
		"contrast " + imageParams + " mode linear low 0.1 high 0.9",
		"contrast " + imageParams + " mode gamma gamma 0.5",
		"contrast " + imageParams + " mode auto",
	}
	for _, cmd := range cmds {
		t.Run(cmd, func(t *testing.T) {
			f, err := Define(m, "f", cmd, nil)
			require.NoError(t, err)
			assert.Equal(t, cmd, f.CommandString())
		})
	}
}

func TestSampleTexture(t *testing.T) {
	m := newManager(t)
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	fn := filepath.Join(t.TempDir(), "red.png")
	require.NoError(t, imagex.Save(img, fn))

	cmd := "sample_texture image " + field.QuoteName(fn) + " texture_coordinate_field tex resize 4 4"
	f, err := Define(m, "texture", cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, cmd, f.CommandString())
	vals, err := f.Evaluate(field.CoordinateLocation{Coordinates: []float64{0.5, 0.5}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0, 0, 1}, vals, 0.01)

	_, err = Define(m, "missing", "sample_texture image "+field.QuoteName(filepath.Join(t.TempDir(), "none.png"))+" texture_coordinate_field tex", nil)
	assert.Error(t, err)
	assert.Nil(t, m.FindByName("missing"))
}

func TestOptionOrder(t *testing.T) {
	m := newManager(t)
	f, err := Define(m, "sum", "add scale_factors 2 3 fields a b", nil)
	require.NoError(t, err)
	assert.Equal(t, "add fields a b scale_factors 2 3", f.CommandString())
	vals, err := f.Evaluate(field.CoordinateLocation{})
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 16}, vals)

	f, err = Define(m, "edges", "sobel_filter maximums 1 1 sizes 4 8 minimums 0 0 dimension 2 texture_coordinate_field tex field a", nil)
	require.NoError(t, err)
	assert.Equal(t, "sobel_filter "+imageParams+" radius 1", f.CommandString(), "default radius")

	f, err = Define(m, "stretch", "contrast "+imageParams+" low -1", nil)
	require.NoError(t, err)
	assert.Equal(t, "contrast "+imageParams+" mode linear low -1 high 1", f.CommandString(), "default mode and high")
}

func TestQuotedNames(t *testing.T) {
	m := newManager(t)
	_, err := Define(m, "tex coords", "xi dimension 2", nil)
	require.NoError(t, err)
	_, err = Define(m, `odd"name`, "constant 7", nil)
	require.NoError(t, err)

	cmd := `sobel_filter field a texture_coordinate_field "tex coords" dimension 2 sizes 4 4 minimums 0 0 maximums 1 1 radius 1`
	f, err := Define(m, "edges", cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, cmd, f.CommandString())

	cmd = `scale field "odd\"name" scale_factors 2`
	f, err = Define(m, "scaled", cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, cmd, f.CommandString())
}

func TestErrors(t *testing.T) {
	tests := []struct {
		cmd   string
		index int
		token string
	}{
		{"", 0, ""},
		{"bogus 1", 0, "bogus"},
		{"constant 1 x", 2, "x"},
		{"constant", 1, ""},
		{"add fields a nope", 3, "nope"},
		{"add fields a b scale_factors 1", 6, ""},
		{"add scale_factors 1 1", 4, ""},
		{"multiply fields a", 3, ""},
		{"magnitude", 1, ""},
		{"magnitude field a extra", 3, "extra"},
		{"time_value now", 1, "now"},
		{"xi dimension two", 2, "two"},
		{"component field a indices", 4, ""},
		{"sobel_filter field a texture_coordinate_field tex dimension 2 sizes 4 minimums 0 0 maximums 1 1", 15, ""},
		{"sobel_filter field a texture_coordinate_field tex sizes 4 4", 8, ""},
		{"contrast " + imageParams + " mode fancy", 17, "fancy"},
		{"contrast " + imageParams + " low 0.5 high 0.5", 20, ""},
	}
	m := newManager(t)
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			_, _, err := Parse(m, tt.cmd, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, field.ErrInvalidArgument)
			var cerr *Error
			require.True(t, errors.As(err, &cerr), "%v", err)
			assert.Equal(t, tt.index, cerr.Index)
			assert.Equal(t, tt.token, cerr.Token)
			assert.Equal(t, tt.cmd, cerr.Command)
		})
	}

	_, _, err := Parse(m, `constant "1`, nil)
	assert.ErrorIs(t, err, field.ErrInvalidArgument)
	_, _, err = Parse(nil, "constant 1", nil)
	assert.ErrorIs(t, err, field.ErrInvalidArgument)
}

func TestDefineUnchangedOnError(t *testing.T) {
	m := newManager(t)
	x, err := Define(m, "x", "constant 5", nil)
	require.NoError(t, err)
	n := m.Len()

	_, err = Define(m, "x", "add fields a nope", nil)
	assert.Error(t, err)
	_, err = Define(m, "x", "scale field a scale_factors 1 2 3", nil)
	assert.ErrorIs(t, err, field.ErrDimensionMismatch)
	_, err = Define(m, "new", "multiply fields a", nil)
	assert.Error(t, err)

	assert.Equal(t, "constant 5", x.CommandString())
	assert.Same(t, x, m.FindByName("x"))
	assert.Nil(t, m.FindByName("new"))
	assert.Equal(t, n, m.Len())
}

func TestRun(t *testing.T) {
	m := newManager(t)
	var msgs []*field.Message
	m.AddCallback("test", func(msg *field.Message, ctx any) { msgs = append(msgs, msg) })
	err := Run(m, `
define sum add fields a b scale_factors 1 1
  # indented comment
define "scaled sum" scale field sum scale_factors 10 100
`, nil)
	require.NoError(t, err)
	assert.Len(t, msgs, 1, "one notification for the whole script")

	f := m.FindByName("scaled sum")
	require.NotNil(t, f)
	vals, err := f.Evaluate(field.CoordinateLocation{})
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 600}, vals)

	err = Run(m, "define ok constant 1\n\ndefine bad constant one\ndefine never constant 2", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 3, cerr.Index)
	assert.Equal(t, "one", cerr.Token)
	assert.NotNil(t, m.FindByName("ok"))
	assert.Nil(t, m.FindByName("never"))

	for _, script := range []string{"set x constant 1", "define x", "define"} {
		assert.ErrorIs(t, Run(m, script, nil), field.ErrInvalidArgument, script)
	}
}

// nowhere is a locator that never finds any coordinates.
type nowhere struct{}

func (nowhere) FindLocation(coordinate *field.Field, coords []float64, time float64) (field.Location, bool, error) {
	return nil, false, nil
}

func TestLocator(t *testing.T) {
	m := newManager(t)
	cmd := "contrast field a texture_coordinate_field tex dimension 1 sizes 2 minimums 0 maximums 1 mode linear low 0 high 4"
	f, err := Define(m, "direct", cmd, nil)
	require.NoError(t, err)
	vals, err := f.Evaluate(field.CoordinateLocation{Coordinates: []float64{0.5, 0}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.25, 0.5}, vals, 1e-12)

	f, err = Define(m, "located", cmd, &Options{Locator: nowhere{}})
	require.NoError(t, err)
	vals, err = f.Evaluate(field.CoordinateLocation{Coordinates: []float64{0.5, 0}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, vals)
}

func TestFiniteElementCommandOmitsNodeValues(t *testing.T) {
	m := field.NewManager()
	fe, err := Define(m, "fe", "finite_element number_of_components 2", nil)
	require.NoError(t, err)
	node := errors.Must1(mesh.New().AddNode(1))
	require.NoError(t, fieldtypes.SetNodeValues(fe, node, 1, 2))
	assert.Equal(t, "finite_element number_of_components 2", fe.CommandString())

	cp, err := Define(m, "copy", fe.CommandString(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cp.NumComponents())
	_, ok := fieldtypes.NodeValues(cp, node)
	assert.False(t, ok)
	vals, ok := fieldtypes.NodeValues(fe, node)
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2}, vals)
}
