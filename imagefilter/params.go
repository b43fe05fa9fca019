// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imagefilter

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/hsorby/cmgui-sub001/fft"
	"github.com/hsorby/cmgui-sub001/field"
	"github.com/hsorby/cmgui-sub001/imagecache"
)

// Params are the image parameters shared by all image field types:
// the image is sampled on a grid of Sizes pixels covering the texture
// coordinate box from Minimums to Maximums along Dimension axes.
type Params struct {
	Dimension int
	Sizes     []int
	Minimums  []float64
	Maximums  []float64
}

// check returns all of the problems with the params for the given
// texture coordinate field, which may be nil.
func (p *Params) check(coordinate *field.Field) error {
	var errs *multierror.Error
	if coordinate != nil && p.Dimension > coordinate.NumComponents() {
		errs = multierror.Append(errs, fmt.Errorf("dimension %d exceeds the %d components of texture coordinate %v: %w", p.Dimension, coordinate.NumComponents(), coordinate, field.ErrDimensionMismatch))
	}
	return multierror.Append(errs, imagecache.CheckShape(p.Dimension, 1, p.Sizes, p.Minimums, p.Maximums)).ErrorOrNil()
}

// checkPowerOfTwo returns an error for every size that is not a power
// of two.
func (p *Params) checkPowerOfTwo() error {
	var errs *multierror.Error
	for a, sz := range p.Sizes {
		if sz > 0 && !fft.IsPowerOfTwo(sz) {
			errs = multierror.Append(errs, fmt.Errorf("size %d of axis %d: %w", sz, a, fft.ErrNotPowerOfTwo))
		}
	}
	return errs.ErrorOrNil()
}

// commandString returns the options of the params in command form.
func (p *Params) commandString() string {
	return fmt.Sprintf("dimension %d sizes %s minimums %s maximums %s", p.Dimension,
		field.FormatInts(p.Sizes), field.FormatFloats(p.Minimums), field.FormatFloats(p.Maximums))
}

// ContrastModes are the ways in which [Contrast] maps values.
type ContrastModes int32

const (
	// Linear maps the window from Low to High onto [0,1].
	Linear ContrastModes = iota

	// Gamma raises values clamped to [0,1] to the power Gamma.
	Gamma

	// Auto maps the range of each channel onto [0,1].
	Auto
)

var contrastModeNames = []string{"linear", "gamma", "auto"}

func (m ContrastModes) String() string {
	if m < 0 || int(m) >= len(contrastModeNames) {
		return fmt.Sprintf("ContrastModes(%d)", int32(m))
	}
	return contrastModeNames[m]
}

// ContrastModeFromString returns the mode with the given name.
func ContrastModeFromString(s string) (ContrastModes, error) {
	for i, nm := range contrastModeNames {
		if strings.EqualFold(s, nm) {
			return ContrastModes(i), nil
		}
	}
	return Linear, fmt.Errorf("unknown contrast mode %q: %w", s, field.ErrInvalidArgument)
}

// Contrast are the parameters of a contrast adjustment.
type Contrast struct {
	Mode ContrastModes

	// Low and High are the window of the [Linear] mode.
	Low  float64
	High float64 `default:"1"`

	// Gamma is the exponent of the [Gamma] mode.
	Gamma float64 `default:"1"`
}

func (c *Contrast) check() error {
	switch c.Mode {
	case Linear:
		if !(c.High > c.Low) {
			return fmt.Errorf("contrast high %g must be greater than low %g: %w", c.High, c.Low, field.ErrInvalidArgument)
		}
	case Gamma:
		if !(c.Gamma > 0) {
			return fmt.Errorf("contrast gamma %g must be positive: %w", c.Gamma, field.ErrInvalidArgument)
		}
	case Auto:
	default:
		return fmt.Errorf("contrast mode %v: %w", c.Mode, field.ErrInvalidArgument)
	}
	return nil
}

// commandString returns the options of the contrast in command form.
func (c *Contrast) commandString() string {
	switch c.Mode {
	case Linear:
		return fmt.Sprintf("mode linear low %s high %s", field.FormatFloats([]float64{c.Low}), field.FormatFloats([]float64{c.High}))
	case Gamma:
		return "mode gamma gamma " + field.FormatFloats([]float64{c.Gamma})
	}
	return "mode " + c.Mode.String()
}
