// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imagefilter

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/hsorby/cmgui-sub001/config"
	"github.com/hsorby/cmgui-sub001/field"
	"github.com/hsorby/cmgui-sub001/imagecache"
)

// SobelFilter is an image field of the edges of its source field,
// found with a Sobel kernel and binarized by the threshold policy
// of [config.Settings].
type SobelFilter struct {
	imageCore

	// Radius is the half-width of the kernel in pixels.
	Radius int `default:"1"`
}

func (c *SobelFilter) TypeName() string { return "sobel_filter" }

func (c *SobelFilter) NumComponents(sources []*field.Field) (int, error) {
	return c.numComponents(c, sources)
}

func (c *SobelFilter) kernel(img *imagecache.Cache) error {
	s := config.Default()
	return ApplySobel(img, c.Radius, s.Threshold, s.ParallelChannels)
}

func (c *SobelFilter) Evaluate(f *field.Field, ev *field.Evaluation) error {
	return c.evaluate(f, ev, c.kernel)
}

func (c *SobelFilter) CommandString(f *field.Field) string {
	return c.commandString(c, f, fmt.Sprintf("radius %d", c.Radius))
}

func (c *SobelFilter) Clone() field.Core {
	return &SobelFilter{imageCore: c.clone(), Radius: c.Radius}
}

// NewSobelFilter returns a new [SobelFilter] of the source field with
// the given kernel radius, sampled over the given texture coordinates.
// All problems with the arguments are reported together.
func NewSobelFilter(source, coordinate *field.Field, radius int, params Params, locator imagecache.Locator) (*SobelFilter, error) {
	errs := checkSources(source, coordinate, &params)
	if radius < 1 {
		errs = multierror.Append(errs, fmt.Errorf("sobel radius %d must be at least 1: %w", radius, field.ErrInvalidArgument))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	ic, err := newImageCore(params, locator, source.NumComponents())
	if err != nil {
		return nil, err
	}
	return &SobelFilter{imageCore: ic, Radius: radius}, nil
}

// SetTypeSobelFilter makes f a [SobelFilter]; see [NewSobelFilter].
// On error f is unchanged.
func SetTypeSobelFilter(f, source, coordinate *field.Field, radius int, params Params, locator imagecache.Locator) error {
	c, err := NewSobelFilter(source, coordinate, radius, params, locator)
	return setType("SetTypeSobelFilter", f, c, err, source, coordinate)
}

// PowerSpectrum is an image field of the log power spectrum of its
// source field, normalized to [0,1] in each channel. All sizes must be
// powers of two.
type PowerSpectrum struct {
	imageCore
}

func (c *PowerSpectrum) TypeName() string { return "power_spectrum" }

func (c *PowerSpectrum) NumComponents(sources []*field.Field) (int, error) {
	if err := c.Params.checkPowerOfTwo(); err != nil {
		return 0, fmt.Errorf("%s: %w", c.TypeName(), err)
	}
	return c.numComponents(c, sources)
}

func (c *PowerSpectrum) kernel(img *imagecache.Cache) error {
	return ApplyPowerSpectrum(img, parallelChannels())
}

func (c *PowerSpectrum) Evaluate(f *field.Field, ev *field.Evaluation) error {
	return c.evaluate(f, ev, c.kernel)
}

func (c *PowerSpectrum) CommandString(f *field.Field) string {
	return c.commandString(c, f, "")
}

func (c *PowerSpectrum) Clone() field.Core {
	return &PowerSpectrum{imageCore: c.clone()}
}

// NewPowerSpectrum returns a new [PowerSpectrum] of the source field,
// sampled over the given texture coordinates.
func NewPowerSpectrum(source, coordinate *field.Field, params Params, locator imagecache.Locator) (*PowerSpectrum, error) {
	errs := multierror.Append(checkSources(source, coordinate, &params), params.checkPowerOfTwo())
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	ic, err := newImageCore(params, locator, source.NumComponents())
	if err != nil {
		return nil, err
	}
	return &PowerSpectrum{imageCore: ic}, nil
}

// SetTypePowerSpectrum makes f a [PowerSpectrum]; see [NewPowerSpectrum].
// On error f is unchanged.
func SetTypePowerSpectrum(f, source, coordinate *field.Field, params Params, locator imagecache.Locator) error {
	c, err := NewPowerSpectrum(source, coordinate, params, locator)
	return setType("SetTypePowerSpectrum", f, c, err, source, coordinate)
}

// ContrastFilter is an image field of its source field with the
// contrast of each channel adjusted.
type ContrastFilter struct {
	imageCore
	Contrast Contrast
}

func (c *ContrastFilter) TypeName() string { return "contrast" }

func (c *ContrastFilter) NumComponents(sources []*field.Field) (int, error) {
	if err := c.Contrast.check(); err != nil {
		return 0, fmt.Errorf("%s: %w", c.TypeName(), err)
	}
	return c.numComponents(c, sources)
}

func (c *ContrastFilter) kernel(img *imagecache.Cache) error {
	return ApplyContrast(img, c.Contrast, parallelChannels())
}

func (c *ContrastFilter) Evaluate(f *field.Field, ev *field.Evaluation) error {
	return c.evaluate(f, ev, c.kernel)
}

func (c *ContrastFilter) CommandString(f *field.Field) string {
	return c.commandString(c, f, c.Contrast.commandString())
}

func (c *ContrastFilter) Clone() field.Core {
	return &ContrastFilter{imageCore: c.clone(), Contrast: c.Contrast}
}

// NewContrast returns a new [ContrastFilter] of the source field,
// sampled over the given texture coordinates.
func NewContrast(source, coordinate *field.Field, contrast Contrast, params Params, locator imagecache.Locator) (*ContrastFilter, error) {
	errs := multierror.Append(checkSources(source, coordinate, &params), contrast.check())
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	ic, err := newImageCore(params, locator, source.NumComponents())
	if err != nil {
		return nil, err
	}
	return &ContrastFilter{imageCore: ic, Contrast: contrast}, nil
}

// SetTypeContrast makes f a [ContrastFilter]; see [NewContrast].
// On error f is unchanged.
func SetTypeContrast(f, source, coordinate *field.Field, contrast Contrast, params Params, locator imagecache.Locator) error {
	c, err := NewContrast(source, coordinate, contrast, params, locator)
	return setType("SetTypeContrast", f, c, err, source, coordinate)
}
