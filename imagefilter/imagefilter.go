// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package imagefilter provides field types that process images: a
// Sobel edge filter, a power spectrum and a contrast adjustment.
//
// Each has two sources, a source field and a texture coordinate field.
// The source is sampled into an [imagecache.Cache] over a box of the
// texture coordinates and processed by a kernel the first time the
// field is evaluated after it or anything it depends on has changed;
// evaluation then interpolates the processed image at the value of
// the texture coordinate field.
package imagefilter

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/jinzhu/copier"

	"github.com/hsorby/cmgui-sub001/base/errors"
	"github.com/hsorby/cmgui-sub001/config"
	"github.com/hsorby/cmgui-sub001/field"
	"github.com/hsorby/cmgui-sub001/imagecache"
)

// States are the states of an image field.
type States int32

const (
	// Uninitialized is a field that is not an image field, or
	// whose image has not been set up.
	Uninitialized States = iota

	// CacheInvalid is an image field whose image must be rebuilt
	// before it is next evaluated.
	CacheInvalid

	// CacheValid is an image field whose image is up to date.
	CacheValid
)

func (s States) String() string {
	switch s {
	case CacheInvalid:
		return "cache-invalid"
	case CacheValid:
		return "cache-valid"
	}
	return "uninitialized"
}

// imageCore is the part common to all image field types.
type imageCore struct {
	Params Params

	// Locator finds where the texture coordinate field takes the value
	// of each pixel; if nil, pixels are sampled at their coordinates.
	Locator imagecache.Locator

	cache *imagecache.Cache

	// time is the time at which the cache was built.
	time float64
}

// newImageCore returns a new image core with a deep copy of the params
// and an invalid image with the given number of channels.
func newImageCore(params Params, locator imagecache.Locator, depth int) (imageCore, error) {
	ic := imageCore{Locator: locator}
	if err := copier.CopyWithOption(&ic.Params, &params, copier.Option{CaseSensitive: true, DeepCopy: true}); err != nil {
		return ic, err
	}
	p := &ic.Params
	cache, err := imagecache.New(p.Dimension, depth, p.Sizes, p.Minimums, p.Maximums)
	if err != nil {
		return ic, err
	}
	ic.cache = cache
	return ic, nil
}

// clone returns a deep copy with its own invalid image.
func (ic *imageCore) clone() imageCore {
	depth := 1
	if ic.cache != nil {
		depth = ic.cache.Depth()
	}
	cp, err := newImageCore(ic.Params, ic.Locator, depth)
	if err != nil {
		errors.Log(fmt.Errorf("imagefilter: clone: %w", err))
	}
	return cp
}

// numComponents checks the sources and params, returning the number of
// components, which is that of the source field.
func (ic *imageCore) numComponents(c field.Core, sources []*field.Field) (int, error) {
	if len(sources) != 2 {
		return 0, fmt.Errorf("%s: %d sources, need a source and a texture coordinate field: %w", c.TypeName(), len(sources), field.ErrInvalidArgument)
	}
	if err := ic.Params.check(sources[1]); err != nil {
		return 0, fmt.Errorf("%s: %w", c.TypeName(), err)
	}
	return sources[0].NumComponents(), nil
}

// evaluate interpolates the image at the texture coordinates of the
// location, first rebuilding the image with the given kernel if needed.
func (ic *imageCore) evaluate(f *field.Field, ev *field.Evaluation, kernel func(c *imagecache.Cache) error) error {
	if ic.cache == nil {
		return fmt.Errorf("%s: %w", f.TypeName(), field.ErrUninitialized)
	}
	tc, err := f.Source(1).Evaluate(ev.Location)
	if err != nil {
		return err
	}
	time := ev.Location.Time()
	if !ic.cache.Valid() || ic.time != time {
		if err := ic.update(f, time, kernel); err != nil {
			return err
		}
	}
	clear(ev.Derivatives)
	return ic.cache.EvaluateAt(tc, ev.Values)
}

// update rebuilds the image from the source field at the given time.
func (ic *imageCore) update(f *field.Field, time float64, kernel func(c *imagecache.Cache) error) error {
	src, coord := f.Source(0), f.Source(1)
	p := &ic.Params
	if err := ic.cache.UpdateDimension(p.Dimension, src.NumComponents(), p.Sizes, p.Minimums, p.Maximums); err != nil {
		return err
	}
	if err := ic.cache.UpdateFromFields(src, coord, ic.Locator, time); err != nil {
		return err
	}
	if err := kernel(ic.cache); err != nil {
		ic.cache.Invalidate()
		return err
	}
	ic.time = time
	slog.Debug("imagefilter: image updated", "field", f.Name(), "type", f.TypeName(), "sizes", p.Sizes, "time", time)
	return nil
}

func (ic *imageCore) state() States {
	switch {
	case ic.cache == nil:
		return Uninitialized
	case ic.cache.Valid():
		return CacheValid
	}
	return CacheInvalid
}

// Invalidate marks the image as out of date.
func (ic *imageCore) Invalidate() {
	if ic.cache != nil {
		ic.cache.Invalidate()
	}
}

// SupportsDerivatives returns true: the derivatives of image fields
// are zero.
func (ic *imageCore) SupportsDerivatives() bool { return true }

// commandString returns the command of an image field with the
// given type options.
func (ic *imageCore) commandString(c field.Core, f *field.Field, options string) string {
	cmd := fmt.Sprintf("%s field %s texture_coordinate_field %s %s", c.TypeName(),
		field.QuoteName(f.Source(0).Name()), field.QuoteName(f.Source(1).Name()), ic.Params.commandString())
	if options != "" {
		cmd += " " + options
	}
	return cmd
}

// imager is implemented by all image field types.
type imager interface {
	image() *imageCore
}

func (ic *imageCore) image() *imageCore { return ic }

// State returns the state of the given field as an image field.
func State(f *field.Field) States {
	im, ok := f.Core().(imager)
	if !ok {
		return Uninitialized
	}
	return im.image().state()
}

// Image returns the processed image of the given image field, which is
// only up to date if its state is [CacheValid], or nil if it is not
// an image field.
func Image(f *field.Field) *imagecache.Cache {
	im, ok := f.Core().(imager)
	if !ok {
		return nil
	}
	return im.image().cache
}

// InvalidateAll marks the images of all image fields of the manager
// as out of date, clearing the caches of the fields depending on them,
// and returns the number of image fields. Images built before the
// settings changed keep the old threshold policy until this is called.
func InvalidateAll(m *field.Manager) int {
	n := 0
	for f := range m.All() {
		if _, ok := f.Core().(imager); ok {
			f.Changed()
			n++
		}
	}
	return n
}

// Update rebuilds the image of the given image field at the given time
// if it is out of date, without evaluating the field anywhere.
func Update(f *field.Field, time float64) error {
	switch c := f.Core().(type) {
	case *SobelFilter:
		return c.updateIfNeeded(f, time, c.kernel)
	case *PowerSpectrum:
		return c.updateIfNeeded(f, time, c.kernel)
	case *ContrastFilter:
		return c.updateIfNeeded(f, time, c.kernel)
	}
	return fmt.Errorf("imagefilter.Update: %v is not an image field: %w", f, field.ErrInvalidArgument)
}

func (ic *imageCore) updateIfNeeded(f *field.Field, time float64, kernel func(c *imagecache.Cache) error) error {
	if ic.cache == nil {
		return fmt.Errorf("%s: %w", f.TypeName(), field.ErrUninitialized)
	}
	if ic.cache.Valid() && ic.time == time {
		return nil
	}
	return ic.update(f, time, kernel)
}

// checkSources returns all problems with the sources and params
// common to all image field types.
func checkSources(source, coordinate *field.Field, params *Params) *multierror.Error {
	var errs *multierror.Error
	if source == nil {
		errs = multierror.Append(errs, fmt.Errorf("nil source field: %w", field.ErrInvalidArgument))
	}
	if coordinate == nil {
		errs = multierror.Append(errs, fmt.Errorf("nil texture coordinate field: %w", field.ErrInvalidArgument))
	}
	return multierror.Append(errs, params.check(coordinate))
}

// setType sets the core of f, built with the given error, adding a nil
// f to the problems reported.
func setType(name string, f *field.Field, core field.Core, err error, sources ...*field.Field) error {
	var errs *multierror.Error
	if f == nil {
		errs = multierror.Append(errs, fmt.Errorf("nil field: %w", field.ErrInvalidArgument))
	}
	if err := multierror.Append(errs, err).ErrorOrNil(); err != nil {
		return fmt.Errorf("imagefilter.%s: %w", name, err)
	}
	return f.SetCore(core, sources...)
}

func parallelChannels() bool { return config.Default().ParallelChannels }
