// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package imagecache provides a dense N-dimensional grid of
// multi-channel double precision values, sampled from fields over a
// rectangular domain of texture coordinates, which serves as the
// working storage of the image processing field types.
package imagecache

import (
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/hsorby/cmgui-sub001/base/errors"
	"github.com/hsorby/cmgui-sub001/field"
)

// ErrInvalid is returned when reading values from a cache whose
// contents are not valid.
var ErrInvalid = errors.New("imagecache: contents not valid")

// Cache is a grid of pixels with Dimension axes, each holding Depth
// channel values. The pixel with index p covers the coordinates around
// its center Minimums + (p+0.5)*(Maximums-Minimums)/Sizes.
//
// Values are stored with the channels of a pixel adjacent and
// axis 0 varying fastest.
type Cache struct {
	dimension int
	depth     int
	sizes     []int
	minimums  []float64
	maximums  []float64

	// strides are the offsets between adjacent pixels along each axis,
	// in pixels.
	strides []int

	data  []float64
	valid bool
}

// New returns a new cache with the given shape and bounds.
func New(dimension, depth int, sizes []int, minimums, maximums []float64) (*Cache, error) {
	c := &Cache{}
	if err := c.UpdateDimension(dimension, depth, sizes, minimums, maximums); err != nil {
		return nil, err
	}
	return c, nil
}

// CheckShape returns an error describing everything wrong with the
// given shape and bounds, or nil if they are valid.
func CheckShape(dimension, depth int, sizes []int, minimums, maximums []float64) error {
	var errs *multierror.Error
	if dimension <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("dimension %d must be positive: %w", dimension, field.ErrInvalidArgument))
	}
	if depth <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("depth %d must be positive: %w", depth, field.ErrInvalidArgument))
	}
	for _, vec := range []struct {
		name string
		n    int
	}{{"sizes", len(sizes)}, {"minimums", len(minimums)}, {"maximums", len(maximums)}} {
		if vec.n != dimension {
			errs = multierror.Append(errs, fmt.Errorf("%d %s for dimension %d: %w", vec.n, vec.name, dimension, field.ErrDimensionMismatch))
		}
	}
	for a, sz := range sizes {
		if sz <= 0 {
			errs = multierror.Append(errs, fmt.Errorf("size %d of axis %d must be positive: %w", sz, a, field.ErrInvalidArgument))
		}
	}
	for a := range min(len(minimums), len(maximums)) {
		if !(maximums[a] > minimums[a]) {
			errs = multierror.Append(errs, fmt.Errorf("maximum %g of axis %d must be greater than minimum %g: %w", maximums[a], a, minimums[a], field.ErrInvalidArgument))
		}
	}
	return errs.ErrorOrNil()
}

// UpdateDimension sets the shape and bounds of the cache. The storage
// is only reallocated if the shape changes; the contents are invalid
// afterwards if anything changed.
func (c *Cache) UpdateDimension(dimension, depth int, sizes []int, minimums, maximums []float64) error {
	if err := CheckShape(dimension, depth, sizes, minimums, maximums); err != nil {
		return fmt.Errorf("imagecache.UpdateDimension: %w", err)
	}
	if c.dimension == dimension && c.depth == depth && slices.Equal(c.sizes, sizes) &&
		slices.Equal(c.minimums, minimums) && slices.Equal(c.maximums, maximums) {
		return nil
	}
	c.valid = false
	c.minimums = slices.Clone(minimums)
	c.maximums = slices.Clone(maximums)
	if c.dimension == dimension && c.depth == depth && slices.Equal(c.sizes, sizes) {
		return nil
	}
	c.dimension = dimension
	c.depth = depth
	c.setSizes(sizes)
	return nil
}

// setSizes sets the sizes and strides and allocates zeroed storage.
func (c *Cache) setSizes(sizes []int) {
	c.sizes = slices.Clone(sizes)
	c.strides = make([]int, len(sizes))
	n := 1
	for a, sz := range sizes {
		c.strides[a] = n
		n *= sz
	}
	c.data = make([]float64, n*c.depth)
}

// Dimension returns the number of axes.
func (c *Cache) Dimension() int { return c.dimension }

// Depth returns the number of channels of each pixel.
func (c *Cache) Depth() int { return c.depth }

// Sizes returns the number of pixels along each axis.
func (c *Cache) Sizes() []int { return slices.Clone(c.sizes) }

// DimSize returns the number of pixels along the given axis.
func (c *Cache) DimSize(axis int) int { return c.sizes[axis] }

// Strides returns the distance between adjacent pixels along each axis,
// in pixels.
func (c *Cache) Strides() []int { return slices.Clone(c.strides) }

// Minimums returns the lower coordinate bound of each axis.
func (c *Cache) Minimums() []float64 { return slices.Clone(c.minimums) }

// Maximums returns the upper coordinate bound of each axis.
func (c *Cache) Maximums() []float64 { return slices.Clone(c.maximums) }

// Len returns the number of pixels.
func (c *Cache) Len() int {
	if c.depth == 0 {
		return 0
	}
	return len(c.data) / c.depth
}

// Data returns the storage of the cache, which filters modify in place.
func (c *Cache) Data() []float64 { return c.data }

// Offset returns the position in [Cache.Data] of the first channel
// of the pixel with the given index.
func (c *Cache) Offset(index []int) int {
	p := 0
	for a, i := range index {
		p += i * c.strides[a]
	}
	return p * c.depth
}

// Index returns the index along each axis of the given pixel number.
func (c *Cache) Index(pixel int) []int {
	index := make([]int, c.dimension)
	for a, sz := range c.sizes {
		index[a] = pixel % sz
		pixel /= sz
	}
	return index
}

// Center returns the coordinates of the center of the given pixel number.
func (c *Cache) Center(pixel int) []float64 {
	coords := make([]float64, c.dimension)
	for a, i := range c.Index(pixel) {
		coords[a] = c.minimums[a] + (float64(i)+0.5)*(c.maximums[a]-c.minimums[a])/float64(c.sizes[a])
	}
	return coords
}

// Valid returns whether the contents of the cache are up to date.
func (c *Cache) Valid() bool { return c.valid }

// SetValid sets whether the contents of the cache are up to date.
func (c *Cache) SetValid(valid bool) { c.valid = valid }

// Invalidate marks the contents of the cache as out of date.
func (c *Cache) Invalidate() { c.valid = false }

// Channel returns a copy of the values of the given channel
// of every pixel.
func (c *Cache) Channel(k int) []float64 {
	vals := make([]float64, c.Len())
	for p := range vals {
		vals[p] = c.data[p*c.depth+k]
	}
	return vals
}

// SetChannel sets the given channel of every pixel.
func (c *Cache) SetChannel(k int, values []float64) error {
	if k < 0 || k >= c.depth {
		return fmt.Errorf("imagecache.SetChannel: channel %d of %d: %w", k, c.depth, field.ErrInvalidArgument)
	}
	if len(values) != c.Len() {
		return fmt.Errorf("imagecache.SetChannel: %d values for %d pixels: %w", len(values), c.Len(), field.ErrDimensionMismatch)
	}
	for p, v := range values {
		c.data[p*c.depth+k] = v
	}
	return nil
}

// Clone returns a deep copy of the cache.
func (c *Cache) Clone() *Cache {
	return &Cache{
		dimension: c.dimension,
		depth:     c.depth,
		sizes:     slices.Clone(c.sizes),
		minimums:  slices.Clone(c.minimums),
		maximums:  slices.Clone(c.maximums),
		strides:   slices.Clone(c.strides),
		data:      slices.Clone(c.data),
		valid:     c.valid,
	}
}

// Gray returns the given channel of a one or two dimensional cache as
// a grayscale image, with values clamped to [0,1] and pixel (x, y) of
// the image taken from the pixel with index (x, y).
func (c *Cache) Gray(channel int) (*image.Gray16, error) {
	if c.dimension < 1 || c.dimension > 2 {
		return nil, fmt.Errorf("imagecache.Gray: dimension %d: %w", c.dimension, field.ErrDimensionMismatch)
	}
	if channel < 0 || channel >= c.depth {
		return nil, fmt.Errorf("imagecache.Gray: channel %d of %d: %w", channel, c.depth, field.ErrInvalidArgument)
	}
	w, h := c.sizes[0], 1
	if c.dimension == 2 {
		h = c.sizes[1]
	}
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := c.data[(y*w+x)*c.depth+channel]
			g := uint16(math.Round(min(max(v, 0), 1) * math.MaxUint16))
			i := img.PixOffset(x, y)
			img.Pix[i] = uint8(g >> 8)
			img.Pix[i+1] = uint8(g)
		}
	}
	return img, nil
}
