// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imagecache

import (
	"fmt"
	"math"
	"slices"

	"github.com/hsorby/cmgui-sub001/field"
)

// Locator finds where in a mesh a coordinate field takes the given
// values, returning false if it takes them nowhere.
type Locator interface {
	FindLocation(coordinate *field.Field, coords []float64, time float64) (field.Location, bool, error)
}

// UpdateFromFields fills the cache with the values of the source field,
// which must have Depth components, at the center of each pixel. If the
// locator is nil the source is evaluated at the coordinates of the pixel
// centers; otherwise each center is located where the coordinate field
// takes its coordinates, and pixels not found anywhere are zero. Any
// evaluation error stops the update and leaves the cache invalid.
func (c *Cache) UpdateFromFields(source, coordinate *field.Field, locator Locator, time float64) error {
	if source == nil || (locator != nil && coordinate == nil) {
		return fmt.Errorf("imagecache.UpdateFromFields: nil field: %w", field.ErrInvalidArgument)
	}
	if nc := source.NumComponents(); nc != c.depth {
		return fmt.Errorf("imagecache.UpdateFromFields: %v has %d components for depth %d: %w", source, nc, c.depth, field.ErrDimensionMismatch)
	}
	c.valid = false
	for p := range c.Len() {
		coords := c.Center(p)
		pix := c.data[p*c.depth : (p+1)*c.depth]
		var loc field.Location = field.CoordinateLocation{Coordinates: coords, T: time}
		if locator != nil {
			l, found, err := locator.FindLocation(coordinate, coords, time)
			if err != nil {
				return fmt.Errorf("imagecache.UpdateFromFields: locating %v: %w", coords, err)
			}
			if !found {
				clear(pix)
				continue
			}
			loc = l
		}
		vals, err := source.Evaluate(loc)
		if err != nil {
			return fmt.Errorf("imagecache.UpdateFromFields: pixel %v: %w", c.Index(p), err)
		}
		copy(pix, vals)
	}
	c.valid = true
	return nil
}

// EvaluateAt sets out to the channel values at the given coordinates,
// interpolated multilinearly between pixel centers and clamped to the
// outermost pixel centers. Only the first Dimension coordinates are used.
func (c *Cache) EvaluateAt(coords, out []float64) error {
	if !c.valid {
		return ErrInvalid
	}
	if len(coords) < c.dimension {
		return fmt.Errorf("imagecache.EvaluateAt: %d coordinates for dimension %d: %w", len(coords), c.dimension, field.ErrDimensionMismatch)
	}
	if len(out) != c.depth {
		return fmt.Errorf("imagecache.EvaluateAt: %d outputs for depth %d: %w", len(out), c.depth, field.ErrDimensionMismatch)
	}
	c.interpolate(coords, out)
	return nil
}

// interpolate sets out to the multilinear interpolation of the
// data at the given coordinates.
func (c *Cache) interpolate(coords, out []float64) {
	lo := make([]int, c.dimension)
	hi := make([]int, c.dimension)
	w := make([]float64, c.dimension)
	for a := range c.dimension {
		n := c.sizes[a]
		u := (coords[a]-c.minimums[a])/(c.maximums[a]-c.minimums[a])*float64(n) - 0.5
		u = min(max(u, 0), float64(n-1))
		i := int(math.Floor(u))
		lo[a] = i
		hi[a] = min(i+1, n-1)
		w[a] = u - float64(i)
	}
	clear(out)
	for corner := range 1 << c.dimension {
		weight := 1.0
		p := 0
		for a := range c.dimension {
			if corner&(1<<a) != 0 {
				weight *= w[a]
				p += hi[a] * c.strides[a]
			} else {
				weight *= 1 - w[a]
				p += lo[a] * c.strides[a]
			}
		}
		if weight == 0 {
			continue
		}
		for k := range c.depth {
			out[k] += weight * c.data[p*c.depth+k]
		}
	}
}

// Resample changes the number of pixels along each axis, keeping the
// bounds. Valid contents are interpolated onto the new pixel centers
// and stay valid.
func (c *Cache) Resample(sizes []int) error {
	if len(sizes) != c.dimension {
		return fmt.Errorf("imagecache.Resample: %d sizes for dimension %d: %w", len(sizes), c.dimension, field.ErrDimensionMismatch)
	}
	for a, sz := range sizes {
		if sz <= 0 {
			return fmt.Errorf("imagecache.Resample: size %d of axis %d: %w", sz, a, field.ErrInvalidArgument)
		}
	}
	if slices.Equal(sizes, c.sizes) {
		return nil
	}
	old := c.Clone()
	c.setSizes(sizes)
	if !old.valid {
		return nil
	}
	for p := range c.Len() {
		old.interpolate(c.Center(p), c.data[p*c.depth:(p+1)*c.depth])
	}
	return nil
}
