// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imagefilter

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/hsorby/cmgui-sub001/config"
	"github.com/hsorby/cmgui-sub001/fft"
	"github.com/hsorby/cmgui-sub001/field"
	"github.com/hsorby/cmgui-sub001/imagecache"
)

// eachChannel calls fun with the values of each channel of the cache,
// storing back the values it returns. Channels are processed on
// separate goroutines if parallel is set.
func eachChannel(c *imagecache.Cache, parallel bool, fun func(vals []float64) ([]float64, error)) error {
	run := func(k int) error {
		out, err := fun(c.Channel(k))
		if err != nil {
			return fmt.Errorf("channel %d: %w", k, err)
		}
		return c.SetChannel(k, out)
	}
	if !parallel || c.Depth() == 1 {
		for k := range c.Depth() {
			if err := run(k); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	for k := range c.Depth() {
		g.Go(func() error { return run(k) })
	}
	return g.Wait()
}

// normalize divides the values by their maximum, unless it is zero.
func normalize(vals []float64) {
	if len(vals) == 0 {
		return
	}
	mx := floats.Max(vals)
	if mx == 0 {
		return
	}
	for i := range vals {
		vals[i] /= mx
	}
}

//////// Sobel

// ApplySobel replaces each channel of the cache with its binary edge
// map: the magnitude of the Sobel gradient of the given radius, with
// indexes wrapping around at the borders, normalized to a maximum of
// one and thresholded by the given policy.
func ApplySobel(c *imagecache.Cache, radius int, policy config.Threshold, parallel bool) error {
	if radius < 1 {
		return fmt.Errorf("imagefilter.ApplySobel: radius %d: %w", radius, field.ErrInvalidArgument)
	}
	if policy.Bins < 1 || policy.Floor < 0 || policy.Floor >= 1 {
		return fmt.Errorf("imagefilter.ApplySobel: threshold %+v: %w", policy, field.ErrInvalidArgument)
	}
	sizes, strides := c.Sizes(), c.Strides()
	offs := sobelOffsets(len(sizes)-1, radius)
	return eachChannel(c, parallel, func(vals []float64) ([]float64, error) {
		mag := sobelMagnitude(vals, sizes, strides, radius, offs)
		normalize(mag)
		threshold(mag, policy)
		return mag, nil
	})
}

// sobelOffset is an offset along the axes other than the one
// differentiated, with its smoothing weight.
type sobelOffset struct {
	delta  []int
	weight float64
}

// sobelOffsets returns all offsets in [-radius, radius] along n axes,
// in a fixed order, each weighted by the product of radius+1-|delta|.
func sobelOffsets(n, radius int) []sobelOffset {
	offs := []sobelOffset{{weight: 1}}
	for range n {
		var next []sobelOffset
		for _, o := range offs {
			for d := -radius; d <= radius; d++ {
				next = append(next, sobelOffset{
					delta:  append(append([]int{}, o.delta...), d),
					weight: o.weight * float64(radius+1-abs(d)),
				})
			}
		}
		offs = next
	}
	return offs
}

// sobelMagnitude returns the gradient magnitude of each pixel. The
// accumulation order is fixed, so that flat images give exactly zero.
func sobelMagnitude(vals []float64, sizes, strides []int, radius int, offs []sobelOffset) []float64 {
	dim := len(sizes)
	out := make([]float64, len(vals))
	index := make([]int, dim)
	pos := make([]int, dim)
	at := func(axis, shift int) float64 {
		p := 0
		for a, i := range pos {
			if a == axis {
				i += shift
			}
			p += wrap(i, sizes[a]) * strides[a]
		}
		return vals[p]
	}
	for p := range vals {
		q := p
		for a, sz := range sizes {
			index[a] = q % sz
			q /= sz
		}
		sum := 0.0
		for axis := range dim {
			resp := 0.0
			for _, o := range offs {
				b := 0
				for a := range dim {
					pos[a] = index[a]
					if a != axis {
						pos[a] += o.delta[b]
						b++
					}
				}
				inner := 0.0
				for i := 1; i <= radius; i++ {
					inner += float64(i) * (at(axis, i) - at(axis, -i))
				}
				resp += o.weight * inner
			}
			sum += resp * resp
		}
		out[p] = math.Sqrt(sum)
	}
	return out
}

// threshold sets the normalized values to one at or above the cutoff
// chosen by the policy, and to zero below it. The values above the
// floor are counted in equal bins up to one; walking down from the top
// bin, the cutoff is the lower edge of the first bin at which the
// cumulative count exceeds the fraction of the largest bin count.
// With nothing above the floor all values become zero.
func threshold(vals []float64, policy config.Threshold) {
	width := (1 - policy.Floor) / float64(policy.Bins)
	hist := make([]int, policy.Bins)
	for _, v := range vals {
		if v > policy.Floor {
			hist[min(int((v-policy.Floor)/width), policy.Bins-1)]++
		}
	}
	peak := 0
	for _, n := range hist {
		peak = max(peak, n)
	}
	cut := math.Inf(1)
	if peak > 0 {
		total := 0
		for b := policy.Bins - 1; b >= 0; b-- {
			total += hist[b]
			if float64(total) > policy.Fraction*float64(peak) {
				cut = policy.Floor + float64(b)*width
				break
			}
		}
	}
	for i, v := range vals {
		if v >= cut {
			vals[i] = 1
		} else {
			vals[i] = 0
		}
	}
}

//////// Power spectrum

// ApplyPowerSpectrum replaces each channel of the cache with the
// logarithm of its power spectrum, log(re^2+im^2+1) of the forward
// Fourier transform, normalized to a maximum of one. The zero frequency
// is at pixel index zero. All sizes must be powers of two.
func ApplyPowerSpectrum(c *imagecache.Cache, parallel bool) error {
	sizes := c.Sizes()
	return eachChannel(c, parallel, func(re []float64) ([]float64, error) {
		im := make([]float64, len(re))
		if err := fft.TransformN(fft.Forward, re, im, sizes); err != nil {
			return nil, err
		}
		for i := range re {
			re[i] = math.Log(re[i]*re[i] + im[i]*im[i] + 1)
		}
		normalize(re)
		return re, nil
	})
}

//////// Contrast

// ApplyContrast maps the values of each channel of the cache onto
// [0,1] according to the given contrast.
func ApplyContrast(c *imagecache.Cache, contrast Contrast, parallel bool) error {
	if err := contrast.check(); err != nil {
		return fmt.Errorf("imagefilter.ApplyContrast: %w", err)
	}
	return eachChannel(c, parallel, func(vals []float64) ([]float64, error) {
		lo, hi := contrast.Low, contrast.High
		if contrast.Mode == Auto && len(vals) > 0 {
			lo, hi = floats.Min(vals), floats.Max(vals)
		}
		for i, v := range vals {
			switch {
			case contrast.Mode == Gamma:
				vals[i] = math.Pow(clamp01(v), contrast.Gamma)
			case hi > lo:
				vals[i] = clamp01((v - lo) / (hi - lo))
			default:
				vals[i] = 0
			}
		}
		return vals, nil
	})
}

func clamp01(v float64) float64 { return min(max(v, 0), 1) }

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
