// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fft provides in-place complex fast Fourier transforms of
// power-of-two length on separate real and imaginary slices, in one
// dimension or along every axis of an N-dimensional grid.
package fft

import (
	"fmt"
	"math/bits"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/hsorby/cmgui-sub001/base/errors"
)

// Direction is the direction of a transform.
type Direction int

const (
	// Forward transforms with a negative exponent and scales the
	// result by 1/n.
	Forward Direction = 1

	// Inverse transforms with a positive exponent and no scaling,
	// undoing a [Forward] transform.
	Inverse Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Inverse:
		return "inverse"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

var (
	// ErrNotPowerOfTwo is returned for lengths that are not a power of two.
	ErrNotPowerOfTwo = errors.New("fft: length is not a power of two")

	// ErrLength is returned for mismatched slice lengths and sizes.
	ErrLength = errors.New("fft: mismatched lengths")
)

// IsPowerOfTwo returns whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}

// Transform replaces re and im with their discrete Fourier transform
// in the given direction. Their length must be a power of two.
func Transform(dir Direction, re, im []float64) error {
	if len(re) != len(im) {
		return fmt.Errorf("fft.Transform: %d real and %d imaginary values: %w", len(re), len(im), ErrLength)
	}
	if err := checkDirection(dir); err != nil {
		return err
	}
	n := len(re)
	if !IsPowerOfTwo(n) {
		return fmt.Errorf("fft.Transform: length %d: %w", n, ErrNotPowerOfTwo)
	}
	l := newLine(n)
	copy(l.re, re)
	copy(l.im, im)
	l.transform(dir)
	copy(re, l.re)
	copy(im, l.im)
	return nil
}

// TransformN replaces re and im, which hold a grid of the given sizes
// with axis 0 varying fastest, with their N-dimensional discrete Fourier
// transform in the given direction, transforming along every axis of
// size greater than one. Those sizes must be powers of two.
func TransformN(dir Direction, re, im []float64, sizes []int) error {
	if len(re) != len(im) {
		return fmt.Errorf("fft.TransformN: %d real and %d imaginary values: %w", len(re), len(im), ErrLength)
	}
	if err := checkDirection(dir); err != nil {
		return err
	}
	total := 1
	for a, sz := range sizes {
		if sz <= 0 {
			return fmt.Errorf("fft.TransformN: size %d of axis %d: %w", sz, a, ErrLength)
		}
		if sz > 1 && !IsPowerOfTwo(sz) {
			return fmt.Errorf("fft.TransformN: size %d of axis %d: %w", sz, a, ErrNotPowerOfTwo)
		}
		total *= sz
	}
	if total != len(re) {
		return fmt.Errorf("fft.TransformN: sizes %v hold %d values, not %d: %w", sizes, total, len(re), ErrLength)
	}
	stride := 1
	for _, sz := range sizes {
		if sz > 1 {
			transformAxis(dir, re, im, sz, stride)
		}
		stride *= sz
	}
	return nil
}

// transformAxis transforms every line of n values spaced stride apart.
func transformAxis(dir Direction, re, im []float64, n, stride int) {
	l := newLine(n)
	block := n * stride
	for start := 0; start < len(re); start += block {
		for off := 0; off < stride; off++ {
			base := start + off
			for i := range n {
				l.re[i] = re[base+i*stride]
				l.im[i] = im[base+i*stride]
			}
			l.transform(dir)
			for i := range n {
				re[base+i*stride] = l.re[i]
				im[base+i*stride] = l.im[i]
			}
		}
	}
}

func checkDirection(dir Direction) error {
	if dir != Forward && dir != Inverse {
		return fmt.Errorf("fft: invalid %v", dir)
	}
	return nil
}

// line is the working storage for transforming one line of values.
type line struct {
	plan *fourier.CmplxFFT
	buf  []complex128
	re   []float64
	im   []float64
}

func newLine(n int) *line {
	return &line{
		plan: fourier.NewCmplxFFT(n),
		buf:  make([]complex128, n),
		re:   make([]float64, n),
		im:   make([]float64, n),
	}
}

func (l *line) transform(dir Direction) {
	n := len(l.buf)
	for i := range l.buf {
		l.buf[i] = complex(l.re[i], l.im[i])
	}
	if dir == Forward {
		l.plan.Coefficients(l.buf, l.buf)
	} else {
		l.plan.Sequence(l.buf, l.buf)
	}
	scale := 1.0
	if dir == Forward {
		scale = 1 / float64(n)
	}
	for i, c := range l.buf {
		l.re[i] = real(c) * scale
		l.im[i] = imag(c) * scale
	}
}
