// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fieldtypes

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"

	"github.com/hsorby/cmgui-sub001/base/iox/imagex"
	"github.com/hsorby/cmgui-sub001/field"
)

// SampleTexture samples an image at the texture coordinates given by
// its source, returning the red, green, blue and alpha values in [0,1].
// Texture coordinates (0, 0) and (1, 1) are the bottom-left and
// top-right corners of the image; the first two source components are
// used, and a missing second one is taken as zero. Colors are
// interpolated bilinearly between pixel centers.
type SampleTexture struct {

	// Filename is the file the image was loaded from, if any.
	Filename string

	// Width and Height are the size the image was resized to when
	// loaded, or zero for its own size.
	Width, Height int

	// Image is the image sampled.
	Image *image.RGBA
}

// NewSampleTexture returns a new sample texture core for a copy
// of the given image.
func NewSampleTexture(img image.Image) *SampleTexture {
	return &SampleTexture{Image: clone.AsRGBA(img)}
}

// LoadSampleTexture returns a new sample texture core for the image in
// the given PNG, JPEG, GIF, TIFF or BMP file, resized with bilinear
// filtering to the given width and height if they are positive.
func LoadSampleTexture(filename string, width, height int) (*SampleTexture, error) {
	img, _, err := imagex.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("fieldtypes.LoadSampleTexture: %w", err)
	}
	c := &SampleTexture{Filename: filename}
	if width > 0 && height > 0 {
		c.Width, c.Height = width, height
		c.Image = transform.Resize(img, width, height, transform.Linear)
	} else {
		c.Image = clone.AsRGBA(img)
	}
	return c, nil
}

func (c *SampleTexture) TypeName() string { return "sample_texture" }

func (c *SampleTexture) NumComponents(sources []*field.Field) (int, error) {
	if err := checkNumSources(c, sources, 1); err != nil {
		return 0, err
	}
	if c.Image == nil || c.Image.Bounds().Empty() {
		return 0, fmt.Errorf("sample_texture: no image: %w", field.ErrInvalidArgument)
	}
	if nc := sources[0].NumComponents(); nc > 3 {
		return 0, fmt.Errorf("sample_texture: texture coordinates %v have %d components: %w", sources[0], nc, field.ErrDimensionMismatch)
	}
	return 4, nil
}

func (c *SampleTexture) Evaluate(f *field.Field, ev *field.Evaluation) error {
	tc, err := f.Source(0).Evaluate(ev.Location)
	if err != nil {
		return err
	}
	x, y := tc[0], 0.0
	if len(tc) > 1 {
		y = tc[1]
	}
	b := c.Image.Bounds()
	w, h := b.Dx(), b.Dy()
	u := min(max(x*float64(w)-0.5, 0), float64(w-1))
	v := min(max((1-y)*float64(h)-0.5, 0), float64(h-1))
	x0, y0 := int(math.Floor(u)), int(math.Floor(v))
	x1, y1 := min(x0+1, w-1), min(y0+1, h-1)
	wx, wy := u-float64(x0), v-float64(y0)
	for _, p := range []struct {
		x, y int
		w    float64
	}{{x0, y0, (1 - wx) * (1 - wy)}, {x1, y0, wx * (1 - wy)}, {x0, y1, (1 - wx) * wy}, {x1, y1, wx * wy}} {
		if p.w == 0 {
			continue
		}
		px := c.Image.RGBAAt(b.Min.X+p.x, b.Min.Y+p.y)
		ev.Values[0] += p.w * float64(px.R) / 255
		ev.Values[1] += p.w * float64(px.G) / 255
		ev.Values[2] += p.w * float64(px.B) / 255
		ev.Values[3] += p.w * float64(px.A) / 255
	}
	return nil
}

func (c *SampleTexture) CommandString(f *field.Field) string {
	cmd := fmt.Sprintf("sample_texture image %s texture_coordinate_field %s", field.QuoteName(c.Filename), field.SourceNames(f))
	if c.Width > 0 && c.Height > 0 {
		cmd += fmt.Sprintf(" resize %d %d", c.Width, c.Height)
	}
	return cmd
}

func (c *SampleTexture) Clone() field.Core {
	cp := *c
	if c.Image != nil {
		cp.Image = clone.AsRGBA(c.Image)
	}
	return &cp
}
