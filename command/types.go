// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package command

import (
	"github.com/hsorby/cmgui-sub001/base/errors"
	"github.com/hsorby/cmgui-sub001/base/reflectx"
	"github.com/hsorby/cmgui-sub001/field"
	"github.com/hsorby/cmgui-sub001/fieldtypes"
	"github.com/hsorby/cmgui-sub001/imagefilter"
)

// typeParser parses the options of a field type, after its name.
type typeParser func(p *parser) (field.Core, []*field.Field, error)

// types are the parsers of all field types, by type name.
var types = map[string]typeParser{
	"constant":       parseConstant,
	"add":            parseAdd,
	"multiply":       parseSources("fields", 2, func() field.Core { return &fieldtypes.Multiply{} }),
	"scale":          parseScale,
	"magnitude":      parseSources("field", 1, func() field.Core { return &fieldtypes.Magnitude{} }),
	"if":             parseSources("fields", 3, func() field.Core { return &fieldtypes.If{} }),
	"component":      parseComponent,
	"composite":      parseSources("fields", -1, func() field.Core { return &fieldtypes.Composite{} }),
	"xi":             parseXi,
	"time_value":     parseSources("", 0, func() field.Core { return &fieldtypes.TimeValue{} }),
	"finite_element": parseFiniteElement,
	"sample_texture": parseSampleTexture,
	"sobel_filter":   parseImage(imageSobel),
	"power_spectrum": parseImage(imageSpectrum),
	"contrast":       parseImage(imageContrast),
}

// parseSources returns a parser for types that only have sources,
// given after the keyword, n of them or all remaining if n < 0.
func parseSources(keyword string, n int, newCore func() field.Core) typeParser {
	return func(p *parser) (field.Core, []*field.Field, error) {
		var sources []*field.Field
		opts := map[string]func() error{}
		if keyword != "" {
			opts[keyword] = func() (err error) {
				sources, err = p.fields(n)
				return err
			}
		}
		if err := p.options(opts); err != nil {
			return nil, nil, err
		}
		if keyword != "" && sources == nil {
			return nil, nil, p.require(keyword)
		}
		return newCore(), sources, nil
	}
}

func parseConstant(p *parser) (field.Core, []*field.Field, error) {
	vals, err := p.floats()
	if err != nil {
		return nil, nil, err
	}
	if !p.done() {
		return nil, nil, p.errorf("expected a number")
	}
	return fieldtypes.NewConstant(vals...), nil, nil
}

func parseAdd(p *parser) (field.Core, []*field.Field, error) {
	c := fieldtypes.NewAdd()
	var sources []*field.Field
	err := p.options(map[string]func() error{
		"fields": func() (err error) {
			sources, err = p.fields(2)
			return err
		},
		"scale_factors": func() error {
			for i := range c.ScaleFactors {
				v, err := p.number()
				if err != nil {
					return err
				}
				c.ScaleFactors[i] = v
			}
			return nil
		},
	})
	if err != nil {
		return nil, nil, err
	}
	if sources == nil {
		return nil, nil, p.require("fields")
	}
	return c, sources, nil
}

func parseScale(p *parser) (field.Core, []*field.Field, error) {
	c := &fieldtypes.Scale{}
	var source *field.Field
	err := p.options(map[string]func() error{
		"field": func() (err error) {
			source, err = p.field()
			return err
		},
		"scale_factors": func() (err error) {
			c.ScaleFactors, err = p.floats()
			return err
		},
	})
	if err != nil {
		return nil, nil, err
	}
	if err := p.require(missing(check{source == nil, "field"}, check{c.ScaleFactors == nil, "scale_factors"})...); err != nil {
		return nil, nil, err
	}
	return c, []*field.Field{source}, nil
}

func parseComponent(p *parser) (field.Core, []*field.Field, error) {
	c := &fieldtypes.Component{}
	var source *field.Field
	err := p.options(map[string]func() error{
		"field": func() (err error) {
			source, err = p.field()
			return err
		},
		"indices": func() (err error) {
			c.Indices, err = p.ints()
			return err
		},
	})
	if err != nil {
		return nil, nil, err
	}
	if err := p.require(missing(check{source == nil, "field"}, check{c.Indices == nil, "indices"})...); err != nil {
		return nil, nil, err
	}
	return c, []*field.Field{source}, nil
}

func parseXi(p *parser) (field.Core, []*field.Field, error) {
	c := &fieldtypes.Xi{}
	err := p.options(map[string]func() error{
		"dimension": func() (err error) {
			c.Dimension, err = p.integer()
			return err
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return c, nil, nil
}

func parseFiniteElement(p *parser) (field.Core, []*field.Field, error) {
	n := 1
	err := p.options(map[string]func() error{
		"number_of_components": func() (err error) {
			n, err = p.integer()
			return err
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return fieldtypes.NewFiniteElement(n), nil, nil
}

func parseSampleTexture(p *parser) (field.Core, []*field.Field, error) {
	var filename string
	var width, height int
	var coordinate *field.Field
	err := p.options(map[string]func() error{
		"image": func() (err error) {
			filename, err = p.word("an image file name")
			return err
		},
		"texture_coordinate_field": func() (err error) {
			coordinate, err = p.field()
			return err
		},
		"resize": func() (err error) {
			if width, err = p.integer(); err != nil {
				return err
			}
			height, err = p.integer()
			return err
		},
	})
	if err != nil {
		return nil, nil, err
	}
	if err := p.require(missing(check{filename == "", "image"}, check{coordinate == nil, "texture_coordinate_field"})...); err != nil {
		return nil, nil, err
	}
	c, err := fieldtypes.LoadSampleTexture(filename, width, height)
	if err != nil {
		return nil, nil, err
	}
	return c, []*field.Field{coordinate}, nil
}

// imageOptions are the options of the image field types.
type imageOptions struct {
	source, coordinate *field.Field
	params             imagefilter.Params
	sobel              imagefilter.SobelFilter
	contrast           imagefilter.Contrast
}

// imageKinds are the image field types, which differ in their options.
type imageKinds int32

const (
	imageSobel imageKinds = iota
	imageSpectrum
	imageContrast
)

// parseImage returns the parser of an image field type.
func parseImage(kind imageKinds) typeParser {
	return func(p *parser) (field.Core, []*field.Field, error) {
		var o imageOptions
		errors.Log(reflectx.SetFromDefaultTags(&o.sobel))
		errors.Log(reflectx.SetFromDefaultTags(&o.contrast))
		prm := &o.params
		opts := map[string]func() error{
			"field": func() (err error) {
				o.source, err = p.field()
				return err
			},
			"texture_coordinate_field": func() (err error) {
				o.coordinate, err = p.field()
				return err
			},
			"dimension": func() (err error) {
				prm.Dimension, err = p.integer()
				return err
			},
			"sizes": func() (err error) {
				prm.Sizes, err = p.ints()
				return err
			},
			"minimums": func() (err error) {
				prm.Minimums, err = p.floats()
				return err
			},
			"maximums": func() (err error) {
				prm.Maximums, err = p.floats()
				return err
			},
		}
		switch kind {
		case imageSobel:
			opts["radius"] = func() (err error) {
				o.sobel.Radius, err = p.integer()
				return err
			}
		case imageContrast:
			opts["mode"] = func() error {
				w, err := p.word("a contrast mode")
				if err != nil {
					return err
				}
				if o.contrast.Mode, err = imagefilter.ContrastModeFromString(w); err != nil {
					p.pos--
					return p.errorf("unknown contrast mode")
				}
				return nil
			}
			opts["low"] = func() (err error) {
				o.contrast.Low, err = p.number()
				return err
			}
			opts["high"] = func() (err error) {
				o.contrast.High, err = p.number()
				return err
			}
			opts["gamma"] = func() (err error) {
				o.contrast.Gamma, err = p.number()
				return err
			}
		}
		if err := p.options(opts); err != nil {
			return nil, nil, err
		}
		if err := p.require(missing(
			check{o.source == nil, "field"}, check{o.coordinate == nil, "texture_coordinate_field"},
			check{prm.Dimension == 0, "dimension"}, check{prm.Sizes == nil, "sizes"},
			check{prm.Minimums == nil, "minimums"}, check{prm.Maximums == nil, "maximums"})...); err != nil {
			return nil, nil, err
		}
		for _, v := range []struct {
			name string
			n    int
		}{{"sizes", len(prm.Sizes)}, {"minimums", len(prm.Minimums)}, {"maximums", len(prm.Maximums)}} {
			if v.n != prm.Dimension {
				return nil, nil, p.errorf("%d %s for dimension %d", v.n, v.name, prm.Dimension)
			}
		}
		sources := []*field.Field{o.source, o.coordinate}
		var c field.Core
		var err error
		switch kind {
		case imageSobel:
			c, err = imagefilter.NewSobelFilter(o.source, o.coordinate, o.sobel.Radius, o.params, p.opts.Locator)
		case imageSpectrum:
			c, err = imagefilter.NewPowerSpectrum(o.source, o.coordinate, o.params, p.opts.Locator)
		case imageContrast:
			c, err = imagefilter.NewContrast(o.source, o.coordinate, o.contrast, o.params, p.opts.Locator)
		}
		if err != nil {
			return nil, nil, &Error{Command: p.cmd, Index: p.pos, Err: err}
		}
		return c, sources, nil
	}
}

// check is an option that must be given, and whether it is absent.
type check struct {
	absent bool
	name   string
}

// missing returns the names of the absent options.
func missing(checks ...check) []string {
	var names []string
	for _, c := range checks {
		if c.absent {
			names = append(names, c.name)
		}
	}
	return names
}
