// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config contains the [Settings] that tune field evaluation,
// with defaults specified through `default:` struct tags and
// optional TOML or YAML settings files.
package config

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/hsorby/cmgui-sub001/base/errors"
	"github.com/hsorby/cmgui-sub001/base/logx"
	"github.com/hsorby/cmgui-sub001/base/reflectx"
)

// Settings are the tunable parameters of the field graph.
type Settings struct {

	// LogLevel is the minimum level of log messages that are shown:
	// debug, info, warn or error.
	LogLevel string `default:"warn" toml:"log_level" yaml:"log_level"`

	// ParallelChannels runs the image filter kernels on separate
	// goroutines per channel. Results are identical either way.
	ParallelChannels bool `default:"false" toml:"parallel_channels" yaml:"parallel_channels"`

	// FindXi controls the search for element locations
	// matching a coordinate value.
	FindXi FindXi `toml:"find_xi" yaml:"find_xi"`

	// Threshold is the adaptive threshold policy of the Sobel filter.
	Threshold Threshold `toml:"threshold" yaml:"threshold"`
}

// FindXi contains the Newton iteration settings used to
// find the element xi of a coordinate value.
type FindXi struct {

	// Tolerance is the maximum coordinate distance at which
	// a location is considered found.
	Tolerance float64 `default:"1e-9" toml:"tolerance" yaml:"tolerance"`

	// MaxIterations is the maximum number of Newton steps per element.
	MaxIterations int `default:"50" toml:"max_iterations" yaml:"max_iterations"`

	// XiTolerance is how far outside [0,1] a converged xi may lie
	// and still be inside the element.
	XiTolerance float64 `default:"1e-6" toml:"xi_tolerance" yaml:"xi_tolerance"`
}

// Threshold is the histogram policy that binarizes the normalized
// Sobel gradient magnitude.
type Threshold struct {

	// Floor is the lower edge of the histogram; magnitudes at or
	// below it are never counted.
	Floor float64 `default:"0.2" toml:"floor" yaml:"floor"`

	// Bins is the number of equal histogram bins over (Floor, 1].
	Bins int `default:"8" toml:"bins" yaml:"bins"`

	// Fraction of the peak bin count that the cumulative count,
	// taken from the top bin down, must exceed to fix the cutoff.
	// It must be below one, or a single full bin never exceeds it.
	Fraction float64 `default:"0.999" toml:"fraction" yaml:"fraction"`
}

// New returns new [Settings] with all default values set.
func New() *Settings {
	s := &Settings{}
	errors.Log(reflectx.SetFromDefaultTags(s))
	return s
}

// Validate returns an error if any setting is out of range.
func (s *Settings) Validate() error {
	var errs []error
	if _, err := logx.LevelFromString(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if s.FindXi.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("config: find_xi.tolerance must be positive, not %g", s.FindXi.Tolerance))
	}
	if s.FindXi.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("config: find_xi.max_iterations must be positive, not %d", s.FindXi.MaxIterations))
	}
	if s.FindXi.XiTolerance < 0 {
		errs = append(errs, fmt.Errorf("config: find_xi.xi_tolerance must not be negative, not %g", s.FindXi.XiTolerance))
	}
	if s.Threshold.Floor < 0 || s.Threshold.Floor >= 1 {
		errs = append(errs, fmt.Errorf("config: threshold.floor must be in [0,1), not %g", s.Threshold.Floor))
	}
	if s.Threshold.Bins <= 0 {
		errs = append(errs, fmt.Errorf("config: threshold.bins must be positive, not %d", s.Threshold.Bins))
	}
	if s.Threshold.Fraction <= 0 || s.Threshold.Fraction >= 1 {
		errs = append(errs, fmt.Errorf("config: threshold.fraction must be in (0,1), not %g", s.Threshold.Fraction))
	}
	return errors.Join(errs...)
}

// Apply installs the logging level of the settings as the
// default slog logger.
func (s *Settings) Apply() error {
	lev, err := logx.LevelFromString(s.LogLevel)
	if err != nil {
		return err
	}
	logx.UserLevel = lev
	logx.SetDefaultLogger()
	slog.Debug("config: applied settings", "logLevel", lev, "parallelChannels", s.ParallelChannels)
	return nil
}

var current atomic.Pointer[Settings]

func init() {
	current.Store(New())
}

// Default returns the current default settings, used by all
// packages that are not given explicit settings.
// It must be treated as read-only; use [SetDefault] to change it.
func Default() *Settings {
	return current.Load()
}

// SetDefault validates and installs the given settings as the default.
func SetDefault(s *Settings) error {
	if s == nil {
		return errors.New("config.SetDefault: nil settings")
	}
	if err := s.Validate(); err != nil {
		return err
	}
	current.Store(s)
	return nil
}
