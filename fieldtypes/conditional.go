// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fieldtypes

import (
	"fmt"

	"github.com/hsorby/cmgui-sub001/field"
)

// If chooses each component from its second source where the
// condition (its first source) is non-zero, and from its third source
// elsewhere. The condition has either one component, which applies to
// all of them, or as many as the other sources.
// Only the sources that are chosen are evaluated.
type If struct{}

func (c *If) TypeName() string { return "if" }

func (c *If) NumComponents(sources []*field.Field) (int, error) {
	if err := checkNumSources(c, sources, 3); err != nil {
		return 0, err
	}
	nc, err := sameComponents(c, sources[1:])
	if err != nil {
		return 0, err
	}
	if cc := sources[0].NumComponents(); cc != 1 && cc != nc {
		return 0, fmt.Errorf("if: condition %v has %d components for %d: %w", sources[0], cc, nc, field.ErrDimensionMismatch)
	}
	return nc, nil
}

func (c *If) Evaluate(f *field.Field, ev *field.Evaluation) error {
	cond, err := f.Source(0).Evaluate(ev.Location)
	if err != nil {
		return err
	}
	choice := make([]int, len(ev.Values))
	var need [3]bool
	for i := range choice {
		cv := cond[0]
		if len(cond) > 1 {
			cv = cond[i]
		}
		choice[i] = 2
		if cv != 0 {
			choice[i] = 1
		}
		need[choice[i]] = true
	}
	var vals, derivs [3][]float64
	for s := 1; s <= 2; s++ {
		if !need[s] {
			continue
		}
		if vals[s], derivs[s], err = ev.EvaluateSource(f.Source(s)); err != nil {
			return err
		}
	}
	for i, s := range choice {
		ev.Values[i] = vals[s][i]
		if ev.NumXi > 0 {
			copy(ev.Derivatives[i*ev.NumXi:(i+1)*ev.NumXi], derivs[s][i*ev.NumXi:])
		}
	}
	return nil
}

func (c *If) CommandString(f *field.Field) string {
	return "if fields " + field.SourceNames(f)
}

func (c *If) Clone() field.Core { return &If{} }

func (c *If) SupportsDerivatives() bool { return true }
