// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := New()
	assert.Equal(t, "warn", s.LogLevel)
	assert.False(t, s.ParallelChannels)
	assert.Equal(t, 0.2, s.Threshold.Floor)
	assert.Equal(t, 8, s.Threshold.Bins)
	assert.Equal(t, 0.999, s.Threshold.Fraction)
	assert.Equal(t, 50, s.FindXi.MaxIterations)
	assert.NoError(t, s.Validate())
	assert.Equal(t, 8, Default().Threshold.Bins)
}

func TestReadTOML(t *testing.T) {
	s := New()
	src := `
log_level = "debug"
parallel_channels = true

[threshold]
bins = 10
`
	require.NoError(t, Read(s, strings.NewReader(src), TOML))
	assert.Equal(t, "debug", s.LogLevel)
	assert.True(t, s.ParallelChannels)
	assert.Equal(t, 10, s.Threshold.Bins)
	assert.Equal(t, 0.2, s.Threshold.Floor)
}

func TestReadYAML(t *testing.T) {
	s := New()
	src := "find_xi:\n  max_iterations: 12\n"
	require.NoError(t, Read(s, strings.NewReader(src), YAML))
	assert.Equal(t, 12, s.FindXi.MaxIterations)
	assert.Equal(t, 1e-9, s.FindXi.Tolerance)
}

func TestReadInvalid(t *testing.T) {
	s := New()
	err := Read(s, strings.NewReader("[threshold]\nfraction = 2.0\n"), TOML)
	assert.ErrorContains(t, err, "threshold.fraction")
	err = Read(New(), strings.NewReader("[threshold]\nfraction = 1.0\n"), TOML)
	assert.ErrorContains(t, err, "threshold.fraction")
	assert.Error(t, Read(New(), strings.NewReader("unknown_key = 1\n"), TOML))
}

func TestSaveOpen(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"settings.toml", "settings.yaml"} {
		s := New()
		s.Threshold.Bins = 16
		s.LogLevel = "error"
		fn := filepath.Join(dir, name)
		require.NoError(t, Save(s, fn))
		o := New()
		require.NoError(t, Open(o, fn))
		assert.Equal(t, s, o, name)
	}
	assert.Error(t, Open(New(), filepath.Join(dir, "missing.toml")))
}

func TestWriteFormat(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, Write(New(), &b, TOML))
	assert.Contains(t, b.String(), "log_level")
	assert.Equal(t, YAML, FormatFromFilename("a.YML"))
	assert.Equal(t, TOML, FormatFromFilename("a.cfg"))
}

func TestSetDefault(t *testing.T) {
	old := Default()
	defer func() { require.NoError(t, SetDefault(old)) }()
	s := New()
	s.Threshold.Bins = 0
	assert.Error(t, SetDefault(s))
	assert.Error(t, SetDefault(nil))
	s.Threshold.Bins = 4
	require.NoError(t, SetDefault(s))
	assert.Equal(t, 4, Default().Threshold.Bins)
}

func TestWatch(t *testing.T) {
	old := Default()
	t.Cleanup(func() {
		require.NoError(t, SetDefault(old))
		require.NoError(t, old.Apply())
	})
	fn := filepath.Join(t.TempDir(), "settings.toml")
	s := New()
	s.Threshold.Bins = 6
	require.NoError(t, Save(s, fn))

	var bins atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, fn, func(s *Settings) { bins.Store(int64(s.Threshold.Bins)) })
	}()
	assert.Eventually(t, func() bool { return bins.Load() == 6 }, 5*time.Second, 10*time.Millisecond)

	s.Threshold.Bins = 12
	assert.Eventually(t, func() bool {
		return Save(s, fn) == nil && bins.Load() == 12
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}

	assert.Error(t, Watch(context.Background(), filepath.Join(t.TempDir(), "missing.toml"), nil))
}
