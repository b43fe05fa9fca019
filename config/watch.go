// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
)

// Watch opens the given settings file, installs it as the default and
// applies it, and then does so again each time the file is written,
// until the context is done. Settings that fail to load or validate
// are logged and leave the default unchanged. If changed is non-nil it
// is called with each new default. Image fields already built keep
// their images until invalidated, which changed can do with
// imagefilter.InvalidateAll.
func Watch(ctx context.Context, filename string, changed func(s *Settings)) error {
	filename, err := homedir.Expand(filename)
	if err != nil {
		return err
	}
	filename = filepath.Clean(filename)
	if err := load(filename, changed); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// editors often replace the file, so the directory is watched
	if err := watcher.Add(filepath.Dir(filename)); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filename || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := load(filename, changed); err != nil {
				slog.Error("config: reloading settings", "file", filename, "err", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: settings file watcher", "file", filename, "err", err)
		}
	}
}

// load opens, installs and applies the given settings file.
func load(filename string, changed func(s *Settings)) error {
	s := New()
	if err := Open(s, filename); err != nil {
		return err
	}
	if err := SetDefault(s); err != nil {
		return err
	}
	if err := s.Apply(); err != nil {
		return err
	}
	slog.Info("config: loaded settings", "file", filename)
	if changed != nil {
		changed(s)
	}
	return nil
}
