// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Formats are the supported settings file formats.
type Formats int32

const (
	// TOML is the default settings file format.
	TOML Formats = iota

	// YAML settings files end in .yaml or .yml.
	YAML
)

// FormatFromFilename returns the format implied by the extension
// of the given filename, defaulting to [TOML].
func FormatFromFilename(filename string) Formats {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return TOML
	}
}

// Open reads settings from the given file on top of the values
// already in s (typically defaults from [New]), and validates them.
// A leading ~ in the filename is the home directory.
func Open(s *Settings, filename string) error {
	filename, err := homedir.Expand(filename)
	if err != nil {
		return err
	}
	fp, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	return Read(s, bufio.NewReader(fp), FormatFromFilename(filename))
}

// Read reads settings in the given format from the given reader.
func Read(s *Settings, r io.Reader, format Formats) error {
	var err error
	switch format {
	case YAML:
		err = yaml.NewDecoder(r).Decode(s)
		if err == io.EOF {
			err = nil
		}
	default:
		err = toml.NewDecoder(r).DisallowUnknownFields().Decode(s)
	}
	if err != nil {
		return fmt.Errorf("config: reading settings: %w", err)
	}
	return s.Validate()
}

// Save writes the settings to the given file, in the
// format implied by its extension.
func Save(s *Settings, filename string) error {
	filename, err := homedir.Expand(filename)
	if err != nil {
		return err
	}
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	bw := bufio.NewWriter(fp)
	if err := Write(s, bw, FormatFromFilename(filename)); err != nil {
		return err
	}
	return bw.Flush()
}

// Write writes the settings in the given format to the given writer.
func Write(s *Settings, w io.Writer, format Formats) error {
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(s)
	default:
		return toml.NewEncoder(w).Encode(s)
	}
}
