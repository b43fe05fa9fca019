// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import (
	"strconv"
	"strings"
	"unicode"
)

// QuoteName returns the name as a command token, quoting it
// if it is empty or contains spaces or quotes.
func QuoteName(name string) string {
	if name == "" || strings.ContainsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '"' || r == '\'' || r == '\\' || r == '#'
	}) {
		return strconv.Quote(name)
	}
	return name
}

// FormatFloats returns the values as space-separated command tokens
// that parse back to exactly the same values.
func FormatFloats(vals []float64) string {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(strs, " ")
}

// FormatInts returns the values as space-separated command tokens.
func FormatInts(vals []int) string {
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = strconv.Itoa(v)
	}
	return strings.Join(strs, " ")
}

// SourceNames returns the quoted names of the sources of f,
// separated by spaces.
func SourceNames(f *Field) string {
	strs := make([]string, len(f.sources))
	for i, s := range f.sources {
		strs[i] = QuoteName(s.Name())
	}
	return strings.Join(strs, " ")
}
