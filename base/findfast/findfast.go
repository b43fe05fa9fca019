// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package findfast implements a bidirectional slice search that
// saves time when there is a rough idea of where an item might be,
// such as the position where the previous search succeeded.
package findfast

// FindFunc returns the index of the first item in the slice that
// matches according to the given function, searching outward from the
// optional starting index: the item at the start is tried first, then
// alternately the items after and before it. Without a valid starting
// index it searches from the beginning. It returns -1 if none match.
func FindFunc[T any](s []T, match func(e T) bool, startIndex ...int) int {
	n := len(s)
	si := 0
	if len(startIndex) > 0 && startIndex[0] >= 0 && startIndex[0] < n {
		si = startIndex[0]
	}
	if si == 0 {
		for idx, e := range s {
			if match(e) {
				return idx
			}
		}
		return -1
	}
	if match(s[si]) {
		return si
	}
	for d := 1; si+d < n || si-d >= 0; d++ {
		if ui := si + d; ui < n && match(s[ui]) {
			return ui
		}
		if di := si - d; di >= 0 && match(s[di]) {
			return di
		}
	}
	return -1
}
