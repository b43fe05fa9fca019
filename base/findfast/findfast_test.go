// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package findfast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindFunc(t *testing.T) {
	s := []int{0, 1, 2, 3, 4, 5, 6, 7}
	is := func(v int) func(int) bool { return func(e int) bool { return e == v } }
	for v := range s {
		for _, start := range []int{-1, 0, 3, 7, 20} {
			assert.Equal(t, v, FindFunc(s, is(v), start), "v %d start %d", v, start)
		}
		assert.Equal(t, v, FindFunc(s, is(v)))
	}
	assert.Equal(t, -1, FindFunc(s, is(8), 4))
	assert.Equal(t, -1, FindFunc([]int{}, is(0), 2))
}

func TestFindFuncOrder(t *testing.T) {
	var tried []int
	s := []int{0, 1, 2, 3, 4, 5}
	FindFunc(s, func(e int) bool {
		tried = append(tried, e)
		return false
	}, 4)
	assert.Equal(t, []int{4, 5, 3, 2, 1, 0}, tried)
}
