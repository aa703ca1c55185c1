// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeader(t *testing.T) {
	t.Run("will look up names ignoring case", func(t *testing.T) {
		var h Header
		h.Set("Content-Type", "application/json")

		v, ok := h.Get("content-type")
		if !assert.True(t, ok) {
			return
		}
		if !assert.Equal(t, "application/json", v) {
			return
		}
	})

	t.Run("will keep insertion order", func(t *testing.T) {
		var h Header
		h.Set("B", "1")
		h.Set("A", "2")
		h.Set("C", "3")
		h.Set("A", "4")

		if !assert.Equal(t, []string{"B", "A", "C"}, h.Names()) {
			return
		}

		v, _ := h.Get("a")
		if !assert.Equal(t, "4", v) {
			return
		}
	})

	t.Run("will report a missing name", func(t *testing.T) {
		var h Header

		_, ok := h.Get("Host")
		if !assert.False(t, ok) {
			return
		}
	})
}
