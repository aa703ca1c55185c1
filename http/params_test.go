// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseParams(t *testing.T) {
	t.Run("will preserve names, values and their order", func(t *testing.T) {
		testCases := []struct {
			Name  string
			Query string
			Names []string
			Map   map[string][]string
		}{
			{
				Name:  "single pair",
				Query: "id=7",
				Names: []string{"id"},
				Map:   map[string][]string{"id": {"7"}},
			},
			{
				Name:  "repeated names",
				Query: "ids=1&name=a&ids=2&ids=3",
				Names: []string{"ids", "name"},
				Map:   map[string][]string{"ids": {"1", "2", "3"}, "name": {"a"}},
			},
			{
				Name:  "empty value",
				Query: "a=&b=2",
				Names: []string{"a", "b"},
				Map:   map[string][]string{"a": {""}, "b": {"2"}},
			},
			{
				Name:  "escaped text",
				Query: "na%26me=hello+world&x=a%3Db",
				Names: []string{"na&me", "x"},
				Map:   map[string][]string{"na&me": {"hello world"}, "x": {"a=b"}},
			},
			{
				Name:  "value containing equals",
				Query: "expr=a=b",
				Names: []string{"expr"},
				Map:   map[string][]string{"expr": {"a=b"}},
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				p, err := ParseParams(testCase.Query)
				if !assert.Nil(t, err) {
					return
				}
				if !assert.Equal(t, testCase.Names, p.Names()) {
					return
				}
				if !assert.Equal(t, testCase.Map, p.Map()) {
					return
				}

				again, err := ParseParams(p.Encode())
				if !assert.Nil(t, err) {
					return
				}
				if !assert.Equal(t, p.Names(), again.Names()) {
					return
				}
				if !assert.Equal(t, p.Map(), again.Map()) {
					return
				}
			})
		}
	})

	t.Run("will skip empty segments", func(t *testing.T) {
		p, err := ParseParams("&a=1&&b=2&")
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, []string{"a", "b"}, p.Names()) {
			return
		}
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if a pair has no equals sign", func(t *testing.T) {
			_, err := ParseParams("a=1&broken")

			var perr ParamsError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.ErrorIs(t, err, ErrMalformedParams) {
				return
			}
			if !assert.Equal(t, "broken", perr.Pair) {
				return
			}
		})

		t.Run("if a value has a bad escape", func(t *testing.T) {
			_, err := ParseParams("a=%zz")
			if !assert.ErrorIs(t, err, ErrMalformedParams) {
				return
			}
		})
	})
}

func TestParams_Get(t *testing.T) {
	t.Run("will return the first of all values", func(t *testing.T) {
		p, err := ParseParams("a=3&a=1&a=2")
		if !assert.Nil(t, err) {
			return
		}

		first, ok := p.Get("a")
		if !assert.True(t, ok) {
			return
		}
		if !assert.Equal(t, p.Values("a")[0], first) {
			return
		}
	})

	t.Run("will report absence", func(t *testing.T) {
		var p Params

		_, ok := p.Get("missing")
		if !assert.False(t, ok) {
			return
		}

		values := p.Values("missing")
		if !assert.NotNil(t, values) {
			return
		}
		if !assert.Empty(t, values) {
			return
		}
	})
}
