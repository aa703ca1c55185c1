// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/z5labs/adam/config/key"

	"github.com/stretchr/testify/assert"
)

type readFunc func([]byte) (int, error)

func (f readFunc) Read(b []byte) (int, error) {
	return f(b)
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestDocument_Apply(t *testing.T) {
	t.Run("will close the underlying reader", func(t *testing.T) {
		r := &closeTracker{Reader: strings.NewReader(`hello: world`)}

		m := make(Map)
		err := FromYaml(r).Apply(m)
		if !assert.Nil(t, err) {
			return
		}
		if !assert.True(t, r.closed) {
			return
		}
		if !assert.Equal(t, Map{"hello": "world"}, m) {
			return
		}
	})

	t.Run("will return an error", func(t *testing.T) {
		testCases := []struct {
			Name   string
			Source func(io.Reader) Document
			Valid  string
		}{
			{Name: "yaml", Source: FromYaml, Valid: `hello: world`},
			{Name: "json", Source: FromJson, Valid: `{"hello": "world"}`},
		}

		for _, testCase := range testCases {
			t.Run("if the underlying "+testCase.Name+" reader fails", func(t *testing.T) {
				readErr := errors.New("failed to read")
				r := readFunc(func(b []byte) (int, error) {
					return 0, readErr
				})

				err := testCase.Source(r).Apply(make(Map))
				if !assert.ErrorIs(t, err, readErr) {
					return
				}
			})

			t.Run("if the "+testCase.Name+" is invalid", func(t *testing.T) {
				err := testCase.Source(strings.NewReader(`hello`)).Apply(make(Map))

				var derr DecodeError
				if !assert.ErrorAs(t, err, &derr) {
					return
				}
				if !assert.Equal(t, testCase.Name, derr.Format) {
					return
				}
				if !assert.NotNil(t, derr.Unwrap()) {
					return
				}
			})

			t.Run("if the store fails to set a "+testCase.Name+" value", func(t *testing.T) {
				setErr := errors.New("failed to set")
				store := storeFunc(func(k key.Keyer, v any) error {
					return setErr
				})

				err := testCase.Source(strings.NewReader(testCase.Valid)).Apply(store)
				if !assert.ErrorIs(t, err, setErr) {
					return
				}
			})
		}
	})
}
