// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCookie_String(t *testing.T) {
	testCases := []struct {
		Name   string
		Cookie Cookie
		Out    string
	}{
		{
			Name:   "name and value only",
			Cookie: Cookie{Name: "a", Value: "1"},
			Out:    "a=1",
		},
		{
			Name: "every attribute",
			Cookie: Cookie{
				Name:     "session",
				Value:    "abc",
				MaxAge:   3600,
				Domain:   "example.com",
				Path:     "/",
				Secure:   true,
				HttpOnly: true,
			},
			Out: "session=abc; Max-Age=3600; Domain=example.com; Path=/; Secure; HttpOnly",
		},
		{
			Name:   "negative max age",
			Cookie: Cookie{Name: "gone", Value: "", MaxAge: -1},
			Out:    "gone=; Max-Age=0",
		},
	}

	for _, testCase := range testCases {
		t.Run("will render "+testCase.Name, func(t *testing.T) {
			if !assert.Equal(t, testCase.Out, testCase.Cookie.String()) {
				return
			}
		})
	}
}

func TestParseCookies(t *testing.T) {
	t.Run("will split pairs and trim whitespace", func(t *testing.T) {
		cookies := parseCookies("a=1; b=x=y ;c=")

		expected := []Cookie{
			{Name: "a", Value: "1"},
			{Name: "b", Value: "x=y"},
			{Name: "c", Value: ""},
		}
		if !assert.Equal(t, expected, cookies) {
			return
		}
	})

	t.Run("will skip segments without a value", func(t *testing.T) {
		cookies := parseCookies("flag; a=1;;")

		if !assert.Equal(t, []Cookie{{Name: "a", Value: "1"}}, cookies) {
			return
		}
	})
}
