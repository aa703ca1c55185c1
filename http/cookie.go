// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"errors"
	"strconv"
	"strings"
)

var ErrNoCookie = errors.New("http: named cookie not present")

// Cookie is a single name/value pair. Only Name and Value are set on
// cookies parsed from a request, the remaining attributes are used when
// sending cookies with a response.
type Cookie struct {
	Name  string
	Value string

	// MaxAge of zero means the attribute is omitted and a negative
	// value is sent as "Max-Age=0".
	MaxAge   int
	Domain   string
	Path     string
	Secure   bool
	HttpOnly bool
}

// String renders the cookie as the value of a Set-Cookie header.
func (c Cookie) String() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteByte('=')
	sb.WriteString(c.Value)
	switch {
	case c.MaxAge > 0:
		sb.WriteString("; Max-Age=")
		sb.WriteString(strconv.Itoa(c.MaxAge))
	case c.MaxAge < 0:
		sb.WriteString("; Max-Age=0")
	}
	if c.Domain != "" {
		sb.WriteString("; Domain=")
		sb.WriteString(c.Domain)
	}
	if c.Path != "" {
		sb.WriteString("; Path=")
		sb.WriteString(c.Path)
	}
	if c.Secure {
		sb.WriteString("; Secure")
	}
	if c.HttpOnly {
		sb.WriteString("; HttpOnly")
	}
	return sb.String()
}

// parseCookies parses the value of a Cookie request header.
// Segments without '=' are skipped.
func parseCookies(s string) []Cookie {
	var cookies []Cookie
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		name, value, found := strings.Cut(part, "=")
		if !found || name == "" {
			continue
		}
		cookies = append(cookies, Cookie{Name: name, Value: value})
	}
	return cookies
}
