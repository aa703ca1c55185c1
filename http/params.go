// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrMalformedParams = errors.New("http: malformed parameters")

// ParamsError describes which pair of a query or form body could
// not be parsed.
type ParamsError struct {
	Pair  string
	Cause error
}

// Error implements the error interface.
func (e ParamsError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("http: malformed parameter pair: %q", e.Pair)
	}
	return fmt.Sprintf("http: malformed parameter pair: %q: %s", e.Pair, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e ParamsError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrMalformedParams.
func (e ParamsError) Is(target error) bool {
	return target == ErrMalformedParams
}

// Params maps a parameter name to every value it was given, in the
// order the values were seen.
type Params struct {
	names  []string
	values map[string][]string
}

// Add appends value to the values of name.
func (p *Params) Add(name, value string) {
	if p.values == nil {
		p.values = make(map[string][]string)
	}
	if _, exists := p.values[name]; !exists {
		p.names = append(p.names, name)
	}
	p.values[name] = append(p.values[name], value)
}

// Get returns the first value of name.
func (p *Params) Get(name string) (string, bool) {
	vs := p.values[name]
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Values returns every value of name. The result is never nil.
func (p *Params) Values(name string) []string {
	vs := p.values[name]
	out := make([]string, len(vs))
	copy(out, vs)
	return out
}

// Has reports whether name was given at least once.
func (p *Params) Has(name string) bool {
	return len(p.values[name]) > 0
}

// Names returns the parameter names in first seen order.
func (p *Params) Names() []string {
	names := make([]string, len(p.names))
	copy(names, p.names)
	return names
}

// Map returns a copy of every name and its values.
func (p *Params) Map() map[string][]string {
	m := make(map[string][]string, len(p.values))
	for name, vs := range p.values {
		m[name] = append([]string(nil), vs...)
	}
	return m
}

// Encode renders the params in "a=1&a=2&b=3" form, escaping names
// and values.
func (p *Params) Encode() string {
	var sb strings.Builder
	for _, name := range p.names {
		for _, v := range p.values[name] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(name))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(v))
		}
	}
	return sb.String()
}

// ParseParams parses s as "k=v" pairs joined by '&' and appends
// them to p. Empty segments are ignored. A segment without '=' is
// an error. Keys and values are percent-decoded separately.
func (p *Params) ParseParams(s string) error {
	for _, pair := range strings.Split(s, "&") {
		if pair == "" {
			continue
		}
		rawName, rawValue, found := strings.Cut(pair, "=")
		if !found {
			return ParamsError{Pair: pair}
		}
		name, err := url.QueryUnescape(rawName)
		if err != nil {
			return ParamsError{Pair: pair, Cause: err}
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return ParamsError{Pair: pair, Cause: err}
		}
		p.Add(name, value)
	}
	return nil
}

// ParseParams is a convenience wrapper around [Params.ParseParams]
// for a fresh set of params.
func ParseParams(s string) (*Params, error) {
	var p Params
	if err := p.ParseParams(s); err != nil {
		return nil, err
	}
	return &p, nil
}
