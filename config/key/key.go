// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package key names the location of a value in a config store.
package key

import "strings"

// Keyer is implemented by every key type a config store understands.
type Keyer interface {
	Key() string
}

// Name is a single segment key.
type Name string

// Key implements the [Keyer] interface.
func (k Name) Key() string {
	return string(k)
}

// Chain is a path of nested keys, e.g. server.port.
type Chain []Keyer

// Key implements the [Keyer] interface.
func (c Chain) Key() string {
	ss := make([]string, len(c))
	for i, k := range c {
		ss[i] = k.Key()
	}
	return strings.Join(ss, ".")
}

// Parse splits a dotted path into a [Chain]. Empty segments are dropped.
func Parse(path string) Chain {
	var c Chain
	for _, s := range strings.Split(path, ".") {
		if s == "" {
			continue
		}
		c = append(c, Name(s))
	}
	return c
}
