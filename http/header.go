// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import "strings"

// Header is an insertion ordered set of header fields. Lookups by
// name are case-insensitive while the original spelling is kept for
// iteration and serialization.
type Header struct {
	names  []string
	values map[string]string
	index  map[string]string
}

// Set stores value under name. Setting a name that was already set
// replaces its value without changing its position.
func (h *Header) Set(name, value string) {
	if h.values == nil {
		h.values = make(map[string]string)
		h.index = make(map[string]string)
	}
	if _, exists := h.values[name]; !exists {
		h.names = append(h.names, name)
	}
	h.values[name] = value
	h.index[strings.ToLower(name)] = name
}

// Get returns the value stored for name, ignoring case.
func (h *Header) Get(name string) (string, bool) {
	if h.index == nil {
		return "", false
	}
	exact, ok := h.index[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	v, ok := h.values[exact]
	return v, ok
}

// Names returns the header names in insertion order.
func (h *Header) Names() []string {
	names := make([]string, len(h.names))
	copy(names, h.names)
	return names
}

// Len is the number of distinct header names.
func (h *Header) Len() int {
	return len(h.names)
}

// Each calls f for every header in insertion order.
func (h *Header) Each(f func(name, value string)) {
	for _, name := range h.names {
		f(name, h.values[name])
	}
}
