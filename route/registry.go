// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrEmptyPath  = errors.New("route: path must not be empty")
	ErrNilHandler = errors.New("route: handler must not be nil")
)

// DuplicateRouteError is returned when two routes share a path.
type DuplicateRouteError struct {
	Path string
}

// Error implements the error interface.
func (e DuplicateRouteError) Error() string {
	return fmt.Sprintf("route: duplicate route for path: %s", e.Path)
}

// SourceError wraps a failure to load routes from a [Source].
type SourceError struct {
	Cause error
}

// Error implements the error interface.
func (e SourceError) Error() string {
	return fmt.Sprintf("route: failed to load routes: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e SourceError) Unwrap() error {
	return e.Cause
}

// Registry maps exact paths to routes. It is never modified after
// [NewRegistry] returns so it is safe for concurrent lookups.
type Registry struct {
	routes map[string]Route
}

// NewRegistry loads every route from srcs.
func NewRegistry(srcs ...Source) (*Registry, error) {
	reg := &Registry{
		routes: make(map[string]Route),
	}
	for _, src := range srcs {
		routes, err := src.Routes()
		if err != nil {
			return nil, SourceError{Cause: err}
		}
		for _, r := range routes {
			if r.Path == "" {
				return nil, ErrEmptyPath
			}
			if r.Handler == nil {
				return nil, fmt.Errorf("%w: %s", ErrNilHandler, r.Path)
			}
			if _, exists := reg.routes[r.Path]; exists {
				return nil, DuplicateRouteError{Path: r.Path}
			}
			reg.routes[r.Path] = r
		}
	}
	return reg, nil
}

// Lookup returns the route registered for path.
func (r *Registry) Lookup(path string) (Route, bool) {
	rt, ok := r.routes[path]
	return rt, ok
}

// Paths returns every registered path in sorted order.
func (r *Registry) Paths() []string {
	paths := make([]string, 0, len(r.routes))
	for path := range r.routes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Len is the number of registered routes.
func (r *Registry) Len() int {
	return len(r.routes)
}
