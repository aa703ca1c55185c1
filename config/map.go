// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"strings"

	"github.com/z5labs/adam/config/key"
)

// Map is a nested map[string]any. It is both a [Source], applying every
// leaf value under its key chain, and the [Store] used by [Read].
type Map map[string]any

// Apply implements the [Source] interface.
func (m Map) Apply(store Store) error {
	return walk(m, store, nil)
}

func walk(m map[string]any, store Store, chain key.Chain) error {
	for k, v := range m {
		// copy so sibling keys never share a backing array
		next := append(chain[:len(chain):len(chain)], key.Name(k))

		sub, ok := v.(map[string]any)
		if ok {
			err := walk(sub, store, next)
			if err != nil {
				return err
			}
			continue
		}

		err := store.Set(next, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// UnknownKeyError occurs when a [key.Keyer] is neither a [key.Name] nor a [key.Chain].
type UnknownKeyError struct {
	Key key.Keyer
}

// Error implements the error interface.
func (e UnknownKeyError) Error() string {
	return fmt.Sprintf("config: unsupported key type %T: %s", e.Key, e.Key.Key())
}

// EmptyKeyError occurs when a value is set with an empty [key.Chain].
type EmptyKeyError struct {
	Value any
}

// Error implements the error interface.
func (e EmptyKeyError) Error() string {
	return fmt.Sprintf("config: cannot set value without a key: %v", e.Value)
}

// KeyConflictError occurs when a key chain passes through a key which
// already holds a non map value.
type KeyConflictError struct {
	Key string
}

// Error implements the error interface.
func (e KeyConflictError) Error() string {
	return fmt.Sprintf("config: key is not a map: %s", e.Key)
}

// Set implements the [Store] interface.
func (m Map) Set(k key.Keyer, v any) error {
	switch x := k.(type) {
	case key.Name:
		return m.setChain(key.Chain{x}, v)
	case key.Chain:
		return m.setChain(x, v)
	default:
		return UnknownKeyError{Key: k}
	}
}

func (m Map) setChain(chain key.Chain, v any) error {
	if len(chain) == 0 {
		return EmptyKeyError{Value: v}
	}

	cur := map[string]any(m)
	for i, k := range chain[:len(chain)-1] {
		next, ok := cur[k.Key()]
		if !ok {
			sub := make(map[string]any)
			cur[k.Key()] = sub
			cur = sub
			continue
		}
		sub, ok := next.(map[string]any)
		if !ok {
			return KeyConflictError{Key: chain[:i+1].Key()}
		}
		cur = sub
	}

	last := chain[len(chain)-1].Key()
	if sub, ok := v.(map[string]any); ok {
		return walk(sub, m, chain)
	}
	cur[last] = v
	return nil
}

// Overrides is a [Source] of dotted path assignments such as
// "server.port=9090". Values are kept as strings.
type Overrides []string

// InvalidOverrideError occurs when an override is not of the form path=value.
type InvalidOverrideError struct {
	Override string
}

// Error implements the error interface.
func (e InvalidOverrideError) Error() string {
	return fmt.Sprintf("config: override must be of the form path=value: %q", e.Override)
}

// Apply implements the [Source] interface.
func (o Overrides) Apply(store Store) error {
	for _, s := range o {
		path, value, ok := strings.Cut(s, "=")
		chain := key.Parse(path)
		if !ok || len(chain) == 0 {
			return InvalidOverrideError{Override: s}
		}
		err := store.Set(chain, value)
		if err != nil {
			return err
		}
	}
	return nil
}
