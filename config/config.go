// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config merges layered configuration sources into a single
// key value store and decodes it into Go types.
package config

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/z5labs/adam/config/key"

	"github.com/go-viper/mapstructure/v2"
)

// Store receives the key value pairs produced by a [Source].
type Store interface {
	Set(key.Keyer, any) error
}

// Source writes its values into a [Store].
type Source interface {
	Apply(Store) error
}

// SourceFunc is an adapter to allow the use of ordinary functions as [Source]s.
type SourceFunc func(Store) error

// Apply implements the [Source] interface.
func (f SourceFunc) Apply(store Store) error {
	return f(store)
}

// SourceError reports which source, by position, failed to apply.
type SourceError struct {
	Index int
	Cause error
}

// Error implements the error interface.
func (e SourceError) Error() string {
	return fmt.Sprintf("config: failed to apply source %d: %s", e.Index, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e SourceError) Unwrap() error {
	return e.Cause
}

// Manager holds the merged result of one or more sources.
type Manager struct {
	store Map
}

// Read applies every source, in order, to an empty store. Later
// sources override the keys set by earlier ones.
func Read(srcs ...Source) (*Manager, error) {
	store := make(Map)
	for i, src := range srcs {
		err := src.Apply(store)
		if err != nil {
			return nil, SourceError{Index: i, Cause: err}
		}
	}
	return &Manager{store: store}, nil
}

// Unmarshal decodes the merged config into v, which must be a pointer.
// Struct fields are matched using the "config" tag. Strings are decoded
// into [time.Duration]s and [encoding.TextUnmarshaler]s.
func (m *Manager) Unmarshal(v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		Result:           v,
		WeaklyTypedInput: true,
		DecodeHook: composeDecodeHooks(
			textUnmarshalerHook(),
			durationHook(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(m.store))
}

var errHookSkipped = errors.New("decode hook does not apply")

// TypeCoercionError occurs when a config value cannot be converted
// into the type of the field it is decoded into.
type TypeCoercionError struct {
	From  reflect.Type
	To    reflect.Type
	Cause error
}

// Error implements the error interface.
func (e TypeCoercionError) Error() string {
	return fmt.Sprintf("config: failed to coerce %s into %s: %s", e.From, e.To, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e TypeCoercionError) Unwrap() error {
	return e.Cause
}

func composeDecodeHooks(hooks ...mapstructure.DecodeHookFuncType) mapstructure.DecodeHookFuncValue {
	return func(from, to reflect.Value) (any, error) {
		for _, hook := range hooks {
			v, err := hook(from.Type(), to.Type(), from.Interface())
			if errors.Is(err, errHookSkipped) {
				continue
			}
			if err != nil {
				return nil, TypeCoercionError{From: from.Type(), To: to.Type(), Cause: err}
			}
			return v, nil
		}
		return from.Interface(), nil
	}
}

func textUnmarshalerHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String {
			return nil, errHookSkipped
		}
		ptr := reflect.New(to)
		u, ok := ptr.Interface().(encoding.TextUnmarshaler)
		if !ok {
			return nil, errHookSkipped
		}
		err := u.UnmarshalText([]byte(data.(string)))
		if err != nil {
			return nil, err
		}
		return ptr.Elem().Interface(), nil
	}
}

var durationType = reflect.TypeOf(time.Duration(0))

func durationHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return nil, errHookSkipped
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		default:
			return nil, errHookSkipped
		}
	}
}
