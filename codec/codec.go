// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package codec encodes handler results and decodes request bodies.
package codec

import (
	"encoding/json"
	"fmt"
)

// Codec converts between values and their wire representation.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(b []byte, v any) error
}

// MarshalError wraps an encoding failure.
type MarshalError struct {
	Cause error
}

// Error implements the error interface.
func (e MarshalError) Error() string {
	return fmt.Sprintf("codec: failed to marshal: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e MarshalError) Unwrap() error {
	return e.Cause
}

// UnmarshalError wraps a decoding failure.
type UnmarshalError struct {
	Cause error
}

// Error implements the error interface.
func (e UnmarshalError) Error() string {
	return fmt.Sprintf("codec: failed to unmarshal: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e UnmarshalError) Unwrap() error {
	return e.Cause
}

// JSON is a [Codec] for application/json.
type JSON struct{}

// Marshal implements the [Codec] interface.
func (JSON) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, MarshalError{Cause: err}
	}
	return b, nil
}

// Unmarshal implements the [Codec] interface.
func (JSON) Unmarshal(b []byte, v any) error {
	err := json.Unmarshal(b, v)
	if err != nil {
		return UnmarshalError{Cause: err}
	}
	return nil
}
