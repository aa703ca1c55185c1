// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package try folds panics and close failures into ordinary error returns.
package try

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// PanicError wraps a value recovered from a panic.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("recovered from panic: %v", e.Value)
}

// Unwrap returns the panic value if it was itself an error.
func (e PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Recover must be deferred directly. A recovered panic is joined
// with whatever error the surrounding function was already returning.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	*err = errors.Join(*err, PanicError{Value: r})
}

// Call runs f and reports a panic inside it as a PanicError.
func Call[T any](f func() (T, error)) (v T, err error) {
	defer Recover(&err)

	return f()
}

// CloseError occurs when closing a resource fails.
type CloseError struct {
	Cause error
}

// Error implements the error interface.
func (e CloseError) Error() string {
	return fmt.Sprintf("failed to close: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e CloseError) Unwrap() error {
	return e.Cause
}

// Close closes v if it implements io.Closer. Closing an already
// closed network connection is not reported.
func Close(err *error, v any) {
	c, ok := v.(io.Closer)
	if !ok || c == nil {
		return
	}

	cerr := c.Close()
	if cerr == nil || errors.Is(cerr, net.ErrClosed) {
		return
	}
	*err = errors.Join(*err, CloseError{Cause: cerr})
}
