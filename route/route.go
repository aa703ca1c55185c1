// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package route describes handlers, the arguments they take and the
// exact paths they are served on.
package route

import (
	"context"
	"fmt"
	"reflect"
)

// Kind describes where the value of a handler argument comes from.
type Kind int

const (
	// KindRequest passes the request itself.
	KindRequest Kind = iota

	// KindResponse passes the response being built.
	KindResponse

	// KindScalar converts the first value of a named parameter.
	KindScalar

	// KindArray converts every value of a named parameter.
	KindArray

	// KindBody decodes a JSON request body.
	KindBody
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindBody:
		return "body"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Type is the declared type of a scalar or array argument.
type Type int

const (
	String  Type = iota // string
	Int                 // int32
	Long                // int64
	Byte                // int8
	Bool                // bool
	Double              // float64
	Float               // float32
	Short               // int16
	Char                // rune
	Decimal             // decimal.Decimal
	BigInt              // *big.Int
)

var typeNames = [...]string{
	String:  "string",
	Int:     "int",
	Long:    "long",
	Byte:    "byte",
	Bool:    "bool",
	Double:  "double",
	Float:   "float",
	Short:   "short",
	Char:    "char",
	Decimal: "decimal",
	BigInt:  "bigint",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Param describes a single positional handler argument.
type Param struct {
	Name string
	Kind Kind
	Type Type

	// New and Zero are only set for KindBody. New returns a fresh
	// pointer to decode into and Zero the typed nil used when no
	// body was sent.
	New  func() any
	Zero any
}

// Request describes an argument bound to the request.
func Request() Param {
	return Param{Name: "request", Kind: KindRequest}
}

// Response describes an argument bound to the response.
func Response() Param {
	return Param{Name: "response", Kind: KindResponse}
}

// Scalar describes an argument bound to the first value of the named parameter.
func Scalar(name string, t Type) Param {
	return Param{Name: name, Kind: KindScalar, Type: t}
}

// Array describes an argument bound to all values of the named parameter.
func Array(name string, t Type) Param {
	return Param{Name: name, Kind: KindArray, Type: t}
}

// Body describes an argument bound to a JSON body decoded into a *T.
func Body[T any](name string) Param {
	return Param{
		Name: name,
		Kind: KindBody,
		New:  func() any { return new(T) },
		Zero: (*T)(nil),
	}
}

// Args are the bound arguments of a single invocation, in the order
// the route declared its params.
type Args []any

// ArgTypeError is the panic value of [Get] when an argument does not
// have the requested type.
type ArgTypeError struct {
	Index int
	Want  reflect.Type
	Got   reflect.Type
}

// Error implements the error interface.
func (e ArgTypeError) Error() string {
	return fmt.Sprintf("route: argument %d is %v not %v", e.Index, e.Got, e.Want)
}

// Get returns argument i as a T. It panics with [ArgTypeError] if the
// argument is missing or has a different type.
func Get[T any](args Args, i int) T {
	var zero T
	if i < 0 || i >= len(args) {
		panic(ArgTypeError{Index: i, Want: reflect.TypeOf(&zero).Elem()})
	}
	v, ok := args[i].(T)
	if !ok {
		panic(ArgTypeError{
			Index: i,
			Want:  reflect.TypeOf(&zero).Elem(),
			Got:   reflect.TypeOf(args[i]),
		})
	}
	return v
}

// Handler handles a single routed request. The returned value is
// encoded as the response body.
type Handler interface {
	Handle(context.Context, Args) (any, error)
}

// HandlerFunc is an adapter to allow the use of ordinary functions as [Handler]s.
type HandlerFunc func(context.Context, Args) (any, error)

// Handle implements the [Handler] interface.
func (f HandlerFunc) Handle(ctx context.Context, args Args) (any, error) {
	return f(ctx, args)
}

// Route binds a handler to an exact path.
type Route struct {
	Path    string
	Handler Handler
	Params  []Param
}

// Source supplies routes to a [Registry].
type Source interface {
	Routes() ([]Route, error)
}

// Routes is a fixed list of routes.
type Routes []Route

// Routes implements the [Source] interface.
func (rs Routes) Routes() ([]Route, error) {
	return rs, nil
}

// Group prefixes the path of every route with prefix.
func Group(prefix string, routes ...Route) Routes {
	out := make(Routes, 0, len(routes))
	for _, r := range routes {
		r.Path = joinPath(prefix, r.Path)
		out = append(out, r)
	}
	return out
}

func joinPath(prefix, path string) string {
	if prefix == "" {
		return path
	}
	if prefix[len(prefix)-1] == '/' {
		prefix = prefix[:len(prefix)-1]
	}
	if path == "" {
		return prefix
	}
	if path[0] != '/' {
		path = "/" + path
	}
	return prefix + path
}
