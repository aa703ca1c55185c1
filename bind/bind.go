// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package bind turns request parameters and bodies into handler arguments.
package bind

import (
	"errors"
	"fmt"
	"strings"

	"github.com/z5labs/adam/codec"
	"github.com/z5labs/adam/http"
	"github.com/z5labs/adam/route"
)

// ConversionError occurs when a parameter value can not be converted
// to the type the route declared for it.
type ConversionError struct {
	Param string
	Type  route.Type
	Value string
	Cause error
}

// Error implements the error interface.
func (e ConversionError) Error() string {
	return fmt.Sprintf("bind: can not convert parameter %s value %q to %v: %s", e.Param, e.Value, e.Type, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e ConversionError) Unwrap() error {
	return e.Cause
}

// BodyError occurs when a JSON body can not be decoded.
type BodyError struct {
	Param string
	Cause error
}

// Error implements the error interface.
func (e BodyError) Error() string {
	return fmt.Sprintf("bind: can not decode body into parameter %s: %s", e.Param, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e BodyError) Unwrap() error {
	return e.Cause
}

var (
	ErrNilCodec    = errors.New("bind: a codec is required for body parameters")
	ErrInvalidBody = errors.New("bind: body parameter is missing its constructor")
	ErrUnknownKind = errors.New("bind: unknown parameter kind")
)

type extractor func(*http.Request, *http.Response) (any, error)

// Plan binds the arguments of one route. It is safe for concurrent use.
type Plan struct {
	extractors []extractor
}

// Compile builds the plan for params. The codec is only used for
// body params and may be nil otherwise.
func Compile(params []route.Param, c codec.Codec) (Plan, error) {
	extractors := make([]extractor, 0, len(params))
	for _, p := range params {
		ext, err := compileParam(p, c)
		if err != nil {
			return Plan{}, err
		}
		extractors = append(extractors, ext)
	}
	return Plan{extractors: extractors}, nil
}

func compileParam(p route.Param, c codec.Codec) (extractor, error) {
	switch p.Kind {
	case route.KindRequest:
		return func(req *http.Request, _ *http.Response) (any, error) {
			return req, nil
		}, nil
	case route.KindResponse:
		return func(_ *http.Request, resp *http.Response) (any, error) {
			return resp, nil
		}, nil
	case route.KindScalar:
		return scalarExtractor(p)
	case route.KindArray:
		// unknown types are rejected here instead of per request
		if _, err := convertAll(p.Name, nil, p.Type); err != nil {
			return nil, err
		}
		return func(req *http.Request, _ *http.Response) (any, error) {
			return convertAll(p.Name, req.ParameterValues(p.Name), p.Type)
		}, nil
	case route.KindBody:
		return bodyExtractor(p, c)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, p.Kind)
	}
}

func scalarExtractor(p route.Param) (extractor, error) {
	zero := Zero(p.Type)
	if zero == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownType, p.Type)
	}
	return func(req *http.Request, _ *http.Response) (any, error) {
		s, ok := req.Parameter(p.Name)
		if !ok {
			return zero, nil
		}
		v, err := Convert(s, p.Type)
		if err != nil {
			return nil, ConversionError{Param: p.Name, Type: p.Type, Value: s, Cause: err}
		}
		return v, nil
	}, nil
}

func bodyExtractor(p route.Param, c codec.Codec) (extractor, error) {
	if c == nil {
		return nil, ErrNilCodec
	}
	if p.New == nil || p.Zero == nil {
		return nil, ErrInvalidBody
	}
	return func(req *http.Request, _ *http.Response) (any, error) {
		if !isJSON(req.ContentType()) || len(req.Body()) == 0 {
			return p.Zero, nil
		}
		v := p.New()
		err := c.Unmarshal(req.Body(), v)
		if err != nil {
			return nil, BodyError{Param: p.Name, Cause: err}
		}
		return v, nil
	}, nil
}

func isJSON(contentType string) bool {
	const mediaType = http.ContentTypeJSON
	return len(contentType) >= len(mediaType) && strings.EqualFold(contentType[:len(mediaType)], mediaType)
}

// Bind produces the arguments for a single invocation.
func (p Plan) Bind(req *http.Request, resp *http.Response) (route.Args, error) {
	args := make(route.Args, 0, len(p.extractors))
	for _, ext := range p.extractors {
		v, err := ext(req, resp)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// Len is the number of arguments the plan produces.
func (p Plan) Len() int {
	return len(p.extractors)
}
