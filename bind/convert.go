// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bind

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"unicode/utf8"

	"github.com/z5labs/adam/route"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyChar   = errors.New("bind: empty value for char")
	ErrInvalidInt  = errors.New("bind: invalid big integer")
	ErrUnknownType = errors.New("bind: unknown parameter type")
)

// Convert parses s as the Go type t maps to.
func Convert(s string, t route.Type) (any, error) {
	switch t {
	case route.String:
		return s, nil
	case route.Int:
		n, err := strconv.ParseInt(s, 10, 32)
		return int32(n), err
	case route.Long:
		return strconv.ParseInt(s, 10, 64)
	case route.Byte:
		n, err := strconv.ParseInt(s, 10, 8)
		return int8(n), err
	case route.Short:
		n, err := strconv.ParseInt(s, 10, 16)
		return int16(n), err
	case route.Bool:
		return strconv.ParseBool(s)
	case route.Double:
		return strconv.ParseFloat(s, 64)
	case route.Float:
		f, err := strconv.ParseFloat(s, 32)
		return float32(f), err
	case route.Char:
		if s == "" {
			return rune(0), ErrEmptyChar
		}
		r, _ := utf8.DecodeRuneInString(s)
		return r, nil
	case route.Decimal:
		return decimal.NewFromString(s)
	case route.BigInt:
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return (*big.Int)(nil), ErrInvalidInt
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownType, t)
	}
}

// Zero returns the value bound when a scalar parameter is absent.
func Zero(t route.Type) any {
	switch t {
	case route.String:
		return ""
	case route.Int:
		return int32(0)
	case route.Long:
		return int64(0)
	case route.Byte:
		return int8(0)
	case route.Short:
		return int16(0)
	case route.Bool:
		return false
	case route.Double:
		return float64(0)
	case route.Float:
		return float32(0)
	case route.Char:
		return rune(0)
	case route.Decimal:
		return decimal.Decimal{}
	case route.BigInt:
		return (*big.Int)(nil)
	default:
		return nil
	}
}

// convertAll converts every value into a typed slice, e.g. []int64 for
// route.Long. The result is never nil.
func convertAll(name string, values []string, t route.Type) (any, error) {
	switch t {
	case route.String:
		return convertSlice[string](name, values, t)
	case route.Int:
		return convertSlice[int32](name, values, t)
	case route.Long:
		return convertSlice[int64](name, values, t)
	case route.Byte:
		return convertSlice[int8](name, values, t)
	case route.Short:
		return convertSlice[int16](name, values, t)
	case route.Bool:
		return convertSlice[bool](name, values, t)
	case route.Double:
		return convertSlice[float64](name, values, t)
	case route.Float:
		return convertSlice[float32](name, values, t)
	case route.Char:
		return convertSlice[rune](name, values, t)
	case route.Decimal:
		return convertSlice[decimal.Decimal](name, values, t)
	case route.BigInt:
		return convertSlice[*big.Int](name, values, t)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownType, t)
	}
}

func convertSlice[T any](name string, values []string, t route.Type) ([]T, error) {
	out := make([]T, 0, len(values))
	for _, s := range values {
		v, err := Convert(s, t)
		if err != nil {
			return nil, ConversionError{Param: name, Type: t, Value: s, Cause: err}
		}
		out = append(out, v.(T))
	}
	return out, nil
}
