// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package appbuilder provides middleware for [adam.AppBuilder]s.
package appbuilder

import (
	"context"

	"github.com/z5labs/adam"
	"github.com/z5labs/adam/internal/try"
)

// Recover reports a panic inside builder as a [try.PanicError].
func Recover[T any](builder adam.AppBuilder[T]) adam.AppBuilder[T] {
	return adam.AppBuilderFunc[T](func(ctx context.Context, cfg T) (_ adam.App, err error) {
		defer try.Recover(&err)

		return builder.Build(ctx, cfg)
	})
}
