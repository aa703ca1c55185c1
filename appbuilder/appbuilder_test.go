// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package appbuilder

import (
	"context"
	"errors"
	"testing"

	"github.com/z5labs/adam"
	"github.com/z5labs/adam/internal/try"

	"github.com/stretchr/testify/assert"
)

func TestRecover(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the builder panics", func(t *testing.T) {
			b := Recover(adam.AppBuilderFunc[int](func(ctx context.Context, cfg int) (adam.App, error) {
				panic("boom")
			}))

			_, err := b.Build(context.Background(), 0)

			var perr try.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.Equal(t, "boom", perr.Value) {
				return
			}
		})

		t.Run("if the builder fails", func(t *testing.T) {
			buildErr := errors.New("failed to build")
			b := Recover(adam.AppBuilderFunc[int](func(ctx context.Context, cfg int) (adam.App, error) {
				return nil, buildErr
			}))

			_, err := b.Build(context.Background(), 0)
			if !assert.Equal(t, buildErr, err) {
				return
			}
		})
	})
}
