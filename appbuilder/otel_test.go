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
	"github.com/z5labs/adam/lifecycle"
	"github.com/z5labs/adam/pkg/otelconfig"

	"github.com/stretchr/testify/assert"
)

type initializerFunc func(context.Context) (otelconfig.Providers, error)

func (f initializerFunc) Init(ctx context.Context) (otelconfig.Providers, error) {
	return f(ctx)
}

type otelConfig struct {
	initializer otelconfig.Initializer
	err         error
}

func (cfg otelConfig) OTelInitializer() (otelconfig.Initializer, error) {
	return cfg.initializer, cfg.err
}

func TestOTel(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the context is already cancelled", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			b := OTel(adam.AppBuilderFunc[otelConfig](func(ctx context.Context, cfg otelConfig) (adam.App, error) {
				return adam.AppFunc(func(context.Context) error { return nil }), nil
			}))

			_, err := b.Build(ctx, otelConfig{initializer: otelconfig.Noop})
			if !assert.ErrorIs(t, err, context.Canceled) {
				return
			}
		})

		t.Run("if the config cannot choose an initializer", func(t *testing.T) {
			cfgErr := errors.New("bad exporter")
			b := OTel(adam.AppBuilderFunc[otelConfig](func(ctx context.Context, cfg otelConfig) (adam.App, error) {
				return adam.AppFunc(func(context.Context) error { return nil }), nil
			}))

			_, err := b.Build(context.Background(), otelConfig{err: cfgErr})
			if !assert.ErrorIs(t, err, cfgErr) {
				return
			}
		})

		t.Run("if the initializer fails", func(t *testing.T) {
			initErr := errors.New("failed to init")
			initializer := initializerFunc(func(ctx context.Context) (otelconfig.Providers, error) {
				return otelconfig.Providers{}, initErr
			})

			b := OTel(adam.AppBuilderFunc[otelConfig](func(ctx context.Context, cfg otelConfig) (adam.App, error) {
				return adam.AppFunc(func(context.Context) error { return nil }), nil
			}))

			_, err := b.Build(context.Background(), otelConfig{initializer: initializer})
			if !assert.ErrorIs(t, err, initErr) {
				return
			}
		})

		t.Run("if the underlying builder fails", func(t *testing.T) {
			buildErr := errors.New("failed to build")
			b := OTel(adam.AppBuilderFunc[otelConfig](func(ctx context.Context, cfg otelConfig) (adam.App, error) {
				return nil, buildErr
			}))

			_, err := b.Build(context.Background(), otelConfig{initializer: otelconfig.Noop})
			if !assert.ErrorIs(t, err, buildErr) {
				return
			}
		})
	})

	t.Run("will register the shutdown with the lifecycle", func(t *testing.T) {
		t.Run("if the context carries one", func(t *testing.T) {
			lc := &lifecycle.Context{}
			ctx := lifecycle.NewContext(context.Background(), lc)

			var ran bool
			b := OTel(adam.AppBuilderFunc[otelConfig](func(ctx context.Context, cfg otelConfig) (adam.App, error) {
				return adam.AppFunc(func(context.Context) error {
					ran = true
					return nil
				}), nil
			}))

			a, err := b.Build(ctx, otelConfig{initializer: otelconfig.Noop})
			if !assert.Nil(t, err) {
				return
			}

			err = a.Run(ctx)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.True(t, ran) {
				return
			}

			err = lc.PostRun().Run(ctx)
			if !assert.Nil(t, err) {
				return
			}
		})
	})
}
