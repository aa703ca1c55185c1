// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/z5labs/adam"
	"github.com/z5labs/adam/internal/try"
	"github.com/z5labs/adam/lifecycle"

	"github.com/stretchr/testify/assert"
)

func TestRecover(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the underlying App returns an error", func(t *testing.T) {
			appErr := errors.New("failed to run")
			a := Recover(adam.AppFunc(func(ctx context.Context) error {
				return appErr
			}))

			err := a.Run(context.Background())
			if !assert.Equal(t, appErr, err) {
				return
			}
		})

		t.Run("if the underlying App panics with an error value", func(t *testing.T) {
			appErr := errors.New("failed to run")
			a := Recover(adam.AppFunc(func(ctx context.Context) error {
				panic(appErr)
			}))

			err := a.Run(context.Background())
			if !assert.ErrorIs(t, err, appErr) {
				return
			}
		})

		t.Run("if the underlying App panics with a non-error value", func(t *testing.T) {
			a := Recover(adam.AppFunc(func(ctx context.Context) error {
				panic("hello world")
			}))

			err := a.Run(context.Background())

			var perr try.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.Equal(t, "hello world", perr.Value) {
				return
			}
		})
	})
}

func TestWithSignalNotifications(t *testing.T) {
	t.Run("will cancel the app context", func(t *testing.T) {
		t.Run("if the parent context is cancelled", func(t *testing.T) {
			a := WithSignalNotifications(adam.AppFunc(func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			}))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := a.Run(ctx)
			if !assert.ErrorIs(t, err, context.Canceled) {
				return
			}
		})

		t.Run("if the process receives a registered signal", func(t *testing.T) {
			a := WithSignalNotifications(adam.AppFunc(func(ctx context.Context) error {
				p, err := os.FindProcess(os.Getpid())
				if err != nil {
					return err
				}
				err = p.Signal(syscall.SIGUSR1)
				if err != nil {
					return err
				}

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(5 * time.Second):
					return errors.New("signal was never delivered")
				}
			}), syscall.SIGUSR1)

			err := a.Run(context.Background())
			if !assert.ErrorIs(t, err, context.Canceled) {
				return
			}
		})
	})
}

func TestPostRun(t *testing.T) {
	t.Run("will run the hook", func(t *testing.T) {
		t.Run("if the app panics", func(t *testing.T) {
			var ran bool
			hook := lifecycle.HookFunc(func(ctx context.Context) error {
				ran = true
				return nil
			})

			a := Recover(PostRun(adam.AppFunc(func(ctx context.Context) error {
				panic("boom")
			}), hook))

			err := a.Run(context.Background())

			var perr try.PanicError
			if !assert.ErrorAs(t, err, &perr) {
				return
			}
			if !assert.True(t, ran) {
				return
			}
		})

		t.Run("with a context that is not cancelled", func(t *testing.T) {
			var hookCtxErr error
			hook := lifecycle.HookFunc(func(ctx context.Context) error {
				hookCtxErr = ctx.Err()
				return nil
			})

			ctx, cancel := context.WithCancel(context.Background())
			a := PostRun(adam.AppFunc(func(ctx context.Context) error {
				cancel()
				return nil
			}), hook)

			err := a.Run(ctx)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Nil(t, hookCtxErr) {
				return
			}
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if both the app and the hook fail", func(t *testing.T) {
			appErr := errors.New("failed to run app")
			hookErr := errors.New("failed to post run")

			a := PostRun(
				adam.AppFunc(func(ctx context.Context) error {
					return appErr
				}),
				lifecycle.HookFunc(func(ctx context.Context) error {
					return hookErr
				}),
			)

			err := a.Run(context.Background())
			if !assert.ErrorIs(t, err, appErr) {
				return
			}
			if !assert.ErrorIs(t, err, hookErr) {
				return
			}
		})
	})
}
