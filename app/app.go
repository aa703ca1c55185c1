// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app provides middleware for [adam.App]s.
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/z5labs/adam"
	"github.com/z5labs/adam/internal/try"
	"github.com/z5labs/adam/lifecycle"
)

// Recover reports a panic inside app as a [try.PanicError].
func Recover(app adam.App) adam.App {
	return adam.AppFunc(func(ctx context.Context) (err error) {
		defer try.Recover(&err)

		return app.Run(ctx)
	})
}

// WithSignalNotifications cancels the context given to app once the
// process receives one of signals.
func WithSignalNotifications(app adam.App, signals ...os.Signal) adam.App {
	return adam.AppFunc(func(ctx context.Context) error {
		sigCtx, stop := signal.NotifyContext(ctx, signals...)
		defer stop()

		return app.Run(sigCtx)
	})
}

// PostRun runs hook after app returns, including when it panics. The
// hook's error is joined with app's.
func PostRun(app adam.App, hook lifecycle.Hook) adam.App {
	return adam.AppFunc(func(ctx context.Context) (err error) {
		defer func() {
			hookErr := hook.Run(context.WithoutCancel(ctx))
			err = errors.Join(err, hookErr)
		}()

		return app.Run(ctx)
	})
}
