// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package adam bootstraps an application from layered config sources.
//
// The server itself lives in the dispatch, queue and runtime/http
// packages. This package only ties config, build and run together:
//
//	err := adam.Run(ctx, builder, config.FromYaml(defaults))
package adam

import (
	"context"
	"errors"
	"fmt"

	"github.com/z5labs/adam/config"
	"github.com/z5labs/adam/lifecycle"
)

// App is the entry point for user specific code.
type App interface {
	Run(context.Context) error
}

// AppFunc is an adapter to allow the use of ordinary functions as [App]s.
type AppFunc func(context.Context) error

// Run implements the [App] interface.
func (f AppFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// AppBuilder builds an [App] from its config.
type AppBuilder[T any] interface {
	Build(ctx context.Context, cfg T) (App, error)
}

// AppBuilderFunc is an adapter to allow the use of ordinary functions as [AppBuilder]s.
type AppBuilderFunc[T any] func(context.Context, T) (App, error)

// Build implements the [AppBuilder] interface.
func (f AppBuilderFunc[T]) Build(ctx context.Context, cfg T) (App, error) {
	return f(ctx, cfg)
}

// Stage identifies the step of [Run] which failed.
type Stage string

const (
	StageReadConfig      Stage = "read config"
	StageUnmarshalConfig Stage = "unmarshal config"
	StageBuild           Stage = "build app"
	StageRun             Stage = "run app"
	StagePostRun         Stage = "post run"
)

// Error is returned by [Run] and wraps the cause of the failed [Stage].
type Error struct {
	Stage Stage
	Cause error
}

// Error implements the [builtin.error] interface.
func (e Error) Error() string {
	return fmt.Sprintf("adam: failed to %s: %s", e.Stage, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e Error) Unwrap() error {
	return e.Cause
}

// Run reads srcs into a T, builds the [App] and runs it.
//
// The context given to builder carries a [lifecycle.Context]. Hooks
// registered with it through [lifecycle.Context.OnPostRun] are run once
// Run is done, even if a later stage failed.
func Run[T any](ctx context.Context, builder AppBuilder[T], srcs ...config.Source) error {
	lc := &lifecycle.Context{}
	ctx = lifecycle.NewContext(ctx, lc)

	err := run(ctx, builder, srcs)

	hookErr := lc.PostRun().Run(context.WithoutCancel(ctx))
	if hookErr == nil {
		return err
	}
	return errors.Join(err, Error{Stage: StagePostRun, Cause: hookErr})
}

func run[T any](ctx context.Context, builder AppBuilder[T], srcs []config.Source) error {
	m, err := config.Read(srcs...)
	if err != nil {
		return Error{Stage: StageReadConfig, Cause: err}
	}

	var cfg T
	err = m.Unmarshal(&cfg)
	if err != nil {
		return Error{Stage: StageUnmarshalConfig, Cause: err}
	}

	app, err := builder.Build(ctx, cfg)
	if err != nil {
		return Error{Stage: StageBuild, Cause: err}
	}

	err = app.Run(ctx)
	if err != nil {
		return Error{Stage: StageRun, Cause: err}
	}
	return nil
}
