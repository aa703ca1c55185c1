// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package lifecycle registers work to run relative to an [adam.App]'s execution.
package lifecycle

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// Hook is work performed at a fixed point relative to [adam.App.Run].
type Hook interface {
	Run(context.Context) error
}

// HookFunc is an adapter to allow the use of ordinary functions as [Hook]s.
type HookFunc func(context.Context) error

// Run implements the [Hook] interface.
func (f HookFunc) Run(ctx context.Context) error {
	return f(ctx)
}

type multiHook []Hook

func (mh multiHook) Run(ctx context.Context) error {
	var errs []error
	for _, h := range mh {
		err := h.Run(ctx)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MultiHook runs every hook in order. A failing hook does not stop the
// rest from running and all errors are joined.
func MultiHook(hooks ...Hook) Hook {
	return multiHook(hooks)
}

// Context collects hooks while an app is being built.
type Context struct {
	mu       sync.Mutex
	postRuns []Hook
}

// OnPostRun registers hook to run after the app returns. It is safe
// for concurrent use.
func (c *Context) OnPostRun(hook Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.postRuns = append(c.postRuns, hook)
}

// PostRun returns every registered post run hook as one [Hook]. Hooks
// run in the reverse order of registration, like deferred calls.
func (c *Context) PostRun() Hook {
	c.mu.Lock()
	defer c.mu.Unlock()

	hooks := slices.Clone(c.postRuns)
	slices.Reverse(hooks)
	return multiHook(hooks)
}

type contextKey struct{}

// NewContext returns a copy of parent which carries c.
func NewContext(parent context.Context, c *Context) context.Context {
	return context.WithValue(parent, contextKey{}, c)
}

// FromContext returns the [Context] carried by ctx, if any.
func FromContext(ctx context.Context) (*Context, bool) {
	c, ok := ctx.Value(contextKey{}).(*Context)
	return c, ok
}
