// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package fixedpool runs a fixed number of identical long lived workers.
package fixedpool

import (
	"context"
	"errors"
	"sync"

	"github.com/z5labs/adam/internal/try"
)

// Task is the body of a single worker. id starts at 1.
type Task func(ctx context.Context, id int) error

// Group tracks a set of running workers.
type Group struct {
	done chan struct{}

	mu   sync.Mutex
	errs []error
}

// Start launches n workers running task. Worker panics are recovered
// and reported through [Group.Wait] like any other error. The workers
// do not cancel each other.
func Start(ctx context.Context, n int, task Task) *Group {
	g := &Group{
		done: make(chan struct{}),
	}

	var wg sync.WaitGroup
	for id := 1; id <= n; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := run(ctx, id, task)
			if err == nil {
				return
			}
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}()
	}

	go func() {
		wg.Wait()
		close(g.done)
	}()
	return g
}

func run(ctx context.Context, id int, task Task) (err error) {
	defer try.Recover(&err)

	return task(ctx, id)
}

// Done is closed once every worker has returned.
func (g *Group) Done() <-chan struct{} {
	return g.done
}

// Wait blocks until every worker has returned.
func (g *Group) Wait() error {
	<-g.done
	return g.err()
}

func (g *Group) err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
