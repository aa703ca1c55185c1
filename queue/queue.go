// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package queue runs a single consumer feeding a fixed set of workers
// through a bounded queue.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/z5labs/adam/internal/fixedpool"
	"github.com/z5labs/adam/internal/try"
	"github.com/z5labs/adam/pkg/noop"
	"github.com/z5labs/adam/pkg/otelslog"
	"github.com/z5labs/adam/pkg/slogfield"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"
)

// Consumer
type Consumer[T any] interface {
	Consume(context.Context) (T, error)
}

// ConsumerFunc is an adapter to allow the use of ordinary functions as [Consumer]s.
type ConsumerFunc[T any] func(context.Context) (T, error)

// Consume implements the [Consumer] interface.
func (f ConsumerFunc[T]) Consume(ctx context.Context) (T, error) {
	return f(ctx)
}

// Processor
type Processor[T any] interface {
	Process(context.Context, T) error
}

// ProcessorFunc is an adapter to allow the use of ordinary functions as [Processor]s.
type ProcessorFunc[T any] func(context.Context, T) error

// Process implements the [Processor] interface.
func (f ProcessorFunc[T]) Process(ctx context.Context, t T) error {
	return f(ctx, t)
}

var (
	// ErrEndOfItems can be returned by a [Consumer] to drain the
	// pool without it being reported as a failure.
	ErrEndOfItems = errors.New("queue: no more items")

	ErrDrainTimeout   = errors.New("queue: timed out waiting for workers to finish")
	ErrAlreadyRunning = errors.New("queue: pool is already running")
)

// ConsumeError is returned from [Pool.Run] when the consumer fails
// while the pool is accepting items.
type ConsumeError struct {
	Cause error
}

// Error implements the error interface.
func (e ConsumeError) Error() string {
	return fmt.Sprintf("queue: failed to consume: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e ConsumeError) Unwrap() error {
	return e.Cause
}

// State is the lifecycle state of a [Pool].
type State int32

const (
	StateStopped State = iota
	StateAccepting
	StateDraining
)

func (s State) String() string {
	switch s {
	case StateAccepting:
		return "accepting"
	case StateDraining:
		return "draining"
	default:
		return "stopped"
	}
}

const (
	DefaultWorkers      = 8
	DefaultDrainTimeout = 30 * time.Second
)

type options struct {
	logHandler   slog.Handler
	workers      int
	drainTimeout time.Duration
}

// Option configures a [Pool].
type Option func(*options)

// LogHandler
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = otelslog.NewHandler(h)
	}
}

// Workers sets the number of items processed concurrently. The queue
// between the consumer and the workers holds twice as many items.
func Workers(n int) Option {
	return func(o *options) {
		if n <= 0 {
			return
		}
		o.workers = n
	}
}

// DrainTimeout bounds how long a draining pool waits for its workers.
// A non-positive duration waits forever.
func DrainTimeout(d time.Duration) Option {
	return func(o *options) {
		o.drainTimeout = d
	}
}

// message is either an item or a request for the receiving worker to exit.
type message[T any] struct {
	value     T
	carrier   propagation.MapCarrier
	terminate bool
}

// Pool consumes items on a single goroutine and processes them on a
// fixed number of workers.
type Pool[T any] struct {
	log          *slog.Logger
	c            Consumer[T]
	p            Processor[T]
	workers      int
	drainTimeout time.Duration
	propagator   propagation.TextMapPropagator

	state     atomic.Int32
	drainOnce sync.Once
	drainCh   chan struct{}
}

// NewPool
func NewPool[T any](c Consumer[T], p Processor[T], opts ...Option) *Pool[T] {
	o := &options{
		logHandler:   noop.LogHandler{},
		workers:      DefaultWorkers,
		drainTimeout: DefaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Pool[T]{
		log:          slog.New(o.logHandler),
		c:            c,
		p:            p,
		workers:      o.workers,
		drainTimeout: o.drainTimeout,
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
		drainCh: make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (p *Pool[T]) State() State {
	return State(p.state.Load())
}

// Drain stops the consumer and lets every queued item finish. It
// never blocks and may be called any number of times from any
// goroutine, including from within a [Processor].
func (p *Pool[T]) Drain() {
	p.drainOnce.Do(func() {
		close(p.drainCh)
	})
}

// Run consumes and processes items until ctx is cancelled, [Pool.Drain]
// is called or the consumer fails. Items already consumed are always
// processed, even after ctx is cancelled.
func (p *Pool[T]) Run(ctx context.Context) error {
	if !p.state.CompareAndSwap(int32(StateStopped), int32(StateAccepting)) {
		return ErrAlreadyRunning
	}
	defer p.state.Store(int32(StateStopped))

	queue := make(chan message[T], 2*p.workers)
	workers := fixedpool.Start(context.WithoutCancel(ctx), p.workers, p.work(queue))

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(consumeCtx)
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-p.drainCh:
		}
		p.state.Store(int32(StateDraining))
		cancel()
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return p.consume(gctx, queue)
	})
	consumeErr := g.Wait()

	p.log.InfoContext(ctx, "draining workers", slogfield.Int("workers", p.workers))
	err := p.stopWorkers(queue, workers)
	if err != nil {
		p.log.ErrorContext(ctx, "failed to drain workers", slogfield.Error(err))
	}
	return errors.Join(consumeErr, err)
}

// stopWorkers sends one terminate message per worker and waits for
// them all to exit, all within the drain timeout.
func (p *Pool[T]) stopWorkers(queue chan<- message[T], workers *fixedpool.Group) error {
	var timeout <-chan time.Time
	if p.drainTimeout > 0 {
		timer := time.NewTimer(p.drainTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	for range p.workers {
		select {
		case queue <- message[T]{terminate: true}:
		case <-timeout:
			return ErrDrainTimeout
		}
	}

	select {
	case <-workers.Done():
		return workers.Wait()
	case <-timeout:
		return ErrDrainTimeout
	}
}

func (p *Pool[T]) consume(ctx context.Context, queue chan<- message[T]) error {
	tracer := otel.Tracer("queue")
	for ctx.Err() == nil {
		spanCtx, span := tracer.Start(ctx, "Pool.consume")

		value, err := try.Call(func() (T, error) {
			return p.c.Consume(spanCtx)
		})
		if err != nil {
			span.End()
			if ctx.Err() != nil || errors.Is(err, ErrEndOfItems) {
				return nil
			}
			p.log.ErrorContext(spanCtx, "failed to consume", slogfield.Error(err))
			return ConsumeError{Cause: err}
		}

		msg := message[T]{
			value:   value,
			carrier: make(propagation.MapCarrier),
		}
		p.propagator.Inject(spanCtx, msg.carrier)
		span.End()

		// workers outlive the consumer so this send always completes
		queue <- msg
	}
	return nil
}

func (p *Pool[T]) work(queue <-chan message[T]) fixedpool.Task {
	return func(ctx context.Context, id int) error {
		for msg := range queue {
			if msg.terminate {
				return nil
			}
			p.process(ctx, id, msg)
		}
		return nil
	}
}

func (p *Pool[T]) process(ctx context.Context, id int, msg message[T]) {
	propCtx := p.propagator.Extract(ctx, msg.carrier)
	spanCtx, span := otel.Tracer("queue").Start(propCtx, "Pool.process")
	defer span.End()

	err := processValue(spanCtx, p.p, msg.value)
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.log.ErrorContext(spanCtx, "failed to process", slogfield.Int("worker_id", id), slogfield.Error(err))
}

func processValue[T any](ctx context.Context, p Processor[T], value T) (err error) {
	defer try.Recover(&err)

	return p.Process(ctx, value)
}
