// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/z5labs/adam/internal/try"
	"github.com/z5labs/adam/pkg/health"
	"github.com/z5labs/adam/pkg/noop"
	"github.com/z5labs/adam/pkg/otelslog"
	"github.com/z5labs/adam/pkg/slogfield"
	"github.com/z5labs/adam/queue"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
)

// ConnHandler serves the single request carried by a connection.
type ConnHandler interface {
	ServeConn(context.Context, io.ReadWriter) error
}

// ConnHandlerFunc is an adapter to allow the use of ordinary functions as [ConnHandler]s.
type ConnHandlerFunc func(context.Context, io.ReadWriter) error

// ServeConn implements the [ConnHandler] interface.
func (f ConnHandlerFunc) ServeConn(ctx context.Context, rw io.ReadWriter) error {
	return f(ctx, rw)
}

// ConnError wraps a failure to serve a connection.
type ConnError struct {
	RemoteAddr string
	Cause      error
}

// Error implements the error interface.
func (e ConnError) Error() string {
	return fmt.Sprintf("http: failed to serve connection from %s: %s", e.RemoteAddr, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e ConnError) Unwrap() error {
	return e.Cause
}

type options struct {
	logHandler  slog.Handler
	poolOpts    []queue.Option
	readTimeout time.Duration
}

// Option configures a [Runtime].
type Option func(*options)

// LogHandler
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
		o.poolOpts = append(o.poolOpts, queue.LogHandler(h))
	}
}

// Workers sets how many connections are served concurrently.
func Workers(n int) Option {
	return func(o *options) {
		o.poolOpts = append(o.poolOpts, queue.Workers(n))
	}
}

// DrainTimeout bounds how long shutdown waits for in flight connections.
func DrainTimeout(d time.Duration) Option {
	return func(o *options) {
		o.poolOpts = append(o.poolOpts, queue.DrainTimeout(d))
	}
}

// ReadTimeout sets a deadline for reading a request, starting when
// its connection is picked up by a worker. Zero disables it.
func ReadTimeout(d time.Duration) Option {
	return func(o *options) {
		o.readTimeout = d
	}
}

// Runtime accepts connections from a listener and serves them on a
// fixed pool of workers.
type Runtime struct {
	log         *slog.Logger
	ln          net.Listener
	h           ConnHandler
	readTimeout time.Duration

	pool     *queue.Pool[net.Conn]
	ready    health.Binary
	accepted metric.Int64Counter
}

// NewRuntime
func NewRuntime(ln net.Listener, h ConnHandler, opts ...Option) *Runtime {
	o := &options{
		logHandler: noop.LogHandler{},
	}
	for _, opt := range opts {
		opt(o)
	}

	rt := &Runtime{
		log:         otelslog.New(o.logHandler),
		ln:          ln,
		h:           h,
		readTimeout: o.readTimeout,
	}
	rt.pool = queue.NewPool[net.Conn](acceptor{rt: rt}, rt, o.poolOpts...)

	accepted, err := otel.Meter("runtime/http").Int64Counter(
		"http.server.connections",
		metric.WithDescription("Number of accepted connections."),
	)
	if err != nil {
		rt.log.Warn("falling back to noop connection counter", slogfield.Error(err))
		accepted = noopmetric.Int64Counter{}
	}
	rt.accepted = accepted
	return rt
}

// Listen opens a TCP listener on port of every interface.
func Listen(port int) (net.Listener, error) {
	return net.Listen("tcp", fmt.Sprintf(":%d", port))
}

// Addr returns the address connections are accepted on.
func (rt *Runtime) Addr() net.Addr {
	return rt.ln.Addr()
}

// Health is healthy while the runtime is accepting connections.
func (rt *Runtime) Health() health.Metric {
	return &rt.ready
}

// Drain stops accepting connections and shuts the runtime down once
// every accepted connection has been served. It does not block and
// is safe to call from within a [ConnHandler].
func (rt *Runtime) Drain() {
	rt.ready.MarkUnhealthy()
	rt.pool.Drain()
}

// Run serves connections until ctx is cancelled, [Runtime.Drain] is
// called or accepting a connection fails.
func (rt *Runtime) Run(ctx context.Context) (err error) {
	defer try.Close(&err, rt.ln)

	rt.ready.MarkHealthy()
	stop := context.AfterFunc(ctx, rt.ready.MarkUnhealthy)
	defer stop()
	defer rt.ready.MarkUnhealthy()

	rt.log.InfoContext(ctx, "accepting connections", slogfield.String("addr", rt.ln.Addr().String()))
	err = rt.pool.Run(ctx)
	if err != nil {
		rt.log.ErrorContext(ctx, "runtime stopped with error", slogfield.Error(err))
		return err
	}
	rt.log.InfoContext(ctx, "runtime stopped")
	return nil
}

// Process implements the [queue.Processor] interface.
func (rt *Runtime) Process(ctx context.Context, conn net.Conn) (err error) {
	defer try.Close(&err, conn)

	if rt.readTimeout > 0 {
		err = conn.SetReadDeadline(time.Now().Add(rt.readTimeout))
		if err != nil {
			return ConnError{RemoteAddr: remoteAddr(conn), Cause: err}
		}
	}

	err = rt.h.ServeConn(ctx, conn)
	if err != nil {
		return ConnError{RemoteAddr: remoteAddr(conn), Cause: err}
	}
	return nil
}

func remoteAddr(conn net.Conn) string {
	addr := conn.RemoteAddr()
	if addr == nil {
		return ""
	}
	return addr.String()
}

// acceptor feeds accepted connections into the pool. The listener is
// closed as soon as ctx is done so a blocked Accept returns.
type acceptor struct {
	rt *Runtime
}

// Consume implements the [queue.Consumer] interface.
func (a acceptor) Consume(ctx context.Context) (net.Conn, error) {
	stop := context.AfterFunc(ctx, func() {
		a.rt.ln.Close()
	})
	defer stop()

	conn, err := a.rt.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	a.rt.accepted.Add(ctx, 1)
	return conn, nil
}
