// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package dispatch routes a parsed request to its handler or to a
// static resource and writes the response.
package dispatch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/z5labs/adam/bind"
	"github.com/z5labs/adam/codec"
	"github.com/z5labs/adam/http"
	"github.com/z5labs/adam/internal/try"
	"github.com/z5labs/adam/pkg/noop"
	"github.com/z5labs/adam/pkg/otelslog"
	"github.com/z5labs/adam/pkg/slogfield"
	"github.com/z5labs/adam/route"
	"github.com/z5labs/adam/static"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultFailureMessage is sent in the failure envelope when a
	// handler could not be invoked successfully.
	DefaultFailureMessage = "operation failed"

	// NotFoundBody is the body of every 404 response.
	NotFoundBody = "<h1>Page Not Found</h1>"
)

// Envelope is the body sent in place of a handler result when binding
// or invoking the handler fails.
type Envelope struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

// Option configures a [Dispatcher].
type Option func(*Dispatcher)

// Codec sets the codec used for JSON bodies and handler results.
// The default is [codec.JSON].
func Codec(c codec.Codec) Option {
	return func(d *Dispatcher) {
		d.codec = c
	}
}

// StaticResources sets where requests without a route are looked up.
// Without it every such request is answered with 404.
func StaticResources(p static.Provider) Option {
	return func(d *Dispatcher) {
		d.static = p
	}
}

// LogHandler sets the handler for operator facing logs.
func LogHandler(h slog.Handler) Option {
	return func(d *Dispatcher) {
		d.log = otelslog.New(h)
	}
}

// FailureMessage sets the msg field of the failure envelope.
func FailureMessage(msg string) Option {
	return func(d *Dispatcher) {
		d.failureMsg = msg
	}
}

// ExitPath makes a request for path drain the server once its
// response has been written.
func ExitPath(path string, drain func()) Option {
	return func(d *Dispatcher) {
		d.exitPath = path
		d.drain = drain
	}
}

// ChunkSize sets the framer read size used by [Dispatcher.ServeConn].
func ChunkSize(n int) Option {
	return func(d *Dispatcher) {
		d.framerOpts = append(d.framerOpts, http.ChunkSize(n))
	}
}

// MaxHeaderBytes sets the header size limit used by [Dispatcher.ServeConn].
func MaxHeaderBytes(n int) Option {
	return func(d *Dispatcher) {
		d.framerOpts = append(d.framerOpts, http.MaxHeaderBytes(n))
	}
}

// CompileError reports the route whose params could not be compiled.
type CompileError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e CompileError) Error() string {
	return fmt.Sprintf("dispatch: failed to compile params for route %s: %s", e.Path, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e CompileError) Unwrap() error {
	return e.Cause
}

var ErrNilRegistry = errors.New("dispatch: route registry must not be nil")

type compiledRoute struct {
	route.Route
	plan bind.Plan
}

// Dispatcher is safe for concurrent use once constructed.
type Dispatcher struct {
	log        *slog.Logger
	codec      codec.Codec
	static     static.Provider
	failureMsg string
	exitPath   string
	drain      func()
	framerOpts []http.FramerOption

	routes map[string]compiledRoute

	tracer     trace.Tracer
	dispatched metric.Int64Counter
}

// New compiles the params of every route in reg.
func New(reg *route.Registry, opts ...Option) (*Dispatcher, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}

	d := &Dispatcher{
		log:        slog.New(noop.LogHandler{}),
		codec:      codec.JSON{},
		failureMsg: DefaultFailureMessage,
		routes:     make(map[string]compiledRoute, reg.Len()),
		tracer:     otel.Tracer("dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, path := range reg.Paths() {
		rt, _ := reg.Lookup(path)
		plan, err := bind.Compile(rt.Params, d.codec)
		if err != nil {
			return nil, CompileError{Path: path, Cause: err}
		}
		d.routes[path] = compiledRoute{Route: rt, plan: plan}
	}

	dispatched, err := otel.Meter("dispatch").Int64Counter(
		"dispatch.requests",
		metric.WithDescription("Number of dispatched requests by outcome."),
	)
	if err != nil {
		return nil, err
	}
	d.dispatched = dispatched
	return d, nil
}

type outcome string

const (
	outcomeRoute    outcome = "route"
	outcomeFailure  outcome = "failure"
	outcomeStatic   outcome = "static"
	outcomeNotFound outcome = "not_found"
	outcomeEmpty    outcome = "empty"
)

// Dispatch answers req by writing resp. An empty request is answered
// with nothing at all. Handler failures never escape as errors, only
// failures to write the response do.
func (d *Dispatcher) Dispatch(ctx context.Context, req *http.Request, resp *http.Response) error {
	if req.Empty() {
		d.record(ctx, outcomeEmpty)
		return nil
	}

	spanCtx, span := d.tracer.Start(ctx, "Dispatcher.Dispatch", trace.WithAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.path", req.Path),
	))
	defer span.End()

	cookie, _ := req.Header("Cookie")
	d.log.DebugContext(
		spanCtx,
		"dispatching request",
		slogfield.String("method", req.Method),
		slogfield.String("path", req.Path),
		slogfield.String("cookie", cookie),
	)

	var err error
	if rt, ok := d.routes[req.Path]; ok {
		err = d.invoke(spanCtx, rt, req, resp)
	} else {
		err = d.serveStatic(spanCtx, req, resp)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if d.exitPath != "" && req.Path == d.exitPath && d.drain != nil {
		d.log.InfoContext(spanCtx, "exit path requested, draining", slogfield.String("path", req.Path))
		d.drain()
	}
	return nil
}

func (d *Dispatcher) invoke(ctx context.Context, rt compiledRoute, req *http.Request, resp *http.Response) error {
	body, err := try.Call(func() ([]byte, error) {
		args, err := rt.plan.Bind(req, resp)
		if err != nil {
			return nil, err
		}
		result, err := rt.Handler.Handle(ctx, args)
		if err != nil {
			return nil, err
		}
		return d.codec.Marshal(result)
	})
	if err != nil {
		d.log.ErrorContext(
			ctx,
			"failed to handle request",
			slogfield.String("path", req.Path),
			slogfield.Error(err),
		)
		d.record(ctx, outcomeFailure)
		return d.writeFailure(resp)
	}

	d.record(ctx, outcomeRoute)
	resp.SetStatus(http.StatusOK)
	return resp.Write(http.ContentTypeJSON, body)
}

func (d *Dispatcher) writeFailure(resp *http.Response) error {
	body, err := d.codec.Marshal(Envelope{Success: false, Msg: d.failureMsg})
	if err != nil {
		return err
	}
	resp.SetStatus(http.StatusOK)
	return resp.Write(http.ContentTypeJSON, body)
}

func (d *Dispatcher) serveStatic(ctx context.Context, req *http.Request, resp *http.Response) error {
	path := static.Normalize(req.Path)
	if d.static != nil {
		b, err := d.static.Fetch(path)
		if err == nil {
			d.record(ctx, outcomeStatic)
			resp.SetStatus(http.StatusOK)
			return resp.Write(static.ContentType(path), b)
		}
		if !errors.Is(err, static.ErrNotFound) {
			d.log.ErrorContext(ctx, "failed to fetch static resource", slogfield.String("path", path), slogfield.Error(err))
		}
	}

	d.record(ctx, outcomeNotFound)
	resp.SetStatus(http.StatusNotFound)
	return resp.Write(http.ContentTypeHTML, []byte(NotFoundBody))
}

func (d *Dispatcher) record(ctx context.Context, o outcome) {
	d.dispatched.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(o))))
}

// ServeConn reads a single request from rw, dispatches it and writes
// the response back to rw. It does not close rw.
func (d *Dispatcher) ServeConn(ctx context.Context, rw io.ReadWriter) error {
	f := http.NewFramer(rw, d.framerOpts...)
	req, err := http.ReadRequest(f)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(rw)
	err = d.Dispatch(ctx, req, http.NewResponse(bw))
	if err != nil {
		return err
	}
	return bw.Flush()
}
