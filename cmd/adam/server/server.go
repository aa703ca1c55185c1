// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package server wires the example routes into a runnable HTTP runtime.
package server

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/z5labs/adam"
	"github.com/z5labs/adam/app"
	"github.com/z5labs/adam/cmd/adam/example"
	"github.com/z5labs/adam/dispatch"
	"github.com/z5labs/adam/pkg/health"
	"github.com/z5labs/adam/pkg/maskslog"
	"github.com/z5labs/adam/pkg/otelconfig"
	"github.com/z5labs/adam/pkg/otelslog"
	"github.com/z5labs/adam/pkg/slogfield"
	"github.com/z5labs/adam/route"
	httprt "github.com/z5labs/adam/runtime/http"
	"github.com/z5labs/adam/static"
)

// Config is decoded from the embedded defaults and any user supplied config.
type Config struct {
	Server struct {
		Port           int           `config:"port"`
		Workers        int           `config:"workers"`
		ReadTimeout    time.Duration `config:"readTimeout"`
		DrainTimeout   time.Duration `config:"drainTimeout"`
		ChunkSize      int           `config:"chunkSize"`
		MaxHeaderBytes int           `config:"maxHeaderBytes"`
		ExitPath       string        `config:"exitPath"`
	} `config:"server"`

	Static struct {
		Dir string `config:"dir"`
	} `config:"static"`

	Logging struct {
		Level slog.Level `config:"level"`
	} `config:"logging"`

	OTel otelconfig.Config `config:"otel"`
}

// OTelInitializer implements the [appbuilder.OTelConfigurer] interface.
func (cfg Config) OTelInitializer() (otelconfig.Initializer, error) {
	return cfg.OTel.Initializer()
}

// HealthPath reports whether the server is accepting connections.
const HealthPath = "/healthz"

// Builder builds the server app. Log records are written to Out.
type Builder struct {
	Out io.Writer

	// Listen opens the listener. It defaults to [httprt.Listen].
	Listen func(port int) (net.Listener, error)
}

// Build implements the [adam.AppBuilder] interface.
func (b Builder) Build(ctx context.Context, cfg Config) (adam.App, error) {
	out := b.Out
	if out == nil {
		out = os.Stderr
	}
	listen := b.Listen
	if listen == nil {
		listen = httprt.Listen
	}

	logHandler := maskslog.NewHandler(
		slog.NewJSONHandler(out, &slog.HandlerOptions{
			AddSource: true,
			Level:     cfg.Logging.Level,
		}),
		maskslog.Attr("cookie", maskslog.Redact),
	)
	log := otelslog.New(logHandler)

	staticFS := os.DirFS(cfg.Static.Dir)

	var rt *httprt.Runtime
	ready := health.MetricFunc(func(ctx context.Context) bool {
		return rt != nil && rt.Health().Healthy(ctx)
	})
	status := health.And(ready, staticDir(staticFS))

	reg, err := route.NewRegistry(example.Routes(), route.Routes{healthRoute(status)})
	if err != nil {
		return nil, err
	}

	opts := []dispatch.Option{
		dispatch.LogHandler(logHandler),
		dispatch.StaticResources(static.NewFS(staticFS)),
		dispatch.ChunkSize(cfg.Server.ChunkSize),
		dispatch.MaxHeaderBytes(cfg.Server.MaxHeaderBytes),
	}
	if cfg.Server.ExitPath != "" {
		opts = append(opts, dispatch.ExitPath(cfg.Server.ExitPath, func() {
			rt.Drain()
		}))
	}
	d, err := dispatch.New(reg, opts...)
	if err != nil {
		return nil, err
	}

	ln, err := listen(cfg.Server.Port)
	if err != nil {
		return nil, err
	}

	rt = httprt.NewRuntime(
		ln,
		d,
		httprt.LogHandler(logHandler),
		httprt.Workers(cfg.Server.Workers),
		httprt.ReadTimeout(cfg.Server.ReadTimeout),
		httprt.DrainTimeout(cfg.Server.DrainTimeout),
	)

	log.InfoContext(
		ctx,
		"built server",
		slogfield.String("addr", rt.Addr().String()),
		slogfield.Int("workers", cfg.Server.Workers),
		slogfield.Duration("read_timeout", cfg.Server.ReadTimeout),
		slogfield.Strings("routes", reg.Paths()),
	)

	a := app.WithSignalNotifications(rt, os.Interrupt, syscall.SIGTERM)
	return app.Recover(a), nil
}

// staticDir is healthy while the static resource directory can be read.
func staticDir(fsys fs.FS) health.Metric {
	return health.MetricFunc(func(context.Context) bool {
		_, err := fs.Stat(fsys, ".")
		return err == nil
	})
}

// Status is the body returned from [HealthPath].
type Status struct {
	Healthy bool `json:"healthy"`
}

func healthRoute(m health.Metric) route.Route {
	return route.Route{
		Path: HealthPath,
		Handler: route.HandlerFunc(func(ctx context.Context, _ route.Args) (any, error) {
			return Status{Healthy: m.Healthy(ctx)}, nil
		}),
	}
}
