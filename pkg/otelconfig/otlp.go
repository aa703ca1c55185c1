// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelconfig

import (
	"context"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// OTLPConfig configures the [OTLP] initializer.
type OTLPConfig struct {
	Common

	// Target is the gRPC target of the collector, e.g. localhost:4317.
	Target string

	DialOptions []grpc.DialOption
}

// OTLPOption configures the [OTLP] initializer.
type OTLPOption interface {
	ApplyOTLP(*OTLPConfig)
}

type otlpOptionFunc func(*OTLPConfig)

func (f otlpOptionFunc) ApplyOTLP(cfg *OTLPConfig) {
	f(cfg)
}

// Target sets the collector's gRPC target.
func Target(target string) OTLPOption {
	return otlpOptionFunc(func(cfg *OTLPConfig) {
		cfg.Target = target
	})
}

// DialOptions replaces the options used to create the collector connection.
// The default is a plaintext connection.
func DialOptions(opts ...grpc.DialOption) OTLPOption {
	return otlpOptionFunc(func(cfg *OTLPConfig) {
		cfg.DialOptions = opts
	})
}

// OTLP returns an [Initializer] which exports traces and metrics to an
// OpenTelemetry collector over a single gRPC connection.
func OTLP(opts ...OTLPOption) Initializer {
	cfg := OTLPConfig{
		DialOptions: []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
	}
	for _, opt := range opts {
		opt.ApplyOTLP(&cfg)
	}
	return cfg
}

// Init implements the [Initializer] interface. The connection is
// established lazily so Init does not wait for the collector.
func (cfg OTLPConfig) Init(ctx context.Context) (Providers, error) {
	res, err := cfg.resource(ctx)
	if err != nil {
		return Providers{}, err
	}

	conn, err := grpc.NewClient(cfg.Target, cfg.DialOptions...)
	if err != nil {
		return Providers{}, err
	}

	spanExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		conn.Close()
		return Providers{}, err
	}

	metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		conn.Close()
		return Providers{}, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(spanExporter),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	return Providers{
		Tracer: tp,
		Meter:  mp,
		shutdown: []func(context.Context) error{
			tp.Shutdown,
			mp.Shutdown,
			func(context.Context) error { return conn.Close() },
		},
	}, nil
}
