// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelconfig builds OpenTelemetry tracer and meter providers
// for the supported exporters.
package otelconfig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// Exporter names where telemetry is sent.
type Exporter string

const (
	ExporterNone   Exporter = "none"
	ExporterStdout Exporter = "stdout"
	ExporterOTLP   Exporter = "otlp"
)

// Config selects an exporter. It is meant to be decoded from config.
type Config struct {
	ServiceName  string   `config:"serviceName"`
	Exporter     Exporter `config:"exporter"`
	OTLPEndpoint string   `config:"otlpEndpoint"`
}

// UnknownExporterError occurs when [Config.Exporter] is not supported.
type UnknownExporterError struct {
	Exporter Exporter
}

// Error implements the error interface.
func (e UnknownExporterError) Error() string {
	return fmt.Sprintf("otelconfig: unknown exporter: %q", e.Exporter)
}

// Initializer returns the [Initializer] for cfg.Exporter. An empty
// exporter is the same as [ExporterNone].
func (cfg Config) Initializer() (Initializer, error) {
	switch cfg.Exporter {
	case "", ExporterNone:
		return Noop, nil
	case ExporterStdout:
		return Local(ServiceName(cfg.ServiceName)), nil
	case ExporterOTLP:
		return OTLP(ServiceName(cfg.ServiceName), Target(cfg.OTLPEndpoint)), nil
	default:
		return nil, UnknownExporterError{Exporter: cfg.Exporter}
	}
}

// Common holds settings shared by every [Initializer].
type Common struct {
	ServiceName string
}

// CommonOption can configure any [Initializer].
type CommonOption interface {
	LocalOption
	OTLPOption
}

type commonOptionFunc func(*Common)

func (f commonOptionFunc) ApplyLocal(cfg *LocalConfig) {
	f(&cfg.Common)
}

func (f commonOptionFunc) ApplyOTLP(cfg *OTLPConfig) {
	f(&cfg.Common)
}

// ServiceName sets the service.name resource attribute.
func ServiceName(name string) CommonOption {
	return commonOptionFunc(func(c *Common) {
		c.ServiceName = name
	})
}

func (c Common) resource(ctx context.Context) (*resource.Resource, error) {
	return resource.New(
		ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(semconv.ServiceName(c.ServiceName)),
	)
}

// Providers are the tracer and meter providers built by an [Initializer].
type Providers struct {
	Tracer trace.TracerProvider
	Meter  metric.MeterProvider

	shutdown []func(context.Context) error
}

// Shutdown flushes and stops the providers and releases the resources
// held by their exporters.
func (p Providers) Shutdown(ctx context.Context) error {
	errs := make([]error, 0, len(p.shutdown))
	for _, f := range p.shutdown {
		errs = append(errs, f(ctx))
	}
	return errors.Join(errs...)
}

// Initializer builds [Providers].
type Initializer interface {
	Init(context.Context) (Providers, error)
}

// Noop builds providers which drop all telemetry.
var Noop Initializer = noopInitializer{}

type noopInitializer struct{}

func (noopInitializer) Init(context.Context) (Providers, error) {
	return Providers{
		Tracer: nooptrace.NewTracerProvider(),
		Meter:  noopmetric.NewMeterProvider(),
	}, nil
}

// LocalConfig configures the [Local] initializer.
type LocalConfig struct {
	Common

	Out io.Writer
}

// LocalOption configures the [Local] initializer.
type LocalOption interface {
	ApplyLocal(*LocalConfig)
}

type localOptionFunc func(*LocalConfig)

func (f localOptionFunc) ApplyLocal(cfg *LocalConfig) {
	f(cfg)
}

// Writer sets where [Local] writes telemetry. The default is [os.Stdout].
func Writer(w io.Writer) LocalOption {
	return localOptionFunc(func(cfg *LocalConfig) {
		cfg.Out = w
	})
}

// Local returns an [Initializer] which pretty prints telemetry to a writer.
func Local(opts ...LocalOption) Initializer {
	cfg := LocalConfig{
		Out: os.Stdout,
	}
	for _, opt := range opts {
		opt.ApplyLocal(&cfg)
	}
	return cfg
}

// Install builds the providers from i and registers them, along with
// W3C trace context and baggage propagation, as the otel globals.
func Install(ctx context.Context, i Initializer) (Providers, error) {
	p, err := i.Init(ctx)
	if err != nil {
		return Providers{}, err
	}

	otel.SetTracerProvider(p.Tracer)
	otel.SetMeterProvider(p.Meter)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return p, nil
}
