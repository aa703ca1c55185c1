// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelconfig

import (
	"context"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Init implements the [Initializer] interface.
func (cfg LocalConfig) Init(ctx context.Context) (Providers, error) {
	res, err := cfg.resource(ctx)
	if err != nil {
		return Providers{}, err
	}

	spanExporter, err := stdouttrace.New(stdouttrace.WithWriter(cfg.Out))
	if err != nil {
		return Providers{}, err
	}

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Out))
	if err != nil {
		return Providers{}, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	return Providers{
		Tracer:   tp,
		Meter:    mp,
		shutdown: []func(context.Context) error{tp.Shutdown, mp.Shutdown},
	}, nil
}
