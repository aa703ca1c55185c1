// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelconfig

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
)

func TestConfig_Initializer(t *testing.T) {
	t.Run("will select the initializer for the exporter", func(t *testing.T) {
		testCases := []struct {
			Name     string
			Exporter Exporter
			Want     any
		}{
			{Name: "empty", Exporter: "", Want: noopInitializer{}},
			{Name: "none", Exporter: ExporterNone, Want: noopInitializer{}},
			{Name: "stdout", Exporter: ExporterStdout, Want: LocalConfig{}},
			{Name: "otlp", Exporter: ExporterOTLP, Want: OTLPConfig{}},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				initializer, err := Config{ServiceName: "adam", Exporter: testCase.Exporter}.Initializer()
				if !assert.Nil(t, err) {
					return
				}
				if !assert.IsType(t, testCase.Want, initializer) {
					return
				}
			})
		}
	})

	t.Run("will pass the service name and endpoint along", func(t *testing.T) {
		initializer, err := Config{
			ServiceName:  "adam",
			Exporter:     ExporterOTLP,
			OTLPEndpoint: "collector:4317",
		}.Initializer()
		if !assert.Nil(t, err) {
			return
		}

		cfg, ok := initializer.(OTLPConfig)
		if !assert.True(t, ok) {
			return
		}
		if !assert.Equal(t, "adam", cfg.ServiceName) {
			return
		}
		if !assert.Equal(t, "collector:4317", cfg.Target) {
			return
		}
	})

	t.Run("will return an UnknownExporterError", func(t *testing.T) {
		t.Run("if the exporter is not supported", func(t *testing.T) {
			_, err := Config{Exporter: "zipkin"}.Initializer()

			var uerr UnknownExporterError
			if !assert.ErrorAs(t, err, &uerr) {
				return
			}
			if !assert.Equal(t, Exporter("zipkin"), uerr.Exporter) {
				return
			}
		})
	})
}

func TestLocalConfig_Init(t *testing.T) {
	t.Run("will write spans to the configured writer", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := Local(ServiceName("adam"), Writer(&buf)).Init(context.Background())
		if !assert.Nil(t, err) {
			return
		}

		_, span := p.Tracer.Tracer("test").Start(context.Background(), "Dispatcher.Dispatch")
		span.End()

		err = p.Shutdown(context.Background())
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Contains(t, buf.String(), "Dispatcher.Dispatch") {
			return
		}
		if !assert.Contains(t, buf.String(), "adam") {
			return
		}
	})
}

func TestOTLPConfig_Init(t *testing.T) {
	t.Run("will not wait for the collector", func(t *testing.T) {
		p, err := OTLP(ServiceName("adam"), Target("127.0.0.1:1")).Init(context.Background())
		if !assert.Nil(t, err) {
			return
		}
		if !assert.NotNil(t, p.Tracer) {
			return
		}
		if !assert.NotNil(t, p.Meter) {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		p.Shutdown(ctx)
	})
}

func TestInstall(t *testing.T) {
	t.Run("will register the providers globally", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := Install(context.Background(), Local(Writer(&buf)))
		if !assert.Nil(t, err) {
			return
		}
		defer p.Shutdown(context.Background())

		if !assert.Equal(t, p.Tracer, otel.GetTracerProvider()) {
			return
		}
		if !assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent") {
			return
		}
	})
}
