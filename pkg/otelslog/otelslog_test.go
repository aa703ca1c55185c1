// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelslog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type otelRecord struct {
	Message string `json:"msg"`
	OTel    struct {
		TraceID string `json:"trace_id"`
		SpanID  string `json:"span_id"`
		Sampled bool   `json:"sampled"`
	} `json:"otel"`
}

func TestHandler_Handle(t *testing.T) {
	t.Run("will not add trace id and span id", func(t *testing.T) {
		t.Run("if the context has no span", func(t *testing.T) {
			var buf bytes.Buffer
			log := New(slog.NewJSONHandler(&buf, nil))

			log.InfoContext(context.Background(), "accepting connections")

			var record otelRecord
			err := json.Unmarshal(buf.Bytes(), &record)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "accepting connections", record.Message) {
				return
			}
			if !assert.Empty(t, record.OTel.TraceID) {
				return
			}
		})
	})

	t.Run("will add trace id and span id", func(t *testing.T) {
		t.Run("if the context has a valid span", func(t *testing.T) {
			var buf bytes.Buffer
			log := New(slog.NewJSONHandler(&buf, nil))

			tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
			defer tp.Shutdown(context.Background())

			ctx, span := tp.Tracer("otelslog").Start(context.Background(), "Dispatcher.Dispatch")
			defer span.End()

			log.InfoContext(ctx, "dispatching request")

			var record otelRecord
			err := json.Unmarshal(buf.Bytes(), &record)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, span.SpanContext().TraceID().String(), record.OTel.TraceID) {
				return
			}
			if !assert.Equal(t, span.SpanContext().SpanID().String(), record.OTel.SpanID) {
				return
			}
			if !assert.True(t, record.OTel.Sampled) {
				return
			}
		})
	})
}

func TestNewHandler(t *testing.T) {
	t.Run("will not wrap a Handler twice", func(t *testing.T) {
		var buf bytes.Buffer
		h := NewHandler(slog.NewJSONHandler(&buf, nil))
		if !assert.Same(t, h, NewHandler(h)) {
			return
		}

		tp := sdktrace.NewTracerProvider()
		defer tp.Shutdown(context.Background())
		ctx, span := tp.Tracer("otelslog").Start(context.Background(), "test")
		defer span.End()

		New(NewHandler(h)).InfoContext(ctx, "once")
		if !assert.Equal(t, 1, strings.Count(buf.String(), `"otel"`)) {
			return
		}
	})
}
