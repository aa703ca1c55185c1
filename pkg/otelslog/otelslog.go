// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelslog correlates slog records with the active OpenTelemetry span.
package otelslog

import (
	"context"
	"log/slog"

	"github.com/z5labs/adam/pkg/slogfield"

	"go.opentelemetry.io/otel/trace"
)

// Handler adds an "otel" group holding the trace and span ids to every
// record logged with a context that carries a valid span.
type Handler struct {
	h slog.Handler
}

// NewHandler wraps h. Wrapping a *Handler returns it unchanged so ids
// are never added twice.
func NewHandler(h slog.Handler) *Handler {
	if oh, ok := h.(*Handler); ok {
		return oh
	}
	return &Handler{h: h}
}

// New is shorthand for slog.New(NewHandler(h)).
func New(h slog.Handler) *slog.Logger {
	return slog.New(NewHandler(h))
}

// Enabled implements the [slog.Handler] interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.h.Enabled(ctx, lvl)
}

// Handle implements the [slog.Handler] interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return h.h.Handle(ctx, record)
	}

	r := record.Clone()
	r.AddAttrs(slog.Group(
		"otel",
		slogfield.String("trace_id", sc.TraceID().String()),
		slogfield.String("span_id", sc.SpanID().String()),
		slogfield.Bool("sampled", sc.IsSampled()),
	))
	return h.h.Handle(ctx, r)
}

// WithAttrs implements the [slog.Handler] interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{h: h.h.WithAttrs(attrs)}
}

// WithGroup implements the [slog.Handler] interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{h: h.h.WithGroup(name)}
}
