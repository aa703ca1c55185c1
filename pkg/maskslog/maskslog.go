// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package maskslog rewrites sensitive slog attributes before they are logged.
package maskslog

import (
	"context"
	"log/slog"
)

// Mask rewrites an attribute.
type Mask func(slog.Attr) slog.Attr

// Redact replaces any value with "****", keeping the key.
func Redact(a slog.Attr) slog.Attr {
	return slog.String(a.Key, "****")
}

// Option configures a [Handler].
type Option func(*Handler)

// Attr masks every attribute named key with m, including attributes
// nested in groups.
func Attr(key string, m Mask) Option {
	return func(h *Handler) {
		h.masks[key] = m
	}
}

// Handler is an [slog.Handler] which masks attributes before passing
// records on to another [slog.Handler].
type Handler struct {
	h     slog.Handler
	masks map[string]Mask
}

// NewHandler wraps h.
func NewHandler(h slog.Handler, opts ...Option) *Handler {
	mh := &Handler{
		h:     h,
		masks: make(map[string]Mask),
	}
	for _, opt := range opts {
		opt(mh)
	}
	return mh
}

// Enabled implements the [slog.Handler] interface.
func (h *Handler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.h.Enabled(ctx, lvl)
}

// Handle implements the [slog.Handler] interface.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if len(h.masks) == 0 || record.NumAttrs() == 0 {
		return h.h.Handle(ctx, record)
	}

	attrs := make([]slog.Attr, 0, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.mask(a))
		return true
	})

	r := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	r.AddAttrs(attrs...)
	return h.h.Handle(ctx, r)
}

func (h *Handler) mask(a slog.Attr) slog.Attr {
	if m, ok := h.masks[a.Key]; ok {
		return m(a)
	}
	if a.Value.Kind() != slog.KindGroup {
		return a
	}

	group := a.Value.Group()
	masked := make([]any, len(group))
	for i, ga := range group {
		masked[i] = h.mask(ga)
	}
	return slog.Group(a.Key, masked...)
}

// WithAttrs implements the [slog.Handler] interface.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.mask(a)
	}
	return &Handler{h: h.h.WithAttrs(masked), masks: h.masks}
}

// WithGroup implements the [slog.Handler] interface.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{h: h.h.WithGroup(name), masks: h.masks}
}
