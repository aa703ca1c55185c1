// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package health reports whether a component is ready to take traffic.
package health

import (
	"context"
	"sync/atomic"
)

// Metric represents anything that can report its health status.
type Metric interface {
	Healthy(context.Context) bool
}

// MetricFunc is an adapter to allow the use of ordinary functions as [Metric]s.
type MetricFunc func(context.Context) bool

// Healthy implements the [Metric] interface.
func (f MetricFunc) Healthy(ctx context.Context) bool {
	return f(ctx)
}

// Binary represents a health.Metric that is either healthy or not.
// The zero value is unhealthy.
type Binary struct {
	healthy atomic.Bool
}

// MarkHealthy
func (m *Binary) MarkHealthy() {
	m.healthy.Store(true)
}

// MarkUnhealthy
func (m *Binary) MarkUnhealthy() {
	m.healthy.Store(false)
}

// Healthy implements the Metric interface.
func (m *Binary) Healthy(ctx context.Context) bool {
	return m.healthy.Load()
}

// AndMetric represents multiple Metrics all and'd together.
type AndMetric struct {
	metrics []Metric
}

// And returns a Metric which is only healthy when all of metrics are.
func And(metrics ...Metric) AndMetric {
	return AndMetric{
		metrics: metrics,
	}
}

// Healthy implements the Metric interface.
func (m AndMetric) Healthy(ctx context.Context) bool {
	for _, metric := range m.metrics {
		if !metric.Healthy(ctx) {
			return false
		}
	}
	return true
}
