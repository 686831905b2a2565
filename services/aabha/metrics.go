// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package aabha

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for lint and fix runs.
var (
	tracer = otel.Tracer("aabha.runner")
	meter  = otel.Meter("aabha.runner")
)

// Metrics for run operations.
var (
	runLatency   metric.Float64Histogram
	filesLinted  metric.Int64Counter
	diagnostics  metric.Int64Counter
	fixesApplied metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runLatency, err = meter.Float64Histogram(
			"aabha_run_duration_seconds",
			metric.WithDescription("Duration of lint and fix runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		filesLinted, err = meter.Int64Counter(
			"aabha_files_linted_total",
			metric.WithDescription("Total number of files processed"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		diagnostics, err = meter.Int64Counter(
			"aabha_diagnostics_total",
			metric.WithDescription("Total diagnostics produced, by severity"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		fixesApplied, err = meter.Int64Counter(
			"aabha_fixes_applied_total",
			metric.WithDescription("Total insert-only fixes applied"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordRunMetrics records metrics for one lint run.
func recordRunMetrics(ctx context.Context, fileCount, errors, warnings, infos int, duration time.Duration) {
	if err := initMetrics(); err != nil {
		return // Silently skip if metrics init failed
	}

	runLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("operation", "lint")))
	filesLinted.Add(ctx, int64(fileCount))
	diagnostics.Add(ctx, int64(errors),
		metric.WithAttributes(attribute.String("severity", "error")))
	diagnostics.Add(ctx, int64(warnings),
		metric.WithAttributes(attribute.String("severity", "warning")))
	diagnostics.Add(ctx, int64(infos),
		metric.WithAttributes(attribute.String("severity", "info")))
}

// recordFixMetrics records metrics for one fix run.
func recordFixMetrics(ctx context.Context, fileCount, applied int, duration time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}

	runLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("operation", "fix")))
	filesLinted.Add(ctx, int64(fileCount))
	fixesApplied.Add(ctx, int64(applied))
}

// startRunSpan creates a span for a lint or fix run.
func startRunSpan(ctx context.Context, name, runID string, pathCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("aabha.run_id", runID),
			attribute.Int("aabha.path_count", pathCount),
		),
	)
}

// setRunSpanResult sets the result attributes on a run span.
func setRunSpanResult(span trace.Span, fileCount, diagnosticCount int) {
	span.SetAttributes(
		attribute.Int("aabha.file_count", fileCount),
		attribute.Int("aabha.diagnostic_count", diagnosticCount),
	)
}
