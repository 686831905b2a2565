// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for annotation scanning.
var (
	tracer = otel.Tracer("aabha.ast")
	meter  = otel.Meter("aabha.ast")
)

// Metrics for scan operations.
var (
	scanLatency          metric.Float64Histogram
	scanTotal            metric.Int64Counter
	annotationsExtracted metric.Int64Histogram
	scanErrors           metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		scanLatency, err = meter.Float64Histogram(
			"aabha_scan_duration_seconds",
			metric.WithDescription("Duration of annotation scan operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		scanTotal, err = meter.Int64Counter(
			"aabha_scan_total",
			metric.WithDescription("Total number of scan operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		annotationsExtracted, err = meter.Int64Histogram(
			"aabha_annotations_extracted",
			metric.WithDescription("Number of annotations extracted per scan"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		scanErrors, err = meter.Int64Counter(
			"aabha_scan_errors_total",
			metric.WithDescription("Total number of scan errors"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordScanMetrics records metrics for one scan operation.
func recordScanMetrics(ctx context.Context, language string, duration time.Duration, annotationCount int, success bool) {
	if err := initMetrics(); err != nil {
		return // Silently skip if metrics init failed
	}

	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.Bool("success", success),
	)

	scanLatency.Record(ctx, duration.Seconds(), attrs)
	scanTotal.Add(ctx, 1, attrs)

	if success {
		annotationsExtracted.Record(ctx, int64(annotationCount),
			metric.WithAttributes(attribute.String("language", language)),
		)
	} else {
		scanErrors.Add(ctx, 1,
			metric.WithAttributes(attribute.String("language", language)),
		)
	}
}

// startScanSpan creates a span for a scan operation.
func startScanSpan(ctx context.Context, language, filePath string, contentSize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Scanner.Scan",
		trace.WithAttributes(
			attribute.String("aabha.language", language),
			attribute.String("aabha.file", filePath),
			attribute.Int("aabha.content_size", contentSize),
		),
	)
}

// setScanSpanResult sets the result attributes on a scan span.
func setScanSpanResult(span trace.Span, annotationCount, errorCount int) {
	span.SetAttributes(
		attribute.Int("aabha.annotation_count", annotationCount),
		attribute.Int("aabha.error_count", errorCount),
	)
}
