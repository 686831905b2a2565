// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package aabha orchestrates the lint pipeline: file discovery, annotation
// scanning, metadata evaluation, rule checking, and fix application.
package aabha

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/krabhishek/aabha-lint/services/aabha/ast"
	"github.com/krabhishek/aabha-lint/services/aabha/meta"
	"github.com/krabhishek/aabha-lint/services/aabha/rules"
)

// Directories never descended into during discovery.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency sets the number of files linted in parallel.
// Defaults to GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRegistry replaces the default builtin rule registry.
func WithRegistry(reg *rules.Registry) Option {
	return func(r *Runner) {
		if reg != nil {
			r.registry = reg
		}
	}
}

// WithScanner replaces the default TypeScript scanner.
func WithScanner(s ast.Scanner) Option {
	return func(r *Runner) {
		if s != nil {
			r.scanner = s
		}
	}
}

// Runner drives lint and fix runs over a set of paths.
//
// Description:
//
//	A Runner wires the scanner, the metadata evaluator, and the rule
//	registry into one pipeline. Files are processed in parallel; each
//	file's parse tree is evaluated and released before its result is
//	collected, so memory stays proportional to concurrency rather than
//	repository size.
//
// Thread Safety: Safe for concurrent use.
type Runner struct {
	scanner     ast.Scanner
	registry    *rules.Registry
	concurrency int
}

// NewRunner creates a runner with the builtin rule set.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		scanner:     ast.NewTypeScriptScanner(),
		registry:    rules.DefaultRegistry(),
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the runner's rule registry.
func (r *Runner) Registry() *rules.Registry {
	return r.registry
}

// FileResult holds the outcome for a single file.
type FileResult struct {
	// FilePath is the linted file.
	FilePath string `json:"file_path"`

	// Diagnostics are the rule findings, ordered by source position.
	Diagnostics []rules.Diagnostic `json:"diagnostics"`

	// ScanErrors are non-fatal scan problems (e.g. syntax errors).
	ScanErrors []string `json:"scan_errors,omitempty"`

	// AnnotationCount is the number of annotations found in the file.
	AnnotationCount int `json:"annotation_count"`
}

// RunResult aggregates a full lint run.
type RunResult struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// Files holds per-file results in path order. Files with neither
	// diagnostics nor scan errors are included with empty slices.
	Files []FileResult `json:"files"`

	// DurationMilli is the wall-clock run duration in milliseconds.
	DurationMilli int64 `json:"duration_milli"`
}

// Counts returns the number of diagnostics per severity.
func (r *RunResult) Counts() (errors, warnings, infos int) {
	for _, f := range r.Files {
		for _, d := range f.Diagnostics {
			switch d.Severity {
			case rules.SeverityError:
				errors++
			case rules.SeverityWarning:
				warnings++
			default:
				infos++
			}
		}
	}
	return errors, warnings, infos
}

// Failed reports whether the run produced any error-severity diagnostic.
func (r *RunResult) Failed() bool {
	errs, _, _ := r.Counts()
	return errs > 0
}

// LintPaths lints all matching files under the given paths.
//
// Inputs:
//   - ctx: Context for cancellation, checked between files.
//   - paths: Files or directories. Directories are walked recursively;
//     dependency and output directories are skipped.
//
// Outputs:
//   - *RunResult: Per-file diagnostics in path order. Never nil on success.
//   - error: Discovery failure, an unreadable file, or context cancellation.
func (r *Runner) LintPaths(ctx context.Context, paths []string) (*RunResult, error) {
	start := time.Now()
	runID := uuid.New().String()

	ctx, span := startRunSpan(ctx, "Runner.LintPaths", runID, len(paths))
	defer span.End()

	files, err := r.Discover(paths)
	if err != nil {
		return nil, err
	}
	slog.Info("lint run started",
		slog.String("run_id", runID),
		slog.Int("files", len(files)))

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			fr, err := r.lintFile(gctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = fr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &RunResult{
		RunID:         runID,
		Files:         results,
		DurationMilli: time.Since(start).Milliseconds(),
	}
	errs, warns, infos := out.Counts()
	recordRunMetrics(ctx, len(files), errs, warns, infos, time.Since(start))
	setRunSpanResult(span, len(files), errs+warns+infos)

	slog.Info("lint run finished",
		slog.String("run_id", runID),
		slog.Int("errors", errs),
		slog.Int("warnings", warns),
		slog.Int("infos", infos),
		slog.Int64("duration_ms", out.DurationMilli))
	return out, nil
}

// Discover expands the given paths into the sorted list of lintable files.
// Paths are returned in cleaned slash form, so parent-relative arguments
// like "../proj" yield paths the scanner accepts.
func (r *Runner) Discover(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		path = filepath.ToSlash(filepath.Clean(path))
		if !seen[path] && r.matchesExtension(path) {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if skipDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// matchesExtension reports whether the path is lintable. Declaration files
// carry no decorators worth checking.
func (r *Runner) matchesExtension(path string) bool {
	if strings.HasSuffix(path, ".d.ts") {
		return false
	}
	for _, ext := range r.scanner.Extensions() {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// lintFile runs the scan-evaluate-check pipeline on one file.
func (r *Runner) lintFile(ctx context.Context, path string) (FileResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, fmt.Errorf("read file: %w", err)
	}

	scan, err := r.scanner.Scan(ctx, content, path)
	if err != nil {
		return FileResult{}, fmt.Errorf("scan: %w", err)
	}
	defer scan.Close()

	fr := FileResult{
		FilePath:        path,
		Diagnostics:     []rules.Diagnostic{},
		ScanErrors:      scan.Errors,
		AnnotationCount: len(scan.Annotations),
	}
	for _, ann := range scan.Annotations {
		value, anchors := meta.Evaluate(content, ann.ArgNode)
		diags := r.registry.Check(&rules.Context{
			Annotation: ann,
			Value:      value,
			Anchors:    anchors,
		})
		fr.Diagnostics = append(fr.Diagnostics, diags...)
	}

	sort.SliceStable(fr.Diagnostics, func(i, j int) bool {
		a, b := fr.Diagnostics[i].Location, fr.Diagnostics[j].Location
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.StartCol < b.StartCol
	})
	return fr, nil
}

// fileAnnotations is the scan+evaluate product the fixer works from.
type fileAnnotations struct {
	content     []byte
	annotations []*ast.Annotation
	values      []meta.Value
	anchors     [][]meta.PropertyAnchor
	scanErrors  []string
}

// analyzeContent scans and eagerly evaluates in-memory content, releasing
// the parse tree before returning. The fixer uses it both for planning and
// for the verification re-scan of edited text.
func (r *Runner) analyzeContent(ctx context.Context, content []byte, path string) (*fileAnnotations, error) {
	scan, err := r.scanner.Scan(ctx, content, path)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	defer scan.Close()

	fa := &fileAnnotations{
		content:     content,
		annotations: scan.Annotations,
		values:      make([]meta.Value, len(scan.Annotations)),
		anchors:     make([][]meta.PropertyAnchor, len(scan.Annotations)),
		scanErrors:  scan.Errors,
	}
	for i, ann := range scan.Annotations {
		fa.values[i], fa.anchors[i] = meta.Evaluate(content, ann.ArgNode)
		ann.ArgNode = nil // tree is closed on return
	}
	return fa, nil
}
