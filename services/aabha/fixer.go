// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package aabha

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/krabhishek/aabha-lint/services/aabha/autofix"
	"github.com/krabhishek/aabha-lint/services/aabha/rules"
)

// maxFixPasses bounds the fix loop per file. Each pass inserts at most one
// field per annotation object, so a pass count above the largest required
// field set means the loop is not converging.
const maxFixPasses = 5

// PlannedFix describes one insertion the fixer decided on.
type PlannedFix struct {
	// Rule is the qualified rule that proposed the fix.
	Rule string `json:"rule"`

	// Target is the decorated declaration the fix applies to.
	Target string `json:"target"`

	// Key is the inserted field key.
	Key string `json:"key"`

	// FieldText is the inserted property text.
	FieldText string `json:"field_text"`

	// Offset is the insertion byte offset in the content the fix was
	// planned against.
	Offset uint32 `json:"offset"`
}

// FileFixResult holds the fix outcome for one file.
type FileFixResult struct {
	// FilePath is the fixed file.
	FilePath string `json:"file_path"`

	// Applied is the number of insertions made (or that would be made in a
	// dry run).
	Applied int `json:"applied"`

	// Fixes lists the insertions in application order.
	Fixes []PlannedFix `json:"fixes,omitempty"`

	// VerifyFailed is set when an applied pass produced content that no
	// longer parses cleanly. The pass is rolled back and fixing stops; the
	// file on disk is never left in the broken state.
	VerifyFailed bool `json:"verify_failed,omitempty"`
}

// FixRunResult aggregates a full fix run.
type FixRunResult struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// DryRun indicates no files were written.
	DryRun bool `json:"dry_run"`

	// Files holds per-file results in path order.
	Files []FileFixResult `json:"files"`

	// DurationMilli is the wall-clock run duration in milliseconds.
	DurationMilli int64 `json:"duration_milli"`
}

// TotalApplied returns the number of insertions across all files.
func (r *FixRunResult) TotalApplied() int {
	n := 0
	for _, f := range r.Files {
		n += f.Applied
	}
	return n
}

// FixPaths applies insert-only fixes to all matching files under the given
// paths.
//
// Inputs:
//   - ctx: Context for cancellation.
//   - paths: Files or directories, as for LintPaths.
//   - dryRun: When true, fixes are planned and reported but nothing is
//     written to disk.
//
// Outputs:
//   - *FixRunResult: Per-file fix outcomes. Never nil on success.
//   - error: Discovery failure, an unreadable or unwritable file, or
//     context cancellation.
func (r *Runner) FixPaths(ctx context.Context, paths []string, dryRun bool) (*FixRunResult, error) {
	start := time.Now()
	runID := uuid.New().String()

	ctx, span := startRunSpan(ctx, "Runner.FixPaths", runID, len(paths))
	defer span.End()

	files, err := r.Discover(paths)
	if err != nil {
		return nil, err
	}
	slog.Info("fix run started",
		slog.String("run_id", runID),
		slog.Int("files", len(files)),
		slog.Bool("dry_run", dryRun))

	results := make([]FileFixResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			fr, err := r.fixFile(gctx, path, dryRun)
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

	out := &FixRunResult{
		RunID:         runID,
		DryRun:        dryRun,
		Files:         results,
		DurationMilli: time.Since(start).Milliseconds(),
	}
	recordFixMetrics(ctx, len(files), out.TotalApplied(), time.Since(start))

	slog.Info("fix run finished",
		slog.String("run_id", runID),
		slog.Int("applied", out.TotalApplied()),
		slog.Int64("duration_ms", out.DurationMilli))
	return out, nil
}

// fixFile runs the plan-apply-verify loop for one file.
//
// Each pass plans at most one insertion per annotation object so the
// planner's comma and indentation decisions are always made against text
// it can see; inserting two fields into the same object in one pass would
// invalidate the second edit's context. The loop re-analyzes after every
// pass until no plannable fixes remain.
func (r *Runner) fixFile(ctx context.Context, path string, dryRun bool) (FileFixResult, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return FileFixResult{}, fmt.Errorf("read file: %w", err)
	}

	result := FileFixResult{FilePath: path}
	content := original

	for pass := 0; pass < maxFixPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return FileFixResult{}, err
		}

		fa, err := r.analyzeContent(ctx, content, path)
		if err != nil {
			return FileFixResult{}, err
		}

		edits, planned := r.planPass(fa)
		if len(edits) == 0 {
			break
		}

		next := applyEdits(content, edits)

		// A fix that breaks the parse is worse than the finding it
		// repairs. Gate every pass on a clean re-scan before accepting it.
		verify, err := r.analyzeContent(ctx, next, path)
		if err != nil && ctx.Err() != nil {
			return FileFixResult{}, err
		}
		if err != nil || (len(verify.scanErrors) > 0 && len(fa.scanErrors) == 0) {
			slog.Warn("fix pass failed verification, rolling back",
				slog.String("file", path),
				slog.Int("pass", pass))
			result.VerifyFailed = true
			break
		}

		content = next
		result.Applied += len(edits)
		result.Fixes = append(result.Fixes, planned...)
	}

	if !dryRun && result.Applied > 0 && !bytes.Equal(content, original) {
		info, err := os.Stat(path)
		mode := os.FileMode(0o644)
		if err == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(path, content, mode); err != nil {
			return FileFixResult{}, fmt.Errorf("write file: %w", err)
		}
	}
	return result, nil
}

// planPass computes one pass worth of edits: for every annotation with an
// object argument, the first fixable diagnostic whose key is not already
// present, planned through the mutation engine.
func (r *Runner) planPass(fa *fileAnnotations) ([]autofix.Edit, []PlannedFix) {
	var edits []autofix.Edit
	var planned []PlannedFix

	for i, ann := range fa.annotations {
		if !ann.HasObjectArgument() {
			continue
		}
		diags := r.registry.Check(&rules.Context{
			Annotation: ann,
			Value:      fa.values[i],
			Anchors:    fa.anchors[i],
		})
		for _, d := range diags {
			if d.Fix == nil {
				continue
			}
			edit, ok := autofix.PlanInsertion(fa.content, *ann.ObjectRange,
				fa.anchors[i], d.Fix.FieldKey, d.Fix.FieldText)
			if !ok {
				continue
			}
			edits = append(edits, edit)
			planned = append(planned, PlannedFix{
				Rule:      d.Rule,
				Target:    d.Target,
				Key:       d.Fix.FieldKey,
				FieldText: d.Fix.FieldText,
				Offset:    edit.Offset,
			})
			break // one insertion per object per pass
		}
	}
	return edits, planned
}

// applyEdits applies insertions in descending offset order so earlier
// offsets stay valid as text grows.
func applyEdits(content []byte, edits []autofix.Edit) []byte {
	sorted := make([]autofix.Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset > sorted[j].Offset
	})
	for _, e := range sorted {
		content = e.Apply(content)
	}
	return content
}
