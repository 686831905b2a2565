// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package aabha

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Watch_InitialRunAndCancel(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/order.ts": tsFullyAnnotated,
	})

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan *RunResult, 1)

	runner := NewRunner()
	done := make(chan error, 1)
	go func() {
		done <- runner.Watch(ctx, []string{root}, 50*time.Millisecond, func(r *RunResult) {
			select {
			case results <- r:
			default:
			}
		})
	}()

	select {
	case r := <-results:
		assert.Len(t, r.Files, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("no initial run result")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop on cancel")
	}
}

func TestRunner_Watch_RelintsOnChange(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/order.ts": tsFullyAnnotated,
	})
	path := filepath.Join(root, "src", "order.ts")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan *RunResult, 4)

	runner := NewRunner()
	go func() {
		_ = runner.Watch(ctx, []string{root}, 50*time.Millisecond, func(r *RunResult) {
			results <- r
		})
	}()

	// Wait out the initial run before touching the file.
	select {
	case <-results:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial run")
	}

	require.NoError(t, os.WriteFile(path, []byte(tsMissingDescription), 0o644))

	select {
	case r := <-results:
		assert.True(t, r.Failed(), "re-lint must see the removed description")
	case <-time.After(5 * time.Second):
		t.Fatal("no re-lint after file change")
	}
}

func TestRunner_Watch_ScopesRelintToChangedFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/order.ts":   tsFullyAnnotated,
		"src/invoice.ts": tsFullyAnnotated,
	})
	path := filepath.Join(root, "src", "invoice.ts")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan *RunResult, 4)

	runner := NewRunner()
	go func() {
		_ = runner.Watch(ctx, []string{root}, 50*time.Millisecond, func(r *RunResult) {
			results <- r
		})
	}()

	select {
	case r := <-results:
		assert.Len(t, r.Files, 2, "initial run covers everything")
	case <-time.After(5 * time.Second):
		t.Fatal("no initial run")
	}

	require.NoError(t, os.WriteFile(path, []byte(tsMissingDescription), 0o644))

	select {
	case r := <-results:
		require.Len(t, r.Files, 1, "re-lint covers only the changed file")
		assert.Contains(t, r.Files[0].FilePath, "invoice.ts")
		assert.True(t, r.Failed())
	case <-time.After(5 * time.Second):
		t.Fatal("no re-lint after file change")
	}
}

func TestRelintTargets(t *testing.T) {
	root := writeTree(t, map[string]string{"a.ts": tsFullyAnnotated})
	existing := filepath.ToSlash(filepath.Join(root, "a.ts"))
	paths := []string{"proj"}

	assert.Equal(t, paths, relintTargets(nil, false, paths),
		"empty change set falls back to the full paths")
	assert.Equal(t, paths, relintTargets(map[string]bool{existing: true}, true, paths),
		"full-run marker wins over a collected file")
	assert.Equal(t, []string{existing},
		relintTargets(map[string]bool{existing: true}, false, paths))
	assert.Equal(t, paths, relintTargets(map[string]bool{"gone.ts": true}, false, paths),
		"vanished file falls back to the full paths")
}

func TestRunner_RelevantEvent(t *testing.T) {
	runner := NewRunner()
	assert.False(t, runner.matchesExtension("src/readme.md"))
	assert.False(t, runner.matchesExtension("src/types.d.ts"))
	assert.True(t, runner.matchesExtension("src/order.ts"))
	assert.True(t, runner.matchesExtension("src/view.tsx"))
}
