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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krabhishek/aabha-lint/services/aabha/autofix"
)

func TestRunner_FixPaths_InsertsMissingField(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/order.ts": tsMissingDescription,
	})
	path := filepath.Join(root, "src", "order.ts")

	runner := NewRunner()
	result, err := runner.FixPaths(context.Background(), []string{root}, false)
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Equal(t, 1, result.Files[0].Applied)
	assert.False(t, result.Files[0].VerifyFailed)
	require.Len(t, result.Files[0].Fixes, 1)
	assert.Equal(t, "description", result.Files[0].Fixes[0].Key)

	fixed, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(fixed), `description: ""`)
	assert.Contains(t, string(fixed), `owner: "payments",`)

	// The fixed file satisfies the required-field rule; only the
	// empty-string warning remains.
	lint, err := runner.LintPaths(context.Background(), []string{root})
	require.NoError(t, err)
	assert.False(t, lint.Failed())
}

func TestRunner_FixPaths_DryRunLeavesFileUntouched(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/order.ts": tsMissingDescription,
	})
	path := filepath.Join(root, "src", "order.ts")

	runner := NewRunner()
	result, err := runner.FixPaths(context.Background(), []string{root}, true)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.TotalApplied())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, tsMissingDescription, string(content))
}

func TestRunner_FixPaths_EmptyObjectGetsAllRequiredFields(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/order.ts": "@Entity({})\nexport class OrderService {}\n",
	})
	path := filepath.Join(root, "src", "order.ts")

	runner := NewRunner()
	result, err := runner.FixPaths(context.Background(), []string{root}, false)
	require.NoError(t, err)

	// description and owner arrive in separate passes so each insertion is
	// planned against text that already contains the previous one.
	assert.Equal(t, 2, result.TotalApplied())

	fixed, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(fixed), `description: ""`)
	assert.Contains(t, string(fixed), `owner: ""`)

	lint, err := runner.LintPaths(context.Background(), []string{root})
	require.NoError(t, err)
	assert.False(t, lint.Failed())
}

func TestRunner_FixPaths_IdempotentAcrossRuns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/order.ts": tsMissingDescription,
	})
	path := filepath.Join(root, "src", "order.ts")

	runner := NewRunner()
	_, err := runner.FixPaths(context.Background(), []string{root}, false)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	second, err := runner.FixPaths(context.Background(), []string{root}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, second.TotalApplied())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(after))
}

func TestRunner_FixPaths_NoObjectArgumentIsLeftAlone(t *testing.T) {
	source := "@Entity(\"Order\")\nexport class OrderService {}\n"
	root := writeTree(t, map[string]string{"src/order.ts": source})
	path := filepath.Join(root, "src", "order.ts")

	runner := NewRunner()
	result, err := runner.FixPaths(context.Background(), []string{root}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalApplied())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, source, string(content))
}

func TestApplyEdits_DescendingOrder(t *testing.T) {
	source := []byte("{a}{b}")
	out := applyEdits(source, []autofix.Edit{
		{Offset: 2, InsertText: "1"},
		{Offset: 5, InsertText: "2"},
	})
	assert.Equal(t, "{a1}{b2}", string(out))
}

func TestRunner_FixPaths_MultipleAnnotationsOneFile(t *testing.T) {
	source := strings.Join([]string{
		`@Entity({`,
		`  name: "Order",`,
		`  owner: "payments"`,
		`})`,
		`export class OrderService {`,
		`  @Metric({ aggregation: Aggregation.P95 })`,
		`  latency(): number { return 0; }`,
		`}`,
		``,
	}, "\n")
	root := writeTree(t, map[string]string{"src/order.ts": source})
	path := filepath.Join(root, "src", "order.ts")

	runner := NewRunner()
	result, err := runner.FixPaths(context.Background(), []string{root}, false)
	require.NoError(t, err)

	// Entity is missing description; Metric is missing description and unit.
	assert.GreaterOrEqual(t, result.TotalApplied(), 3)

	fixed, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(fixed), `description: ""`)+
		strings.Count(string(fixed), `unit: ""`))

	lint, err := runner.LintPaths(context.Background(), []string{root})
	require.NoError(t, err)
	assert.False(t, lint.Failed())
}
