// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const tsDecoratedClass = `import { Entity } from "@aabha/core";

@Entity({
  name: "Order",
  owner: "payments"
})
export class OrderService {
  process(): void {}
}
`

const tsNamespacedDecorator = `import * as aabha from "@aabha/core";

@aabha.Entity({ name: "Order" })
export class OrderService {}
`

const tsMemberDecorators = `@Entity({ name: "Order" })
export class OrderService {
  @Metric({ unit: "ms" })
  latency(): number { return 0; }

  @Policy({ enforcement: EnforcementLevel.Advisory })
  retentionDays = 30;
}
`

const tsBareDecorator = `@Sealed
class Frozen {}
`

const tsNoDecorators = `export class Plain {
  run(): void {}
}
`

const tsSyntaxError = `@Entity({ name: "Order" })
export class Broken {
  process(: void {}
`

func scanSource(t *testing.T, source, path string) *ScanResult {
	t.Helper()
	scanner := NewTypeScriptScanner()
	result, err := scanner.Scan(context.Background(), []byte(source), path)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	t.Cleanup(result.Close)
	return result
}

func TestTypeScriptScanner_Scan_DecoratedClass(t *testing.T) {
	result := scanSource(t, tsDecoratedClass, "src/order.ts")

	if len(result.Annotations) != 1 {
		t.Fatalf("annotations = %d, want 1", len(result.Annotations))
	}
	ann := result.Annotations[0]
	if ann.Kind != "Entity" {
		t.Errorf("Kind = %q, want Entity", ann.Kind)
	}
	if ann.RawName != "Entity" {
		t.Errorf("RawName = %q, want Entity", ann.RawName)
	}
	if ann.Target != "OrderService" {
		t.Errorf("Target = %q, want OrderService", ann.Target)
	}
	if ann.TargetKind != TargetClass {
		t.Errorf("TargetKind = %s, want class", ann.TargetKind)
	}
	if !ann.HasObjectArgument() {
		t.Error("expected an object argument range")
	}
	if ann.ArgNode == nil {
		t.Error("expected a live argument node before Close")
	}
	if ann.Location.StartLine != 3 {
		t.Errorf("StartLine = %d, want 3", ann.Location.StartLine)
	}

	objText := tsDecoratedClass[ann.ObjectRange.Start:ann.ObjectRange.End]
	if !strings.HasPrefix(objText, "{") || !strings.HasSuffix(objText, "}") {
		t.Errorf("ObjectRange does not delimit the literal: %q", objText)
	}
}

func TestTypeScriptScanner_Scan_NamespacedDecorator(t *testing.T) {
	result := scanSource(t, tsNamespacedDecorator, "src/order.ts")

	if len(result.Annotations) != 1 {
		t.Fatalf("annotations = %d, want 1", len(result.Annotations))
	}
	ann := result.Annotations[0]
	if ann.Kind != "Entity" {
		t.Errorf("Kind = %q, want Entity (last segment)", ann.Kind)
	}
	if ann.RawName != "aabha.Entity" {
		t.Errorf("RawName = %q, want aabha.Entity", ann.RawName)
	}
}

func TestTypeScriptScanner_Scan_MemberDecorators(t *testing.T) {
	result := scanSource(t, tsMemberDecorators, "src/order.ts")

	if len(result.Annotations) != 3 {
		t.Fatalf("annotations = %d, want 3", len(result.Annotations))
	}

	byKind := map[string]*Annotation{}
	for _, ann := range result.Annotations {
		byKind[ann.Kind] = ann
	}

	metric := byKind["Metric"]
	if metric == nil {
		t.Fatal("missing Metric annotation")
	}
	if metric.Target != "latency" || metric.TargetKind != TargetMethod {
		t.Errorf("Metric target = %s %s, want latency method", metric.Target, metric.TargetKind)
	}

	policy := byKind["Policy"]
	if policy == nil {
		t.Fatal("missing Policy annotation")
	}
	if policy.Target != "retentionDays" || policy.TargetKind != TargetProperty {
		t.Errorf("Policy target = %s %s, want retentionDays property", policy.Target, policy.TargetKind)
	}
}

func TestTypeScriptScanner_Scan_BareDecorator(t *testing.T) {
	result := scanSource(t, tsBareDecorator, "src/frozen.ts")

	if len(result.Annotations) != 1 {
		t.Fatalf("annotations = %d, want 1", len(result.Annotations))
	}
	ann := result.Annotations[0]
	if ann.Kind != "Sealed" {
		t.Errorf("Kind = %q, want Sealed", ann.Kind)
	}
	if ann.HasObjectArgument() {
		t.Error("bare decorator must not report an object argument")
	}
	if ann.ArgNode != nil {
		t.Error("bare decorator must not carry an argument node")
	}
}

func TestTypeScriptScanner_Scan_NoDecorators(t *testing.T) {
	result := scanSource(t, tsNoDecorators, "src/plain.ts")
	if len(result.Annotations) != 0 {
		t.Errorf("annotations = %d, want 0", len(result.Annotations))
	}
	if result.HasErrors() {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

func TestTypeScriptScanner_Scan_SyntaxErrorTolerance(t *testing.T) {
	result := scanSource(t, tsSyntaxError, "src/broken.ts")
	if !result.HasErrors() {
		t.Error("expected syntax errors to be recorded")
	}
}

func TestTypeScriptScanner_Scan_TSXLanguage(t *testing.T) {
	result := scanSource(t, tsDecoratedClass, "src/order.tsx")
	if result.Language != "tsx" {
		t.Errorf("Language = %q, want tsx", result.Language)
	}
}

func TestTypeScriptScanner_Scan_FileTooLarge(t *testing.T) {
	scanner := NewTypeScriptScanner(WithMaxFileSize(16))
	_, err := scanner.Scan(context.Background(), []byte(tsDecoratedClass), "src/big.ts")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("err = %v, want ErrFileTooLarge", err)
	}
}

func TestTypeScriptScanner_Scan_InvalidUTF8(t *testing.T) {
	scanner := NewTypeScriptScanner()
	_, err := scanner.Scan(context.Background(), []byte{0xff, 0xfe, 0xfd}, "src/bad.ts")
	if !errors.Is(err, ErrInvalidContent) {
		t.Errorf("err = %v, want ErrInvalidContent", err)
	}
}

func TestTypeScriptScanner_Scan_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := NewTypeScriptScanner()
	if _, err := scanner.Scan(ctx, []byte(tsDecoratedClass), "src/order.ts"); err == nil {
		t.Error("expected an error for a canceled context")
	}
}

func TestTypeScriptScanner_Scan_HashAndMetadata(t *testing.T) {
	result := scanSource(t, tsDecoratedClass, "src/order.ts")
	if len(result.Hash) != 64 {
		t.Errorf("Hash length = %d, want 64 hex chars", len(result.Hash))
	}
	if result.FilePath != "src/order.ts" {
		t.Errorf("FilePath = %q", result.FilePath)
	}
	if result.ParsedAtMilli == 0 {
		t.Error("ParsedAtMilli not set")
	}
}

func TestScanResult_CloseInvalidatesNodes(t *testing.T) {
	scanner := NewTypeScriptScanner()
	result, err := scanner.Scan(context.Background(), []byte(tsDecoratedClass), "src/order.ts")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	result.Close()
	result.Close() // double close must be safe
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Entity", "Entity"},
		{"aabha.Entity", "Entity"},
		{"a.b.Workflow", "Workflow"},
	}
	for _, tt := range tests {
		if got := kindOf(tt.raw); got != tt.want {
			t.Errorf("kindOf(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestAnnotation_Validate(t *testing.T) {
	valid := scanSource(t, tsDecoratedClass, "src/order.ts").Annotations[0]
	if err := valid.Validate(); err != nil {
		t.Errorf("valid annotation rejected: %v", err)
	}

	// Parent-relative paths are how users point the CLI at sibling projects.
	relative := *valid
	relative.FilePath = "../proj/order.ts"
	if err := relative.Validate(); err != nil {
		t.Errorf("parent-relative path rejected: %v", err)
	}

	bad := *valid
	bad.FilePath = "src/../../escape.ts"
	if err := bad.Validate(); err == nil {
		t.Error("unnormalized traversal must be rejected")
	}
}

func TestScan_ParentRelativePath(t *testing.T) {
	result := scanSource(t, tsDecoratedClass, "../proj/src/order.ts")
	if len(result.Annotations) == 0 {
		t.Fatal("expected annotations from a parent-relative path")
	}
	if got := result.Annotations[0].FilePath; got != "../proj/src/order.ts" {
		t.Errorf("FilePath = %q, want the path as given", got)
	}
}
