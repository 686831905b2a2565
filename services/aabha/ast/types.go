// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ast locates aabha annotations in TypeScript sources.
//
// The scanner is a thin traversal layer: it finds decorated classes and
// methods, captures each decorator's kind and the byte span of its argument
// object literal, and hands the raw argument node to the evaluator. It
// interprets nothing itself.
package ast

import (
	"fmt"
	"path"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/krabhishek/aabha-lint/services/aabha/meta"
)

// TargetKind identifies what declaration an annotation is attached to.
type TargetKind int

const (
	// TargetUnknown indicates the scanner could not classify the target.
	TargetUnknown TargetKind = iota

	// TargetClass is an annotation on a class declaration.
	TargetClass

	// TargetMethod is an annotation on a method definition.
	TargetMethod

	// TargetProperty is an annotation on a class property.
	TargetProperty
)

// String returns the string representation of the TargetKind.
func (k TargetKind) String() string {
	switch k {
	case TargetClass:
		return "class"
	case TargetMethod:
		return "method"
	case TargetProperty:
		return "property"
	default:
		return "unknown"
	}
}

// Location represents a position range within a source file.
//
// Line numbers are 1-indexed, column numbers are 0-indexed, matching the
// convention used by most editors and LSP.
type Location struct {
	// FilePath is the path to the source file, relative to project root.
	FilePath string `json:"file_path"`

	// StartLine is the 1-indexed line number where the range starts.
	StartLine int `json:"start_line"`

	// EndLine is the 1-indexed line number where the range ends.
	EndLine int `json:"end_line"`

	// StartCol is the 0-indexed column on StartLine.
	StartCol int `json:"start_col"`

	// EndCol is the 0-indexed column on EndLine.
	EndCol int `json:"end_col"`
}

// String returns a human-readable representation of the location.
//
// Format: "file_path:start_line:start_col"
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.FilePath, l.StartLine, l.StartCol)
}

// Annotation is one parsed occurrence of an aabha decorator.
//
// The ArgNode handle stays valid only until the owning ScanResult is closed;
// consumers evaluate eagerly and keep the resulting Value, never the node.
type Annotation struct {
	// Kind is the annotation's semantic category: the last segment of the
	// decorator name as written ("Entity" for both @Entity and
	// @aabha.Entity). The rule host dispatches on this.
	Kind string `json:"kind"`

	// RawName is the full decorator name as written, without the leading @
	// or the argument list.
	RawName string `json:"raw_name"`

	// Target is the name of the decorated class, method, or property.
	Target string `json:"target"`

	// TargetKind classifies the decorated declaration.
	TargetKind TargetKind `json:"target_kind"`

	// FilePath is the containing file, relative to the lint root.
	FilePath string `json:"file_path"`

	// Range is the byte span of the whole decorator, including the @.
	Range meta.Range `json:"range"`

	// Location is the decorator's position in editor coordinates.
	Location Location `json:"location"`

	// ObjectRange is the exact byte span of the argument object literal,
	// nil when the decorator was called without one. The mutation engine
	// requires this span.
	ObjectRange *meta.Range `json:"object_range,omitempty"`

	// ArgNode is the first argument expression, nil when the decorator has
	// no arguments. Valid until ScanResult.Close.
	ArgNode *sitter.Node `json:"-"`
}

// HasObjectArgument reports whether the decorator was called with an object
// literal as its first argument.
func (a *Annotation) HasObjectArgument() bool {
	return a.ObjectRange != nil
}

// ValidationError represents a validation failure with field context.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks if the Annotation has valid field values.
func (a *Annotation) Validate() error {
	if a.Kind == "" {
		return ValidationError{Field: "Kind", Message: "must not be empty"}
	}
	if a.FilePath == "" {
		return ValidationError{Field: "FilePath", Message: "must not be empty"}
	}
	if !cleanFilePath(a.FilePath) {
		return ValidationError{Field: "FilePath", Message: "must be a cleaned slash path"}
	}
	if a.Location.StartLine < 1 {
		return ValidationError{Field: "Location.StartLine", Message: "must be >= 1 (1-indexed)"}
	}
	if a.Range.End <= a.Range.Start {
		return ValidationError{Field: "Range", Message: "must be a non-empty span"}
	}
	if a.ObjectRange != nil && a.ObjectRange.End <= a.ObjectRange.Start {
		return ValidationError{Field: "ObjectRange", Message: "must be a non-empty span"}
	}
	return nil
}

// ScanResult contains the annotations found in a single source file.
//
// The result owns the underlying tree-sitter tree: Annotation.ArgNode
// handles are invalidated by Close. Callers evaluate all annotations before
// closing and must close exactly once.
type ScanResult struct {
	// FilePath is the scanned file, relative to the lint root.
	FilePath string `json:"file_path"`

	// Language is "typescript" or "tsx".
	Language string `json:"language"`

	// Annotations are the decorator occurrences in source order.
	Annotations []*Annotation `json:"annotations"`

	// Errors contains non-fatal scan problems. A file with syntax errors
	// still yields the annotations that could be parsed.
	Errors []string `json:"errors,omitempty"`

	// Hash is the SHA256 hash of the file content at scan time.
	Hash string `json:"hash"`

	// ParsedAtMilli is the Unix timestamp in milliseconds when the scan
	// completed.
	ParsedAtMilli int64 `json:"parsed_at_milli"`

	tree *sitter.Tree
}

// HasErrors returns true if the scan recorded any non-fatal errors.
func (r *ScanResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Close releases the parse tree. All ArgNode handles become invalid.
func (r *ScanResult) Close() {
	if r.tree != nil {
		r.tree.Close()
		r.tree = nil
	}
}

// Validate checks if the ScanResult has valid field values.
func (r *ScanResult) Validate() error {
	if r.FilePath == "" {
		return ValidationError{Field: "FilePath", Message: "must not be empty"}
	}
	if !cleanFilePath(r.FilePath) {
		return ValidationError{Field: "FilePath", Message: "must be a cleaned slash path"}
	}
	if r.Language == "" {
		return ValidationError{Field: "Language", Message: "must not be empty"}
	}
	for i, ann := range r.Annotations {
		if err := ann.Validate(); err != nil {
			return ValidationError{
				Field:   fmt.Sprintf("Annotations[%d]", i),
				Message: err.Error(),
			}
		}
	}
	return nil
}

// cleanFilePath reports whether p is already in cleaned slash form. A
// parent-relative prefix ("../proj/a.ts") is legitimate CLI input; what gets
// rejected is an unnormalized traversal such as "src/../../etc", which
// cleaning would rewrite.
func cleanFilePath(p string) bool {
	return path.Clean(p) == p
}

// locationOf converts a node's points to editor coordinates.
func locationOf(n *sitter.Node, filePath string) Location {
	return Location{
		FilePath:  filePath,
		StartLine: int(n.StartPoint().Row + 1),
		EndLine:   int(n.EndPoint().Row + 1),
		StartCol:  int(n.StartPoint().Column),
		EndCol:    int(n.EndPoint().Column),
	}
}
