// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"encoding/json"
	"fmt"

	"github.com/krabhishek/aabha-lint/services/aabha/ast"
	"github.com/krabhishek/aabha-lint/services/aabha/meta"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	// SeverityInfo represents informational/style findings that never fail
	// a run.
	SeverityInfo Severity = iota

	// SeverityWarning represents findings that should be addressed but do
	// not fail the run.
	SeverityWarning

	// SeverityError represents findings that fail the run.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the severity as its string form.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// SeverityFromString parses a severity string. Unknown values default to
// SeverityWarning.
func SeverityFromString(s string) Severity {
	switch s {
	case "error", "err", "fatal", "critical":
		return SeverityError
	case "warning", "warn":
		return SeverityWarning
	case "info", "note", "style", "hint":
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// =============================================================================
// DIAGNOSTIC
// =============================================================================

// Fix describes an insert-only repair for a diagnostic: a field to add to
// the annotation's argument object. The runner materializes it into a
// concrete edit through the mutation engine; when the engine declines (no
// object argument, key already present), the diagnostic is surfaced without
// a fix rather than dropped.
type Fix struct {
	// FieldKey is the key of the field to insert.
	FieldKey string `json:"field_key"`

	// FieldText is the full property text, e.g. `description: ""`.
	FieldText string `json:"field_text"`
}

// Diagnostic represents a single finding from one rule against one
// annotation instance.
//
// Thread Safety: Immutable after creation.
type Diagnostic struct {
	// Rule is the qualified rule identifier, e.g. "entity/require-description".
	Rule string `json:"rule"`

	// Kind is the annotation kind the rule ran against.
	Kind string `json:"kind"`

	// Target is the decorated class/method/property name.
	Target string `json:"target"`

	// Severity is the severity level of the finding.
	Severity Severity `json:"severity"`

	// Message is the human-readable description of the finding.
	Message string `json:"message"`

	// Location is where the annotation appears in the file.
	Location ast.Location `json:"location"`

	// Fix is the proposed insert-only repair, when the rule has one.
	Fix *Fix `json:"fix,omitempty"`
}

// FormatLocation returns a formatted location string (file:line:col).
func (d *Diagnostic) FormatLocation() string {
	return fmt.Sprintf("%s:%d:%d", d.Location.FilePath, d.Location.StartLine, d.Location.StartCol)
}

// =============================================================================
// RULE
// =============================================================================

// CheckFunc is one rule predicate: a pure function from an evaluated
// annotation to zero or more findings. Predicates never mutate the context
// and never perform I/O.
type CheckFunc func(*Context) []Diagnostic

// Rule is a single registered check for an annotation kind.
type Rule struct {
	// Name is the rule's short identifier within its kind,
	// e.g. "require-description".
	Name string

	// Description explains what the rule checks.
	Description string

	// Severity is the default severity; a config file may override it.
	Severity Severity

	// Check is the predicate.
	Check CheckFunc
}

// =============================================================================
// CONTEXT
// =============================================================================

// Context is everything a rule predicate may look at: one annotation
// occurrence with its evaluated value tree and anchor index.
//
// Thread Safety: Treat as immutable; predicates must not retain it past the
// Check call because the underlying parse tree is closed after the file is
// processed.
type Context struct {
	// Annotation is the occurrence under check.
	Annotation *ast.Annotation

	// Value is the evaluated argument. Undefined when the decorator was
	// called without arguments; Unsupported when the argument shape could
	// not be interpreted.
	Value meta.Value

	// Anchors is the positional index from evaluation, used by the fix
	// pipeline.
	Anchors []meta.PropertyAnchor
}

// Record returns the argument as a Record when it evaluated to one.
func (c *Context) Record() (*meta.Record, bool) {
	return meta.AsRecord(c.Value)
}

// Field returns the named top-level field of the argument object.
// Returns Undefined when the field is syntactically absent or when the
// argument is not a record at all; rules that need to distinguish "not a
// record" consult Record directly.
func (c *Context) Field(name string) meta.Value {
	rec, ok := c.Record()
	if !ok {
		return meta.Undefined{}
	}
	v, ok := rec.Get(name)
	if !ok {
		return meta.Undefined{}
	}
	return v
}

// report builds a diagnostic pre-filled with the context's identity fields.
// The registry stamps the qualified rule name and severity afterwards.
func (c *Context) report(message string, fix *Fix) Diagnostic {
	return Diagnostic{
		Kind:     c.Annotation.Kind,
		Target:   c.Annotation.Target,
		Message:  message,
		Location: c.Annotation.Location,
		Fix:      fix,
	}
}
