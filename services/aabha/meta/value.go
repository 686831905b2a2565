// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package meta

import (
	"fmt"
	"strings"
)

// =============================================================================
// VALUE KIND
// =============================================================================

// ValueKind discriminates the variants of Value.
//
// The set is closed: every value the evaluator produces is exactly one of
// these kinds, and consumers are expected to switch exhaustively.
type ValueKind int

const (
	// KindNull represents an explicit null literal.
	KindNull ValueKind = iota

	// KindUndefined represents an explicit undefined literal, and is also
	// the marker rules receive for a syntactically absent field.
	KindUndefined

	// KindBool represents a true/false literal.
	KindBool

	// KindNumber represents a numeric literal, including a folded unary minus.
	KindNumber

	// KindString represents a string literal or an interpolation-free
	// template literal.
	KindString

	// KindList represents an array literal.
	KindList

	// KindRecord represents an object literal with statically known keys.
	KindRecord

	// KindSymbolRef represents an identifier or dotted member-access chain
	// captured as written, never resolved.
	KindSymbolRef

	// KindUnsupported represents any expression shape the evaluator
	// declines to interpret. Rules must treat it as "unknown", never as
	// absent.
	KindUnsupported
)

// valueKindNames maps ValueKind values to their string representations.
var valueKindNames = map[ValueKind]string{
	KindNull:        "null",
	KindUndefined:   "undefined",
	KindBool:        "bool",
	KindNumber:      "number",
	KindString:      "string",
	KindList:        "list",
	KindRecord:      "record",
	KindSymbolRef:   "symbol_ref",
	KindUnsupported: "unsupported",
}

// String returns the string representation of the ValueKind.
func (k ValueKind) String() string {
	if name, ok := valueKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// =============================================================================
// VALUE
// =============================================================================

// Value is one evaluated fragment of an annotation argument.
//
// A Value tree is immutable once returned by Evaluate, contains no cycles
// (its depth is bounded by the source nesting), and is discarded after the
// rule host finishes with the annotation instance that produced it.
type Value interface {
	// Kind returns the variant discriminator.
	Kind() ValueKind

	// sealed prevents implementations outside this package.
	sealed()
}

// Null is an explicit null literal.
type Null struct{}

// Undefined is an explicit undefined literal or the absent-field marker.
type Undefined struct{}

// Bool is a boolean literal.
type Bool struct {
	// V is the literal value.
	V bool
}

// Number is a numeric literal.
type Number struct {
	// V is the parsed value. Integer literals beyond float64 precision
	// lose precision here; Raw preserves the exact source text.
	V float64

	// Raw is the literal exactly as written, including any sign folded
	// from a unary minus.
	Raw string
}

// String is a string literal with quotes stripped.
type String struct {
	// V is the decoded string content.
	V string
}

// List is an array literal. Items may be empty, and individual items may be
// Unsupported without poisoning their siblings.
type List struct {
	Items []Value
}

// Record is an object literal with statically known keys.
//
// Key order is the source insertion order. When the source declares the same
// key twice, the last textual occurrence wins (matching the host language's
// own declaration-shadowing semantics); the anchors for every occurrence are
// still retained for mutation safety.
type Record struct {
	keys   []string
	fields map[string]Value
}

// SymbolRef is an identifier or dotted member-access chain carried opaquely.
// Path is never empty.
type SymbolRef struct {
	Path []string
}

// Unsupported is any expression shape the evaluator declines to interpret:
// spreads, computed keys, function expressions, calls, template literals
// with interpolation, and anything else outside the literal/structural set.
type Unsupported struct {
	// Raw is the expression text exactly as written.
	Raw string
}

func (Null) Kind() ValueKind        { return KindNull }
func (Undefined) Kind() ValueKind   { return KindUndefined }
func (Bool) Kind() ValueKind        { return KindBool }
func (Number) Kind() ValueKind      { return KindNumber }
func (String) Kind() ValueKind      { return KindString }
func (List) Kind() ValueKind        { return KindList }
func (*Record) Kind() ValueKind     { return KindRecord }
func (SymbolRef) Kind() ValueKind   { return KindSymbolRef }
func (Unsupported) Kind() ValueKind { return KindUnsupported }

func (Null) sealed()        {}
func (Undefined) sealed()   {}
func (Bool) sealed()        {}
func (Number) sealed()      {}
func (String) sealed()      {}
func (List) sealed()        {}
func (*Record) sealed()     {}
func (SymbolRef) sealed()   {}
func (Unsupported) sealed() {}

// Dotted returns the reference path joined with dots, as written in source.
func (s SymbolRef) Dotted() string {
	return strings.Join(s.Path, ".")
}

// =============================================================================
// RECORD ACCESS
// =============================================================================

// NewRecord creates an empty Record.
func NewRecord() *Record {
	return &Record{fields: make(map[string]Value)}
}

// Set stores a field value. A repeated key keeps its original position in
// the key order but takes the new value (last occurrence wins).
func (r *Record) Set(key string, v Value) {
	if _, exists := r.fields[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = v
}

// Get returns the value for key and whether the key is present.
func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Keys returns the field keys in source insertion order. The returned slice
// is a copy.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of distinct keys.
func (r *Record) Len() int {
	return len(r.keys)
}

// =============================================================================
// TYPED ACCESSORS
// =============================================================================

// AsString returns the string content when v is a String.
func AsString(v Value) (string, bool) {
	s, ok := v.(String)
	if !ok {
		return "", false
	}
	return s.V, true
}

// AsNumber returns the numeric value when v is a Number.
func AsNumber(v Value) (float64, bool) {
	n, ok := v.(Number)
	if !ok {
		return 0, false
	}
	return n.V, true
}

// AsBool returns the boolean value when v is a Bool.
func AsBool(v Value) (bool, bool) {
	b, ok := v.(Bool)
	if !ok {
		return false, false
	}
	return b.V, true
}

// AsList returns the item slice when v is a List.
func AsList(v Value) ([]Value, bool) {
	l, ok := v.(List)
	if !ok {
		return nil, false
	}
	return l.Items, true
}

// AsRecord returns the record when v is a Record.
func AsRecord(v Value) (*Record, bool) {
	r, ok := v.(*Record)
	if !ok {
		return nil, false
	}
	return r, true
}

// AsSymbolRef returns the reference when v is a SymbolRef.
func AsSymbolRef(v Value) (SymbolRef, bool) {
	s, ok := v.(SymbolRef)
	return s, ok
}

// IsAbsent reports whether v marks a syntactically absent or explicitly
// undefined field. Unsupported is NOT absent: it means "cannot determine".
func IsAbsent(v Value) bool {
	if v == nil {
		return true
	}
	return v.Kind() == KindUndefined
}

// IsUnsupported reports whether v is an opaque expression the evaluator
// could not interpret. Rules treat such values as possibly valid.
func IsUnsupported(v Value) bool {
	return v != nil && v.Kind() == KindUnsupported
}

// =============================================================================
// RANGE AND ANCHOR
// =============================================================================

// Range is a half-open byte span [Start, End) in the source text.
type Range struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// Len returns the span length in bytes.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return int(r.End - r.Start)
}

// Contains reports whether the byte offset falls inside the span.
func (r Range) Contains(off uint32) bool {
	return off >= r.Start && off < r.End
}

// String formats the range as "[start,end)".
func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// PropertyAnchor records where one object property lives in source text.
//
// Anchors are recorded for every key at every nesting depth reached during
// evaluation. The mutation engine consults this index instead of re-scanning
// source text, so insertion decisions are always consistent with what was
// actually parsed. Anchors for duplicate keys are all retained.
type PropertyAnchor struct {
	// KeyPath is the chain of keys from the argument object's top level
	// down to this property. len(KeyPath) == 1 for top-level properties.
	KeyPath []string `json:"key_path"`

	// KeyRange is the byte span of the property key token.
	KeyRange Range `json:"key_range"`

	// ValueRange is the byte span of the property's value expression.
	// Sibling value ranges never overlap.
	ValueRange Range `json:"value_range"`

	// TrailingComment is the span of a line comment on the same line after
	// the value, when one exists.
	TrailingComment *Range `json:"trailing_comment,omitempty"`

	// SiblingOrder is the zero-based position of this property among the
	// properties of its enclosing object, in source order.
	SiblingOrder int `json:"sibling_order"`
}

// Key returns the property's own key (the last element of KeyPath).
func (a PropertyAnchor) Key() string {
	if len(a.KeyPath) == 0 {
		return ""
	}
	return a.KeyPath[len(a.KeyPath)-1]
}

// Depth returns the nesting depth of the property, 0 for top level.
func (a PropertyAnchor) Depth() int {
	return len(a.KeyPath) - 1
}
