// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package meta

import "testing"

func TestRecord_InsertionOrder(t *testing.T) {
	r := NewRecord()
	r.Set("b", Number{V: 1})
	r.Set("a", Number{V: 2})
	r.Set("c", Number{V: 3})

	keys := r.Keys()
	want := []string{"b", "a", "c"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

func TestRecord_DuplicateSetKeepsPosition(t *testing.T) {
	r := NewRecord()
	r.Set("a", Number{V: 1})
	r.Set("b", Number{V: 2})
	r.Set("a", Number{V: 3})

	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
	keys := r.Keys()
	if keys[0] != "a" || keys[1] != "b" {
		t.Errorf("keys = %v, want [a b]", keys)
	}
	v, _ := r.Get("a")
	if n, _ := AsNumber(v); n != 3 {
		t.Errorf("a = %v, want 3", n)
	}
}

func TestRecord_KeysReturnsCopy(t *testing.T) {
	r := NewRecord()
	r.Set("a", Null{})
	keys := r.Keys()
	keys[0] = "mutated"
	if r.Keys()[0] != "a" {
		t.Error("Keys must return a copy")
	}
}

func TestIsAbsent(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", nil, true},
		{"undefined", Undefined{}, true},
		{"null", Null{}, false},
		{"unsupported", Unsupported{Raw: "f()"}, false},
		{"string", String{V: ""}, false},
	}
	for _, tt := range tests {
		if got := IsAbsent(tt.v); got != tt.want {
			t.Errorf("IsAbsent(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsUnsupported(t *testing.T) {
	if !IsUnsupported(Unsupported{Raw: "x()"}) {
		t.Error("Unsupported must report true")
	}
	if IsUnsupported(nil) || IsUnsupported(Undefined{}) {
		t.Error("nil and Undefined must report false")
	}
}

func TestValueKind_String(t *testing.T) {
	if KindRecord.String() != "record" {
		t.Errorf("KindRecord = %q", KindRecord.String())
	}
	if ValueKind(99).String() != "unknown" {
		t.Errorf("out-of-range kind = %q", ValueKind(99).String())
	}
}

func TestRange_Basics(t *testing.T) {
	r := Range{Start: 10, End: 14}
	if r.Len() != 4 {
		t.Errorf("Len = %d, want 4", r.Len())
	}
	if !r.Contains(10) || !r.Contains(13) {
		t.Error("half-open range must contain start and End-1")
	}
	if r.Contains(14) {
		t.Error("half-open range must not contain End")
	}
}

func TestPropertyAnchor_KeyAndDepth(t *testing.T) {
	a := PropertyAnchor{KeyPath: []string{"outer", "inner"}}
	if a.Key() != "inner" {
		t.Errorf("Key = %q, want inner", a.Key())
	}
	if a.Depth() != 1 {
		t.Errorf("Depth = %d, want 1", a.Depth())
	}
}

func TestSymbolRef_Dotted(t *testing.T) {
	ref := SymbolRef{Path: []string{"A", "B", "C"}}
	if ref.Dotted() != "A.B.C" {
		t.Errorf("Dotted = %q", ref.Dotted())
	}
}
