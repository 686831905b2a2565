// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package autofix

import (
	"context"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/krabhishek/aabha-lint/services/aabha/meta"
)

// analyzeObject parses TypeScript source, finds the first object literal, and
// returns its byte range with the anchors from evaluating it.
func analyzeObject(t *testing.T, source string) (meta.Range, []meta.PropertyAnchor) {
	t.Helper()

	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(source))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	defer tree.Close()

	obj := findObject(tree.RootNode())
	if obj == nil {
		t.Fatalf("no object literal in %q", source)
	}
	_, anchors := meta.Evaluate([]byte(source), obj)
	return meta.Range{Start: obj.StartByte(), End: obj.EndByte()}, anchors
}

func findObject(n *sitter.Node) *sitter.Node {
	if n.Type() == "object" {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := findObject(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

func plan(t *testing.T, source, key, fieldText string) (Edit, bool) {
	t.Helper()
	objRange, anchors := analyzeObject(t, source)
	return PlanInsertion([]byte(source), objRange, anchors, key, fieldText)
}

func TestPlanInsertion_AppendsAfterLastProperty(t *testing.T) {
	source := `@Entity({
  name: "Order",
  owner: "payments"
})
class Order {}
`
	edit, ok := plan(t, source, "description", `description: ""`)
	if !ok {
		t.Fatal("expected an edit")
	}

	got := string(edit.Apply([]byte(source)))
	want := `@Entity({
  name: "Order",
  owner: "payments",
  description: ""
})
class Order {}
`
	if got != want {
		t.Errorf("applied =\n%s\nwant\n%s", got, want)
	}
}

func TestPlanInsertion_EmptyObject(t *testing.T) {
	source := `@Entity({})
class Order {}
`
	edit, ok := plan(t, source, "description", `description: ""`)
	if !ok {
		t.Fatal("expected an edit")
	}
	got := string(edit.Apply([]byte(source)))
	if !strings.Contains(got, "{\n  description: \"\"}") {
		t.Errorf("applied = %q", got)
	}
}

func TestPlanInsertion_SingleLineObject(t *testing.T) {
	source := `@Entity({a: 1, b: 2})
class C {}
`
	edit, ok := plan(t, source, "c", "c: 3")
	if !ok {
		t.Fatal("expected an edit")
	}
	got := string(edit.Apply([]byte(source)))
	if !strings.Contains(got, "{a: 1, b: 2,\n  c: 3}") {
		t.Errorf("applied = %q", got)
	}
}

func TestPlanInsertion_PreservesFourSpaceIndent(t *testing.T) {
	source := `@Entity({
    name: "Order",
    owner: "payments"
})
class Order {}
`
	edit, ok := plan(t, source, "description", `description: ""`)
	if !ok {
		t.Fatal("expected an edit")
	}
	got := string(edit.Apply([]byte(source)))
	if !strings.Contains(got, "    owner: \"payments\",\n    description: \"\"\n}") {
		t.Errorf("applied = %q", got)
	}
}

func TestPlanInsertion_TabIndent(t *testing.T) {
	source := "@Entity({\n\tname: \"Order\"\n})\nclass Order {}\n"
	edit, ok := plan(t, source, "description", `description: ""`)
	if !ok {
		t.Fatal("expected an edit")
	}
	got := string(edit.Apply([]byte(source)))
	if !strings.Contains(got, "\tname: \"Order\",\n\tdescription: \"\"\n}") {
		t.Errorf("applied = %q", got)
	}
}

func TestPlanInsertion_ExistingTrailingComma(t *testing.T) {
	source := `@Entity({
  name: "Order",
})
class Order {}
`
	edit, ok := plan(t, source, "description", `description: ""`)
	if !ok {
		t.Fatal("expected an edit")
	}
	got := string(edit.Apply([]byte(source)))
	// The existing comma stays as the new field's trailing comma.
	if !strings.Contains(got, "  name: \"Order\",\n  description: \"\",\n}") {
		t.Errorf("applied = %q", got)
	}
}

func TestPlanInsertion_TrailingComment(t *testing.T) {
	source := `@Entity({
  name: "Order" // canonical id
})
class Order {}
`
	edit, ok := plan(t, source, "description", `description: ""`)
	if !ok {
		t.Fatal("expected an edit")
	}
	got := string(edit.Apply([]byte(source)))
	// The separator comma cannot follow the comment, so the insertion lands
	// between the value and the comment.
	if !strings.Contains(got, "  name: \"Order\",\n  description: \"\" // canonical id\n}") {
		t.Errorf("applied = %q", got)
	}
}

func TestPlanInsertion_TrailingCommaAndComment(t *testing.T) {
	source := `@Entity({
  name: "Order", // canonical id
})
class Order {}
`
	edit, ok := plan(t, source, "description", `description: ""`)
	if !ok {
		t.Fatal("expected an edit")
	}
	got := string(edit.Apply([]byte(source)))
	if !strings.Contains(got, "  name: \"Order\", // canonical id\n  description: \"\"\n}") {
		t.Errorf("applied = %q", got)
	}
}

func TestPlanInsertion_KeyAlreadyPresent(t *testing.T) {
	source := `@Entity({
  description: "exists"
})
class Order {}
`
	if _, ok := plan(t, source, "description", `description: ""`); ok {
		t.Error("must decline when the key exists at the top level")
	}
}

func TestPlanInsertion_NestedKeyDoesNotBlock(t *testing.T) {
	source := `@Entity({
  meta: {
    description: "nested"
  }
})
class Order {}
`
	edit, ok := plan(t, source, "description", `description: ""`)
	if !ok {
		t.Fatal("a nested occurrence must not suppress a top-level insertion")
	}
	got := string(edit.Apply([]byte(source)))
	if strings.Count(got, "description") != 2 {
		t.Errorf("applied = %q", got)
	}
}

func TestPlanInsertion_InvalidRange(t *testing.T) {
	source := []byte(`@Entity("name")`)

	if _, ok := PlanInsertion(source, meta.Range{Start: 8, End: 14}, nil, "k", "k: 1"); ok {
		t.Error("must decline a range that is not an object literal")
	}
	if _, ok := PlanInsertion(source, meta.Range{Start: 0, End: 999}, nil, "k", "k: 1"); ok {
		t.Error("must decline an out-of-bounds range")
	}
	if _, ok := PlanInsertion(source, meta.Range{Start: 5, End: 5}, nil, "k", "k: 1"); ok {
		t.Error("must decline an empty range")
	}
}

func TestPlanInsertion_Deterministic(t *testing.T) {
	source := `@Entity({
  name: "Order"
})
class Order {}
`
	a, okA := plan(t, source, "description", `description: ""`)
	b, okB := plan(t, source, "description", `description: ""`)
	if !okA || !okB || a != b {
		t.Errorf("plans differ: %#v vs %#v", a, b)
	}
}

func TestEdit_ApplyDoesNotMutateSource(t *testing.T) {
	source := []byte("{a: 1}")
	edit := Edit{Offset: 5, InsertText: ", b: 2"}
	got := string(edit.Apply(source))
	if got != "{a: 1, b: 2}" {
		t.Errorf("applied = %q", got)
	}
	if string(source) != "{a: 1}" {
		t.Errorf("source mutated to %q", source)
	}
}
