// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"fmt"
	"strings"

	"github.com/krabhishek/aabha-lint/services/aabha/meta"
)

// =============================================================================
// RULE CONSTRUCTORS
// =============================================================================
//
// Every constructor follows the same contract: predicates only fire on
// evidence. A field that evaluated to Unsupported is treated as possibly
// valid and never reported; only syntactic absence (Undefined) or a value
// that demonstrably violates the rule produces a diagnostic.

// RequireField reports when a top-level field is absent from the annotation's
// argument object. The fix inserts fieldText; it is attached only when the
// annotation actually carries an object literal the engine can extend.
func RequireField(field, fieldText string) Rule {
	return Rule{
		Name:        "require-" + field,
		Description: fmt.Sprintf("requires the %q field to be present", field),
		Severity:    SeverityError,
		Check: func(c *Context) []Diagnostic {
			if meta.IsUnsupported(c.Value) {
				return nil
			}
			if !meta.IsAbsent(c.Field(field)) {
				return nil
			}
			var fix *Fix
			if c.Annotation.HasObjectArgument() {
				fix = &Fix{FieldKey: field, FieldText: fieldText}
			}
			msg := fmt.Sprintf("@%s on %s is missing required field %q",
				c.Annotation.RawName, c.Annotation.Target, field)
			return []Diagnostic{c.report(msg, fix)}
		},
	}
}

// NonEmptyString reports when a field is present but holds an empty or
// whitespace-only string.
func NonEmptyString(field string) Rule {
	return Rule{
		Name:        "non-empty-" + field,
		Description: fmt.Sprintf("requires %q to be a non-empty string when present", field),
		Severity:    SeverityWarning,
		Check: func(c *Context) []Diagnostic {
			s, ok := meta.AsString(c.Field(field))
			if !ok || strings.TrimSpace(s) != "" {
				return nil
			}
			msg := fmt.Sprintf("@%s on %s has an empty %q",
				c.Annotation.RawName, c.Annotation.Target, field)
			return []Diagnostic{c.report(msg, nil)}
		},
	}
}

// MinLength reports when a string field is present but shorter than min
// characters after trimming.
func MinLength(field string, min int) Rule {
	return Rule{
		Name:        "min-" + field + "-length",
		Description: fmt.Sprintf("requires %q to be at least %d characters", field, min),
		Severity:    SeverityInfo,
		Check: func(c *Context) []Diagnostic {
			s, ok := meta.AsString(c.Field(field))
			if !ok {
				return nil
			}
			trimmed := strings.TrimSpace(s)
			if trimmed == "" || len(trimmed) >= min {
				// Emptiness is NonEmptyString's finding; avoid doubling up.
				return nil
			}
			msg := fmt.Sprintf("@%s on %s: %q is only %d characters (minimum %d)",
				c.Annotation.RawName, c.Annotation.Target, field, len(trimmed), min)
			return []Diagnostic{c.report(msg, nil)}
		},
	}
}

// NonEmptyList reports when a field is present but holds an empty array.
func NonEmptyList(field string) Rule {
	return Rule{
		Name:        "non-empty-" + field,
		Description: fmt.Sprintf("requires %q to be a non-empty list when present", field),
		Severity:    SeverityWarning,
		Check: func(c *Context) []Diagnostic {
			items, ok := meta.AsList(c.Field(field))
			if !ok || len(items) > 0 {
				return nil
			}
			msg := fmt.Sprintf("@%s on %s has an empty %q list",
				c.Annotation.RawName, c.Annotation.Target, field)
			return []Diagnostic{c.report(msg, nil)}
		},
	}
}

// EnumMember reports when a field holds a symbol reference whose enum name
// does not match, or whose member is not in the allowed set. Plain strings
// and other value kinds are reported as well: the field is expected to be
// written as EnumName.Member so refactoring tools can track it.
func EnumMember(field, enumName string, members ...string) Rule {
	allowed := make(map[string]bool, len(members))
	for _, m := range members {
		allowed[m] = true
	}
	return Rule{
		Name:        field + "-enum",
		Description: fmt.Sprintf("requires %q to reference a member of %s", field, enumName),
		Severity:    SeverityError,
		Check: func(c *Context) []Diagnostic {
			v := c.Field(field)
			if meta.IsAbsent(v) || meta.IsUnsupported(v) {
				return nil
			}
			ref, ok := meta.AsSymbolRef(v)
			if !ok {
				msg := fmt.Sprintf("@%s on %s: %q must be written as %s.<member>, not a literal",
					c.Annotation.RawName, c.Annotation.Target, field, enumName)
				return []Diagnostic{c.report(msg, nil)}
			}
			if len(ref.Path) < 2 || ref.Path[len(ref.Path)-2] != enumName {
				msg := fmt.Sprintf("@%s on %s: %q references %s, expected a member of %s",
					c.Annotation.RawName, c.Annotation.Target, field, ref.Dotted(), enumName)
				return []Diagnostic{c.report(msg, nil)}
			}
			if len(allowed) > 0 && !allowed[ref.Path[len(ref.Path)-1]] {
				msg := fmt.Sprintf("@%s on %s: %s is not a known member of %s",
					c.Annotation.RawName, c.Annotation.Target, ref.Dotted(), enumName)
				return []Diagnostic{c.report(msg, nil)}
			}
			return nil
		},
	}
}

// RequireWith reports when dependsOn is present but field is absent. Used
// for fields that only make sense together.
func RequireWith(field, dependsOn, fieldText string) Rule {
	return Rule{
		Name:        "require-" + field + "-with-" + dependsOn,
		Description: fmt.Sprintf("requires %q whenever %q is set", field, dependsOn),
		Severity:    SeverityWarning,
		Check: func(c *Context) []Diagnostic {
			dep := c.Field(dependsOn)
			if meta.IsAbsent(dep) || meta.IsUnsupported(dep) {
				return nil
			}
			if !meta.IsAbsent(c.Field(field)) {
				return nil
			}
			var fix *Fix
			if c.Annotation.HasObjectArgument() {
				fix = &Fix{FieldKey: field, FieldText: fieldText}
			}
			msg := fmt.Sprintf("@%s on %s sets %q but is missing %q",
				c.Annotation.RawName, c.Annotation.Target, dependsOn, field)
			return []Diagnostic{c.report(msg, fix)}
		},
	}
}

// KnownKeys reports each top-level key that is not in the allowed set,
// catching typos like "descripton".
func KnownKeys(keys ...string) Rule {
	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}
	return Rule{
		Name:        "known-keys",
		Description: "reports argument keys outside the annotation's schema",
		Severity:    SeverityWarning,
		Check: func(c *Context) []Diagnostic {
			rec, ok := c.Record()
			if !ok {
				return nil
			}
			var out []Diagnostic
			for _, k := range rec.Keys() {
				if allowed[k] {
					continue
				}
				msg := fmt.Sprintf("@%s on %s has unknown key %q",
					c.Annotation.RawName, c.Annotation.Target, k)
				out = append(out, c.report(msg, nil))
			}
			return out
		},
	}
}

// =============================================================================
// BUILTIN RULE TABLES
// =============================================================================

// DefaultRegistry returns a registry populated with the builtin rule set for
// every aabha annotation kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("Entity",
		RequireField("description", `description: ""`),
		NonEmptyString("description"),
		MinLength("description", 20),
		RequireField("owner", `owner: ""`),
		NonEmptyString("owner"),
		NonEmptyList("tags"),
		KnownKeys("name", "description", "owner", "domain", "tags",
			"version", "attributes", "relations", "deprecated"),
	)

	r.Register("Workflow",
		RequireField("description", `description: ""`),
		NonEmptyString("description"),
		RequireField("owner", `owner: ""`),
		NonEmptyList("steps"),
		EnumMember("trigger", "TriggerType",
			"Manual", "Scheduled", "Event", "Api"),
		KnownKeys("name", "description", "owner", "steps", "trigger",
			"timeout", "retries", "tags"),
	)

	r.Register("Metric",
		RequireField("description", `description: ""`),
		NonEmptyString("description"),
		RequireField("unit", `unit: ""`),
		NonEmptyString("unit"),
		EnumMember("aggregation", "Aggregation",
			"Sum", "Avg", "Min", "Max", "Count", "P95", "P99"),
		KnownKeys("name", "description", "unit", "aggregation", "owner",
			"target", "dimensions", "tags"),
	)

	r.Register("Persona",
		RequireField("description", `description: ""`),
		NonEmptyString("description"),
		NonEmptyList("goals"),
		NonEmptyList("painPoints"),
		KnownKeys("name", "description", "goals", "painPoints",
			"demographics", "tags"),
	)

	r.Register("Policy",
		RequireField("description", `description: ""`),
		NonEmptyString("description"),
		RequireField("owner", `owner: ""`),
		EnumMember("enforcement", "EnforcementLevel",
			"Advisory", "Mandatory", "Blocking"),
		NonEmptyList("appliesTo"),
		KnownKeys("name", "description", "owner", "enforcement",
			"appliesTo", "exceptions", "tags"),
	)

	r.Register("Stakeholder",
		RequireField("description", `description: ""`),
		NonEmptyString("description"),
		RequireField("role", `role: ""`),
		NonEmptyString("role"),
		RequireWith("contact", "escalation", `contact: ""`),
		KnownKeys("name", "description", "role", "contact", "escalation",
			"interest", "influence", "tags"),
	)

	r.Register("Journey",
		RequireField("description", `description: ""`),
		NonEmptyString("description"),
		RequireField("persona", `persona: ""`),
		NonEmptyList("stages"),
		KnownKeys("name", "description", "persona", "stages", "outcome",
			"tags"),
	)

	r.Register("Capability",
		RequireField("description", `description: ""`),
		NonEmptyString("description"),
		RequireField("owner", `owner: ""`),
		EnumMember("maturity", "MaturityLevel",
			"Initial", "Defined", "Managed", "Optimized"),
		KnownKeys("name", "description", "owner", "maturity", "parent",
			"dependencies", "tags"),
	)

	return r
}
