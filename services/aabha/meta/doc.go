// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package meta evaluates annotation argument expressions into a structured
// value model that rules can query by field name.
//
// The evaluator is the leaf of the checker: it depends on nothing but the
// parsed expression sub-tree and the raw source bytes, performs no I/O, and
// never executes or resolves anything from the analyzed program.
//
// # Value Model
//
// Every evaluated fragment is one of a closed set of variants:
//
//	| Kind        | Source shape                                   |
//	|-------------|------------------------------------------------|
//	| Null        | null                                           |
//	| Undefined   | undefined, or a syntactically absent field     |
//	| Bool        | true / false                                   |
//	| Number      | numeric literal, incl. folded unary minus      |
//	| String      | string literal, interpolation-free template    |
//	| List        | array literal                                  |
//	| Record      | object literal with statically known keys      |
//	| SymbolRef   | identifier or dotted chain, carried opaquely   |
//	| Unsupported | anything else (spreads, calls, computed keys)  |
//
// Unsupported means "cannot determine", which is deliberately distinct from
// "absent": a rule that checks for a missing field must not fire against a
// value it merely failed to interpret.
//
// # Anchors
//
// Alongside the value tree, evaluation records a PropertyAnchor for every
// object property it walks: the byte spans of the key, the value, and any
// trailing line comment. The mutation engine plans insertions exclusively
// from this index, never from ad hoc string search over the source.
//
// # Usage
//
//	value, anchors := meta.Evaluate(content, argNode)
//	if rec, ok := meta.AsRecord(value); ok {
//	    name, _ := rec.Get("name")
//	    ...
//	}
//
// # Thread Safety
//
// Evaluate is a pure function; results are immutable. The caller owns the
// lifetime of the tree-sitter tree backing the input node.
package meta
