// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package meta

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// MaxEvalDepth is the maximum nesting depth the evaluator will follow.
// Deeper structures are rejected into Unsupported at the point the guard
// trips rather than exhausting the call stack.
const MaxEvalDepth = 100

// Tree-sitter node types the evaluator interprets. The argument expression
// comes from the TypeScript grammar; everything outside this set degrades to
// Unsupported.
const (
	nodeObject            = "object"
	nodePair              = "pair"
	nodeArray             = "array"
	nodeString            = "string"
	nodeStringFragment    = "string_fragment"
	nodeEscapeSequence    = "escape_sequence"
	nodeTemplateString    = "template_string"
	nodeTemplateSubst     = "template_substitution"
	nodeNumber            = "number"
	nodeTrue              = "true"
	nodeFalse             = "false"
	nodeNull              = "null"
	nodeUndefined         = "undefined"
	nodeIdentifier        = "identifier"
	nodeMemberExpression  = "member_expression"
	nodePropertyIdent     = "property_identifier"
	nodeShorthandProperty = "shorthand_property_identifier"
	nodeUnaryExpression   = "unary_expression"
	nodeParenExpression   = "parenthesized_expression"
	nodeComputedPropName  = "computed_property_name"
	nodeSpreadElement     = "spread_element"
	nodeMethodDefinition  = "method_definition"
	nodeComment           = "comment"
)

// Evaluate converts an annotation argument expression into a Value tree and
// the positional anchor index for every object property it walked.
//
// Description:
//
//	Evaluation is shape-directed and total: literal nodes map to the
//	corresponding variant, identifier chains become opaque SymbolRefs, and
//	any expression the evaluator cannot interpret statically becomes
//	Unsupported at that position without poisoning its siblings. No symbol
//	resolution, constant folding, or execution of any kind happens here.
//
// Inputs:
//   - content: Raw source bytes the node was parsed from. Node byte ranges
//     index into this slice.
//   - node: The argument expression node. A nil node yields Undefined,
//     which is the marker for a syntactically absent argument.
//
// Outputs:
//   - Value: The evaluated tree. Never nil.
//   - []PropertyAnchor: Anchors for every property of every object that
//     evaluated to a Record, in the order they were walked. Nil when the
//     argument holds no such object.
//
// Thread Safety:
//
//	Pure function over immutable input; safe for concurrent use as long as
//	the owning tree-sitter tree has not been closed.
func Evaluate(content []byte, node *sitter.Node) (Value, []PropertyAnchor) {
	if node == nil {
		return Undefined{}, nil
	}
	ev := &evaluator{content: content}
	v := ev.eval(node, 0)
	return v, ev.anchors
}

// evaluator carries the anchor accumulator and the key path of the object
// currently being walked.
type evaluator struct {
	content []byte
	anchors []PropertyAnchor
	path    []string
}

func (ev *evaluator) raw(n *sitter.Node) string {
	return string(ev.content[n.StartByte():n.EndByte()])
}

func (ev *evaluator) eval(n *sitter.Node, depth int) Value {
	if depth >= MaxEvalDepth {
		return Unsupported{Raw: ev.raw(n)}
	}

	switch n.Type() {
	case nodeTrue:
		return Bool{V: true}
	case nodeFalse:
		return Bool{V: false}
	case nodeNull:
		return Null{}
	case nodeUndefined:
		return Undefined{}
	case nodeNumber:
		return ev.evalNumber(n, false)
	case nodeString:
		return String{V: ev.decodeString(n)}
	case nodeTemplateString:
		return ev.evalTemplate(n)
	case nodeIdentifier:
		return SymbolRef{Path: []string{ev.raw(n)}}
	case nodeMemberExpression:
		return ev.evalMemberChain(n)
	case nodeUnaryExpression:
		return ev.evalUnary(n)
	case nodeParenExpression:
		// A parenthesized literal is still a literal. Unwrap the single
		// inner expression; anything else inside falls through to the
		// inner node's own handling.
		if inner := firstNamedNonComment(n); inner != nil {
			return ev.eval(inner, depth+1)
		}
		return Unsupported{Raw: ev.raw(n)}
	case nodeArray:
		return ev.evalArray(n, depth)
	case nodeObject:
		return ev.evalObject(n, depth)
	default:
		return Unsupported{Raw: ev.raw(n)}
	}
}

// evalNumber parses a numeric literal, preserving the exact source text.
// Handles underscore separators, hex/octal/binary prefixes, and bigint
// suffixes. A literal the host language accepts but this parser cannot
// decode degrades to Unsupported rather than reporting a wrong value.
func (ev *evaluator) evalNumber(n *sitter.Node, negate bool) Value {
	raw := ev.raw(n)
	text := strings.ReplaceAll(raw, "_", "")
	text = strings.TrimSuffix(text, "n")

	var v float64
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		u, err := strconv.ParseUint(lower[2:], prefixBase(lower), 64)
		if err != nil {
			return Unsupported{Raw: raw}
		}
		v = float64(u)
	} else {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Unsupported{Raw: raw}
		}
		v = f
	}

	if negate {
		return Number{V: -v, Raw: "-" + raw}
	}
	return Number{V: v, Raw: raw}
}

func prefixBase(lower string) int {
	switch lower[1] {
	case 'x':
		return 16
	case 'o':
		return 8
	default:
		return 2
	}
}

// evalUnary folds unary minus on a numeric literal. Every other unary
// expression is Unsupported.
func (ev *evaluator) evalUnary(n *sitter.Node) Value {
	if n.ChildCount() == 2 {
		op := n.Child(0)
		arg := n.Child(1)
		if op != nil && arg != nil && op.Type() == "-" && arg.Type() == nodeNumber {
			return ev.evalNumber(arg, true)
		}
	}
	return Unsupported{Raw: ev.raw(n)}
}

// evalMemberChain captures a dotted member-access chain (A.B.C) as an opaque
// SymbolRef. Any link that is not a plain identifier access (a call, an
// index, optional chaining) makes the whole chain Unsupported.
func (ev *evaluator) evalMemberChain(n *sitter.Node) Value {
	var path []string
	cur := n
	for {
		var object, property *sitter.Node
		for i := 0; i < int(cur.ChildCount()); i++ {
			child := cur.Child(i)
			switch child.Type() {
			case nodePropertyIdent:
				property = child
			case nodeIdentifier, nodeMemberExpression:
				object = child
			case ".", nodeComment:
				// structural tokens
			default:
				return Unsupported{Raw: ev.raw(n)}
			}
		}
		if object == nil || property == nil {
			return Unsupported{Raw: ev.raw(n)}
		}
		path = append([]string{ev.raw(property)}, path...)
		if object.Type() == nodeIdentifier {
			path = append([]string{ev.raw(object)}, path...)
			return SymbolRef{Path: path}
		}
		cur = object
	}
}

// evalTemplate accepts interpolation-free template literals as plain strings.
func (ev *evaluator) evalTemplate(n *sitter.Node) Value {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == nodeTemplateSubst {
			return Unsupported{Raw: ev.raw(n)}
		}
	}
	raw := ev.raw(n)
	return String{V: strings.Trim(raw, "`")}
}

// evalArray evaluates each element independently. An element the evaluator
// cannot interpret becomes Unsupported at that position; the rest of the
// array is unaffected.
func (ev *evaluator) evalArray(n *sitter.Node, depth int) Value {
	items := make([]Value, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		el := n.NamedChild(i)
		if el.Type() == nodeComment {
			continue
		}
		items = append(items, ev.eval(el, depth+1))
	}
	return List{Items: items}
}

// evalObject evaluates an object literal into a Record, recording a
// PropertyAnchor for each property.
//
// Computed keys and spread elements make the key set statically unknowable,
// so they reject the whole object into Unsupported; no anchors are recorded
// for an object that does not become a Record.
func (ev *evaluator) evalObject(n *sitter.Node, depth int) Value {
	// First pass: shapes that invalidate the whole object.
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case nodeSpreadElement:
			return Unsupported{Raw: ev.raw(n)}
		case nodePair:
			if key := child.NamedChild(0); key != nil && key.Type() == nodeComputedPropName {
				return Unsupported{Raw: ev.raw(n)}
			}
		}
	}

	rec := NewRecord()
	order := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case nodeComment:
			continue

		case nodePair:
			key := child.NamedChild(0)
			value := child.NamedChild(int(child.NamedChildCount()) - 1)
			if key == nil || value == nil || key == value {
				continue
			}
			name := ev.propertyKey(key)
			if name == "" {
				continue
			}
			ev.path = append(ev.path, name)
			rec.Set(name, ev.eval(value, depth+1))
			ev.recordAnchor(key, value, trailingComment(child), order)
			ev.path = ev.path[:len(ev.path)-1]
			order++

		case nodeShorthandProperty:
			// { foo } is sugar for foo: foo; the value is a symbol
			// reference to the shorthand identifier.
			name := ev.raw(child)
			ev.path = append(ev.path, name)
			rec.Set(name, SymbolRef{Path: []string{name}})
			ev.recordAnchor(child, child, trailingComment(child), order)
			ev.path = ev.path[:len(ev.path)-1]
			order++

		case nodeMethodDefinition:
			// A shorthand method has a statically known key but a value
			// the evaluator will not interpret.
			var key *sitter.Node
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if c := child.NamedChild(j); c.Type() == nodePropertyIdent {
					key = c
					break
				}
			}
			if key == nil {
				continue
			}
			name := ev.raw(key)
			ev.path = append(ev.path, name)
			rec.Set(name, Unsupported{Raw: ev.raw(child)})
			ev.recordAnchor(key, child, trailingComment(child), order)
			ev.path = ev.path[:len(ev.path)-1]
			order++
		}
	}
	return rec
}

// propertyKey returns the textual key of a property, stripping quotes from
// string-literal keys. Empty when the key kind is not statically known.
func (ev *evaluator) propertyKey(key *sitter.Node) string {
	switch key.Type() {
	case nodePropertyIdent, nodeIdentifier:
		return ev.raw(key)
	case nodeString:
		return ev.decodeString(key)
	case nodeNumber:
		return ev.raw(key)
	default:
		return ""
	}
}

func (ev *evaluator) recordAnchor(key, value *sitter.Node, comment *sitter.Node, order int) {
	keyPath := make([]string, len(ev.path))
	copy(keyPath, ev.path)

	a := PropertyAnchor{
		KeyPath:      keyPath,
		KeyRange:     Range{Start: key.StartByte(), End: key.EndByte()},
		ValueRange:   Range{Start: value.StartByte(), End: value.EndByte()},
		SiblingOrder: order,
	}
	if comment != nil {
		a.TrailingComment = &Range{Start: comment.StartByte(), End: comment.EndByte()}
	}
	ev.anchors = append(ev.anchors, a)
}

// decodeString decodes a string literal node: fragments are taken verbatim
// and common escape sequences are resolved.
func (ev *evaluator) decodeString(n *sitter.Node) string {
	var sb strings.Builder
	sawFragment := false
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case nodeStringFragment:
			sawFragment = true
			sb.WriteString(ev.raw(child))
		case nodeEscapeSequence:
			sawFragment = true
			sb.WriteString(decodeEscape(ev.raw(child)))
		}
	}
	if sawFragment {
		return sb.String()
	}
	// Empty string literal or an older grammar without fragment nodes.
	return strings.Trim(ev.raw(n), `"'`)
}

func decodeEscape(seq string) string {
	if len(seq) < 2 || seq[0] != '\\' {
		return seq
	}
	switch seq[1] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\', '\'', '"', '`':
		return seq[1:]
	case 'u', 'x':
		if r, err := strconv.Unquote(`"` + seq + `"`); err == nil {
			return r
		}
		return seq
	default:
		return seq[1:]
	}
}

// trailingComment returns the line comment attached to the end of a property
// line, when one exists.
func trailingComment(prop *sitter.Node) *sitter.Node {
	sib := prop.NextSibling()
	for sib != nil && sib.Type() == "," {
		sib = sib.NextSibling()
	}
	if sib == nil || sib.Type() != nodeComment {
		return nil
	}
	if sib.StartPoint().Row != prop.EndPoint().Row {
		return nil
	}
	return sib
}

// firstNamedNonComment returns the first named child that is not a comment.
func firstNamedNonComment(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() != nodeComment {
			return c
		}
	}
	return nil
}
