// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package autofix

import (
	"strings"

	"github.com/krabhishek/aabha-lint/services/aabha/meta"
)

// DefaultIndentUnit is used when the file gives no indentation signal at all.
const DefaultIndentUnit = "  "

// Edit is a single pure-insertion text change.
//
// The engine never rewrites existing spans: bounding every fix to one
// insertion keeps simultaneous fixes from different rules composable, as
// long as the caller applies them in descending offset order against the
// original text.
type Edit struct {
	// Offset is the byte position in the original source where InsertText
	// is inserted.
	Offset uint32 `json:"offset"`

	// InsertText is the text to insert. Includes any needed separator
	// comma, newline, and indentation.
	InsertText string `json:"insert_text"`
}

// Apply returns source with the edit applied. The original slice is not
// modified.
func (e Edit) Apply(source []byte) []byte {
	out := make([]byte, 0, len(source)+len(e.InsertText))
	out = append(out, source[:e.Offset]...)
	out = append(out, e.InsertText...)
	out = append(out, source[e.Offset:]...)
	return out
}

// PlanInsertion computes the edit that adds a new field to an annotation's
// argument object literal.
//
// Description:
//
//	The plan is driven entirely by the anchors recorded during evaluation:
//	indentation is inferred from the existing property lines, the insertion
//	point goes after the last top-level property (or just inside the braces
//	of an empty object), and a separator comma is added only when the text
//	before the insertion point needs one. Planning is deterministic: the
//	same unedited source always yields the same edit.
//
// Inputs:
//   - source: The original, unmodified file content. Plans for several
//     fixes on one file must all be computed against this same text.
//   - objRange: Byte span of the argument object literal, as captured by
//     the traversal layer.
//   - anchors: The anchor index from evaluating the same argument.
//   - key: The field key to insert. Planning is idempotent on this key.
//   - fieldText: The full property text, e.g. `description: ""`.
//
// Outputs:
//   - Edit: The planned insertion. Zero value when ok is false.
//   - bool: False when no edit should be made: the key already exists at
//     the top level, the range does not delimit an object literal, or the
//     range is out of bounds. A fix is never attempted against a shape the
//     engine cannot safely extend.
func PlanInsertion(source []byte, objRange meta.Range, anchors []meta.PropertyAnchor, key, fieldText string) (Edit, bool) {
	if int(objRange.End) > len(source) || objRange.Start >= objRange.End {
		return Edit{}, false
	}
	if source[objRange.Start] != '{' || source[objRange.End-1] != '}' {
		return Edit{}, false
	}

	// Idempotence guard: fixes may be requested repeatedly across re-runs,
	// and overlapping rules may propose the same field. Any existing
	// occurrence of the key, including a shadowed duplicate, suppresses
	// the insertion.
	top := topLevelAnchors(anchors)
	for _, a := range top {
		if a.Key() == key {
			return Edit{}, false
		}
	}

	indent := inferIndent(source, objRange, top)

	if len(top) == 0 {
		// Empty object: insert immediately inside the braces.
		return Edit{
			Offset:     objRange.Start + 1,
			InsertText: "\n" + indent + fieldText,
		}, true
	}

	last := top[len(top)-1]
	offset := insertionOffset(last, objRange)
	text := "\n" + indent + fieldText
	if needsComma(source, objRange, offset) {
		// A comma cannot follow a line comment on its own line, so when a
		// trailing comment sits between the value and the chosen offset
		// the whole insertion moves back to the value end instead.
		if last.TrailingComment != nil && offset > last.ValueRange.End {
			offset = last.ValueRange.End
		}
		text = "," + text
	}

	return Edit{Offset: offset, InsertText: text}, true
}

// topLevelAnchors filters the anchor index down to depth-0 properties,
// ordered by sibling position.
func topLevelAnchors(anchors []meta.PropertyAnchor) []meta.PropertyAnchor {
	var top []meta.PropertyAnchor
	for _, a := range anchors {
		if a.Depth() == 0 {
			top = append(top, a)
		}
	}
	for i := 1; i < len(top); i++ {
		for j := i; j > 0 && top[j].SiblingOrder < top[j-1].SiblingOrder; j-- {
			top[j], top[j-1] = top[j-1], top[j]
		}
	}
	return top
}

// insertionOffset picks the byte position after the last property's value,
// skipping past a trailing line comment. An existing trailing comma stays
// where it is and ends up separating the inserted field from the brace.
func insertionOffset(last meta.PropertyAnchor, objRange meta.Range) uint32 {
	offset := last.ValueRange.End
	if last.TrailingComment != nil && last.TrailingComment.End > offset {
		offset = last.TrailingComment.End
	}
	if offset > objRange.End-1 {
		offset = objRange.End - 1
	}
	return offset
}

// needsComma reports whether a separator comma must precede the inserted
// field: it scans backwards from the insertion point, ignoring whitespace
// and line comments, and answers true unless the preceding text already
// ends in a comma or is the opening brace itself.
func needsComma(source []byte, objRange meta.Range, offset uint32) bool {
	i := int(offset) - 1
	lineEnd := i
	for i > int(objRange.Start) {
		c := source[i]
		if c == '\n' {
			lineEnd = i
			i--
			continue
		}
		if isSpace(c) {
			i--
			continue
		}
		// Skip a line comment by rescanning its line from the start.
		if start, ok := lineCommentStart(source, int(objRange.Start), i, lineEnd); ok {
			i = start - 1
			lineEnd = i
			continue
		}
		return c != ',' && c != '{'
	}
	return false
}

// lineCommentStart reports whether position i falls inside a // comment on
// its line, returning the comment's start offset.
func lineCommentStart(source []byte, lowerBound, i, lineEnd int) (int, bool) {
	lineStart := i
	for lineStart > lowerBound && source[lineStart-1] != '\n' {
		lineStart--
	}
	if lineEnd < lineStart {
		lineEnd = i
	}
	line := source[lineStart : lineEnd+1]
	if idx := findLineComment(line); idx >= 0 && lineStart+idx <= i {
		return lineStart + idx, true
	}
	return 0, false
}

// findLineComment locates a // sequence outside string literals.
func findLineComment(line []byte) int {
	var quote byte
	for i := 0; i < len(line)-1; i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '/':
			if line[i+1] == '/' {
				return i
			}
		}
	}
	return -1
}

// inferIndent determines the indentation string for the inserted property
// line.
//
// When existing properties start their own lines, the first such line's
// leading whitespace is reused directly. Otherwise the indent is the object
// opening line's leading whitespace plus one unit, where the unit is a tab
// if the file indents with tabs, the smallest leading space run observed in
// the file, or two spaces as a last resort.
func inferIndent(source []byte, objRange meta.Range, top []meta.PropertyAnchor) string {
	for _, a := range top {
		if ws, ok := ownLineIndent(source, a.KeyRange.Start); ok {
			return ws
		}
	}
	base := leadingWhitespace(source, objRange.Start)
	return base + indentUnit(source)
}

// ownLineIndent returns the leading whitespace of the line containing
// offset, but only when nothing except whitespace precedes the offset on
// that line.
func ownLineIndent(source []byte, offset uint32) (string, bool) {
	start := int(offset)
	lineStart := start
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	for i := lineStart; i < start; i++ {
		if !isSpace(source[i]) {
			return "", false
		}
	}
	return string(source[lineStart:start]), true
}

// leadingWhitespace returns the leading whitespace of the line containing
// offset.
func leadingWhitespace(source []byte, offset uint32) string {
	start := int(offset)
	lineStart := start
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	end := lineStart
	for end < len(source) && isSpace(source[end]) {
		end++
	}
	return string(source[lineStart:end])
}

// indentUnit inspects the whole file for its indentation convention.
func indentUnit(source []byte) string {
	smallest := 0
	lines := strings.Split(string(source), "\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "\t") {
			return "\t"
		}
		n := 0
		for n < len(line) && line[n] == ' ' {
			n++
		}
		if n > 0 && n < len(line) && (smallest == 0 || n < smallest) {
			smallest = n
		}
	}
	if smallest > 0 {
		return strings.Repeat(" ", smallest)
	}
	return DefaultIndentUnit
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}
