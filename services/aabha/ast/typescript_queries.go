// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

// TypeScript Tree-sitter Node Types
//
// This file documents the tree-sitter node types the scanner uses to locate
// decorated declarations. The scanner uses direct node traversal rather than
// tree-sitter's query language for more precise control over decorator
// attachment.
//
// Reference: https://github.com/tree-sitter/tree-sitter-typescript

// Node type constants for annotation discovery.
const (
	// Top-level nodes
	tsNodeProgram = "program"

	// Export wrappers: decorators may attach to the export statement
	// rather than the declaration itself.
	tsNodeExportStatement = "export_statement"

	// Class-related nodes
	tsNodeClassDeclaration         = "class_declaration"
	tsNodeAbstractClassDeclaration = "abstract_class_declaration"
	tsNodeClassBody                = "class_body"
	tsNodeMethodDefinition         = "method_definition"
	tsNodePublicFieldDefinition    = "public_field_definition"
	tsNodeTypeIdentifier           = "type_identifier"

	// Decorator nodes
	tsNodeDecorator        = "decorator"
	tsNodeCallExpression   = "call_expression"
	tsNodeArguments        = "arguments"
	tsNodeIdentifier       = "identifier"
	tsNodeMemberExpression = "member_expression"
	tsNodePropertyIdent    = "property_identifier"

	// Argument shapes
	tsNodeObject = "object"

	tsNodeComment = "comment"
)
