// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ast

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/krabhishek/aabha-lint/services/aabha/meta"
)

// DefaultMaxFileSize is the largest file the scanner will accept (10MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// WarnFileSize is the threshold above which a warning is logged (1MB).
const WarnFileSize = 1 * 1024 * 1024

var (
	// ErrFileTooLarge indicates the content exceeds the configured limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")

	// ErrInvalidContent indicates the content is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid file content")
)

// ScannerOption configures a TypeScriptScanner instance.
type ScannerOption func(*TypeScriptScanner)

// WithMaxFileSize sets the maximum file size the scanner will accept.
func WithMaxFileSize(bytes int64) ScannerOption {
	return func(s *TypeScriptScanner) {
		if bytes > 0 {
			s.maxFileSize = bytes
		}
	}
}

// TypeScriptScanner locates aabha annotations in TypeScript source files.
//
// Description:
//
//	The scanner parses with tree-sitter and walks the CST for decorated
//	class and method declarations. It is error-tolerant: a file with
//	syntax errors still yields the annotations that could be parsed.
//
// Thread Safety:
//
//	Scanner instances are safe for concurrent use. Each Scan call creates
//	its own tree-sitter parser internally.
type TypeScriptScanner struct {
	maxFileSize int64
}

// NewTypeScriptScanner creates a scanner with the given options.
func NewTypeScriptScanner(opts ...ScannerOption) *TypeScriptScanner {
	s := &TypeScriptScanner{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extensions returns the file extensions this scanner handles.
func (s *TypeScriptScanner) Extensions() []string {
	return []string{".ts", ".tsx", ".mts", ".cts"}
}

// Scan extracts annotation occurrences from TypeScript source code.
//
// Inputs:
//   - ctx: Context for cancellation. Checked before and after parsing;
//     tree-sitter parsing itself cannot be interrupted mid-parse.
//   - content: Raw source bytes. Must be valid UTF-8.
//   - filePath: Path for reporting, relative to the lint root with forward
//     slashes. Grammar selection uses the .tsx suffix.
//
// Outputs:
//   - *ScanResult: Annotations and metadata. Never nil on success. The
//     caller must Close the result once evaluation is done.
//   - error: ErrFileTooLarge, ErrInvalidContent, context errors, or a
//     tree-sitter failure.
func (s *TypeScriptScanner) Scan(ctx context.Context, content []byte, filePath string) (*ScanResult, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan canceled before start: %w", err)
	}
	if int64(len(content)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), s.maxFileSize)
	}
	if len(content) > WarnFileSize {
		slog.Warn("scanning large file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	hash := sha256.Sum256(content)

	parser := sitter.NewParser()
	language := "typescript"
	if strings.HasSuffix(filePath, ".tsx") {
		parser.SetLanguage(tsx.GetLanguage())
		language = "tsx"
	} else {
		parser.SetLanguage(typescript.GetLanguage())
	}

	ctx, span := startScanSpan(ctx, language, filePath, len(content))
	defer span.End()

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		recordScanMetrics(ctx, language, time.Since(start), 0, false)
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		tree.Close()
		return nil, fmt.Errorf("scan canceled after tree-sitter: %w", err)
	}

	result := &ScanResult{
		FilePath:      filePath,
		Language:      language,
		Annotations:   make([]*Annotation, 0),
		Errors:        make([]string, 0),
		Hash:          hex.EncodeToString(hash[:]),
		ParsedAtMilli: time.Now().UnixMilli(),
		tree:          tree,
	}

	root := tree.RootNode()
	if root == nil {
		result.Errors = append(result.Errors, "tree-sitter returned nil root node")
		return result, nil
	}
	if root.HasError() {
		result.Errors = append(result.Errors, "source contains syntax errors")
	}

	s.collectAnnotations(root, content, filePath, result)

	if err := result.Validate(); err != nil {
		tree.Close()
		recordScanMetrics(ctx, language, time.Since(start), 0, false)
		return nil, fmt.Errorf("result validation failed: %w", err)
	}

	setScanSpanResult(span, len(result.Annotations), len(result.Errors))
	recordScanMetrics(ctx, language, time.Since(start), len(result.Annotations), true)

	if err := ctx.Err(); err != nil {
		tree.Close()
		return nil, fmt.Errorf("scan canceled after extraction: %w", err)
	}
	return result, nil
}

// collectAnnotations walks top-level statements for decorated classes.
func (s *TypeScriptScanner) collectAnnotations(root *sitter.Node, content []byte, filePath string, result *ScanResult) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case tsNodeExportStatement:
			s.processExportStatement(child, content, filePath, result)
		case tsNodeClassDeclaration, tsNodeAbstractClassDeclaration:
			s.processClass(child, content, filePath, nil, result)
		}
	}
}

// processExportStatement collects decorators attached to the export wrapper
// and hands them down to the exported class.
func (s *TypeScriptScanner) processExportStatement(node *sitter.Node, content []byte, filePath string, result *ScanResult) {
	var pending []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case tsNodeDecorator:
			pending = append(pending, child)
		case tsNodeClassDeclaration, tsNodeAbstractClassDeclaration:
			s.processClass(child, content, filePath, pending, result)
		}
	}
}

// processClass extracts the class's own decorators plus any inherited from
// an export wrapper, then walks the class body for decorated members.
func (s *TypeScriptScanner) processClass(node *sitter.Node, content []byte, filePath string, exportDecorators []*sitter.Node, result *ScanResult) {
	var name string
	var body *sitter.Node
	decorators := exportDecorators

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case tsNodeDecorator:
			decorators = append(decorators, child)
		case tsNodeTypeIdentifier:
			name = string(content[child.StartByte():child.EndByte()])
		case tsNodeClassBody:
			body = child
		}
	}
	if name == "" {
		return
	}

	for _, dec := range decorators {
		if ann := s.buildAnnotation(dec, content, filePath, name, TargetClass); ann != nil {
			result.Annotations = append(result.Annotations, ann)
		}
	}

	if body != nil {
		s.processClassBody(body, content, filePath, result)
	}
}

// processClassBody walks class members, attaching decorators that appear as
// body-level siblings as well as decorators nested inside the member node.
func (s *TypeScriptScanner) processClassBody(body *sitter.Node, content []byte, filePath string, result *ScanResult) {
	var pending []*sitter.Node
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case tsNodeDecorator:
			pending = append(pending, child)

		case tsNodeMethodDefinition, tsNodePublicFieldDefinition:
			kind := TargetMethod
			if child.Type() == tsNodePublicFieldDefinition {
				kind = TargetProperty
			}
			decorators := pending
			pending = nil

			var name string
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case tsNodeDecorator:
					decorators = append(decorators, gc)
				case tsNodePropertyIdent:
					if name == "" {
						name = string(content[gc.StartByte():gc.EndByte()])
					}
				}
			}
			if name == "" {
				continue
			}
			for _, dec := range decorators {
				if ann := s.buildAnnotation(dec, content, filePath, name, kind); ann != nil {
					result.Annotations = append(result.Annotations, ann)
				}
			}
		}
	}
}

// buildAnnotation converts one decorator node into an Annotation record.
// Returns nil when the decorator's name cannot be determined.
func (s *TypeScriptScanner) buildAnnotation(dec *sitter.Node, content []byte, filePath, target string, targetKind TargetKind) *Annotation {
	var rawName string
	var argNode *sitter.Node

	for i := 0; i < int(dec.ChildCount()); i++ {
		child := dec.Child(i)
		switch child.Type() {
		case tsNodeIdentifier, tsNodeMemberExpression:
			// Bare decorator: @Entity or @aabha.Entity without a call.
			rawName = string(content[child.StartByte():child.EndByte()])
		case tsNodeCallExpression:
			rawName, argNode = s.extractCall(child, content)
		}
	}
	if rawName == "" {
		return nil
	}

	ann := &Annotation{
		Kind:       kindOf(rawName),
		RawName:    rawName,
		Target:     target,
		TargetKind: targetKind,
		FilePath:   filePath,
		Range:      meta.Range{Start: dec.StartByte(), End: dec.EndByte()},
		Location:   locationOf(dec, filePath),
		ArgNode:    argNode,
	}
	if argNode != nil && argNode.Type() == tsNodeObject {
		ann.ObjectRange = &meta.Range{Start: argNode.StartByte(), End: argNode.EndByte()}
	}
	return ann
}

// extractCall pulls the callee name and first argument from a decorator
// call expression.
func (s *TypeScriptScanner) extractCall(call *sitter.Node, content []byte) (string, *sitter.Node) {
	var name string
	var arg *sitter.Node

	for i := 0; i < int(call.ChildCount()); i++ {
		child := call.Child(i)
		switch child.Type() {
		case tsNodeIdentifier, tsNodeMemberExpression:
			name = string(content[child.StartByte():child.EndByte()])
		case tsNodeArguments:
			for j := 0; j < int(child.NamedChildCount()); j++ {
				gc := child.NamedChild(j)
				if gc.Type() == tsNodeComment {
					continue
				}
				arg = gc
				break
			}
		}
	}
	return name, arg
}

// kindOf reduces a possibly-dotted decorator name to its semantic category:
// the last path segment.
func kindOf(rawName string) string {
	if idx := strings.LastIndex(rawName, "."); idx >= 0 {
		return rawName[idx+1:]
	}
	return rawName
}

// Compile-time interface compliance check.
var _ Scanner = (*TypeScriptScanner)(nil)

// Scanner locates annotations in source content.
type Scanner interface {
	// Scan extracts annotation occurrences from one file's content.
	Scan(ctx context.Context, content []byte, filePath string) (*ScanResult, error)

	// Extensions returns the file extensions the scanner handles.
	Extensions() []string
}
