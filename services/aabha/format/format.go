// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package format renders lint and fix results for terminals and tooling.
package format

import (
	"fmt"
	"io"

	"github.com/krabhishek/aabha-lint/services/aabha"
)

// Formatter renders run results to a writer.
type Formatter interface {
	// FormatRun renders a lint run.
	FormatRun(w io.Writer, result *aabha.RunResult) error

	// FormatFix renders a fix run.
	FormatFix(w io.Writer, result *aabha.FixRunResult) error
}

// New returns the formatter for a name. Supported: "text", "json".
func New(name string) (Formatter, error) {
	switch name {
	case "text", "":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text or json)", name)
	}
}
