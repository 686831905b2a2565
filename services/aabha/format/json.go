// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package format

import (
	"encoding/json"
	"io"

	"github.com/krabhishek/aabha-lint/services/aabha"
)

// JSONFormatter renders results as indented JSON for tooling and CI.
type JSONFormatter struct{}

// FormatRun renders a lint run as JSON.
func (f *JSONFormatter) FormatRun(w io.Writer, result *aabha.RunResult) error {
	return writeJSON(w, result)
}

// FormatFix renders a fix run as JSON.
func (f *JSONFormatter) FormatFix(w io.Writer, result *aabha.FixRunResult) error {
	return writeJSON(w, result)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
