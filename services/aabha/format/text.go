// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package format

import (
	"fmt"
	"io"

	"github.com/krabhishek/aabha-lint/services/aabha"
)

// TextFormatter renders results as human-readable terminal output, one
// diagnostic per line in file:line:col order.
type TextFormatter struct{}

// FormatRun renders a lint run.
//
// Example output:
//
//	src/order.ts:12:0  error    entity/require-description  @Entity on OrderService is missing required field "description"
//	src/order.ts:30:2  warning  metric/non-empty-unit       @Metric on latency has an empty "unit"
//
//	2 problems (1 error, 1 warning, 0 info)
func (f *TextFormatter) FormatRun(w io.Writer, result *aabha.RunResult) error {
	for _, file := range result.Files {
		for _, e := range file.ScanErrors {
			if _, err := fmt.Fprintf(w, "%s: %s\n", file.FilePath, e); err != nil {
				return err
			}
		}
		for _, d := range file.Diagnostics {
			fixMark := ""
			if d.Fix != nil {
				fixMark = "  [fixable]"
			}
			_, err := fmt.Fprintf(w, "%s:%d:%d  %-7s  %s  %s%s\n",
				d.Location.FilePath, d.Location.StartLine, d.Location.StartCol,
				d.Severity, d.Rule, d.Message, fixMark)
			if err != nil {
				return err
			}
		}
	}

	errs, warns, infos := result.Counts()
	total := errs + warns + infos
	if total == 0 {
		_, err := fmt.Fprintf(w, "no problems found (%d files)\n", len(result.Files))
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d problems (%d errors, %d warnings, %d info)\n",
		total, errs, warns, infos)
	return err
}

// FormatFix renders a fix run.
func (f *TextFormatter) FormatFix(w io.Writer, result *aabha.FixRunResult) error {
	verb := "applied"
	if result.DryRun {
		verb = "would apply"
	}
	for _, file := range result.Files {
		for _, fix := range file.Fixes {
			_, err := fmt.Fprintf(w, "%s: %s %s on %s (%s)\n",
				file.FilePath, verb, fix.FieldText, fix.Target, fix.Rule)
			if err != nil {
				return err
			}
		}
		if file.VerifyFailed {
			_, err := fmt.Fprintf(w, "%s: fix verification failed, file left unchanged\n",
				file.FilePath)
			if err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%s %d fixes across %d files\n",
		verb, result.TotalApplied(), len(result.Files))
	return err
}
