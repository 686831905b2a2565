// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/krabhishek/aabha-lint/services/aabha/format"
)

func runFix(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	paths := lintPaths(args)
	runner, err := newRunner(paths)
	if err != nil {
		return err
	}
	formatter, err := format.New(outputFormat)
	if err != nil {
		return err
	}

	result, err := runner.FixPaths(cmd.Context(), paths, dryRun)
	if err != nil {
		return err
	}
	return formatter.FormatFix(cmd.OutOrStdout(), result)
}
