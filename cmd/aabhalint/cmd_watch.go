// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/krabhishek/aabha-lint/services/aabha"
	"github.com/krabhishek/aabha-lint/services/aabha/format"
)

func runWatch(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	debounce := time.Duration(debounceMs) * time.Millisecond

	return runner.Watch(ctx, paths, debounce, func(result *aabha.RunResult) {
		if err := formatter.FormatRun(out, result); err != nil {
			slog.Error("format failed", slog.Any("error", err))
		}
	})
}
