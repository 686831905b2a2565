// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/krabhishek/aabha-lint/pkg/logging"
)

// --- Global Command Variables ---
var (
	outputFormat string
	configPath   string
	concurrency  int
	verbose      bool
	logDir       string

	dryRun     bool
	debounceMs int

	logger *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "aabhalint",
		Short: "A static checker for aabha annotation metadata in TypeScript",
		Long: `aabhalint checks @Entity, @Workflow, @Metric and other aabha
decorators for missing or malformed metadata, and can insert
missing fields in place without disturbing surrounding code.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logging.LevelWarn
			if verbose {
				level = logging.LevelDebug
			}
			logger = logging.New(logging.Config{Level: level, LogDir: logDir})
			slog.SetDefault(logger.Slog())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Close()
			}
		},
	}

	checkCmd = &cobra.Command{
		Use:   "check [path...]",
		Short: "Lint annotation metadata and report diagnostics",
		RunE:  runCheck, // Defined in cmd_check.go
	}

	fixCmd = &cobra.Command{
		Use:   "fix [path...]",
		Short: "Insert missing annotation fields in place",
		RunE:  runFix, // Defined in cmd_fix.go
	}

	rulesCmd = &cobra.Command{
		Use:   "rules",
		Short: "List the registered rules per annotation kind",
		RunE:  runRules, // Defined in cmd_rules.go
	}

	watchCmd = &cobra.Command{
		Use:   "watch [path...]",
		Short: "Re-lint whenever a source file changes",
		RunE:  runWatch, // Defined in cmd_watch.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text",
		"output format (text or json)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to .aabhalint.yml (default: search the first lint path)")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0,
		"files to lint in parallel (default: number of CPUs)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"also write JSON logs to files in this directory")

	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"report planned fixes without writing files")
	watchCmd.Flags().IntVar(&debounceMs, "debounce", 300,
		"quiet period in milliseconds before re-linting")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(watchCmd)
}
