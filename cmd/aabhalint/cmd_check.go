// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/krabhishek/aabha-lint/services/aabha"
	"github.com/krabhishek/aabha-lint/services/aabha/format"
	"github.com/krabhishek/aabha-lint/services/aabha/rules"
)

// lintPaths normalizes the positional arguments, defaulting to the current
// directory.
func lintPaths(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

// newRunner builds a runner with configuration resolved from --config or
// from .aabhalint.yml next to the first lint path.
func newRunner(paths []string) (*aabha.Runner, error) {
	registry := rules.DefaultRegistry()

	cfgPath := configPath
	if cfgPath == "" {
		root := paths[0]
		if info, err := os.Stat(root); err == nil && !info.IsDir() {
			root = filepath.Dir(root)
		}
		cfgPath = filepath.Join(root, rules.DefaultConfigFile)
	}

	cfg, err := rules.LoadConfig(cfgPath)
	switch {
	case err == nil:
		slog.Debug("loaded config", slog.String("path", cfgPath))
		registry.SetConfig(cfg)
	case errors.Is(err, rules.ErrConfigNotFound) && configPath == "":
		// No config file is fine when none was asked for.
	default:
		return nil, err
	}

	var opts []aabha.Option
	opts = append(opts, aabha.WithRegistry(registry))
	if concurrency > 0 {
		opts = append(opts, aabha.WithConcurrency(concurrency))
	}
	return aabha.NewRunner(opts...), nil
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	result, err := runner.LintPaths(cmd.Context(), paths)
	if err != nil {
		return err
	}
	if err := formatter.FormatRun(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if result.Failed() {
		errs, _, _ := result.Counts()
		return fmt.Errorf("%d errors found", errs)
	}
	return nil
}
