// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krabhishek/aabha-lint/services/aabha/rules"
)

// ruleInfo is the JSON shape for one rule listing entry.
type ruleInfo struct {
	Rule        string `json:"rule"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

func runRules(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	registry := rules.DefaultRegistry()
	out := cmd.OutOrStdout()

	if outputFormat == "json" {
		listing := map[string][]ruleInfo{}
		for _, kind := range registry.Kinds() {
			for _, r := range registry.RulesFor(kind) {
				listing[kind] = append(listing[kind], ruleInfo{
					Rule:        rules.QualifiedName(kind, r.Name),
					Severity:    r.Severity.String(),
					Description: r.Description,
				})
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	}

	for _, kind := range registry.Kinds() {
		if _, err := fmt.Fprintf(out, "%s:\n", kind); err != nil {
			return err
		}
		for _, r := range registry.RulesFor(kind) {
			_, err := fmt.Fprintf(out, "  %-40s %-7s %s\n",
				rules.QualifiedName(kind, r.Name), r.Severity, r.Description)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
