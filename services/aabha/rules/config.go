// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file name searched for in the lint root.
const DefaultConfigFile = ".aabhalint.yml"

// ErrConfigNotFound indicates no config file exists at the given path.
var ErrConfigNotFound = errors.New("config file not found")

// RuleConfig holds per-rule overrides from the config file.
type RuleConfig struct {
	// Enabled turns the rule off when set to false. Nil means enabled.
	Enabled *bool `yaml:"enabled"`

	// Severity overrides the rule's default severity when non-empty.
	// Accepts "info", "warning", or "error".
	Severity string `yaml:"severity"`
}

// Config is the on-disk lint configuration (.aabhalint.yml).
//
// Example:
//
//	rules:
//	  entity/min-description-length:
//	    enabled: false
//	  metric/require-unit:
//	    severity: error
//	exclude_kinds:
//	  - Persona
type Config struct {
	// Rules maps qualified rule identifiers to their overrides.
	Rules map[string]RuleConfig `yaml:"rules"`

	// ExcludeKinds lists annotation kinds to skip entirely.
	ExcludeKinds []string `yaml:"exclude_kinds"`
}

// DefaultConfig returns a config with no overrides.
func DefaultConfig() *Config {
	return &Config{Rules: map[string]RuleConfig{}}
}

// LoadConfig reads and parses a config file.
//
// Outputs:
//   - *Config: The parsed configuration. Never nil on success.
//   - error: ErrConfigNotFound when the file does not exist, otherwise a
//     read or YAML parse failure.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Rules == nil {
		cfg.Rules = map[string]RuleConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks rule identifiers and severity strings.
func (c *Config) Validate() error {
	for id, rc := range c.Rules {
		if !strings.Contains(id, "/") {
			return fmt.Errorf("rule %q: identifier must be kind/rule-name", id)
		}
		switch rc.Severity {
		case "", "info", "warning", "error":
		default:
			return fmt.Errorf("rule %q: unknown severity %q", id, rc.Severity)
		}
	}
	return nil
}

// RuleEnabled reports whether a rule is enabled under this config.
func (c *Config) RuleEnabled(id string) bool {
	rc, ok := c.Rules[id]
	if !ok || rc.Enabled == nil {
		return true
	}
	return *rc.Enabled
}

// SeverityOverride returns the configured severity for a rule, if any.
func (c *Config) SeverityOverride(id string) (Severity, bool) {
	rc, ok := c.Rules[id]
	if !ok || rc.Severity == "" {
		return SeverityWarning, false
	}
	return SeverityFromString(rc.Severity), true
}

// KindExcluded reports whether an annotation kind is excluded.
func (c *Config) KindExcluded(kind string) bool {
	for _, k := range c.ExcludeKinds {
		if strings.EqualFold(k, kind) {
			return true
		}
	}
	return false
}
