// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps annotation kinds to the rules that check them.
//
// Description:
//
//	The registry is the dispatch table of the rule host: the runner looks up
//	an annotation's kind and runs every registered rule against it. Kinds
//	with no registered rules produce no diagnostics; an unknown decorator
//	is not an error.
//
// Thread Safety: Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byKind map[string][]Rule
	config *Config
}

// NewRegistry creates an empty registry with the default configuration.
func NewRegistry() *Registry {
	return &Registry{
		byKind: make(map[string][]Rule),
		config: DefaultConfig(),
	}
}

// SetConfig replaces the registry's configuration. A nil config restores
// the defaults.
func (r *Registry) SetConfig(cfg *Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	r.config = cfg
}

// Register adds rules for an annotation kind. Repeated calls append.
func (r *Registry) Register(kind string, rs ...Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKind[kind] = append(r.byKind[kind], rs...)
}

// RulesFor returns the rules registered for a kind, or nil.
func (r *Registry) RulesFor(kind string) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKind[kind]
}

// Kinds returns the registered annotation kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.byKind))
	for k := range r.byKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Check runs every rule registered for the context's annotation kind and
// returns the stamped diagnostics. Configuration is applied here: disabled
// rules are skipped and severity overrides replace rule defaults.
func (r *Registry) Check(c *Context) []Diagnostic {
	r.mu.RLock()
	rs := r.byKind[c.Annotation.Kind]
	cfg := r.config
	r.mu.RUnlock()

	if len(rs) == 0 || cfg.KindExcluded(c.Annotation.Kind) {
		return nil
	}

	var out []Diagnostic
	for _, rule := range rs {
		id := QualifiedName(c.Annotation.Kind, rule.Name)
		if !cfg.RuleEnabled(id) {
			continue
		}
		severity := rule.Severity
		if override, ok := cfg.SeverityOverride(id); ok {
			severity = override
		}
		for _, d := range rule.Check(c) {
			d.Rule = id
			d.Severity = severity
			out = append(out, d)
		}
	}
	return out
}

// QualifiedName builds the config-facing rule identifier,
// e.g. ("Entity", "require-description") -> "entity/require-description".
func QualifiedName(kind, rule string) string {
	return strings.ToLower(kind) + "/" + rule
}
