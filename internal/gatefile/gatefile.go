// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package gatefile loads gate definitions from YAML.
package gatefile

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the top-level YAML structure of a gate definition.
type File struct {
	Task   string      `yaml:"task"`
	Checks []CheckSpec `yaml:"checks"`

	path string
}

// CheckSpec is one entry under checks. Which fields apply depends on Kind.
type CheckSpec struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`

	Path  string   `yaml:"path,omitempty"`
	Paths []string `yaml:"paths,omitempty"`

	MaxAgeMinutes   int    `yaml:"max_age_minutes,omitempty"`  // log_recent
	IntervalMinutes int    `yaml:"interval_minutes,omitempty"` // heartbeat
	Schedule        string `yaml:"schedule,omitempty"`         // heartbeat, cron expression

	Command []string `yaml:"command,omitempty"`
	URL     string   `yaml:"url,omitempty"`
	Timeout string   `yaml:"timeout,omitempty"`

	Expr   string `yaml:"expr,omitempty"`   // starlark
	Script string `yaml:"script,omitempty"` // starlark
}

// Load reads and validates a gate definition.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gate file: %w", err)
	}
	return Parse(data, path)
}

// Parse validates a gate definition. source names it in error messages.
func Parse(data []byte, source string) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse gate file %s: %w", source, err)
	}
	f.path = source

	seen := make(map[string]bool, len(f.Checks))
	for i, c := range f.Checks {
		if c.Name == "" {
			return nil, fmt.Errorf("gate file %s: check %d: missing name", source, i)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("gate file %s: check %q: duplicate name", source, c.Name)
		}
		seen[c.Name] = true

		k, ok := kinds[c.Kind]
		if !ok {
			return nil, fmt.Errorf("gate file %s: check %q: unknown kind %q", source, c.Name, c.Kind)
		}
		if err := k.validate(c); err != nil {
			return nil, fmt.Errorf("gate file %s: check %q: %w", source, c.Name, err)
		}
		if c.Timeout != "" {
			if _, err := time.ParseDuration(c.Timeout); err != nil {
				return nil, fmt.Errorf("gate file %s: check %q: invalid timeout: %w", source, c.Name, err)
			}
		}
	}
	return &f, nil
}

// Path returns the file the definition was loaded from.
func (f *File) Path() string {
	return f.path
}

func (c CheckSpec) timeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}
