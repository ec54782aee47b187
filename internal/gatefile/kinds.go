// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package gatefile

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/marcelocantos/donegate/internal/checks"
	"github.com/marcelocantos/donegate/internal/gate"
	"github.com/marcelocantos/donegate/internal/script"
)

// Defaults applied when a gate file leaves the window unset.
const (
	DefaultLogMaxAgeMinutes         = 15
	DefaultHeartbeatIntervalMinutes = 120
)

type kind struct {
	description string
	validate    func(CheckSpec) error
	compile     func(*checks.Library, CheckSpec) (gate.Predicate, error)
}

var kinds = map[string]kind{
	"files_exist": {
		description: "every path in paths exists",
		validate:    needPaths,
		compile: func(l *checks.Library, c CheckSpec) (gate.Predicate, error) {
			return l.FilesExist(c.Paths...), nil
		},
	},
	"scripts_executable": {
		description: "every path in paths is a regular file with an execute bit",
		validate:    needPaths,
		compile: func(l *checks.Library, c CheckSpec) (gate.Predicate, error) {
			return l.ScriptsExecutable(c.Paths...), nil
		},
	},
	"log_recent": {
		description: "path was modified within max_age_minutes (default 15)",
		validate: func(c CheckSpec) error {
			if c.Path == "" {
				return errors.New("path is required")
			}
			if c.MaxAgeMinutes < 0 {
				return errors.New("max_age_minutes must be positive")
			}
			return nil
		},
		compile: func(l *checks.Library, c CheckSpec) (gate.Predicate, error) {
			minutes := c.MaxAgeMinutes
			if minutes == 0 {
				minutes = DefaultLogMaxAgeMinutes
			}
			return l.LogRecent(c.Path, time.Duration(minutes)*time.Minute), nil
		},
	},
	"build_artifact": {
		description: "path exists and is a directory",
		validate:    needPath,
		compile: func(l *checks.Library, c CheckSpec) (gate.Predicate, error) {
			return l.BuildArtifactPresent(c.Path), nil
		},
	},
	"heartbeat": {
		description: "path is at most tolerance (default 1.5) times interval_minutes (default 120) old, or the interval of schedule",
		validate: func(c CheckSpec) error {
			if c.Path == "" {
				return errors.New("path is required")
			}
			if c.IntervalMinutes < 0 {
				return errors.New("interval_minutes must be positive")
			}
			if c.IntervalMinutes > 0 && c.Schedule != "" {
				return errors.New("at most one of interval_minutes or schedule may be set")
			}
			if c.Schedule != "" {
				if _, err := checks.ScheduleInterval(c.Schedule, time.Now()); err != nil {
					return err
				}
			}
			return nil
		},
		compile: func(l *checks.Library, c CheckSpec) (gate.Predicate, error) {
			if c.Schedule != "" {
				return l.HeartbeatSchedule(c.Path, c.Schedule)
			}
			minutes := c.IntervalMinutes
			if minutes == 0 {
				minutes = DefaultHeartbeatIntervalMinutes
			}
			return l.HeartbeatFresh(c.Path, time.Duration(minutes)*time.Minute), nil
		},
	},
	"process_alive": {
		description: "the pid in pid file path is a running process",
		validate:    needPath,
		compile: func(l *checks.Library, c CheckSpec) (gate.Predicate, error) {
			return l.ProcessAlive(c.Path), nil
		},
	},
	"command": {
		description: "command exits 0 within timeout",
		validate: func(c CheckSpec) error {
			if len(c.Command) == 0 {
				return errors.New("command is required")
			}
			return nil
		},
		compile: func(l *checks.Library, c CheckSpec) (gate.Predicate, error) {
			return l.CommandSucceeds(c.Command, c.timeout(), nil), nil
		},
	},
	"http": {
		description: "GET url returns 2xx or 3xx within timeout",
		validate: func(c CheckSpec) error {
			if c.URL == "" {
				return errors.New("url is required")
			}
			return nil
		},
		compile: func(l *checks.Library, c CheckSpec) (gate.Predicate, error) {
			return l.EndpointResponds(c.URL, c.timeout(), nil), nil
		},
	},
	"starlark": {
		description: "starlark expr is truthy, or script sets ok to a truthy value",
		validate: func(c CheckSpec) error {
			if (c.Expr != "") == (c.Script != "") {
				return errors.New("exactly one of expr or script is required")
			}
			return nil
		},
		compile: func(l *checks.Library, c CheckSpec) (gate.Predicate, error) {
			if c.Expr != "" {
				return script.Compile(c.Name, c.Expr, script.Expr, l.Now)
			}
			return script.Compile(c.Name, c.Script, script.Program, l.Now)
		},
	},
}

func needPath(c CheckSpec) error {
	if c.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

func needPaths(c CheckSpec) error {
	if len(c.Paths) == 0 {
		return errors.New("paths is required")
	}
	return nil
}

// KindInfo describes a check kind for help output.
type KindInfo struct {
	Name        string
	Description string
}

// Kinds returns all check kinds sorted by name.
func Kinds() []KindInfo {
	out := make([]KindInfo, 0, len(kinds))
	for name, k := range kinds {
		out = append(out, KindInfo{Name: name, Description: k.description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Compile turns the definition into ordered checks backed by lib.
func (f *File) Compile(lib *checks.Library) ([]gate.Check, error) {
	out := make([]gate.Check, 0, len(f.Checks))
	for _, c := range f.Checks {
		k, ok := kinds[c.Kind]
		if !ok {
			return nil, fmt.Errorf("check %q: unknown kind %q", c.Name, c.Kind)
		}
		p, err := k.compile(lib, c)
		if err != nil {
			return nil, fmt.Errorf("gate file %s: check %q: %w", f.path, c.Name, err)
		}
		out = append(out, gate.Named(c.Name, p))
	}
	return out, nil
}
