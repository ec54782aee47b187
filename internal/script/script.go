// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package script compiles Starlark source into gate predicates, so checks
// can be written in a gate file instead of Go.
package script

import (
	"fmt"
	"os"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/marcelocantos/donegate/internal/checks"
	"github.com/marcelocantos/donegate/internal/gate"
)

// Kind selects how source is interpreted.
type Kind int

const (
	// Expr is a single expression whose truth value is the verdict.
	Expr Kind = iota
	// Program is a file of statements that must assign a global named ok.
	Program
)

// ResultGlobal is the global a Program assigns its verdict to.
const ResultGlobal = "ok"

// MaxSteps bounds the work one evaluation may do.
const MaxSteps = 1_000_000

// CategoryScript labels script evaluation errors.
const CategoryScript = "script"

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Compile parses source up front so syntax errors surface when the gate is
// loaded rather than when it runs. now supplies the clock for age_minutes.
func Compile(name, source string, kind Kind, now func() time.Time) (gate.Predicate, error) {
	if now == nil {
		now = time.Now
	}
	predeclared := builtins(now)
	filename := name + ".star"

	switch kind {
	case Expr:
		if _, err := fileOptions.ParseExpr(filename, source, 0); err != nil {
			return nil, fmt.Errorf("script %s: %w", name, err)
		}
		return func() (bool, error) {
			v, err := starlark.EvalOptions(fileOptions, newThread(name), filename, source, predeclared)
			if err != nil {
				return false, gate.WithCategory(CategoryScript, err)
			}
			return bool(v.Truth()), nil
		}, nil

	case Program:
		f, err := fileOptions.Parse(filename, source, 0)
		if err != nil {
			return nil, fmt.Errorf("script %s: %w", name, err)
		}
		prog, err := starlark.FileProgram(f, predeclared.Has)
		if err != nil {
			return nil, fmt.Errorf("script %s: %w", name, err)
		}
		return func() (bool, error) {
			globals, err := prog.Init(newThread(name), predeclared)
			if err != nil {
				return false, gate.WithCategory(CategoryScript, err)
			}
			v, ok := globals[ResultGlobal]
			if !ok {
				return false, gate.WithCategory(CategoryScript, fmt.Errorf("script %s did not set %q", name, ResultGlobal))
			}
			return bool(v.Truth()), nil
		}, nil

	default:
		return nil, fmt.Errorf("script %s: unknown kind %d", name, kind)
	}
}

func newThread(name string) *starlark.Thread {
	th := &starlark.Thread{
		Name:  name,
		Print: func(*starlark.Thread, string) {},
	}
	th.SetMaxExecutionSteps(MaxSteps)
	return th
}

func builtins(now func() time.Time) starlark.StringDict {
	pathPredicate := func(name string, fn func(string) (bool, error)) *starlark.Builtin {
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var path string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "path", &path); err != nil {
				return nil, err
			}
			ok, err := fn(path)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", b.Name(), err)
			}
			return starlark.Bool(ok), nil
		})
	}

	lib := checks.New(checks.WithClock(now))
	return starlark.StringDict{
		"exists":        pathPredicate("exists", checks.Exists),
		"is_dir":        pathPredicate("is_dir", checks.IsDir),
		"is_executable": pathPredicate("is_executable", checks.IsExecutable),
		"age_minutes": starlark.NewBuiltin("age_minutes", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var path string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "path", &path); err != nil {
				return nil, err
			}
			age, ok, err := lib.Age(path)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", b.Name(), err)
			}
			if !ok {
				return starlark.None, nil
			}
			return starlark.Float(age.Minutes()), nil
		}),
		"env": starlark.NewBuiltin("env", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var key string
			var def starlark.Value = starlark.None
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &key, "default?", &def); err != nil {
				return nil, err
			}
			if v, ok := os.LookupEnv(key); ok {
				return starlark.String(v), nil
			}
			return def, nil
		}),
	}
}
