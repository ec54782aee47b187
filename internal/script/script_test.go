// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package script

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcelocantos/donegate/internal/gate"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func TestExpr(t *testing.T) {
	dir := t.TempDir()
	log := filepath.Join(dir, "app.log")
	if err := os.WriteFile(log, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	mtime := now.Add(-10 * time.Minute)
	if err := os.Chtimes(log, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DONEGATE_TEST_STAGE", "prod")

	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"exists", `exists("` + log + `")`, true},
		{"missing", `exists("` + filepath.Join(dir, "nope") + `")`, false},
		{"is_dir", `is_dir("` + dir + `")`, true},
		{"age", `age_minutes("` + log + `") < 15`, true},
		{"age stale", `age_minutes("` + log + `") < 5`, false},
		{"age missing", `age_minutes("` + filepath.Join(dir, "nope") + `") == None`, true},
		{"env", `env("DONEGATE_TEST_STAGE") == "prod"`, true},
		{"env default", `env("DONEGATE_TEST_UNSET", "dev") == "dev"`, true},
		{"truthiness", `[1]`, true},
		{"falsy", `""`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.name, tt.src, Expr, clock)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			got, err := p()
			if err != nil {
				t.Fatalf("eval: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgram(t *testing.T) {
	dir := t.TempDir()
	src := `
paths = ["` + dir + `", "` + filepath.Join(dir, "absent") + `"]
present = [p for p in paths if exists(p)]
ok = len(present) == 1
`
	p, err := Compile("count", src, Program, clock)
	if err != nil {
		t.Fatal(err)
	}
	got, err := p()
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("expected program to pass")
	}
}

func TestProgramWithoutResult(t *testing.T) {
	p, err := Compile("noresult", "x = 1\n", Program, clock)
	if err != nil {
		t.Fatal(err)
	}
	_, err = p()
	if gate.Category(err) != CategoryScript {
		t.Errorf("category = %q, want %q", gate.Category(err), CategoryScript)
	}
}

func TestSyntaxErrorAtCompile(t *testing.T) {
	if _, err := Compile("bad", "exists(", Expr, clock); err == nil {
		t.Error("expected syntax error for expression")
	}
	if _, err := Compile("bad", "ok = undefined_name\n", Program, clock); err == nil {
		t.Error("expected resolve error for program")
	}
}

func TestRuntimeErrorIsCategorised(t *testing.T) {
	p, err := Compile("div", "1 // 0 == 0", Expr, clock)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := p()
	if ok || gate.Category(err) != CategoryScript {
		t.Errorf("got (%v, %v), want failed script error", ok, err)
	}
}

func TestStepLimit(t *testing.T) {
	src := "n = 0\nwhile True:\n    n += 1\nok = True\n"
	p, err := Compile("spin", src, Program, clock)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p(); gate.Category(err) != CategoryScript {
		t.Errorf("expected step limit to stop the script, got %v", err)
	}
}
